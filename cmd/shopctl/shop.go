package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storefront"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List or search products",
	Long: `List the catalog, optionally filtered by a search term.

Examples:
  shopctl products
  shopctl products --search pixel
  shopctl products --by brand`,
	RunE: runProducts,
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one product and similar ones",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Show search suggestions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change the cart",
	RunE:  runCartList,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartQtyCmd = &cobra.Command{
	Use:   "qty <product-id> <delta>",
	Short: "Change a line's quantity by delta (+1 or -1)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartQty,
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Show and change the wishlist",
	RunE:  runWishlistList,
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add or remove a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runWishlistToggle,
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runWishlistRemove,
}

var wishlistMoveCmd = &cobra.Command{
	Use:   "move <product-id>",
	Short: "Move a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runWishlistMove,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Pay for the cart or a single product",
	Long: `Place an order for the whole cart, or for one product with --product.

Examples:
  shopctl checkout --name "A. Buyer" --address "1 Main St" --pincode 560001 --method cod
  shopctl checkout --product 3 --method upi`,
	RunE: runCheckout,
}

func init() {
	productsCmd.Flags().String("search", "", "search term")
	productsCmd.Flags().String("by", "", "group output by brand or category")
	productsCmd.Flags().Int("page", 0, "page number, all products when 0")
	productsCmd.Flags().Int("size", 10, "page size")
	cartAddCmd.Flags().IntP("quantity", "q", 1, "quantity to add")

	checkoutCmd.Flags().Int("product", 0, "pay for this product only")
	checkoutCmd.Flags().String("name", "", "delivery name")
	checkoutCmd.Flags().String("address", "", "delivery address")
	checkoutCmd.Flags().String("pincode", "", "delivery pincode")
	checkoutCmd.Flags().String("method", "", "payment method")

	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartQtyCmd)
	wishlistCmd.AddCommand(wishlistToggleCmd, wishlistRemoveCmd, wishlistMoveCmd)

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(wishlistCmd)
	rootCmd.AddCommand(checkoutCmd)
}

func argID(args []string, i int) (int, error) {
	id, err := strconv.Atoi(args[i])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[i])
	}
	return id, nil
}

func printProducts(ps []models.Product) error {
	if jsonOut {
		return printJSON(ps)
	}
	if len(ps) == 0 {
		fmt.Fprintln(out, "No products found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "NAME", "BRAND", "CATEGORY", "PRICE", "STOCK")
	for _, p := range ps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
			p.ID,
			truncate(p.Name, 40),
			p.Brand,
			p.Category.Join(", "),
			p.Price.StringFixed(2),
			p.Quantity,
		)
	}
	return w.Flush()
}

func runProducts(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	by, _ := cmd.Flags().GetString("by")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	return withShop(cmd, func(ctx context.Context, s *shop) error {
		view, err := s.Products(ctx, search)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(view)
		}

		groups := view.Brands
		switch by {
		case "":
			if page > 0 {
				return printProducts(catalog.Page(view.Products, page, size))
			}
			return printProducts(view.Products)
		case "brand":
		case "category":
			groups = view.Categories
		default:
			return fmt.Errorf("unknown grouping %q (brand or category)", by)
		}
		for _, g := range groups {
			fmt.Fprintf(out, "\n== %s (%d)\n", g.Name, len(g.Products))
			if err := printProducts(g.Products); err != nil {
				return err
			}
		}
		return nil
	})
}

func runProduct(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		view, err := s.Product(ctx, id)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(view)
		}

		p := view.Product
		fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Brand)
		fmt.Fprintf(out, "Price:    %s\n", p.Price.StringFixed(2))
		fmt.Fprintf(out, "Rating:   %.1f\n", p.Rating)
		fmt.Fprintf(out, "Category: %s\n", p.Category.Join(", "))
		if p.Specs != "" {
			fmt.Fprintf(out, "Specs:    %s\n", p.Specs)
		}
		for _, line := range p.Description {
			fmt.Fprintf(out, "  - %s\n", line)
		}
		if len(view.Similar) > 0 {
			fmt.Fprintln(out, "\nSimilar products:")
			return printProducts(view.Similar)
		}
		return nil
	})
}

func runSuggest(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		ps, err := s.Suggest(ctx, args[0])
		if err != nil {
			return err
		}
		return printProducts(ps)
	})
}

func printCart(view *storefront.CartView) error {
	if jsonOut {
		return printJSON(view)
	}
	if len(view.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return nil
	}
	w := newTable()
	printTableHeader(w, "PRODUCT", "NAME", "QTY", "PRICE")
	for _, it := range view.Items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", it.Product.ID, truncate(it.Product.Name, 40), it.Quantity, it.Product.Price.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\tTOTAL\t%s\n", view.Total.StringFixed(2))
	return w.Flush()
}

func runCartList(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		view, err := s.Cart(ctx)
		if err != nil {
			return err
		}
		return printCart(view)
	})
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	qty, _ := cmd.Flags().GetInt("quantity")
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		if _, err := s.AddToCart(ctx, id, qty); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cart: %d\n", s.Counts().Cart)
		return nil
	})
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		if err := s.RemoveFromCart(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cart: %d\n", s.Counts().Cart)
		return nil
	})
}

func runCartQty(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil || delta == 0 {
		return fmt.Errorf("invalid delta %q", args[1])
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		return s.ChangeQuantity(ctx, id, delta)
	})
}

func runWishlistList(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		view, err := s.Wishlist(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(view)
		}
		ps := make([]models.Product, 0, len(view.Items))
		for _, it := range view.Items {
			ps = append(ps, it.Product)
		}
		return printProducts(ps)
	})
}

func runWishlistToggle(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		res, err := s.ToggleWishlist(ctx, id)
		if err != nil {
			return err
		}
		if res.Added {
			fmt.Fprintln(out, "Added to wishlist")
		} else {
			fmt.Fprintln(out, "Removed from wishlist")
		}
		fmt.Fprintf(out, "Wishlist: %d\n", s.Counts().Wishlist)
		return nil
	})
}

func runWishlistRemove(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		return s.RemoveFromWishlist(ctx, id)
	})
}

func runWishlistMove(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		if err := s.MoveWishlistToCart(ctx, id); err != nil {
			return err
		}
		c := s.Counts()
		fmt.Fprintf(out, "Cart: %d  Wishlist: %d\n", c.Cart, c.Wishlist)
		return nil
	})
}

func runCheckout(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var req storefront.CheckoutRequest
	req.ProductID, _ = flags.GetInt("product")
	req.Name, _ = flags.GetString("name")
	req.Address, _ = flags.GetString("address")
	req.Pincode, _ = flags.GetString("pincode")
	req.PaymentMethod, _ = flags.GetString("method")

	return withShop(cmd, func(ctx context.Context, s *shop) error {
		created, err := s.Checkout(ctx, req)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(created)
		}
		fmt.Fprintf(out, "Order #%d placed\n", created.OrderID)
		return nil
	})
}
