package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Staff commands",
	Long: `Staff-only commands. The backend checks staff rights on every call.

Examples:
  shopctl admin dashboard
  shopctl admin orders cancel 42
  shopctl admin users block 7
  shopctl admin products create --name "Pixel 9" --image ./pixel.jpg --price 799`,
}

var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Revenue, totals and product sales",
	RunE:  runAdminDashboard,
}

var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and manage orders",
	RunE:  runAdminOrders,
}

var adminOrdersCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminOrdersCancel,
}

var adminOrdersReorderCmd = &cobra.Command{
	Use:   "reorder <id>",
	Short: "Place an order again",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminOrdersReorder,
}

var adminOrdersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminOrdersDelete,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and manage users",
	RunE:  runAdminUsers,
}

var adminUsersBlockCmd = &cobra.Command{
	Use:   "block <id>",
	Short: "Block or unblock a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersBlock,
}

var adminUsersEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a user's name, username or email",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersEdit,
}

var adminUsersOrdersCmd = &cobra.Command{
	Use:   "orders <id>",
	Short: "List a user's orders",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersOrders,
}

var adminProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List and manage products",
	RunE:  runAdminProducts,
}

var adminProductsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	RunE:  runAdminProductsCreate,
}

var adminProductsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the given fields of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminProductsUpdate,
}

var adminProductsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminProductsDelete,
}

func productFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "product name")
	fs.String("brand", "", "brand")
	fs.String("specs", "", "specs line")
	fs.StringSlice("category", nil, "categories (repeat or comma separated)")
	fs.StringArray("description", nil, "description line (repeatable)")
	fs.String("price", "", "price")
	fs.Int("quantity", 0, "stock quantity")
	fs.Float64("rating", 0, "rating")
	fs.String("image", "", "path to the product image")
}

func init() {
	adminUsersEditCmd.Flags().String("firstname", "", "first name")
	adminUsersEditCmd.Flags().String("username", "", "username")
	adminUsersEditCmd.Flags().String("email", "", "email")

	adminProductsCmd.Flags().Int("page", 0, "page number, all products when 0")
	adminProductsCmd.Flags().Int("size", 10, "page size")
	productFlags(adminProductsCreateCmd.Flags())
	productFlags(adminProductsUpdateCmd.Flags())

	adminOrdersCmd.AddCommand(adminOrdersCancelCmd, adminOrdersReorderCmd, adminOrdersDeleteCmd)
	adminUsersCmd.AddCommand(adminUsersBlockCmd, adminUsersEditCmd, adminUsersOrdersCmd)
	adminProductsCmd.AddCommand(adminProductsCreateCmd, adminProductsUpdateCmd, adminProductsDeleteCmd)
	adminCmd.AddCommand(adminDashboardCmd, adminOrdersCmd, adminUsersCmd, adminProductsCmd)

	rootCmd.AddCommand(adminCmd)
}

func runAdminDashboard(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		view, err := s.Dashboard(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(view)
		}

		fmt.Fprintf(out, "Revenue: %s\nOrders:  %d\nUsers:   %d\n\n", view.Revenue.StringFixed(2), view.TotalOrders, view.TotalUsers)
		w := newTable()
		printTableHeader(w, "PRODUCT", "NAME", "SOLD")
		for _, p := range view.Sales {
			fmt.Fprintf(w, "%d\t%s\t%d\n", p.ID, truncate(p.Name, 40), p.Sales)
		}
		return w.Flush()
	})
}

func printAdminOrders(orders []models.AdminOrder) error {
	if jsonOut {
		return printJSON(orders)
	}
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "USER", "STATUS", "ITEMS", "TOTAL", "CREATED")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", o.ID, o.UserEmail, o.Status, len(o.Products), o.Amount().StringFixed(2), o.CreatedAt)
	}
	return w.Flush()
}

func runAdminOrders(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		orders, err := s.AdminOrders(ctx)
		if err != nil {
			return err
		}
		return printAdminOrders(orders)
	})
}

func runAdminOrdersCancel(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		status, err := s.CancelOrder(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order #%d: %s\n", id, status)
		return nil
	})
}

func runAdminOrdersReorder(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		order, err := s.Reorder(ctx, id)
		if err != nil {
			return err
		}
		return printAdminOrders([]models.AdminOrder{*order})
	})
}

func runAdminOrdersDelete(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		return s.DeleteOrder(ctx, id)
	})
}

func runAdminUsers(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		users, err := s.AdminUsers(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(users)
		}
		w := newTable()
		printTableHeader(w, "ID", "USERNAME", "NAME", "EMAIL", "BLOCKED")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.FirstName, u.Email, u.Blocked)
		}
		return w.Flush()
	})
}

func runAdminUsersBlock(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		_, err := s.ToggleBlock(ctx, id)
		return err
	})
}

func runAdminUsersEdit(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var patch models.UserPatch
	changed := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	patch.FirstName = changed("firstname")
	patch.Username = changed("username")
	patch.Email = changed("email")
	if patch.FirstName == nil && patch.Username == nil && patch.Email == nil {
		return fmt.Errorf("nothing to change: pass --firstname, --username or --email")
	}

	return withShop(cmd, func(ctx context.Context, s *shop) error {
		u, err := s.EditUser(ctx, id, patch)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(u)
		}
		fmt.Fprintf(out, "User #%d: %s <%s>\n", u.ID, u.Username, u.Email)
		return nil
	})
}

func runAdminUsersOrders(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		orders, err := s.UserOrders(ctx, id)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(orders)
		}
		w := newTable()
		printTableHeader(w, "ID", "STATUS", "PAYMENT", "ITEMS", "TOTAL", "CREATED")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", o.ID, o.Status, o.PaymentMethod, len(o.Items), o.TotalAmount.StringFixed(2), o.CreatedAt)
		}
		return w.Flush()
	})
}

func runAdminProducts(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		ps, err := s.AdminProducts(ctx)
		if err != nil {
			return err
		}
		if page > 0 {
			ps = catalog.Page(ps, page, size)
		}
		return printProducts(ps)
	})
}

// productFormFromFlags only fills fields whose flags were given.
func productFormFromFlags(fs *pflag.FlagSet) (models.ProductForm, error) {
	var form models.ProductForm
	text := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		v = strings.TrimSpace(v)
		return &v
	}
	form.Name = text("name")
	form.Brand = text("brand")
	form.Specs = text("specs")

	if v := text("price"); v != nil {
		d, err := decimal.NewFromString(*v)
		if err != nil {
			return form, fmt.Errorf("invalid price %q", *v)
		}
		form.Price = &d
	}
	if fs.Changed("quantity") {
		q, _ := fs.GetInt("quantity")
		form.Quantity = &q
	}
	if fs.Changed("rating") {
		r, _ := fs.GetFloat64("rating")
		form.Rating = &r
	}
	if fs.Changed("category") {
		v, _ := fs.GetStringSlice("category")
		form.Category = models.StringList(v)
	}
	if fs.Changed("description") {
		v, _ := fs.GetStringArray("description")
		form.Description = models.StringList(v)
	}
	if v := text("image"); v != nil && *v != "" {
		data, err := os.ReadFile(*v)
		if err != nil {
			return form, fmt.Errorf("read image: %w", err)
		}
		form.Image = &models.Upload{Filename: filepath.Base(*v), Data: data}
	}
	return form, nil
}

func runAdminProductsCreate(cmd *cobra.Command, args []string) error {
	form, err := productFormFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		p, err := s.CreateProduct(ctx, form)
		if err != nil {
			return err
		}
		return printProducts([]models.Product{*p})
	})
}

func runAdminProductsUpdate(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	form, err := productFormFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		p, err := s.UpdateProduct(ctx, id, form)
		if err != nil {
			return err
		}
		return printProducts([]models.Product{*p})
	})
}

func runAdminProductsDelete(cmd *cobra.Command, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		return s.DeleteProduct(ctx, id)
	})
}
