package storefront

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	loginForCartText     = "Please login to add items to your cart."
	loginForWishlistText = "Please login to add items to your wishlist."
	loadProductsText     = "Failed to load products"
	cartFailureText      = "Something went wrong. Please try again later."
	wishlistFailureText  = "Failed to update wishlist"
)

type HomeView struct {
	Navbar     Navbar           `json:"navbar"`
	Products   []models.Product `json:"products"`
	Wishlisted []int            `json:"wishlisted"`
}

// Home is the main page: the first products of the catalog.
func (f *Storefront) Home(ctx context.Context) (*HomeView, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	products, err := f.api.Products.List(ctx, "")
	if err != nil {
		f.log(ctx, "home").Warn("products_load_failed", "error", err)
		f.fail(ctx, err, "Error", loadProductsText)
		return nil, err
	}

	view := &HomeView{Products: catalog.Featured(products, catalog.FeaturedLimit)}
	known := map[counts.Collection]int{}
	if sess.AccessToken != "" {
		if items, err := f.api.Wishlist.List(ctx); err == nil {
			for _, it := range items {
				view.Wishlisted = append(view.Wishlisted, it.Product.ID)
			}
			known[counts.Wishlist] = len(items)
		}
	}
	view.Navbar = f.navbar(ctx, sess, known)
	return view, nil
}

type ProductsView struct {
	Navbar     Navbar           `json:"navbar"`
	Search     string           `json:"search,omitempty"`
	Products   []models.Product `json:"products"`
	Brands     []catalog.Group  `json:"brands"`
	Categories []catalog.Group  `json:"categories"`
}

func (f *Storefront) Products(ctx context.Context, search string) (*ProductsView, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	products, err := f.api.Products.List(ctx, search)
	if err != nil {
		f.log(ctx, "products").Warn("products_load_failed", "error", err)
		f.fail(ctx, err, "Error", loadProductsText)
		return nil, err
	}

	return &ProductsView{
		Navbar:     f.navbar(ctx, sess, nil),
		Search:     strings.TrimSpace(search),
		Products:   products,
		Brands:     catalog.GroupByBrand(products),
		Categories: catalog.GroupByCategory(products),
	}, nil
}

type ProductView struct {
	Navbar  Navbar           `json:"navbar"`
	Product models.Product   `json:"product"`
	Similar []models.Product `json:"similar"`
}

// Product loads one product page. Any failure reads as a missing product and
// the caller sends the user back to the listing.
func (f *Storefront) Product(ctx context.Context, id int) (*ProductView, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	l := f.log(ctx, "product").With("product_id", id)

	p, err := f.api.Products.Get(ctx, id)
	if err != nil {
		l.Info("product_load_failed", "error", err)
		f.fail(ctx, err, "Error", "Product not found.")
		if errors.Is(err, apiclient.ErrSessionExpired) {
			return nil, fmt.Errorf("product %d: %w", id, err)
		}
		return nil, fmt.Errorf("product %d: %w: %w", id, ErrNotFound, err)
	}

	view := &ProductView{Product: *p, Similar: []models.Product{}}
	if all, err := f.api.Products.List(ctx, ""); err == nil {
		view.Similar = catalog.Similar(all, id, catalog.SimilarLimit)
	} else {
		l.Warn("similar_load_failed", "error", err)
	}
	view.Navbar = f.navbar(ctx, sess, nil)
	return view, nil
}

// Suggest backs the navbar search box. A blank query never reaches the backend.
func (f *Storefront) Suggest(ctx context.Context, query string) ([]models.Product, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Product{}, nil
	}
	products, err := f.api.Products.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := catalog.Suggest(products, query, catalog.SuggestionLimit)
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

type CartView struct {
	Navbar Navbar            `json:"navbar"`
	Items  []models.CartItem `json:"items"`
	Total  decimal.Decimal   `json:"total"`
}

func (f *Storefront) Cart(ctx context.Context) (*CartView, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	items, err := f.api.Cart.List(ctx)
	if err != nil {
		f.log(ctx, "cart").Warn("cart_load_failed", "error", err)
		f.fail(ctx, err, "Error", "Failed to load cart")
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}

	return &CartView{
		Navbar: f.navbar(ctx, sess, map[counts.Collection]int{counts.Cart: len(items)}),
		Items:  items,
		Total:  catalog.CartTotal(items),
	}, nil
}

func cartKey(productID int) string { return "cart:" + strconv.Itoa(productID) }

func wishlistKey(productID int) string { return "wishlist:" + strconv.Itoa(productID) }

// AddToCart adds quantity units of a product and then recounts the cart.
func (f *Storefront) AddToCart(ctx context.Context, productID, quantity int) (*apiclient.CartAddResult, error) {
	if _, err := f.requireToken(ctx, loginForCartText); err != nil {
		return nil, err
	}
	if quantity < 1 {
		f.notices.Error("Error", "Quantity must be a positive integer")
		return nil, validationError("quantity must be a positive integer")
	}

	var res *apiclient.CartAddResult
	err := f.mutate(ctx, cartKey(productID), func(ctx context.Context) error {
		var err error
		res, err = f.api.Cart.Add(ctx, productID, quantity)
		return err
	}, "Error", cartFailureText, counts.Cart)
	if err != nil {
		return nil, err
	}

	f.notices.Success("Added to Cart!", res.Message)
	return res, nil
}

// ChangeQuantity moves a cart line by delta. Going below one is ignored; removing
// a line is RemoveFromCart's job.
func (f *Storefront) ChangeQuantity(ctx context.Context, productID, delta int) error {
	if _, err := f.requireToken(ctx, loginForCartText); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	if delta < 0 {
		items, err := f.api.Cart.List(ctx)
		if err != nil {
			f.fail(ctx, err, "Error", "Failed to update quantity")
			return err
		}
		var current int
		for _, it := range items {
			if it.Product.ID == productID {
				current = it.Quantity
			}
		}
		if current+delta < 1 {
			return nil
		}
	}

	return f.mutate(ctx, cartKey(productID), func(ctx context.Context) error {
		_, err := f.api.Cart.Add(ctx, productID, delta)
		return err
	}, "Error", "Failed to update quantity", counts.Cart)
}

func (f *Storefront) RemoveFromCart(ctx context.Context, productID int) error {
	if _, err := f.requireToken(ctx, loginForCartText); err != nil {
		return err
	}
	err := f.mutate(ctx, cartKey(productID), func(ctx context.Context) error {
		return f.api.Cart.Remove(ctx, productID)
	}, "Error", "Failed to remove item", counts.Cart)
	if err != nil {
		return err
	}
	f.notices.Success("Removed!", "Item removed from cart.")
	return nil
}

type WishlistView struct {
	Navbar Navbar                `json:"navbar"`
	Items  []models.WishlistItem `json:"items"`
}

func (f *Storefront) Wishlist(ctx context.Context) (*WishlistView, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	items, err := f.api.Wishlist.List(ctx)
	if err != nil {
		f.log(ctx, "wishlist").Warn("wishlist_load_failed", "error", err)
		f.fail(ctx, err, "Error", "Failed to load wishlist")
		return nil, err
	}
	if items == nil {
		items = []models.WishlistItem{}
	}

	return &WishlistView{
		Navbar: f.navbar(ctx, sess, map[counts.Collection]int{counts.Wishlist: len(items)}),
		Items:  items,
	}, nil
}

// ToggleWishlist flips membership of a product; toggling twice restores the start.
func (f *Storefront) ToggleWishlist(ctx context.Context, productID int) (*apiclient.ToggleResult, error) {
	if _, err := f.requireToken(ctx, loginForWishlistText); err != nil {
		return nil, err
	}

	var res *apiclient.ToggleResult
	err := f.mutate(ctx, wishlistKey(productID), func(ctx context.Context) error {
		var err error
		res, err = f.api.Wishlist.Toggle(ctx, productID)
		return err
	}, "Error!", wishlistFailureText, counts.Wishlist)
	if err != nil {
		return nil, err
	}

	f.notices.Success("Wishlist Updated!", res.Message)
	return res, nil
}

func (f *Storefront) RemoveFromWishlist(ctx context.Context, productID int) error {
	if _, err := f.requireToken(ctx, loginForWishlistText); err != nil {
		return err
	}
	err := f.mutate(ctx, wishlistKey(productID), func(ctx context.Context) error {
		return f.api.Wishlist.Remove(ctx, productID)
	}, "Error", "Failed to remove item", counts.Wishlist)
	if err != nil {
		return err
	}
	f.notices.Success("Removed!", "Item removed from wishlist.")
	return nil
}

// MoveWishlistToCart adds one unit to the cart, drops the wishlist entry and
// recounts both collections.
func (f *Storefront) MoveWishlistToCart(ctx context.Context, productID int) error {
	if _, err := f.requireToken(ctx, loginForCartText); err != nil {
		return err
	}
	err := f.mutate(ctx, wishlistKey(productID), func(ctx context.Context) error {
		if _, err := f.api.Cart.Add(ctx, productID, 1); err != nil {
			return err
		}
		return f.api.Wishlist.Remove(ctx, productID)
	}, "Error", "Failed to add item to cart", counts.Cart, counts.Wishlist)
	if err != nil {
		return err
	}
	f.notices.Success("Moved to Cart", "Item moved from wishlist to cart.")
	return nil
}
