package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/models"
)

const checkoutKey = "checkout"

// CheckoutRequest pays either for one product (buy now) or, when ProductID is
// zero, for the whole cart.
type CheckoutRequest struct {
	ProductID     int    `json:"product_id,omitempty"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Pincode       string `json:"pincode"`
	PaymentMethod string `json:"payment_method"`
}

type PaymentView struct {
	Navbar Navbar            `json:"navbar"`
	Items  []models.CartItem `json:"items"`
	Total  decimal.Decimal   `json:"total"`
}

// Payment shows what a checkout would charge.
func (f *Storefront) Payment(ctx context.Context, productID int) (*PaymentView, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	items, err := f.checkoutItems(ctx, productID)
	if err != nil {
		f.fail(ctx, err, "Error", "Failed to load your order")
		return nil, err
	}
	return &PaymentView{
		Navbar: f.navbar(ctx, sess, nil),
		Items:  items,
		Total:  catalog.CartTotal(items),
	}, nil
}

func (f *Storefront) checkoutItems(ctx context.Context, productID int) ([]models.CartItem, error) {
	if productID != 0 {
		p, err := f.api.Products.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		return []models.CartItem{{Product: *p, Quantity: 1}}, nil
	}
	items, err := f.api.Cart.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// Checkout places the order and recounts the cart, which the backend empties.
func (f *Storefront) Checkout(ctx context.Context, req CheckoutRequest) (*apiclient.OrderCreated, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if sess.User == nil {
		f.notices.Error("Error", "You must be logged in to complete payment.")
		return nil, ErrLoginRequired
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		f.notices.Error("Error", "Please select a payment method.")
		return nil, validationError("payment method is required")
	}

	items, err := f.checkoutItems(ctx, req.ProductID)
	if err != nil {
		f.fail(ctx, err, "Error", "Something went wrong while processing your order.")
		return nil, err
	}
	if len(items) == 0 {
		f.notices.Error("Error", "Your cart is empty.")
		return nil, validationError("nothing to pay for")
	}

	total := catalog.CartTotal(items)
	order := models.OrderRequest{
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		Name:          req.Name,
		Address:       req.Address,
		Pincode:       req.Pincode,
		Items:         catalog.OrderLines(items),
	}

	var created *apiclient.OrderCreated
	err = f.mutate(ctx, checkoutKey, func(ctx context.Context) error {
		var err error
		created, err = f.api.Orders.Create(ctx, order)
		return err
	}, "Error", "Something went wrong while processing your order.", counts.Cart)
	if err != nil {
		f.log(ctx, "checkout").Warn("order_create_failed", "error", err)
		return nil, err
	}

	f.log(ctx, "checkout").Info("order_created", "order_id", created.OrderID, "total", total.String())
	f.notices.Success("Payment successful!", fmt.Sprintf("Order #%d placed. Total: ₹%s", created.OrderID, total.StringFixed(2)))
	return created, nil
}
