package storefront

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductSales struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Sales int    `json:"sales"`
}

type DashboardView struct {
	models.Dashboard
	Revenue     decimal.Decimal `json:"revenue"`
	TotalOrders int             `json:"total_orders"`
	TotalUsers  int             `json:"total_users"`
	Sales       []ProductSales  `json:"sales"`
}

func (f *Storefront) Dashboard(ctx context.Context) (*DashboardView, error) {
	d, err := f.api.Admin.Dashboard(ctx)
	if err != nil {
		f.log(ctx, "admin_dashboard").Warn("dashboard_load_failed", "error", err)
		f.fail(ctx, err, "Error", "Failed to load dashboard.")
		return nil, err
	}
	return buildDashboard(*d), nil
}

func buildDashboard(d models.Dashboard) *DashboardView {
	view := &DashboardView{
		Dashboard:   d,
		Revenue:     decimal.Zero,
		TotalOrders: len(d.Orders),
		TotalUsers:  len(d.Users),
		Sales:       make([]ProductSales, 0, len(d.Products)),
	}
	sold := map[int]int{}
	for _, o := range d.Orders {
		for _, line := range o.Products {
			q := line.Quantity
			if q <= 0 {
				q = 1
			}
			view.Revenue = view.Revenue.Add(line.Price.Mul(decimal.NewFromInt(int64(q))))
			sold[line.ID] += q
		}
	}
	for _, p := range d.Products {
		view.Sales = append(view.Sales, ProductSales{ID: p.ID, Name: p.Name, Sales: sold[p.ID]})
	}
	return view
}

func (f *Storefront) AdminOrders(ctx context.Context) ([]models.AdminOrder, error) {
	orders, err := f.api.Admin.Orders(ctx)
	if err != nil {
		f.log(ctx, "admin_orders").Warn("orders_load_failed", "error", err)
		f.fail(ctx, err, "Error", "Failed to load orders.")
		return nil, err
	}
	return orders, nil
}

// CancelOrder returns the status the order now has. It is only reported after
// the backend accepted the cancel.
func (f *Storefront) CancelOrder(ctx context.Context, id int) (string, error) {
	if err := f.api.Admin.CancelOrder(ctx, id); err != nil {
		f.log(ctx, "admin_cancel_order").Warn("order_cancel_failed", "order_id", id, "error", err)
		f.fail(ctx, err, "Error!", "Something went wrong while cancelling.")
		return "", err
	}
	f.notices.Success("Cancelled!", "Order has been cancelled.")
	return models.OrderStatusCancelled, nil
}

func (f *Storefront) Reorder(ctx context.Context, id int) (*models.AdminOrder, error) {
	order, err := f.api.Admin.Reorder(ctx, id)
	if err != nil {
		f.log(ctx, "admin_reorder").Warn("reorder_failed", "order_id", id, "error", err)
		f.fail(ctx, err, "Error!", "Something went wrong while reordering.")
		return nil, err
	}
	f.notices.Success("Reordered!", "A new order has been created.")
	return order, nil
}

func (f *Storefront) DeleteOrder(ctx context.Context, id int) error {
	if err := f.api.Admin.DeleteOrder(ctx, id); err != nil {
		f.log(ctx, "admin_delete_order").Warn("order_delete_failed", "order_id", id, "error", err)
		f.fail(ctx, err, "Error!", "Failed to delete order.")
		return err
	}
	f.notices.Success("Deleted!", "Order has been deleted.")
	return nil
}

func (f *Storefront) AdminUsers(ctx context.Context) ([]models.AdminUser, error) {
	users, err := f.api.Admin.Users(ctx)
	if err != nil {
		f.fail(ctx, err, "Error", "Failed to fetch users.")
		return nil, err
	}
	return users, nil
}

func (f *Storefront) ToggleBlock(ctx context.Context, id int) (*models.BlockResult, error) {
	res, err := f.api.Admin.ToggleBlock(ctx, id)
	if err != nil {
		f.fail(ctx, err, "Error", apiclient.Message(err, "Failed to update user."))
		return nil, err
	}
	f.notices.Success("Success", res.Detail)
	return res, nil
}

func (f *Storefront) EditUser(ctx context.Context, id int, patch models.UserPatch) (*models.AdminUser, error) {
	u, err := f.api.Admin.EditUser(ctx, id, patch)
	if err != nil {
		f.fail(ctx, err, "Error", "Failed to update user")
		return nil, err
	}
	f.notices.Success("Success", "User updated successfully")
	return u, nil
}

func (f *Storefront) UserOrders(ctx context.Context, id int) ([]models.Order, error) {
	orders, err := f.api.Admin.UserOrders(ctx, id)
	if err != nil {
		f.fail(ctx, err, "Error", "Failed to load user orders")
		return nil, err
	}
	if len(orders) == 0 {
		f.notices.Info("No Orders", "This user has no orders.")
		return []models.Order{}, nil
	}
	return orders, nil
}

func (f *Storefront) AdminProducts(ctx context.Context) ([]models.Product, error) {
	products, err := f.api.Products.List(ctx, "")
	if err != nil {
		f.fail(ctx, err, "Error", "Failed to load products.")
		return nil, err
	}
	return products, nil
}

// CreateProduct requires a name and an image; everything else is optional.
func (f *Storefront) CreateProduct(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	if form.Name == nil || strings.TrimSpace(*form.Name) == "" || form.Image == nil || len(form.Image.Data) == 0 {
		f.notices.Error("Error", "Name and Image are required.")
		return nil, validationError("name and image are required")
	}
	p, err := f.api.Admin.CreateProduct(ctx, form)
	if err != nil {
		f.log(ctx, "admin_create_product").Warn("product_create_failed", "error", err)
		f.fail(ctx, err, "Error", apiclient.Message(err, "Failed to create product."))
		return nil, err
	}
	f.notices.Success("Added!", "Product created successfully.")
	return p, nil
}

func (f *Storefront) UpdateProduct(ctx context.Context, id int, form models.ProductForm) (*models.Product, error) {
	p, err := f.api.Admin.UpdateProduct(ctx, id, form)
	if err != nil {
		f.log(ctx, "admin_update_product").Warn("product_update_failed", "product_id", id, "error", err)
		f.fail(ctx, err, "Error", "Update failed.")
		return nil, err
	}
	f.notices.Success("Updated!", "Product updated.")
	return p, nil
}

func (f *Storefront) DeleteProduct(ctx context.Context, id int) error {
	if err := f.api.Admin.DeleteProduct(ctx, id); err != nil {
		f.fail(ctx, err, "Error", "Failed to delete product.")
		return err
	}
	f.notices.Success("Deleted!", "Product removed successfully.")
	return nil
}
