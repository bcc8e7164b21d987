package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/models"
)

// AdminService wraps the staff-only endpoints. The backend rejects non-staff tokens with 403.
type AdminService struct {
	client *Client
}

func (s *AdminService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	if err := s.client.get(ctx, "admin.dashboard", "admin/dashboard/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) Orders(ctx context.Context) ([]models.AdminOrder, error) {
	var out []models.AdminOrder
	if err := s.client.get(ctx, "admin.orders", "admin/orders/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdminService) CancelOrder(ctx context.Context, id int) error {
	return s.client.patch(ctx, "admin.orders.cancel", "admin/orders/"+segment(id)+"/cancel/", nil, nil)
}

// Reorder copies an order into a new PAID one and returns the copy.
func (s *AdminService) Reorder(ctx context.Context, id int) (*models.AdminOrder, error) {
	var out models.AdminOrder
	if err := s.client.post(ctx, "admin.orders.reorder", "orders/admin/orders/"+segment(id)+"/reorder/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) DeleteOrder(ctx context.Context, id int) error {
	return s.client.delete(ctx, "admin.orders.delete", "orders/admin/orders/"+segment(id)+"/delete/")
}

func (s *AdminService) Users(ctx context.Context) ([]models.AdminUser, error) {
	var out []models.AdminUser
	if err := s.client.get(ctx, "admin.users", "admin/users/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdminService) ToggleBlock(ctx context.Context, id int) (*models.BlockResult, error) {
	var out models.BlockResult
	if err := s.client.patch(ctx, "admin.users.block", "admin/users/"+segment(id)+"/block/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) EditUser(ctx context.Context, id int, patch models.UserPatch) (*models.AdminUser, error) {
	var out models.AdminUser
	if err := s.client.patch(ctx, "admin.users.edit", "admin/users/"+segment(id)+"/edit/", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) UserOrders(ctx context.Context, id int) ([]models.Order, error) {
	var out []models.Order
	if err := s.client.get(ctx, "admin.users.orders", "admin/users/"+segment(id)+"/orders/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdminService) CreateProduct(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	return s.sendProduct(ctx, "admin.products.create", http.MethodPost, "products/admin/", form)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int, form models.ProductForm) (*models.Product, error) {
	return s.sendProduct(ctx, "admin.products.update", http.MethodPatch, "products/admin/"+segment(id)+"/", form)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int) error {
	return s.client.delete(ctx, "admin.products.delete", "products/admin/"+segment(id)+"/")
}

func (s *AdminService) sendProduct(ctx context.Context, op, method, path string, form models.ProductForm) (*models.Product, error) {
	body, contentType, err := encodeProductForm(form)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	var out models.Product
	if err := s.client.send(ctx, op, method, path, nil, contentType, body, &out); err != nil {
		return nil, err
	}
	s.client.normalizeProduct(&out)
	return &out, nil
}

// encodeProductForm builds the multipart body. category and description go in
// as JSON text, the way the backend's serializer expects them. The backend
// stores whole prices, so the fraction is cut off, never rounded.
func encodeProductForm(form models.ProductForm) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]*string{
		"name":  form.Name,
		"brand": form.Brand,
		"specs": form.Specs,
	}
	for _, k := range []string{"name", "brand", "specs"} {
		if v := fields[k]; v != nil {
			if err := w.WriteField(k, *v); err != nil {
				return nil, "", err
			}
		}
	}
	if form.Price != nil {
		if err := w.WriteField("price", form.Price.Truncate(0).String()); err != nil {
			return nil, "", err
		}
	}
	if form.Quantity != nil {
		if err := w.WriteField("quantity", strconv.Itoa(*form.Quantity)); err != nil {
			return nil, "", err
		}
	}
	if form.Rating != nil {
		if err := w.WriteField("rating", strconv.FormatFloat(*form.Rating, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	for name, list := range map[string]models.StringList{"category": form.Category, "description": form.Description} {
		if list == nil {
			continue
		}
		raw, err := json.Marshal([]string(list))
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField(name, string(raw)); err != nil {
			return nil, "", err
		}
	}
	if form.Image != nil {
		part, err := w.CreateFormFile("image", form.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(form.Image.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
