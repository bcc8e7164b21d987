package apiclient

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

type CartService struct {
	client *Client
}

type productRef struct {
	ProductID int `json:"product_id"`
}

type cartAddRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CartAddResult struct {
	Message   string `json:"message"`
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *CartService) List(ctx context.Context) ([]models.CartItem, error) {
	var out []models.CartItem
	if err := s.client.get(ctx, "cart.list", "cart/", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		s.client.normalizeProduct(&out[i].Product)
	}
	return out, nil
}

// Add changes the quantity of a line by delta; the backend creates the line if needed.
func (s *CartService) Add(ctx context.Context, productID, delta int) (*CartAddResult, error) {
	var out CartAddResult
	if err := s.client.post(ctx, "cart.add", "cart/add/", cartAddRequest{ProductID: productID, Quantity: delta}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CartService) Remove(ctx context.Context, productID int) error {
	return s.client.post(ctx, "cart.remove", "cart/remove/", productRef{ProductID: productID}, nil)
}
