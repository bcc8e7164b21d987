package apiclient

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

type OrdersService struct {
	client *Client
}

type OrderCreated struct {
	Message string `json:"message"`
	OrderID int    `json:"order_id"`
}

// Create places an order. The backend empties the cart on success.
func (s *OrdersService) Create(ctx context.Context, req models.OrderRequest) (*OrderCreated, error) {
	var out OrderCreated
	if err := s.client.post(ctx, "orders.create", "orders/create/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
