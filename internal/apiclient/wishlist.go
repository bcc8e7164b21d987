package apiclient

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

type WishlistService struct {
	client *Client
}

type ToggleResult struct {
	Message string `json:"message"`
	// Added is false when the toggle removed the product.
	Added bool `json:"-"`
}

func (s *WishlistService) List(ctx context.Context) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	if err := s.client.get(ctx, "wishlist.list", "wishlist/", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		s.client.normalizeProduct(&out[i].Product)
	}
	return out, nil
}

func (s *WishlistService) Toggle(ctx context.Context, productID int) (*ToggleResult, error) {
	var out ToggleResult
	if err := s.client.post(ctx, "wishlist.toggle", "wishlist/toggle/", productRef{ProductID: productID}, &out); err != nil {
		return nil, err
	}
	out.Added = !strings.Contains(strings.ToLower(out.Message), "removed")
	return &out, nil
}

func (s *WishlistService) Remove(ctx context.Context, productID int) error {
	return s.client.post(ctx, "wishlist.remove", "wishlist/remove/", productRef{ProductID: productID}, nil)
}
