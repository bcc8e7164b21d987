package apiclient

import (
	"context"
	"net/url"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductsService struct {
	client *Client
}

// List returns the catalog, filtered by the backend when search is not blank.
func (s *ProductsService) List(ctx context.Context, search string) ([]models.Product, error) {
	var q url.Values
	if search = strings.TrimSpace(search); search != "" {
		q = url.Values{"search": {search}}
	}
	var out []models.Product
	if err := s.client.get(ctx, "products.list", "products/", q, &out); err != nil {
		return nil, err
	}
	for i := range out {
		s.client.normalizeProduct(&out[i])
	}
	return out, nil
}

func (s *ProductsService) Get(ctx context.Context, id int) (*models.Product, error) {
	var out models.Product
	if err := s.client.get(ctx, "products.get", "products/"+segment(id)+"/", nil, &out); err != nil {
		return nil, err
	}
	s.client.normalizeProduct(&out)
	return &out, nil
}

func (c *Client) normalizeProduct(p *models.Product) {
	p.Image = c.ResolveImage(p.Image)
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
}
