// Package catalog holds the client-side views over a product list: grouping,
// search suggestions and totals.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	OtherBrand      = "Other"
	SuggestionLimit = 5
	FeaturedLimit   = 12
	SimilarLimit    = 4
)

// Group is one heading of a grouped listing. Order follows first appearance.
type Group struct {
	Name     string           `json:"name"`
	Products []models.Product `json:"products"`
}

func GroupByBrand(products []models.Product) []Group {
	return group(products, func(p models.Product) []string {
		b := strings.TrimSpace(p.Brand)
		if b == "" {
			b = OtherBrand
		}
		return []string{b}
	})
}

// GroupByCategory lists a product under each of its categories and skips
// products without one.
func GroupByCategory(products []models.Product) []Group {
	return group(products, func(p models.Product) []string { return p.Category })
}

func group(products []models.Product, keys func(models.Product) []string) []Group {
	var out []Group
	index := map[string]int{}
	for _, p := range products {
		for _, k := range keys(p) {
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, Group{Name: k})
			}
			out[i].Products = append(out[i].Products, p)
		}
	}
	return out
}

// Suggest matches query against name, brand and categories, case-insensitively.
func Suggest(products []models.Product, query string, limit int) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}
	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Category.Join(" ")), q) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Similar returns up to limit products other than id.
func Similar(products []models.Product, id, limit int) []models.Product {
	out := make([]models.Product, 0, limit)
	for _, p := range products {
		if p.ID == id {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out
}

func Featured(products []models.Product, limit int) []models.Product {
	if len(products) <= limit {
		return products
	}
	return products[:limit]
}

func CartTotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// OrderLines converts cart lines into order items at their current prices.
func OrderLines(items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		q := it.Quantity
		if q <= 0 {
			q = 1
		}
		out = append(out, models.OrderItem{Product: it.Product.ID, Quantity: q, Price: it.Product.Price})
	}
	return out
}

// Page returns one page of products. Pages start at 1; a size outside 1..100
// falls back to 10.
func Page(products []models.Product, page, size int) []models.Product {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	if page-1 > len(products)/size {
		return []models.Product{}
	}
	from := (page - 1) * size
	if from >= len(products) {
		return []models.Product{}
	}
	to := from + size
	if to > len(products) {
		to = len(products)
	}
	return products[from:to]
}
