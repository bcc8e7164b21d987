package models

import (
	"github.com/shopspring/decimal"
)

// UserSummary is the user object the backend returns next to the tokens on login.
type UserSummary struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DisplayName is what the navbar greets the user with.
func (u *UserSummary) DisplayName() string {
	if u == nil {
		return "Guest"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Guest"
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Specs       string          `json:"specs"`
	Category    StringList      `json:"category"`
	Description StringList      `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

type CartItem struct {
	ID       int     `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is price times quantity, treating a missing quantity as one.
func (i CartItem) LineTotal() decimal.Decimal {
	q := i.Quantity
	if q <= 0 {
		q = 1
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(q)))
}

type WishlistItem struct {
	ID      int     `json:"id"`
	Product Product `json:"product"`
}

const (
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

type OrderItem struct {
	Product  int             `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderRequest struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Pincode       string          `json:"pincode"`
	Items         []OrderItem     `json:"items"`
}

type Order struct {
	ID            int             `json:"id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Pincode       string          `json:"pincode"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at,omitempty"`
	Items         []OrderItem     `json:"items"`
}
