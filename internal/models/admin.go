package models

import "github.com/shopspring/decimal"

type AdminOrderLine struct {
	// ID is the product id; only the dashboard feed sends it.
	ID       int             `json:"id,omitempty"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type AdminOrder struct {
	ID            int              `json:"id"`
	UserEmail     string           `json:"userEmail"`
	UserID        int              `json:"userId"`
	Status        string           `json:"status"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	ListTotal     decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Name          string           `json:"name"`
	Address       string           `json:"address"`
	Pincode       string           `json:"pincode"`
	CreatedAt     string           `json:"created_at,omitempty"`
	Products      []AdminOrderLine `json:"products"`
}

// Amount prefers the totals the backend sent and falls back to summing the lines.
func (o AdminOrder) Amount() decimal.Decimal {
	if !o.TotalAmount.IsZero() {
		return o.TotalAmount
	}
	if !o.ListTotal.IsZero() {
		return o.ListTotal
	}
	sum := decimal.Zero
	for _, p := range o.Products {
		sum = sum.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return sum
}

type AdminUser struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstname"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Blocked   bool   `json:"blocked"`
}

type BlockResult struct {
	ID      int    `json:"id"`
	Blocked bool   `json:"blocked"`
	Detail  string `json:"detail"`
}

type UserPatch struct {
	FirstName *string `json:"firstname,omitempty"`
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
}

type DashboardUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type DashboardProduct struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type DashboardOrder struct {
	ID        int              `json:"id"`
	UserEmail string           `json:"user_email"`
	Products  []AdminOrderLine `json:"products"`
}

type Dashboard struct {
	Users    []DashboardUser    `json:"users"`
	Products []DashboardProduct `json:"products"`
	Orders   []DashboardOrder   `json:"orders"`
}

// ProductForm is the admin create/update payload. Nil fields are left out of a PATCH.
type ProductForm struct {
	Name        *string
	Brand       *string
	Specs       *string
	Category    StringList
	Description StringList
	Price       *decimal.Decimal
	Quantity    *int
	Rating      *float64
	Image       *Upload
}

type Upload struct {
	Filename string
	Data     []byte
}
