package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_Unmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{name: "single string", in: `"Laptop"`, want: StringList{"Laptop"}},
		{name: "list", in: `["Laptop","Gaming"]`, want: StringList{"Laptop", "Gaming"}},
		{name: "blank entries dropped", in: `["Laptop"," ",""]`, want: StringList{"Laptop"}},
		{name: "empty string", in: `""`, want: nil},
		{name: "null", in: `null`, want: nil},
		{name: "encoded list in string", in: `"[\"A\",\"B\"]"`, want: StringList{"A", "B"}},
		{name: "numbers", in: `[1, 2.5]`, want: StringList{"1", "2.5"}},
		{name: "object values by key", in: `{"b":"second","a":"first"}`, want: StringList{"first", "second"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringList_MarshalAlwaysList(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		C StringList `json:"c"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":[]}`, string(b))
}

func TestProduct_DecodeMixedShapes(t *testing.T) {
	t.Parallel()

	raw := `{"id":7,"name":"ThinkPad","brand":"Lenovo","category":"Laptop",
		"description":["14 inch","16GB"],"price":"54999.00","rating":4.3,"quantity":3,
		"image":"/media/products/t.jpg"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, StringList{"Laptop"}, p.Category)
	assert.Equal(t, StringList{"14 inch", "16GB"}, p.Description)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(54999)))
	assert.True(t, p.Category.Contains("laptop"))
}

func TestCartItem_LineTotal(t *testing.T) {
	t.Parallel()

	item := CartItem{Product: Product{Price: decimal.NewFromInt(100)}, Quantity: 3}
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(300)))

	item.Quantity = 0
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(100)))
}

func TestAdminOrder_Total(t *testing.T) {
	t.Parallel()

	o := AdminOrder{Products: []AdminOrderLine{
		{Name: "a", Quantity: 2, Price: decimal.NewFromInt(10)},
		{Name: "b", Quantity: 1, Price: decimal.RequireFromString("5.50")},
	}}
	assert.Equal(t, "25.5", o.Amount().String())

	o.ListTotal = decimal.NewFromInt(30)
	assert.Equal(t, "30", o.Amount().String())

	o.TotalAmount = decimal.NewFromInt(40)
	assert.Equal(t, "40", o.Amount().String())
}

func TestUserSummary_DisplayName(t *testing.T) {
	t.Parallel()

	var nilUser *UserSummary
	assert.Equal(t, "Guest", nilUser.DisplayName())
	assert.Equal(t, "Alice", (&UserSummary{FirstName: "Alice", Username: "alice"}).DisplayName())
	assert.Equal(t, "alice", (&UserSummary{Username: "alice"}).DisplayName())
}
