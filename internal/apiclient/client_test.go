package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client, session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := session.MemoryStore()
	client := NewClient(WithBaseURL(server.URL)).For(store)
	return server, client, store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_Options(t *testing.T) {
	t.Parallel()

	c := NewClient()
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.NotNil(t, c.Cart)
	assert.NotNil(t, c.Admin)

	hc := &http.Client{}
	c = NewClient(WithBaseURL("http://api.test"), WithHTTPClient(hc), WithTimeout(2*time.Second))
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, 2*time.Second, hc.Timeout)
	assert.Equal(t, "http://api.test", c.mediaURL)
}

func TestBearer_AddedOnlyWithToken(t *testing.T) {
	t.Parallel()

	var seen atomic.Value
	_, client, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []any{})
	})
	ctx := context.Background()

	_, err := client.Cart.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", seen.Load())

	require.NoError(t, store.Set(ctx, session.Session{AccessToken: "T1", RefreshToken: "T2", User: &models.UserSummary{ID: 1}}))
	_, err = client.Cart.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", seen.Load())

	require.NoError(t, store.Clear(ctx))
	_, err = client.Cart.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", seen.Load())
}

func TestLogin(t *testing.T) {
	t.Parallel()

	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/account/login/", r.URL.Path)
		var body LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Username != "alice" || body.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access":  "T1",
			"refresh": "T2",
			"user":    map[string]any{"id": 1, "username": "alice", "is_staff": false},
		})
	})

	res, err := client.Account.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Access)
	assert.Equal(t, "T2", res.Refresh)
	require.NotNil(t, res.User)
	assert.False(t, res.User.IsStaff)

	_, err = client.Account.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, "No active account found with the given credentials", apiErr.Message)
	assert.NotErrorIs(t, err, ErrSessionExpired, "no bearer was sent")
}

func TestUnauthorizedWithBearer_ClearsSession(t *testing.T) {
	t.Parallel()

	_, client, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
	})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, session.Session{AccessToken: "stale", User: &models.UserSummary{ID: 1}}))

	_, err := client.Wishlist.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	s, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{name: "detail", status: 403, body: `{"detail":"You do not have permission to perform this action."}`, kind: KindForbidden, message: "You do not have permission to perform this action."},
		{name: "error", status: 404, body: `{"error":"Product not found"}`, kind: KindNotFound, message: "Product not found"},
		{name: "non field", status: 400, body: `{"non_field_errors":["Passwords do not match"]}`, kind: KindValidation, message: "Passwords do not match"},
		{name: "field errors", status: 400, body: `{"username":["A user with that username already exists."]}`, kind: KindValidation, message: "username: A user with that username already exists."},
		{name: "bare list", status: 400, body: `["Invalid credentials"]`, kind: KindValidation, message: "Invalid credentials"},
		{name: "html", status: 502, body: `<html>bad gateway</html>`, kind: KindServer, message: "Bad Gateway"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.Products.Get(context.Background(), 1)
			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url))
	_, err := client.Products.List(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "network error", Message(err, "fallback"))
}

func TestReason(t *testing.T) {
	t.Parallel()

	keyed := &Error{Kind: KindUnauthorized, StatusCode: 401, Message: "No active account found", Source: "detail"}
	assert.Equal(t, "No active account found", Reason(keyed, "Invalid username or password"))

	bare := &Error{Kind: KindServer, StatusCode: 500, Message: "Internal Server Error"}
	assert.Equal(t, "Invalid username or password", Reason(bare, "Invalid username or password"))

	assert.Equal(t, "fallback", Reason(io.EOF, "fallback"))
}

func TestProducts_NormalizedAtBoundary(t *testing.T) {
	t.Parallel()

	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/", r.URL.Path)
		assert.Equal(t, "lap", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `[
			{"id":1,"name":"A","brand":"Dell","category":"Laptop","description":"thin","price":1000,"image":"/media/products/a.jpg"},
			{"id":2,"name":"B","brand":"","category":["Laptop","Gaming"],"description":["x","y"],"price":"2000.00","image":"https://cdn.test/b.jpg"},
			{"id":3,"name":"C","category":null,"price":5,"image":""}
		]`)
	})

	items, err := client.Products.List(context.Background(), " lap ")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, models.StringList{"Laptop"}, items[0].Category)
	assert.Equal(t, models.StringList{"thin"}, items[0].Description)
	assert.True(t, strings.HasSuffix(items[0].Image, "/media/products/a.jpg"))
	assert.True(t, strings.HasPrefix(items[0].Image, "http://127.0.0.1"))

	assert.Equal(t, models.StringList{"Laptop", "Gaming"}, items[1].Category)
	assert.Equal(t, "https://cdn.test/b.jpg", items[1].Image)
	assert.True(t, items[1].Price.Equal(decimal.NewFromInt(2000)))

	assert.Nil(t, items[2].Category)
	assert.Equal(t, PlaceholderImage, items[2].Image)
}

func TestCartAndWishlistCalls(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		lastPath string
		lastBody map[string]any
	)
	last := func() (string, map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		return lastPath, lastBody
	}
	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		lastPath, lastBody = r.URL.Path, body
		mu.Unlock()
		switch r.URL.Path {
		case "/cart/add/":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Added to cart successfully", "product_id": 5, "quantity": 2})
		case "/wishlist/toggle/":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		}
	})
	ctx := context.Background()

	res, err := client.Cart.Add(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quantity)
	_, body := last()
	assert.Equal(t, map[string]any{"product_id": float64(5), "quantity": float64(1)}, body)

	require.NoError(t, client.Cart.Remove(ctx, 5))
	path, body := last()
	assert.Equal(t, "/cart/remove/", path)
	assert.Equal(t, map[string]any{"product_id": float64(5)}, body)

	tog, err := client.Wishlist.Toggle(ctx, 5)
	require.NoError(t, err)
	assert.False(t, tog.Added)

	require.NoError(t, client.Wishlist.Remove(ctx, 5))
	path, _ = last()
	assert.Equal(t, "/wishlist/remove/", path)
}

func TestAdmin_CreateProductMultipart(t *testing.T) {
	t.Parallel()

	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/admin/", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Phone", r.FormValue("name"))
		assert.Equal(t, "999", r.FormValue("price"))
		assert.Equal(t, `["Mobile","5G"]`, r.FormValue("category"))
		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "p.png", hdr.Filename)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 9, "name": "Phone", "category": []string{"Mobile", "5G"}, "price": 999, "image": "/media/p.png"})
	})

	name := "Phone"
	price := decimal.NewFromInt(999)
	p, err := client.Admin.CreateProduct(context.Background(), models.ProductForm{
		Name:     &name,
		Price:    &price,
		Category: models.StringList{"Mobile", "5G"},
		Image:    &models.Upload{Filename: "p.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, p.ID)
	assert.True(t, strings.HasSuffix(p.Image, "/media/p.png"))
}

func TestAdmin_UpdateProductTruncatesPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price string
		want  string
	}{
		{price: "19.99", want: "19"},
		{price: "20", want: "20"},
		{price: "0.5", want: "0"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.price, func(t *testing.T) {
			t.Parallel()

			_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, "/products/admin/4/", r.URL.Path)
				if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
					return
				}
				assert.Equal(t, tt.want, r.FormValue("price"))
				writeJSON(w, http.StatusOK, map[string]any{"id": 4, "name": "Case", "price": tt.want})
			})

			price := decimal.RequireFromString(tt.price)
			_, err := client.Admin.UpdateProduct(context.Background(), 4, models.ProductForm{Price: &price})
			require.NoError(t, err)
		})
	}
}

func TestAdmin_OrdersAndUsers(t *testing.T) {
	t.Parallel()

	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/orders/":
			_, _ = io.WriteString(w, `[{"id":1,"userEmail":"a@x.io","userId":2,"status":"PAID","products":[{"name":"A","price":"10.00","quantity":2}],"total":"20.00"}]`)
		case r.Method == http.MethodPatch && r.URL.Path == "/admin/orders/1/cancel/":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
		case r.Method == http.MethodDelete && r.URL.Path == "/orders/admin/orders/1/delete/":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPatch && r.URL.Path == "/admin/users/2/block/":
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "blocked": true, "detail": "User is now blocked"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		}
	})
	ctx := context.Background()

	orders, err := client.Admin.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "20", orders[0].Amount().String())

	require.NoError(t, client.Admin.CancelOrder(ctx, 1))
	require.NoError(t, client.Admin.DeleteOrder(ctx, 1))

	res, err := client.Admin.ToggleBlock(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.Blocked)

	_, err = client.Admin.Reorder(ctx, 1)
	assert.True(t, IsNotFound(err))
}
