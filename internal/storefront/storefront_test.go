package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
)

// backend is a small in-memory stand-in for the shop API.
type backend struct {
	mu        sync.Mutex
	products  map[int]map[string]any
	cart      map[int]int
	wishlist  map[int]bool
	auth      []string
	failAdd   bool
	failCart  bool
	addGate   chan struct{}
	addSeen   chan struct{}
	lastOrder map[string]any
}

func newBackend() *backend {
	return &backend{
		products: map[int]map[string]any{
			1: {"id": 1, "name": "Pixel 9", "brand": "Google", "category": "Mobile", "price": "100.00", "image": "/media/p1.jpg"},
			2: {"id": 2, "name": "ThinkPad", "brand": "Lenovo", "category": []string{"Laptop"}, "price": 250, "image": ""},
			3: {"id": 3, "name": "Cable", "brand": "", "category": nil, "price": "5", "image": "https://cdn.example.com/c.png"},
		},
		cart:     map[int]int{},
		wishlist: map[int]bool{},
	}
}

func (b *backend) authorizations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func (b *backend) cartLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cart)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer T1" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("POST /account/login/", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch {
		case req.Username == "alice" && req.Password == "secret123":
			writeJSON(w, http.StatusOK, map[string]any{
				"access": "T1", "refresh": "T2",
				"user": map[string]any{"id": 1, "username": "alice", "first_name": "Alice", "is_staff": false},
			})
		case req.Username == "root@example.com" && req.Password == "adminpass":
			writeJSON(w, http.StatusOK, map[string]any{
				"access": "T1", "refresh": "T2",
				"user": map[string]any{"id": 2, "username": "root", "is_staff": true},
			})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		}
	})
	mux.HandleFunc("POST /account/register/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"username": []string{"A user with that username already exists."}})
	})
	mux.HandleFunc("GET /products/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		out := []map[string]any{b.products[1], b.products[2], b.products[3]}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /products/{id}/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		b.mu.Lock()
		p, ok := b.products[id]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	mux.HandleFunc("GET /cart/", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failCart {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
			return
		}
		out := []map[string]any{}
		for id, q := range b.cart {
			out = append(out, map[string]any{"id": id, "product": b.products[id], "quantity": q})
		}
		writeJSON(w, http.StatusOK, out)
	}))
	mux.HandleFunc("POST /cart/add/", authed(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		gate, seen, fail := b.addGate, b.addSeen, b.failAdd
		b.mu.Unlock()
		if seen != nil {
			seen <- struct{}{}
		}
		if gate != nil {
			<-gate
		}
		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
			return
		}
		b.mu.Lock()
		b.cart[req.ProductID] += req.Quantity
		q := b.cart[req.ProductID]
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "Product added to cart", "product_id": req.ProductID, "quantity": q})
	}))
	mux.HandleFunc("POST /cart/remove/", authed(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID int `json:"product_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.cart[req.ProductID]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found in cart"})
			return
		}
		delete(b.cart, req.ProductID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
	}))
	mux.HandleFunc("GET /wishlist/", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []map[string]any{}
		for id := range b.wishlist {
			out = append(out, map[string]any{"id": id, "product": b.products[id]})
		}
		writeJSON(w, http.StatusOK, out)
	}))
	mux.HandleFunc("POST /wishlist/toggle/", authed(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID int `json:"product_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.wishlist[req.ProductID] {
			delete(b.wishlist, req.ProductID)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
			return
		}
		b.wishlist[req.ProductID] = true
		writeJSON(w, http.StatusOK, map[string]string{"message": "Added to wishlist"})
	}))
	mux.HandleFunc("POST /wishlist/remove/", authed(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID int `json:"product_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.wishlist, req.ProductID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
	}))
	mux.HandleFunc("POST /orders/create/", authed(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.lastOrder = req
		b.cart = map[int]int{}
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Order created successfully", "order_id": 7})
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

type fixture struct {
	backend *backend
	front   *Storefront
	store   session.Store
	counts  *counts.Store
}

func newFixture(t *testing.T, opts ...counts.Option) *fixture {
	t.Helper()

	b := newBackend()
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)

	svc := NewService(Deps{
		Client:   apiclient.NewClient(apiclient.WithBaseURL(server.URL)),
		Sessions: session.NewMemoryBackend(),
		Counts:   counts.New(opts...),
		Notices:  notify.NewCenter(),
	})
	f := svc.For("scope-1")
	return &fixture{backend: b, front: f, store: f.Store(), counts: svc.Counts()}
}

func (fx *fixture) login(t *testing.T) {
	t.Helper()
	_, err := fx.front.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	fx.front.Notices()
}

func TestLogin_StoresSessionAndLands(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	landing, err := fx.front.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "/main", landing)

	sess, err := fx.store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", sess.AccessToken)
	assert.Equal(t, "T2", sess.RefreshToken)
	require.NotNil(t, sess.User)
	assert.Equal(t, "alice", sess.User.Username)
	assert.False(t, sess.User.IsStaff)

	_, err = fx.front.Cart(ctx)
	require.NoError(t, err)
	auth := fx.backend.authorizations()
	assert.Equal(t, "Bearer T1", auth[len(auth)-1])
}

func TestLogin_StaffLandsOnAdmin(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	landing, err := fx.front.Login(context.Background(), "root@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, "/admin", landing)
}

func TestLogin_FailureKeepsStoreEmpty(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.front.Login(ctx, "alice", "wrong")
	require.Error(t, err)

	sess, err := fx.store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Empty())

	notices := fx.front.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Error, notices[0].Level)
	assert.Equal(t, "No active account found with the given credentials", notices[0].Text)
}

func TestLogout_DropsAuthorization(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)
	_, err := fx.front.AddToCart(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, fx.counts.Len())

	to, err := fx.front.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/login", to)
	assert.Zero(t, fx.counts.Len(), "scope released on logout")

	sess, err := fx.store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.AccessToken)
	assert.Nil(t, sess.User)
	assert.Equal(t, counts.Snapshot{}, fx.front.Counts())

	_, err = fx.front.Suggest(ctx, "pixel")
	require.NoError(t, err)
	auth := fx.backend.authorizations()
	assert.Empty(t, auth[len(auth)-1])
}

func TestHome_DoesNotWaitOnCountPublisher(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	fx := newFixture(t, counts.WithPublisher(counts.PublisherFunc(func(context.Context, counts.Event) error {
		<-release
		return nil
	})))
	t.Cleanup(func() {
		close(release)
		fx.counts.Close()
	})
	ctx := context.Background()
	fx.login(t)

	// the publisher is now stuck on this mutation's event
	_, err := fx.front.AddToCart(ctx, 1, 1)
	require.NoError(t, err)

	fx.backend.mu.Lock()
	fx.backend.cart[2] = 1
	fx.backend.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := fx.front.Home(ctx)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Home waited on the count publisher")
	}
	assert.Equal(t, 2, fx.front.Counts().Cart)
}

func TestAddToCart_RecountsAfterMutation(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	res, err := fx.front.AddToCart(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Quantity)
	assert.Equal(t, 1, fx.front.Counts().Cart)

	_, err = fx.front.AddToCart(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.front.Counts().Cart)
}

func TestAddToCart_MutationFailure(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	_, err := fx.front.AddToCart(ctx, 1, 1)
	require.NoError(t, err)
	fx.front.Notices()
	before, err := fx.store.Get(ctx)
	require.NoError(t, err)

	fx.backend.mu.Lock()
	fx.backend.failAdd = true
	fx.backend.mu.Unlock()

	_, err = fx.front.AddToCart(ctx, 2, 1)
	require.Error(t, err)
	assert.Equal(t, apiclient.KindServer, apiclient.KindOf(err))

	after, err := fx.store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, fx.front.Counts().Cart)

	notices := fx.front.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, cartFailureText, notices[0].Text)
}

func TestAddToCart_RecountFailureZeroes(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	_, err := fx.front.AddToCart(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, fx.front.Counts().Cart)

	fx.backend.mu.Lock()
	fx.backend.failCart = true
	fx.backend.mu.Unlock()

	_, err = fx.front.AddToCart(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, fx.front.Counts().Cart)
	assert.Equal(t, 2, fx.backend.cartLen())
}

func TestAddToCart_DoubleSubmit(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	gate := make(chan struct{})
	seen := make(chan struct{}, 2)
	fx.backend.mu.Lock()
	fx.backend.addGate, fx.backend.addSeen = gate, seen
	fx.backend.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := fx.front.AddToCart(ctx, 1, 1)
		done <- err
	}()
	<-seen

	_, err := fx.front.AddToCart(ctx, 1, 1)
	assert.ErrorIs(t, err, counts.ErrInFlight)

	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, fx.backend.cartLen(), fx.front.Counts().Cart)
	assert.Equal(t, 1, fx.front.Counts().Cart)
}

func TestAddToCart_RequiresLogin(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	_, err := fx.front.AddToCart(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Empty(t, fx.backend.authorizations())

	notices := fx.front.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Login Required", notices[0].Title)
}

func TestAddToCart_RejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.login(t)

	_, err := fx.front.AddToCart(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, fx.backend.cartLen())
}

func TestChangeQuantity(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	_, err := fx.front.AddToCart(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, fx.front.ChangeQuantity(ctx, 1, -1))
	fx.backend.mu.Lock()
	assert.Equal(t, 1, fx.backend.cart[1])
	fx.backend.mu.Unlock()

	require.NoError(t, fx.front.ChangeQuantity(ctx, 1, 2))
	fx.backend.mu.Lock()
	assert.Equal(t, 3, fx.backend.cart[1])
	fx.backend.mu.Unlock()
}

func TestRemoveFromCart_Missing(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.login(t)

	err := fx.front.RemoveFromCart(context.Background(), 3)
	assert.True(t, apiclient.IsNotFound(err))
	assert.Len(t, fx.front.Notices(), 1)
}

func TestToggleWishlistTwice(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	res, err := fx.front.ToggleWishlist(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Equal(t, 1, fx.front.Counts().Wishlist)

	res, err = fx.front.ToggleWishlist(ctx, 2)
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Equal(t, 0, fx.front.Counts().Wishlist)

	view, err := fx.front.Wishlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestMoveWishlistToCart(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	_, err := fx.front.ToggleWishlist(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, fx.front.MoveWishlistToCart(ctx, 1))

	assert.Equal(t, counts.Snapshot{Cart: 1, Wishlist: 0}, fx.front.Counts())
}

func TestExpiredSessionIsCleared(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.Set(ctx, session.Session{
		AccessToken: "stale", RefreshToken: "T2",
		User: &models.UserSummary{ID: 1, Username: "alice"},
	}))

	_, err := fx.front.AddToCart(ctx, 1, 1)
	assert.ErrorIs(t, err, apiclient.ErrSessionExpired)

	sess, err := fx.store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Empty())

	notices := fx.front.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Session expired", notices[0].Title)
}

func TestHomeAndProducts(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	home, err := fx.front.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.Products, 3)
	assert.Equal(t, "Guest", home.Navbar.Greeting)
	assert.Equal(t, apiclient.PlaceholderImage, home.Products[1].Image)

	view, err := fx.front.Products(ctx, "")
	require.NoError(t, err)
	require.Len(t, view.Brands, 3)
	assert.Equal(t, "Other", view.Brands[2].Name)
	require.Len(t, view.Categories, 2)
	assert.Equal(t, "Mobile", view.Categories[0].Name)

	fx.login(t)
	home, err = fx.front.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", home.Navbar.Greeting)
}

func TestProduct_NotFound(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	view, err := fx.front.Product(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 9", view.Product.Name)
	assert.Len(t, view.Similar, 2)

	_, err = fx.front.Product(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, apiclient.IsNotFound(err))

	notices := fx.front.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Product not found.", notices[0].Text)
}

func TestSuggest_Blank(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	out, err := fx.front.Suggest(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, fx.backend.authorizations())
}

func TestCheckout(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()
	fx.login(t)

	_, err := fx.front.Checkout(ctx, CheckoutRequest{Name: "Alice"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = fx.front.AddToCart(ctx, 1, 2)
	require.NoError(t, err)
	_, err = fx.front.AddToCart(ctx, 2, 1)
	require.NoError(t, err)
	fx.front.Notices()

	created, err := fx.front.Checkout(ctx, CheckoutRequest{Name: "Alice", Address: "1 Road", Pincode: "560001", PaymentMethod: "UPI"})
	require.NoError(t, err)
	assert.Equal(t, 7, created.OrderID)
	assert.Equal(t, 0, fx.front.Counts().Cart)

	fx.backend.mu.Lock()
	order := fx.backend.lastOrder
	fx.backend.mu.Unlock()
	total, err := decimal.NewFromString(order["total_amount"].(string))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(450).Equal(total))
	assert.Len(t, order["items"], 2)
}

func TestCheckout_RequiresUser(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	_, err := fx.front.Checkout(context.Background(), CheckoutRequest{PaymentMethod: "UPI"})
	assert.True(t, errors.Is(err, ErrLoginRequired))
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	valid := RegisterForm{FirstName: "Al", LastName: "B", Username: "alice", Email: "a@b.co", Password: "12345678", ConfirmPassword: "12345678"}

	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		want   string
	}{
		{name: "valid", mutate: func(*RegisterForm) {}},
		{name: "short first name", mutate: func(f *RegisterForm) { f.FirstName = " A " }, want: "First name must be at least 2 characters"},
		{name: "no last name", mutate: func(f *RegisterForm) { f.LastName = "  " }, want: "Last name is required"},
		{name: "short username", mutate: func(f *RegisterForm) { f.Username = "al" }, want: "Username must be at least 3 characters"},
		{name: "bad email", mutate: func(f *RegisterForm) { f.Email = "a@b" }, want: "Invalid email address"},
		{name: "short password", mutate: func(f *RegisterForm) { f.Password, f.ConfirmPassword = "1234567", "1234567" }, want: "Password must be at least 8 characters"},
		{name: "mismatch", mutate: func(f *RegisterForm) { f.ConfirmPassword = "87654321" }, want: "Passwords do not match"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			form := valid
			tt.mutate(&form)
			err := ValidateRegistration(form)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestRegister_BackendRejects(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	_, err := fx.front.Register(context.Background(), RegisterForm{FirstName: "Al", LastName: "B", Username: "alice", Email: "a@b.co", Password: "12345678", ConfirmPassword: "12345678"})
	require.Error(t, err)

	notices := fx.front.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "username: A user with that username already exists.", notices[0].Text)
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	d := models.Dashboard{
		Users:    []models.DashboardUser{{ID: 1}, {ID: 2}},
		Products: []models.DashboardProduct{{ID: 1, Name: "Pixel"}, {ID: 2, Name: "Cable"}},
		Orders: []models.DashboardOrder{
			{ID: 1, Products: []models.AdminOrderLine{{ID: 1, Price: decimal.NewFromInt(100), Quantity: 2}}},
			{ID: 2, Products: []models.AdminOrderLine{{ID: 1, Price: decimal.NewFromInt(100), Quantity: 1}, {ID: 2, Price: decimal.NewFromInt(5)}}},
		},
	}

	view := buildDashboard(d)
	assert.Equal(t, "305", view.Revenue.String())
	assert.Equal(t, 2, view.TotalOrders)
	assert.Equal(t, 2, view.TotalUsers)
	assert.Equal(t, []ProductSales{{ID: 1, Name: "Pixel", Sales: 3}, {ID: 2, Name: "Cable", Sales: 1}}, view.Sales, "a line without quantity counts once in revenue and sales")
}
