package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storefront"
)

type loginRequest struct {
	// Username also accepts an email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.login")
	f := h.front(c)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	to, err := f.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, f, l, "login_error", err)
	}
	l.Info("user logged in")
	return redirect(c, f, to, false)
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.logout")
	f := h.front(c)

	to, err := f.Logout(ctx)
	if err != nil {
		return fail(c, f, l, "logout_error", err)
	}
	return redirect(c, f, to, false)
}

func (h *Handler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.register")
	f := h.front(c)

	var form storefront.RegisterForm
	if err := c.Bind(&form); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	to, err := f.Register(ctx, form)
	if err != nil {
		return fail(c, f, l, "register_error", err)
	}
	return redirect(c, f, to, false)
}

type sessionView struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.UserSummary `json:"user"`
	UserID        string              `json:"user_id,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	Expired       bool                `json:"expired,omitempty"`
}

// Session reports what the scope's store holds. Token claims are decoded for
// display only; the backend still decides.
func (h *Handler) Session(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.session")
	f := h.front(c)

	sess, err := f.Session(ctx)
	if err != nil {
		return fail(c, f, l, "session_read_error", err)
	}

	view := sessionView{Authenticated: sess.Authenticated(), User: sess.User}
	if sess.AccessToken != "" {
		if info, err := session.Inspect(sess.AccessToken); err == nil {
			view.UserID = info.UserID
			if !info.ExpiresAt.IsZero() {
				exp := info.ExpiresAt
				view.ExpiresAt = &exp
				view.Expired = info.Expired(time.Now())
			}
		} else {
			l.Debug("token_inspect_failed", "error", err)
		}
	}
	return ok(c, f, view)
}

// Notices drains whatever is still queued for the scope.
func (h *Handler) Notices(c echo.Context) error {
	return ok(c, h.front(c), nil)
}

func (h *Handler) Suggest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.suggest")
	f := h.front(c)

	out, err := f.Suggest(ctx, c.QueryParam("q"))
	if err != nil {
		return fail(c, f, l, "suggest_error", err)
	}
	return ok(c, f, out)
}

func (h *Handler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.cart.add")
	f := h.front(c)

	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := f.AddToCart(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, f, l, "add_to_cart_error", err)
	}
	return ok(c, f, res)
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.cart.remove")
	f := h.front(c)

	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	if err := f.RemoveFromCart(ctx, req.ProductID); err != nil {
		return fail(c, f, l, "remove_from_cart_error", err)
	}
	return ok(c, f, nil)
}

func (h *Handler) ChangeQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.cart.quantity")
	f := h.front(c)

	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	if err := f.ChangeQuantity(ctx, req.ProductID, req.Delta); err != nil {
		return fail(c, f, l, "change_quantity_error", err)
	}
	return ok(c, f, nil)
}

func (h *Handler) ToggleWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.wishlist.toggle")
	f := h.front(c)

	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	res, err := f.ToggleWishlist(ctx, req.ProductID)
	if err != nil {
		return fail(c, f, l, "toggle_wishlist_error", err)
	}
	return ok(c, f, map[string]any{"message": res.Message, "added": res.Added})
}

func (h *Handler) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.wishlist.remove")
	f := h.front(c)

	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	if err := f.RemoveFromWishlist(ctx, req.ProductID); err != nil {
		return fail(c, f, l, "remove_from_wishlist_error", err)
	}
	return ok(c, f, nil)
}

func (h *Handler) MoveToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.wishlist.move")
	f := h.front(c)

	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	if err := f.MoveWishlistToCart(ctx, req.ProductID); err != nil {
		return fail(c, f, l, "move_to_cart_error", err)
	}
	return ok(c, f, nil)
}

func (h *Handler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.orders.create")
	f := h.front(c)

	var req storefront.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := f.Checkout(ctx, req)
	if err != nil {
		return fail(c, f, l, "checkout_error", err)
	}
	l.Info("order placed", "order_id", created.OrderID)
	return respond(c, f, http.StatusCreated, envelope{Data: created, Redirect: "/main"})
}
