package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/guard"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/storefront"
)

const productsPath = "/products"

// Fallback sends "/" and unknown page paths to the main page.
func (h *Handler) Fallback(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet, http.MethodHead:
		return guard.Respond(c, guard.Fallback())
	}
	return echo.NewHTTPError(http.StatusNotFound, "not found")
}

func (h *Handler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.main")
	f := h.front(c)

	view, err := f.Home(ctx)
	if err != nil {
		return fail(c, f, l, "home_page_error", err)
	}
	return ok(c, f, view)
}

func (h *Handler) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.products")
	f := h.front(c)

	view, err := f.Products(ctx, c.QueryParam("search"))
	if err != nil {
		return fail(c, f, l, "products_page_error", err)
	}
	return ok(c, f, view)
}

func (h *Handler) Product(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.product")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := f.Product(ctx, id)
	if errors.Is(err, storefront.ErrNotFound) && !errors.Is(err, apiclient.ErrSessionExpired) {
		l.Info("product_page_redirect", "product_id", id, "error", err)
		return guard.Respond(c, guard.Decision{Redirect: productsPath})
	}
	if err != nil {
		return fail(c, f, l, "product_page_error", err)
	}
	return ok(c, f, view)
}

func (h *Handler) Cart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.cart")
	f := h.front(c)

	view, err := f.Cart(ctx)
	if err != nil {
		return fail(c, f, l, "cart_page_error", err)
	}
	return ok(c, f, view)
}

func (h *Handler) Wishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.wishlist")
	f := h.front(c)

	view, err := f.Wishlist(ctx)
	if err != nil {
		return fail(c, f, l, "wishlist_page_error", err)
	}
	return ok(c, f, view)
}

// Payment shows the checkout summary; ?product_id= pays for a single product.
func (h *Handler) Payment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.payment")
	f := h.front(c)

	var productID int
	if v := c.QueryParam("product_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		productID = id
	}

	view, err := f.Payment(ctx, productID)
	if err != nil {
		return fail(c, f, l, "payment_page_error", err)
	}
	return ok(c, f, view)
}

// Form pages only need the navbar state.
func (h *Handler) FormPage(c echo.Context) error {
	ctx := c.Request().Context()
	f := h.front(c)

	sess, err := f.Session(ctx)
	if err != nil {
		return fail(c, f, logging.FromContext(ctx).With("handler", "page.form"), "session_read_error", err)
	}
	return ok(c, f, map[string]any{"user": sess.User})
}

func (h *Handler) Activate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.activate")
	f := h.front(c)

	to, err := f.Activate(ctx, c.Param("uid"), c.Param("token"))
	if err != nil {
		return fail(c, f, l, "activate_error", err)
	}
	return redirect(c, f, to, false)
}
