package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const maxUploadBytes = 10 << 20

func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")
	f := h.front(c)

	view, err := f.Dashboard(ctx)
	if err != nil {
		return fail(c, f, l, "dashboard_error", err)
	}
	return ok(c, f, view)
}

func (h *Handler) AdminOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")
	f := h.front(c)

	orders, err := f.AdminOrders(ctx)
	if err != nil {
		return fail(c, f, l, "admin_orders_error", err)
	}
	return ok(c, f, orders)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.cancel")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	status, err := f.CancelOrder(ctx, id)
	if err != nil {
		return fail(c, f, l, "cancel_order_error", err)
	}
	return ok(c, f, map[string]any{"id": id, "status": status})
}

func (h *Handler) Reorder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.reorder")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	order, err := f.Reorder(ctx, id)
	if err != nil {
		return fail(c, f, l, "reorder_error", err)
	}
	return respond(c, f, http.StatusCreated, envelope{Data: order})
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.delete")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := f.DeleteOrder(ctx, id); err != nil {
		return fail(c, f, l, "delete_order_error", err)
	}
	return ok(c, f, nil)
}

func (h *Handler) AdminUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users")
	f := h.front(c)

	users, err := f.AdminUsers(ctx)
	if err != nil {
		return fail(c, f, l, "admin_users_error", err)
	}
	return ok(c, f, users)
}

func (h *Handler) ToggleBlock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users.block")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := f.ToggleBlock(ctx, id)
	if err != nil {
		return fail(c, f, l, "toggle_block_error", err)
	}
	return ok(c, f, res)
}

func (h *Handler) EditUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users.edit")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		l.Warn("edit_user_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	u, err := f.EditUser(ctx, id, patch)
	if err != nil {
		return fail(c, f, l, "edit_user_error", err)
	}
	return ok(c, f, u)
}

func (h *Handler) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users.orders")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	orders, err := f.UserOrders(ctx, id)
	if err != nil {
		return fail(c, f, l, "user_orders_error", err)
	}
	return ok(c, f, orders)
}

func (h *Handler) AdminProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")
	f := h.front(c)

	products, err := f.AdminProducts(ctx)
	if err != nil {
		return fail(c, f, l, "admin_products_error", err)
	}
	return ok(c, f, products)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products.create")
	f := h.front(c)

	form, err := productForm(c)
	if err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := f.CreateProduct(ctx, form)
	if err != nil {
		return fail(c, f, l, "create_product_error", err)
	}
	l.Info("product created", "product_id", p.ID)
	return respond(c, f, http.StatusCreated, envelope{Data: p})
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products.update")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	form, err := productForm(c)
	if err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := f.UpdateProduct(ctx, id, form)
	if err != nil {
		return fail(c, f, l, "update_product_error", err)
	}
	return ok(c, f, p)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products.delete")
	f := h.front(c)

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := f.DeleteProduct(ctx, id); err != nil {
		return fail(c, f, l, "delete_product_error", err)
	}
	return ok(c, f, nil)
}

// productForm reads a multipart product form. Fields left out stay nil so a
// PATCH only touches what was sent.
func productForm(c echo.Context) (models.ProductForm, error) {
	var form models.ProductForm
	req := c.Request()
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return form, fmt.Errorf("parse form: %w", err)
	}
	values := req.Form

	text := func(name string) *string {
		if _, ok := values[name]; !ok {
			return nil
		}
		v := strings.TrimSpace(values.Get(name))
		return &v
	}
	form.Name = text("name")
	form.Brand = text("brand")
	form.Specs = text("specs")

	if v := text("price"); v != nil {
		d, err := decimal.NewFromString(*v)
		if err != nil {
			return form, errors.New("invalid price")
		}
		form.Price = &d
	}
	if v := text("quantity"); v != nil {
		q, err := strconv.Atoi(*v)
		if err != nil || q < 0 {
			return form, errors.New("invalid quantity")
		}
		form.Quantity = &q
	}
	if v := text("rating"); v != nil {
		r, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return form, errors.New("invalid rating")
		}
		form.Rating = &r
	}

	var err error
	if v := text("category"); v != nil {
		if form.Category, err = parseList(*v); err != nil {
			return form, errors.New("invalid category")
		}
	}
	if v := text("description"); v != nil {
		if form.Description, err = parseList(*v); err != nil {
			return form, errors.New("invalid description")
		}
	}

	fh, err := c.FormFile("image")
	if err == nil {
		file, err := fh.Open()
		if err != nil {
			return form, fmt.Errorf("open image: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return form, fmt.Errorf("read image: %w", err)
		}
		form.Image = &models.Upload{Filename: fh.Filename, Data: data}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return form, fmt.Errorf("image: %w", err)
	}
	return form, nil
}

// parseList accepts an encoded JSON list or a plain string, the same shapes
// the backend answers with.
func parseList(v string) (models.StringList, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := models.StringList{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return out, nil
}
