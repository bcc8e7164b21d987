package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/guard"
	"github.com/Skotchmaster/storefront/internal/middleware/scope"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storefront"
)

// Handler serves pages and actions for the scope found in the request cookie.
type Handler struct {
	Svc *storefront.Service
}

func (h *Handler) front(c echo.Context) *storefront.Storefront {
	return h.Svc.For(scope.ID(c))
}

// Resolve is the guard's store lookup.
func (h *Handler) Resolve(c echo.Context) (session.Store, error) {
	id := scope.ID(c)
	if id == "" {
		return nil, session.ErrNoScope
	}
	return h.Svc.For(id).Store(), nil
}

// envelope is every JSON body the storefront answers with. Notices queued for
// the scope ride along and are delivered once.
type envelope struct {
	Data     any             `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	Replace  bool            `json:"replace,omitempty"`
	Counts   counts.Snapshot `json:"counts"`
	Notices  []notify.Notice `json:"notices,omitempty"`
}

func respond(c echo.Context, f *storefront.Storefront, status int, body envelope) error {
	body.Counts = f.Counts()
	body.Notices = f.Notices()
	return c.JSON(status, body)
}

func ok(c echo.Context, f *storefront.Storefront, data any) error {
	return respond(c, f, http.StatusOK, envelope{Data: data})
}

func redirect(c echo.Context, f *storefront.Storefront, to string, replace bool) error {
	return respond(c, f, http.StatusOK, envelope{Redirect: to, Replace: replace})
}

// fail maps an error from the storefront onto a status and writes it.
func fail(c echo.Context, f *storefront.Storefront, l *slog.Logger, event string, err error) error {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "error", err)
	}
	return respond(c, f, status, body)
}

func errorBody(err error) (int, envelope) {
	var verr *storefront.ValidationError
	switch {
	case errors.Is(err, counts.ErrInFlight):
		return http.StatusConflict, envelope{Error: "request already in progress"}
	case errors.Is(err, apiclient.ErrSessionExpired):
		return http.StatusUnauthorized, envelope{Error: "session expired", Redirect: guard.LoginPath}
	case errors.Is(err, storefront.ErrLoginRequired):
		return http.StatusUnauthorized, envelope{Error: "login required", Redirect: guard.LoginPath}
	case errors.As(err, &verr):
		return http.StatusBadRequest, envelope{Error: verr.Message}
	}

	if apiErr, ok := apiclient.AsError(err); ok {
		switch apiErr.Kind {
		case apiclient.KindValidation:
			return http.StatusBadRequest, envelope{Error: apiErr.Message}
		case apiclient.KindUnauthorized:
			return http.StatusUnauthorized, envelope{Error: apiErr.Message}
		case apiclient.KindForbidden:
			return http.StatusForbidden, envelope{Error: apiErr.Message}
		case apiclient.KindNotFound:
			return http.StatusNotFound, envelope{Error: apiErr.Message}
		default:
			return http.StatusBadGateway, envelope{Error: "backend unavailable"}
		}
	}
	return http.StatusInternalServerError, envelope{Error: "internal server error"}
}

func paramID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type productRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
	Delta     int `json:"delta"`
}

func bindProduct(c echo.Context) (productRequest, error) {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID <= 0 {
		return req, echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	return req, nil
}
