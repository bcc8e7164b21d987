package guard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
)

const HeaderReplace = "X-Redirect-Replace"

// StoreResolver finds the session store of the request's scope.
type StoreResolver func(c echo.Context) (session.Store, error)

type Config struct {
	Resolve    StoreResolver
	OnRedirect func(d Destination)
}

// Require runs the guard before the handler. Page loads are redirected with 302,
// other methods get 401 and the redirect target in the body. The handler never runs
// on a redirect.
func Require(cfg Config, access Access) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("guard", access.String())

			store, err := cfg.Resolve(c)
			if err != nil {
				l.Error("guard_resolve_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
			}
			sess, err := store.Get(ctx)
			if err != nil {
				l.Error("guard_session_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
			}

			dest := Destination{Path: c.Request().URL.Path, Access: access}
			dec := Evaluate(sess, dest)
			if dec.Allow {
				return next(c)
			}

			if cfg.OnRedirect != nil {
				cfg.OnRedirect(dest)
			}
			l.Info("guard_redirect", "to", dec.Redirect, "replace", dec.Replace)
			return Respond(c, dec)
		}
	}
}

// Respond writes a redirect decision.
func Respond(c echo.Context, dec Decision) error {
	if dec.Replace {
		c.Response().Header().Set(HeaderReplace, "true")
	}
	switch c.Request().Method {
	case http.MethodGet, http.MethodHead:
		return c.Redirect(http.StatusFound, dec.Redirect)
	}
	return c.JSON(http.StatusUnauthorized, dec)
}
