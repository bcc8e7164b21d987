// Package scope gives every browser a stable scope id in a cookie. The id keys
// the browser's session and counts, the way per-origin storage keys a page's.
package scope

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "sf_session"
	contextKey = "scope"
)

type Config struct {
	Secure bool
	MaxAge time.Duration
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(CookieName); err == nil {
				if u, err := uuid.Parse(ck.Value); err == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(cfg.MaxAge),
				Secure:   cfg.Secure,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKey, id)
			return next(c)
		}
	}
}

// ID returns the scope of the request, empty outside the middleware.
func ID(c echo.Context) string {
	s, _ := c.Get(contextKey).(string)
	return s
}
