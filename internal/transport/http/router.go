package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/guard"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/middleware/scope"
)

type Deps struct {
	Handler *Handler
	CSRF    csrf.Config
	Scope   scope.Config
	// Ready reports whether the session backend is reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	h := d.Handler
	csrfCfg := d.CSRF
	csrfCfg.SkipPaths = append(csrfCfg.SkipPaths, "/api/login", "/api/register")

	g := e.Group("", scope.Middleware(d.Scope), csrf.Middleware(csrfCfg))

	gc := guard.Config{Resolve: h.Resolve, OnRedirect: metrics.RecordRedirect}
	loginOnly := guard.Require(gc, guard.LoginRequired)
	staffOnly := guard.Require(gc, guard.StaffOnly)

	g.GET("/", h.Fallback)
	g.GET("/main", h.Home)
	g.GET("/products", h.Products)
	g.GET("/product/:id", h.Product)
	g.GET("/login", h.FormPage)
	g.GET("/register", h.FormPage)
	g.GET("/activate/:uid/:token", h.Activate)
	g.GET("/cart", h.Cart, loginOnly)
	g.GET("/wishlist", h.Wishlist, loginOnly)
	g.GET("/payment", h.Payment, loginOnly)

	admin := g.Group("/admin", staffOnly)
	admin.GET("", h.Dashboard)
	admin.GET("/orders", h.AdminOrders)
	admin.GET("/users", h.AdminUsers)
	admin.GET("/products", h.AdminProducts)

	api := g.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.POST("/register", h.Register)
	api.GET("/session", h.Session)
	api.GET("/notices", h.Notices)
	api.GET("/suggest", h.Suggest)

	api.POST("/cart/add", h.AddToCart)
	api.POST("/cart/remove", h.RemoveFromCart)
	api.POST("/cart/quantity", h.ChangeQuantity)
	api.POST("/wishlist/toggle", h.ToggleWishlist)
	api.POST("/wishlist/remove", h.RemoveFromWishlist)
	api.POST("/wishlist/move", h.MoveToCart)
	api.POST("/orders", h.Checkout)

	adminAPI := api.Group("/admin", staffOnly)
	adminAPI.GET("/dashboard", h.Dashboard)
	adminAPI.GET("/orders", h.AdminOrders)
	adminAPI.PATCH("/orders/:id/cancel", h.CancelOrder)
	adminAPI.POST("/orders/:id/reorder", h.Reorder)
	adminAPI.DELETE("/orders/:id", h.DeleteOrder)
	adminAPI.GET("/users", h.AdminUsers)
	adminAPI.PATCH("/users/:id/block", h.ToggleBlock)
	adminAPI.PATCH("/users/:id", h.EditUser)
	adminAPI.GET("/users/:id/orders", h.UserOrders)
	adminAPI.GET("/products", h.AdminProducts)
	adminAPI.POST("/products", h.CreateProduct)
	adminAPI.PATCH("/products/:id", h.UpdateProduct)
	adminAPI.DELETE("/products/:id", h.DeleteProduct)

	e.RouteNotFound("/*", h.Fallback)
}
