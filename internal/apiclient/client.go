// Package apiclient talks to the shop backend REST API.
//
// A Client has one fixed base address. Every request passes through the
// request editors; the bearer editor adds the access token of the bound
// session store when there is one.
//
//	client := apiclient.NewClient(apiclient.WithBaseURL(cfg.APIBaseURL))
//	scoped := client.For(store)
//	items, err := scoped.Cart.List(ctx)
package apiclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/Skotchmaster/storefront/internal/session"
)

const (
	DefaultBaseURL = "https://backend-api-s44j.onrender.com"
	DefaultTimeout = 15 * time.Second

	// PlaceholderImage is used for products without an image.
	PlaceholderImage = "https://via.placeholder.com/300"
)

// RequestEditor runs on every outgoing request before it is sent.
type RequestEditor func(ctx context.Context, req *http.Request) error

// Observer receives one call per completed request.
type Observer func(op string, status int, elapsed time.Duration)

type Client struct {
	baseURL    string
	mediaURL   string
	httpClient *http.Client
	store      session.Store
	editors    []RequestEditor
	observer   Observer

	Account  *AccountService
	Products *ProductsService
	Cart     *CartService
	Wishlist *WishlistService
	Orders   *OrdersService
	Admin    *AdminService
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithMediaBaseURL sets the origin relative image paths are resolved against.
// It defaults to the base URL.
func WithMediaBaseURL(u string) Option {
	return func(c *Client) {
		c.mediaURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = d
	}
}

func WithRequestEditor(fn RequestEditor) Option {
	return func(c *Client) {
		c.editors = append(c.editors, fn)
	}
}

func WithObserver(fn Observer) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithSession binds the client to a session store.
func WithSession(store session.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 60 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.mediaURL == "" {
		c.mediaURL = c.baseURL
	}

	c.initServices()
	return c
}

func (c *Client) initServices() {
	c.Account = &AccountService{client: c}
	c.Products = &ProductsService{client: c}
	c.Cart = &CartService{client: c}
	c.Wishlist = &WishlistService{client: c}
	c.Orders = &OrdersService{client: c}
	c.Admin = &AdminService{client: c}
}

// For returns a copy of the client bound to store. The connection pool is shared.
func (c *Client) For(store session.Store) *Client {
	cp := &Client{
		baseURL:    c.baseURL,
		mediaURL:   c.mediaURL,
		httpClient: c.httpClient,
		store:      store,
		editors:    c.editors,
		observer:   c.observer,
	}
	cp.initServices()
	return cp
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Session() session.Store { return c.store }
