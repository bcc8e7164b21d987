// Package storefront runs the page loads and user actions of one browsing scope.
//
// A Storefront owns nothing itself. The session store, the API client bound to
// it, the count store and the notice queue are handed in, so the web server and
// the CLI drive the same code with different backends.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrLoginRequired = errors.New("login required")
)

type Deps struct {
	Client   *apiclient.Client
	Sessions session.Backend
	Counts   *counts.Store
	Notices  *notify.Center
}

// Service hands out per-scope Storefronts that share one client pool, count
// store and notice center.
type Service struct {
	deps Deps
}

func NewService(d Deps) *Service {
	return &Service{deps: d}
}

func (s *Service) For(scope string) *Storefront {
	store := session.Scoped(s.deps.Sessions, scope)
	return New(scope, store, s.deps.Client, s.deps.Counts, s.deps.Notices.For(scope))
}

func (s *Service) Counts() *counts.Store { return s.deps.Counts }

type Storefront struct {
	scope   string
	store   session.Store
	api     *apiclient.Client
	counts  *counts.Store
	notices notify.Queue
}

// New binds client to store; the caller's client is not modified.
func New(scope string, store session.Store, client *apiclient.Client, cs *counts.Store, q notify.Queue) *Storefront {
	return &Storefront{
		scope:   scope,
		store:   store,
		api:     client.For(store),
		counts:  cs,
		notices: q,
	}
}

func (f *Storefront) Scope() string { return f.scope }

func (f *Storefront) Store() session.Store { return f.store }

func (f *Storefront) Notices() []notify.Notice { return f.notices.Drain() }

func (f *Storefront) Counts() counts.Snapshot { return f.counts.Get(f.scope) }

func (f *Storefront) Session(ctx context.Context) (session.Session, error) {
	return f.store.Get(ctx)
}

func (f *Storefront) log(ctx context.Context, action string) *slog.Logger {
	return logging.FromContext(ctx).With("action", action, "scope", f.scope)
}

// Navbar is shown on every page.
type Navbar struct {
	User     *models.UserSummary `json:"user"`
	Greeting string              `json:"greeting"`
	Counts   counts.Snapshot     `json:"counts"`
}

// navbar re-reads both counts for a signed-in scope. Counts already known from
// the page's own read are passed in instead of being fetched again.
func (f *Storefront) navbar(ctx context.Context, sess session.Session, known map[counts.Collection]int) Navbar {
	nb := Navbar{User: sess.User, Greeting: sess.User.DisplayName()}
	if sess.AccessToken != "" {
		for c, fetch := range f.fetchers(counts.Cart, counts.Wishlist) {
			if n, ok := known[c]; ok {
				n := n
				fetch = func(context.Context) (int, error) { return n, nil }
			}
			// a failed read zeroes the badge and is logged by the store
			_, _ = f.counts.Refresh(ctx, f.scope, c, fetch)
		}
	}
	nb.Counts = f.counts.Get(f.scope)
	return nb
}

func (f *Storefront) fetchers(cs ...counts.Collection) map[counts.Collection]counts.Fetcher {
	out := make(map[counts.Collection]counts.Fetcher, len(cs))
	for _, c := range cs {
		switch c {
		case counts.Cart:
			out[c] = func(ctx context.Context) (int, error) {
				items, err := f.api.Cart.List(ctx)
				return len(items), err
			}
		case counts.Wishlist:
			out[c] = func(ctx context.Context) (int, error) {
				items, err := f.api.Wishlist.List(ctx)
				return len(items), err
			}
		}
	}
	return out
}

// mutate runs one cart or wishlist action through the count store. Whatever
// fails, the user sees at most one notice for it.
func (f *Storefront) mutate(ctx context.Context, key string, fn func(ctx context.Context) error, failTitle, failText string, cs ...counts.Collection) error {
	err := f.counts.Apply(ctx, counts.Mutation{
		Scope:   f.scope,
		Key:     key,
		Mutate:  fn,
		Recount: f.fetchers(cs...),
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, counts.ErrInFlight) {
		return err
	}
	f.fail(ctx, err, failTitle, failText)
	return err
}

// fail pushes the notice for a failed backend call. An expired session gets its
// own notice and zeroes the counts.
func (f *Storefront) fail(ctx context.Context, err error, title, text string) {
	if errors.Is(err, apiclient.ErrSessionExpired) {
		f.counts.Reset(ctx, f.scope)
		f.notices.Warn("Session expired", "Please log in again.")
		return
	}
	f.notices.Error(title, text)
}

// requireToken is the check the pages ran before calling an authenticated endpoint.
func (f *Storefront) requireToken(ctx context.Context, text string) (session.Session, error) {
	sess, err := f.store.Get(ctx)
	if err != nil {
		return sess, fmt.Errorf("read session: %w", err)
	}
	if sess.AccessToken == "" {
		f.notices.Warn("Login Required", text)
		return sess, ErrLoginRequired
	}
	return sess, nil
}

// ValidationError is a form rule the input broke. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
