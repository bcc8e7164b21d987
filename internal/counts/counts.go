// Package counts keeps the cart and wishlist badge counts of every scope.
//
// A count is always the length of the collection as last read from the backend.
// Mutations go through Apply, which awaits the mutation and only then re-reads the
// affected collections. Readers call Get; other processes learn about changes
// from the events handed to the Publisher.
package counts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/storefront/internal/logging"
)

var ErrInFlight = errors.New("counts: same action already in progress")

// publishBuffer bounds the events waiting for the publisher. Events beyond it
// are dropped and logged.
const publishBuffer = 256

type Collection string

const (
	Cart     Collection = "cart"
	Wishlist Collection = "wishlist"
)

// Snapshot is what the navbar shows.
type Snapshot struct {
	Cart     int `json:"cart"`
	Wishlist int `json:"wishlist"`
}

func (s Snapshot) Of(c Collection) int {
	if c == Wishlist {
		return s.Wishlist
	}
	return s.Cart
}

func (s *Snapshot) set(c Collection, n int) {
	if c == Wishlist {
		s.Wishlist = n
		return
	}
	s.Cart = n
}

// Fetcher reads the full collection and returns its length.
type Fetcher func(ctx context.Context) (int, error)

// Mutation is one user action. Key identifies it for double-submit protection
// inside its scope, e.g. "cart.add:5".
type Mutation struct {
	Scope   string
	Key     string
	Mutate  func(ctx context.Context) error
	Recount map[Collection]Fetcher
}

type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeMutationFailed Outcome = "mutation_failed"
	OutcomeRecountFailed  Outcome = "recount_failed"
	OutcomeInFlight       Outcome = "in_flight"
)

type Store struct {
	mu       sync.Mutex
	scopes   map[string]*scopeState
	inflight map[string]struct{}
	gen      uint64
	sf       singleflight.Group

	pub     Publisher
	events  chan queuedEvent
	done    chan struct{}
	closed  bool
	observe func(c Collection, o Outcome)
}

type scopeState struct {
	snap    Snapshot
	applied map[Collection]uint64
	seen    time.Time
}

type queuedEvent struct {
	ctx context.Context
	ev  Event
}

type Option func(*Store)

// WithPublisher sends count events to p from a background goroutine, so a slow
// publisher never holds up the caller. Close flushes it.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithObserver is called once per collection per Apply.
func WithObserver(fn func(c Collection, o Outcome)) Option {
	return func(s *Store) { s.observe = fn }
}

func New(opts ...Option) *Store {
	s := &Store{
		scopes:   make(map[string]*scopeState),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pub != nil {
		s.events = make(chan queuedEvent, publishBuffer)
		s.done = make(chan struct{})
		go s.run()
	}
	return s
}

// Close stops accepting events and waits until the queued ones are published.
func (s *Store) Close() {
	if s.pub == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Store) run() {
	defer close(s.done)
	for q := range s.events {
		if err := s.pub.Publish(q.ctx, q.ev); err != nil {
			logging.FromContext(q.ctx).Warn("count_event_publish_failed", "collection", string(q.ev.Collection), "error", err)
		}
	}
}

// state must be called with mu held.
func (s *Store) state(scope string) *scopeState {
	st, ok := s.scopes[scope]
	if !ok {
		st = &scopeState{applied: make(map[Collection]uint64)}
		s.scopes[scope] = st
	}
	st.seen = time.Now()
	return st
}

func (s *Store) Get(scope string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.scopes[scope]; ok {
		return st.snap
	}
	return Snapshot{}
}

type recountResult struct {
	n   int
	err error
	gen uint64
}

// Refresh re-reads one collection. Concurrent refreshes of the same collection
// share one backend read. On failure the count drops to zero. An event is
// published only when the count changed.
func (s *Store) Refresh(ctx context.Context, scope string, c Collection, fetch Fetcher) (int, error) {
	return s.recount(ctx, scope, c, fetch, false, "refresh")
}

func (s *Store) recount(ctx context.Context, scope string, c Collection, fetch Fetcher, fresh bool, reason string) (int, error) {
	key := scope + "|" + string(c)
	if fresh {
		// a read already in flight may predate the mutation
		s.sf.Forget(key)
	}

	v, _, _ := s.sf.Do(key, func() (any, error) {
		s.mu.Lock()
		s.gen++
		gen := s.gen
		s.mu.Unlock()

		n, err := fetch(ctx)
		return recountResult{n: n, err: err, gen: gen}, nil
	})
	res := v.(recountResult)

	n := res.n
	if res.err != nil {
		n = 0
	}

	s.mu.Lock()
	st := s.state(scope)
	notify := false
	if res.gen >= st.applied[c] {
		st.applied[c] = res.gen
		changed := st.snap.Of(c) != n
		st.snap.set(c, n)
		notify = changed || fresh
	}
	current := st.snap.Of(c)
	s.mu.Unlock()

	if res.err != nil {
		logging.FromContext(ctx).Warn("recount_failed", "collection", string(c), "error", res.err)
	}
	if notify {
		s.publish(ctx, Event{Scope: scope, Collection: c, Count: n, Reason: reason, Failed: res.err != nil})
	}
	if res.err != nil {
		return current, fmt.Errorf("recount %s: %w", c, res.err)
	}
	return current, nil
}

// Apply runs m.Mutate and, only if it succeeds, recounts every collection in
// m.Recount. A failed mutation leaves the counts untouched and its error is
// returned. A failed recount zeroes that count but Apply still returns nil,
// because the mutation itself went through.
func (s *Store) Apply(ctx context.Context, m Mutation) error {
	key := m.Scope + "|" + m.Key

	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		for c := range m.Recount {
			s.record(c, OutcomeInFlight)
		}
		return ErrInFlight
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	if err := m.Mutate(ctx); err != nil {
		for c := range m.Recount {
			s.record(c, OutcomeMutationFailed)
		}
		return err
	}

	for _, c := range []Collection{Cart, Wishlist} {
		fetch, ok := m.Recount[c]
		if !ok {
			continue
		}
		if _, err := s.recount(ctx, m.Scope, c, fetch, true, "mutation"); err != nil {
			s.record(c, OutcomeRecountFailed)
			continue
		}
		s.record(c, OutcomeOK)
	}
	return nil
}

// Reset zeroes the counts of a scope, e.g. on logout.
func (s *Store) Reset(ctx context.Context, scope string) {
	s.mu.Lock()
	st := s.state(scope)
	s.gen++
	for _, c := range []Collection{Cart, Wishlist} {
		st.applied[c] = s.gen
	}
	changed := st.snap != (Snapshot{})
	st.snap = Snapshot{}
	s.mu.Unlock()

	if changed {
		s.publish(ctx, Event{Scope: scope, Collection: Cart, Reason: "reset"})
		s.publish(ctx, Event{Scope: scope, Collection: Wishlist, Reason: "reset"})
	}
}

// Drop forgets scopes, e.g. after logout or once their session expired. Later
// reads start from zero.
func (s *Store) Drop(scopes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, scope := range scopes {
		delete(s.scopes, scope)
	}
}

// DropIdle forgets every scope that has not been refreshed or changed since
// before, and returns how many it dropped.
func (s *Store) DropIdle(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for scope, st := range s.scopes {
		if st.seen.Before(before) {
			delete(s.scopes, scope)
			n++
		}
	}
	return n
}

// Len is the number of scopes currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scopes)
}

func (s *Store) record(c Collection, o Outcome) {
	if s.observe != nil {
		s.observe(c, o)
	}
}

func (s *Store) publish(ctx context.Context, ev Event) {
	if s.pub == nil {
		return
	}
	ev.Type = string(ev.Collection) + "_count_updated"
	ev.At = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- queuedEvent{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		logging.FromContext(ctx).Warn("count_event_dropped", "collection", string(ev.Collection), "reason", ev.Reason)
	}
}
