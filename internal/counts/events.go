package counts

import (
	"context"
	"time"
)

// Event tells other consumers that a scope's count was re-derived.
type Event struct {
	Type       string     `json:"type"`
	Scope      string     `json:"scope"`
	Collection Collection `json:"collection"`
	Count      int        `json:"count"`
	Reason     string     `json:"reason"`
	Failed     bool       `json:"failed,omitempty"`
	At         time.Time  `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }
