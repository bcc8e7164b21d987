// Package notify queues the blocking notices shown to a user. Each notice is
// delivered exactly once.
package notify

import (
	"sync"
)

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

type Notice struct {
	Level Level  `json:"level"`
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}

const maxPending = 20

type Center struct {
	mu     sync.Mutex
	queues map[string][]Notice
}

func NewCenter() *Center {
	return &Center{queues: make(map[string][]Notice)}
}

func (c *Center) Push(scope string, n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := append(c.queues[scope], n)
	if len(q) > maxPending {
		q = q[len(q)-maxPending:]
	}
	c.queues[scope] = q
}

// Drain returns the pending notices of scope and forgets them.
func (c *Center) Drain(scope string) []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.queues[scope]
	delete(c.queues, scope)
	return q
}

// Queue is a Center bound to one scope.
type Queue struct {
	center *Center
	scope  string
}

func (c *Center) For(scope string) Queue {
	return Queue{center: c, scope: scope}
}

func (q Queue) Push(n Notice) { q.center.Push(q.scope, n) }

func (q Queue) Drain() []Notice { return q.center.Drain(q.scope) }

func (q Queue) Success(title, text string) { q.Push(Notice{Level: Success, Title: title, Text: text}) }

func (q Queue) Info(title, text string) { q.Push(Notice{Level: Info, Title: title, Text: text}) }

func (q Queue) Warn(title, text string) { q.Push(Notice{Level: Warning, Title: title, Text: text}) }

func (q Queue) Error(title, text string) { q.Push(Notice{Level: Error, Title: title, Text: text}) }
