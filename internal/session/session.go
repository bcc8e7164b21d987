// Package session holds the authentication state of one browsing scope:
// the access token, the refresh token and the user summary returned at login.
//
// A Store is handed explicitly to everything that needs the session. Backends
// persist many scopes side by side and Scoped binds one of them to an id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrNoScope = errors.New("session: empty scope id")

type Session struct {
	AccessToken  string              `json:"access"`
	RefreshToken string              `json:"refresh"`
	User         *models.UserSummary `json:"user"`
}

// Authenticated requires both a token and a user; a token alone does not count.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

func (s Session) IsStaff() bool {
	return s.User != nil && s.User.IsStaff
}

func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.User == nil
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

type Store interface {
	Get(ctx context.Context) (Session, error)
	Set(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

type Backend interface {
	Load(ctx context.Context, id string) (Session, bool, error)
	Save(ctx context.Context, id string, s Session) error
	Delete(ctx context.Context, id string) error
}

type scoped struct {
	backend Backend
	id      string
}

// Scoped returns the Store of a single scope id.
func Scoped(b Backend, id string) Store {
	return &scoped{backend: b, id: id}
}

func (s *scoped) Get(ctx context.Context) (Session, error) {
	if s.id == "" {
		return Session{}, ErrNoScope
	}
	sess, ok, err := s.backend.Load(ctx, s.id)
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return Session{}, nil
	}
	return sess, nil
}

func (s *scoped) Set(ctx context.Context, sess Session) error {
	if s.id == "" {
		return ErrNoScope
	}
	if err := s.backend.Save(ctx, s.id, sess.clone()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *scoped) Clear(ctx context.Context) error {
	if s.id == "" {
		return ErrNoScope
	}
	if err := s.backend.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type codec struct {
	sealer *Sealer
}

func (c codec) encode(s Session) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if c.sealer == nil {
		return raw, nil
	}
	return c.sealer.Seal(raw)
}

func (c codec) decode(b []byte) (Session, error) {
	if c.sealer != nil {
		plain, err := c.sealer.Open(b)
		if err != nil {
			return Session{}, err
		}
		b = plain
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}
