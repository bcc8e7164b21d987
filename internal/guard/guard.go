// Package guard decides whether a navigation may proceed with the current session.
// The decision is taken once, when the navigation starts.
package guard

import (
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
)

const (
	LoginPath = "/login"
	AdminPath = "/admin"
	MainPath  = "/main"
)

type Access int

const (
	Public Access = iota
	LoginRequired
	StaffOnly
)

func (a Access) String() string {
	switch a {
	case LoginRequired:
		return "login"
	case StaffOnly:
		return "staff"
	}
	return "public"
}

type Destination struct {
	Path   string
	Access Access
}

// Decision is either Allow or a redirect. Replace means the guarded entry must
// not stay in history.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
	Replace  bool   `json:"replace,omitempty"`
}

func Evaluate(s session.Session, d Destination) Decision {
	switch d.Access {
	case StaffOnly:
		// Only the stored user's flag counts here; the backend re-checks on every call.
		if s.User == nil || !s.User.IsStaff {
			return Decision{Redirect: LoginPath, Replace: true}
		}
	case LoginRequired:
		if s.AccessToken == "" {
			return Decision{Redirect: LoginPath}
		}
	}
	return Decision{Allow: true}
}

// Landing is where a fresh login goes.
func Landing(u *models.UserSummary) string {
	if u != nil && u.IsStaff {
		return AdminPath
	}
	return MainPath
}

// Fallback handles "/" and unknown paths.
func Fallback() Decision {
	return Decision{Redirect: MainPath, Replace: true}
}
