package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrSessionExpired is wrapped by the 401 returned for a request that carried
// a bearer token. The bound session has already been cleared at that point.
var ErrSessionExpired = errors.New("session expired")

type Kind int

const (
	KindTransport Kind = iota + 1
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is every failure the client returns.
type Error struct {
	Kind       Kind
	StatusCode int
	// Message is the human readable text the backend sent, if any.
	Message string
	// Source is the response key Message was taken from, empty when it was not
	// taken from a keyed object.
	Source string
	// Fields holds per-field validation messages.
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) IsNotFound() bool { return e.Kind == KindNotFound }

func (e *Error) IsUnauthorized() bool { return e.Kind == KindUnauthorized }

func (e *Error) IsForbidden() bool { return e.Kind == KindForbidden }

func (e *Error) IsValidationError() bool { return e.Kind == KindValidation }

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind
	}
	return 0
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// Message returns the backend's message for err, or fallback.
func Message(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Reason returns the backend's "detail" or "error" text for err, or fallback.
func Reason(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && (apiErr.Source == "detail" || apiErr.Source == "error") {
		return apiErr.Message
	}
	return fallback
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// parseError understands the shapes the backend answers errors with:
// {"detail": ...}, {"error": ...}, {"message": ...}, {"non_field_errors": [...]},
// per-field lists and bare lists of strings.
func parseError(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), StatusCode: status}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
			if raw, ok := obj[key]; ok {
				if msg := firstString(raw); msg != "" {
					e.Message = msg
					e.Source = key
					break
				}
			}
		}
		fields := map[string][]string{}
		for k, raw := range obj {
			switch k {
			case "detail", "error", "message", "non_field_errors", "code":
				continue
			}
			if msgs := stringsOf(raw); len(msgs) > 0 {
				fields[k] = msgs
			}
		}
		if len(fields) > 0 {
			e.Fields = fields
			if e.Message == "" {
				e.Message = firstField(fields)
			}
		}
	} else {
		var list []string
		if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
			e.Message = strings.Join(list, " ")
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func firstString(raw json.RawMessage) string {
	if s := stringsOf(raw); len(s) > 0 {
		return s[0]
	}
	return ""
}

func stringsOf(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return []string{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := list[:0]
		for _, v := range list {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return nil
}

func firstField(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	k := keys[0]
	return k + ": " + fields[k][0]
}
