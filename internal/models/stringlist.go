package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StringList is the canonical form of backend fields that arrive either as a
// single string or as a list (category, description). Blank entries are dropped.
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*s = normalize(raw)
	return nil
}

// MarshalJSON always emits a list.
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Contains matches case-insensitively.
func (s StringList) Contains(v string) bool {
	for _, x := range s {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func (s StringList) Join(sep string) string {
	return strings.Join(s, sep)
}

func normalize(v any) StringList {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil
		}
		// Forms post the list JSON-encoded into a text field.
		if strings.HasPrefix(t, "[") {
			var inner []any
			if err := json.Unmarshal([]byte(t), &inner); err == nil {
				return normalize(inner)
			}
		}
		return StringList{t}
	case []any:
		out := make(StringList, 0, len(t))
		for _, e := range t {
			out = append(out, normalize(e)...)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out StringList
		for _, k := range keys {
			out = append(out, normalize(t[k])...)
		}
		return out
	case nil:
		return nil
	case bool:
		return nil
	default:
		return StringList{strings.TrimSpace(fmt.Sprint(t))}
	}
}
