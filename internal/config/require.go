package config

import "fmt"

// Validate reports the first setting the chosen drivers cannot run without.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("missing required env %s", "API_BASE_URL")
	}
	switch c.SessionDriver {
	case "memory", "redis":
	case "sqlite", "postgres":
		if c.SessionDSN == "" {
			return fmt.Errorf("missing required env %s for driver %s", "SESSION_DSN", c.SessionDriver)
		}
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.SessionDriver)
	}
	if n := len(c.SessionSecret); n != 0 && n < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 bytes")
	}
	return nil
}
