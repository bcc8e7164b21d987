package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("MEDIA_BASE_URL", "")
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("HTTP_TIMEOUT", "oops")
	t.Setenv("REDIS_DB", "two")

	cfg := Load()
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultAPIBaseURL, cfg.MediaBaseURL)
	assert.Equal(t, "memory", cfg.SessionDriver)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.RedisDB)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.local")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	assert.Equal(t, "http://api.local", cfg.APIBaseURL)
	assert.Equal(t, "http://api.local", cfg.MediaBaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory ok", cfg: Config{APIBaseURL: "x", SessionDriver: "memory"}},
		{name: "sqlite without dsn", cfg: Config{APIBaseURL: "x", SessionDriver: "sqlite"}, wantErr: true},
		{name: "unknown driver", cfg: Config{APIBaseURL: "x", SessionDriver: "mongo"}, wantErr: true},
		{name: "short secret", cfg: Config{APIBaseURL: "x", SessionDriver: "memory", SessionSecret: []byte("abc")}, wantErr: true},
		{name: "missing base", cfg: Config{SessionDriver: "memory"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
