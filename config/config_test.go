package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("file with defaults", func(t *testing.T) {
		path := writeConfig(t, `
storage:
  driver: sqlite
  dsn: "file::memory:"
http:
  address: ":9000"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
		assert.Equal(t, ":9000", cfg.HTTP.Address)
		assert.Equal(t, 10, cfg.Stats.DefaultPageSize)
		assert.Equal(t, 4, cfg.Stats.RebuildConcurrency)
		assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
		assert.False(t, cfg.NATS.Enabled)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, `
storage:
  dsn: postgres://file
`)
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "nats://localhost:4222")
		t.Setenv("ALLOWED_ORIGINS", "http://a,http://b")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "postgres://env", cfg.Storage.DSN)
		assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
		assert.True(t, cfg.NATS.Enabled)
		assert.Equal(t, []string{"http://a", "http://b"}, cfg.HTTP.AllowedOrigins)
	})

	t.Run("missing file falls back to env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://only-env")
		t.Setenv("QUEUE_ENABLED", "true")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		assert.Equal(t, "postgres://only-env", cfg.Storage.DSN)
		assert.True(t, cfg.Queue.Enabled)
	})

	t.Run("missing file and env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad numeric env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://x")
		t.Setenv("RATE_LIMIT_RPS", "fast")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Config{Storage: StorageConfig{DSN: "x"}}
		applyDefaults(&c)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mysql" }, wantErr: true},
		{name: "queue needs postgres", mutate: func(c *Config) {
			c.Storage.Driver = DriverSQLite
			c.Queue.Enabled = true
		}, wantErr: true},
		{name: "nats without url", mutate: func(c *Config) { c.NATS.Enabled = true }, wantErr: true},
		{name: "page size above max", mutate: func(c *Config) { c.Stats.DefaultPageSize = 1000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
