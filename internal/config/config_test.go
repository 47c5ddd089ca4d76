package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/gym")
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
		assert.Equal(t, 20, cfg.HistoryLimit)
		assert.Equal(t, 3, cfg.MaxToolRounds)
		assert.Equal(t, 30, cfg.SessionRetentionDays)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, ":8080", cfg.Addr())
	})

	t.Run("fails without required values", func(t *testing.T) {
		// t.Setenv registers cleanup; unset afterwards so the vars are absent.
		t.Setenv("DATABASE_URL", "x")
		t.Setenv("REDIS_URL", "x")
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("REDIS_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DatabaseURL:     "postgres://localhost/gym",
			RedisURL:        "rediss://localhost:6379",
			MetaVerifyToken: "verify",
			MetaToken:       "token",
			PhoneNumberID:   "12345",
			OpenAIAPIKey:    "sk-test",
			HistoryLimit:    20,
			MaxToolRounds:   3,
		}
	}

	t.Run("accepts complete production config", func(t *testing.T) {
		assert.NoError(t, base().Validate(true))
	})

	t.Run("rejects missing delivery credentials in production", func(t *testing.T) {
		cfg := base()
		cfg.MetaToken = ""
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects missing model key in production", func(t *testing.T) {
		cfg := base()
		cfg.OpenAIAPIKey = ""
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("allows missing credentials outside production", func(t *testing.T) {
		cfg := base()
		cfg.MetaToken = ""
		cfg.OpenAIAPIKey = ""
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects non-positive bounds", func(t *testing.T) {
		cfg := base()
		cfg.HistoryLimit = 0
		assert.Error(t, cfg.Validate(false))

		cfg = base()
		cfg.MaxToolRounds = 0
		assert.Error(t, cfg.Validate(false))
	})
}
