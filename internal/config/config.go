package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	// WhatsApp Cloud API (Meta Graph)
	MetaVerifyToken string `env:"META_VERIFY_TOKEN"`
	MetaToken       string `env:"META_TOKEN"`
	MetaAppSecret   string `env:"META_APP_SECRET"`
	PhoneNumberID   string `env:"PHONE_NUMBER_ID"`
	GraphBaseURL    string `env:"GRAPH_BASE_URL" envDefault:"https://graph.facebook.com/v20.0"`

	// Language model
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`

	// Conversation state
	HistoryLimit    int `env:"HISTORY_LIMIT" envDefault:"20"`
	HistoryTTLHours int `env:"HISTORY_TTL_HOURS" envDefault:"72"`
	ProfileTTLHours int `env:"PROFILE_TTL_HOURS" envDefault:"720"`

	// Orchestration
	MaxToolRounds   int `env:"MAX_TOOL_ROUNDS" envDefault:"3"`
	RateLimitPerMin int `env:"RATE_LIMIT_PER_MIN" envDefault:"20"`

	// Data lifecycle
	SeedDemoData         bool `env:"SEED_DEMO_DATA" envDefault:"false"`
	SessionRetentionDays int  `env:"SESSION_RETENTION_DAYS" envDefault:"30"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryTTLHours) * time.Hour
}

func (c *Config) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLHours) * time.Hour
}

func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionDays) * 24 * time.Hour
}

func (c *Config) Validate(isProduction bool) error {
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("MAX_TOOL_ROUNDS must be positive")
	}

	if isProduction {
		if c.MetaVerifyToken == "" {
			return fmt.Errorf("META_VERIFY_TOKEN is required in production")
		}
		if c.MetaToken == "" {
			return fmt.Errorf("META_TOKEN is required in production")
		}
		if c.PhoneNumberID == "" {
			return fmt.Errorf("PHONE_NUMBER_ID is required in production")
		}
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
		if c.MetaAppSecret == "" {
			log.Warn().Msg("META_APP_SECRET is empty in production: webhook signature verification disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
