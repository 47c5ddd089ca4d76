package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Outbound collaborator timeouts
const (
	ModelCallTimeout    = 30 * time.Second
	DeliveryCallTimeout = 15 * time.Second
)

// Background job intervals
const CleanupJobInterval = 1 * time.Hour

// History entries included in the model prompt
const PromptHistoryWindow = 6
