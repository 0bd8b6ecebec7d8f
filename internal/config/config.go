// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	VAPIDPublicKey  string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: SUBCIRCLE_LISTEN_ADDR (127.0.0.1:8080),
// SUBCIRCLE_DB_PATH (subcircle.db), SUBCIRCLE_SHUTDOWN_TIMEOUT (10s), and
// SUBCIRCLE_VAPID_PUBLIC_KEY (empty; the push public-key endpoint returns 404
// until it is set).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("SUBCIRCLE_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "subcircle.db"
	if v, ok := os.LookupEnv("SUBCIRCLE_DB_PATH"); ok {
		dbPath = v
	}

	shutdownTimeout := 10 * time.Second
	if v, ok := os.LookupEnv("SUBCIRCLE_SHUTDOWN_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SUBCIRCLE_SHUTDOWN_TIMEOUT has invalid duration %q: %w", v, err)
		}
		shutdownTimeout = parsed
	}

	return &Config{
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		VAPIDPublicKey:  os.Getenv("SUBCIRCLE_VAPID_PUBLIC_KEY"),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}
