// Package config defines the application configuration structures.
//
// Separated from cmd to allow other packages (db, ssh, server, tui)
// to depend on config without importing Cobra.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the warehouse connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// StatementTimeout bounds every query the pipeline sends, in
	// milliseconds. 0 leaves the server default in place.
	StatementTimeout int

	SSH SSHConfig
}

// SSHConfig holds SSH tunnel settings for warehouses behind a bastion.
type SSHConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	KeyPath       string
	KeyPassphrase string
}

// DSN builds a pgx-compatible connection string.
// When the SSH tunnel is active, the caller overrides Host/Port
// with the local tunnel endpoint before calling this.
func (c Config) DSN() string {
	dsn := "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
	if c.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" options='-c statement_timeout=%d'", c.StatementTimeout)
	}
	return dsn
}

// LoadFromEnv reads warehouse settings from the environment, loading a
// .env file first if one exists. Missing values fall back to defaults
// suitable for a local PostgreSQL.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load() // absent .env is fine

	cfg := Config{
		Host:     envOr("PAICHAT_DB_HOST", "localhost"),
		Port:     envIntOr("PAICHAT_DB_PORT", 5432),
		User:     envOr("PAICHAT_DB_USER", "paichat_ro"),
		Password: os.Getenv("PAICHAT_DB_PASSWORD"),
		Database: envOr("PAICHAT_DB_NAME", "warehouse"),
		SSLMode:  envOr("PAICHAT_DB_SSLMODE", "prefer"),

		StatementTimeout: envIntOr("PAICHAT_STATEMENT_TIMEOUT_MS", 30000),
	}

	if os.Getenv("PAICHAT_SSH_HOST") != "" {
		cfg.SSH = SSHConfig{
			Enabled:       true,
			Host:          os.Getenv("PAICHAT_SSH_HOST"),
			Port:          envIntOr("PAICHAT_SSH_PORT", 22),
			User:          os.Getenv("PAICHAT_SSH_USER"),
			KeyPath:       os.Getenv("PAICHAT_SSH_KEY"),
			KeyPassphrase: os.Getenv("PAICHAT_SSH_KEY_PASSPHRASE"),
		}
	}

	if cfg.Database == "" {
		return cfg, fmt.Errorf("PAICHAT_DB_NAME is required")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
