package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := Config{
		Host:     "db.internal",
		Port:     5433,
		User:     "reader",
		Password: "secret",
		Database: "warehouse",
		SSLMode:  "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=warehouse")
	assert.NotContains(t, dsn, "statement_timeout")
}

func TestDSNWithStatementTimeout(t *testing.T) {
	cfg := Config{Host: "h", Port: 5432, Database: "d", SSLMode: "prefer", StatementTimeout: 30000}
	assert.Contains(t, cfg.DSN(), "options='-c statement_timeout=30000'")
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("PAICHAT_DB_HOST", "")
	t.Setenv("PAICHAT_DB_NAME", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "warehouse", cfg.Database)
	assert.Equal(t, 30000, cfg.StatementTimeout)
	assert.False(t, cfg.SSH.Enabled)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PAICHAT_DB_HOST", "10.0.0.9")
	t.Setenv("PAICHAT_DB_PORT", "6432")
	t.Setenv("PAICHAT_DB_NAME", "analytics")
	t.Setenv("PAICHAT_SSH_HOST", "bastion")
	t.Setenv("PAICHAT_SSH_USER", "ops")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", cfg.Host)
	assert.Equal(t, 6432, cfg.Port)
	assert.Equal(t, "analytics", cfg.Database)
	require.True(t, cfg.SSH.Enabled)
	assert.Equal(t, "bastion", cfg.SSH.Host)
	assert.Equal(t, 22, cfg.SSH.Port)
}
