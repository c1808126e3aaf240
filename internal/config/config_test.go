package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("ENV", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("RESERVATION_TTL", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Duration(0), cfg.ReservationTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
}

func TestLoadRequiredValues(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "")

	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RESERVATION_TTL", "48h")
	t.Setenv("SWEEP_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.ReservationTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)

	t.Setenv("RESERVATION_TTL", "two days")
	_, err = Load()
	assert.Error(t, err)
}
