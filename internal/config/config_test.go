package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RequestMaxAttempts)
	assert.Equal(t, 300*time.Millisecond, cfg.LoadingShowDelay)
	assert.Equal(t, 30*time.Minute, cfg.SlotGranularity)
	assert.Equal(t, 2, cfg.SlotCapacity)
	assert.Equal(t, 14, cfg.HorizonDays)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("REQUEST_MAX_ATTEMPTS", "2")
	t.Setenv("SLOT_CAPACITY", "3")
	t.Setenv("BOOKING_HORIZON_DAYS", "7")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.RequestMaxAttempts)
	assert.Equal(t, 3, cfg.SlotCapacity)
	assert.Equal(t, 7, cfg.HorizonDays)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_MAX_ATTEMPTS", "many")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("REDIS_TLS", "maybe")

	cfg := Load()

	assert.Equal(t, 3, cfg.RequestMaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.RedisTLS)
}
