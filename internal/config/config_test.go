package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "TIMEZONE", "ALLOWED_ORIGINS", "LOGIN_RATE_PER_SEC", "LOGIN_BURST", "NOTIFY_QUEUE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "America/Mexico_City", cfg.Timezone)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 1.0, cfg.LoginRatePerSec)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.Equal(t, "notifications", cfg.NotifyQueue)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOGIN_RATE_PER_SEC", "0.5")
	t.Setenv("LOGIN_BURST", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 0.5, cfg.LoginRatePerSec)
	assert.Equal(t, 5, cfg.LoginBurst)
}
