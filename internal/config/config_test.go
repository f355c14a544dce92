package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "three", cfg.SlotCatalog)
	assert.Equal(t, 7*24*time.Hour, cfg.BanDuration)
	assert.False(t, cfg.ConfirmOwnerOnly)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Empty(t, cfg.RabbitMQURL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SLOT_CATALOG", "six")
	t.Setenv("BAN_DURATION", "48h")
	t.Setenv("CONFIRM_OWNER_ONLY", "true")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "six", cfg.SlotCatalog)
	assert.Equal(t, 48*time.Hour, cfg.BanDuration)
	assert.True(t, cfg.ConfirmOwnerOnly)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"bad ban duration", map[string]string{"JWT_SECRET": "s", "BAN_DURATION": "soon"}},
		{"negative ban duration", map[string]string{"JWT_SECRET": "s", "BAN_DURATION": "-1h"}},
		{"bad owner flag", map[string]string{"JWT_SECRET": "s", "CONFIRM_OWNER_ONLY": "maybe"}},
		{"bad burst", map[string]string{"JWT_SECRET": "s", "RATE_LIMIT_BURST": "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
