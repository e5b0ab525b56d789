package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("it should work from the environment alone", func(t *testing.T) {
		// No ./configs/app.env exists in the package directory.
		t.Setenv(APP_HOST, "0.0.0.0")
		t.Setenv(APP_PORT, "9090")
		t.Setenv(DB_HOST, "db.internal")

		cfg, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.DB.Hostname)
	})

	t.Run("it should apply the documented defaults", func(t *testing.T) {
		cfg, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, 60, cfg.App.SlotRefreshSeconds)
		assert.Equal(t, 3600, cfg.Storage.SignTTLSeconds)
		assert.Equal(t, 12, cfg.Admin.TokenTTLHours)
		assert.Equal(t, 2026, cfg.Event.Year)
		assert.Equal(t, 32, cfg.Event.MaxSlots)
	})
}
