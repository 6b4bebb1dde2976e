package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("gateway and devnet addresses", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FAUCET_GATEWAY_URL", "https://gw.example.org")
		t.Setenv("FAUCET_DEVNET_ADDR", "0.0.0.0:9999")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://gw.example.org", cfg.Gateway.URL)
		assert.Equal(t, "0.0.0.0:9999", cfg.Devnet.Addr)
	})

	t.Run("logging", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FAUCET_LOG_LEVEL", "debug")
		t.Setenv("FAUCET_DEBUG", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("unparseable booleans are ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FAUCET_DEBUG", "sometimes")
		t.Setenv("FAUCET_DARK_MODE", "maybe")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
		assert.Equal(t, ThemeAuto, cfg.UI.Theme)
	})

	t.Run("dark mode", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FAUCET_DARK_MODE", "1")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, ThemeDark, cfg.UI.Theme)

		t.Setenv("FAUCET_DARK_MODE", "false")
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, ThemeLight, cfg.UI.Theme)
	})

	t.Run("applied over file values", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		file := DefaultConfig()
		file.Gateway.URL = "http://from-file:1"
		require.NoError(t, file.Save(path))

		t.Setenv("FAUCET_GATEWAY_URL", "http://from-env:2")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://from-env:2", cfg.Gateway.URL)
	})
}
