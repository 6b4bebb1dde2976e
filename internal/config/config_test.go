package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ledgerfaucet/internal/ledger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FAUCET_GATEWAY_URL", "FAUCET_LOG_LEVEL", "FAUCET_DEBUG", "FAUCET_DARK_MODE", "FAUCET_DEVNET_ADDR"} {
		t.Setenv(k, "")
	}
}

// =============================================================================
// DEFAULTS AND PERSISTENCE
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Gateway.URL != "http://127.0.0.1:8089" {
		t.Errorf("expected default gateway url, got %s", cfg.Gateway.URL)
	}
	if cfg.Devnet.Ledger.FaucetID != ledger.FaucetCanister {
		t.Errorf("expected faucet id %s, got %s", ledger.FaucetCanister, cfg.Devnet.Ledger.FaucetID)
	}
	if cfg.UI.Theme != ThemeAuto {
		t.Errorf("expected theme auto, got %s", cfg.UI.Theme)
	}
	if cfg.Logging.DebugMode {
		t.Error("expected logging disabled by default")
	}
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Gateway.URL = "https://faucet.example.org"
	cfg.Devnet.Ledger.Standard.IsMint = true
	cfg.Logging.Categories = map[string]bool{"ui": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  url: http://10.0.0.1:9000\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:9000", cfg.Gateway.URL)
	assert.Equal(t, "30s", cfg.Gateway.Timeout)
	assert.Equal(t, ledger.LegacyLedgerCanister, cfg.Devnet.Ledger.Legacy.CanisterID)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: [\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

// =============================================================================
// VALIDATION AND GETTERS
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.Gateway.URL = "ftp://x" }},
		{"no host", func(c *Config) { c.Gateway.URL = "http://" }},
		{"bad timeout", func(c *Config) { c.Gateway.Timeout = "soon" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }},
		{"bad effect unit", func(c *Config) { c.UI.EffectTimeUnit = "1 parsec" }},
		{"bad faucet id", func(c *Config) { c.Devnet.Ledger.FaucetID = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Logging.Level = "DEBUG"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.GetGatewayTimeout())
	cfg.Gateway.Timeout = "garbage"
	assert.Equal(t, 30*time.Second, cfg.GetGatewayTimeout())
	cfg.Gateway.Timeout = "5s"
	assert.Equal(t, 5*time.Second, cfg.GetGatewayTimeout())

	assert.Equal(t, time.Second, cfg.UI.GetEffectTimeUnit())
	cfg.UI.EffectTimeUnit = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.UI.GetEffectTimeUnit())

	assert.True(t, cfg.UI.DarkMode(true))
	assert.False(t, cfg.UI.DarkMode(false))
	cfg.UI.Theme = ThemeDark
	assert.True(t, cfg.UI.DarkMode(false))
	cfg.UI.Theme = ThemeLight
	assert.False(t, cfg.UI.DarkMode(true))
}

func TestLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Format: "JSON", Level: "warn"}
	assert.False(t, lc.IsCategoryEnabled("ui"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("ui"))
	lc.Categories = map[string]bool{"ui": false}
	assert.False(t, lc.IsCategoryEnabled("ui"))
	assert.True(t, lc.IsCategoryEnabled("remote"))

	opts := lc.Options()
	assert.True(t, opts.JSONFormat)
	assert.True(t, opts.DebugMode)
	assert.Equal(t, "warn", opts.Level)

	lc.Dir = "/tmp/faucet-logs"
	assert.Equal(t, "/tmp/faucet-logs", lc.LogsDir())
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, "faucet", filepath.Base(filepath.Dir(DefaultPath())))
}
