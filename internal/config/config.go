package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ledgerfaucet/internal/ledger"
)

// Config holds all faucet client configuration.
type Config struct {
	// Gateway is the faucet service the client talks to.
	Gateway GatewayConfig `yaml:"gateway"`

	// Devnet configures the local gateway and ledger simulator.
	Devnet DevnetConfig `yaml:"devnet"`

	// UI configures the interactive terminal.
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GatewayConfig configures the HTTP faucet gateway.
type GatewayConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// DevnetConfig configures `faucet devnet` and the --devnet flag.
type DevnetConfig struct {
	Addr   string        `yaml:"addr"`
	Ledger ledger.Config `yaml:"ledger"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			URL:     "http://127.0.0.1:8089",
			Timeout: "30s",
		},
		Devnet: DevnetConfig{
			Addr:   "127.0.0.1:8089",
			Ledger: ledger.DefaultConfig(),
		},
		UI: *DefaultUIConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".faucet", "config.yaml")
	}
	return filepath.Join(dir, "faucet", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("FAUCET_GATEWAY_URL"); u != "" {
		c.Gateway.URL = u
	}
	if addr := os.Getenv("FAUCET_DEVNET_ADDR"); addr != "" {
		c.Devnet.Addr = addr
	}
	if lvl := os.Getenv("FAUCET_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if v := os.Getenv("FAUCET_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}
	if v := os.Getenv("FAUCET_DARK_MODE"); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			if dark {
				c.UI.Theme = ThemeDark
			} else {
				c.UI.Theme = ThemeLight
			}
		}
	}
}

// GetGatewayTimeout returns the gateway request timeout as a duration.
func (c *Config) GetGatewayTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gateway.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Gateway.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid gateway url %q (want http:// or https://)", c.Gateway.URL)
	}
	if c.Gateway.Timeout != "" {
		if _, err := time.ParseDuration(c.Gateway.Timeout); err != nil {
			return fmt.Errorf("invalid gateway timeout %q: %w", c.Gateway.Timeout, err)
		}
	}

	if c.Logging.Level != "" {
		valid := false
		for _, l := range validLevels {
			if strings.EqualFold(c.Logging.Level, l) {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
		}
	}

	switch c.UI.Theme {
	case ThemeAuto, ThemeLight, ThemeDark, "":
	default:
		return fmt.Errorf("invalid theme: %s (valid: auto, light, dark)", c.UI.Theme)
	}

	if c.UI.EffectTimeUnit != "" {
		if _, err := time.ParseDuration(c.UI.EffectTimeUnit); err != nil {
			return fmt.Errorf("invalid effect time unit %q: %w", c.UI.EffectTimeUnit, err)
		}
	}

	if _, err := ledger.NewSimulator(c.Devnet.Ledger); err != nil {
		return fmt.Errorf("invalid devnet ledger: %w", err)
	}
	return nil
}
