package config

import "time"

// Theme names for UIConfig.Theme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UIConfig holds terminal interface configuration.
type UIConfig struct {
	// Theme is auto (detect from the terminal background), light or dark.
	Theme string `yaml:"theme" json:"theme"`

	// EffectTimeUnit is the wall-clock length of one effect time unit.
	EffectTimeUnit string `yaml:"effect_time_unit" json:"effect_time_unit,omitempty"`

	// ShowFooter toggles the links footer.
	ShowFooter bool `yaml:"show_footer" json:"show_footer"`

	// Width caps the rendered width (0 = terminal width).
	Width int `yaml:"width,omitempty" json:"width,omitempty"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:          ThemeAuto,
		EffectTimeUnit: "1s",
		ShowFooter:     true,
	}
}

// GetEffectTimeUnit returns the effect time unit, falling back to one second.
func (c *UIConfig) GetEffectTimeUnit() time.Duration {
	d, err := time.ParseDuration(c.EffectTimeUnit)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// DarkMode resolves the theme. detected is used for ThemeAuto.
func (c *UIConfig) DarkMode(detected bool) bool {
	switch c.Theme {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return detected
	}
}
