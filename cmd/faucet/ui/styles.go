// Package ui renders the faucet session in a terminal and drives it with
// bubbletea.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode
	LightForeground = lipgloss.Color("#1a1a2e")
	LightPrimary    = lipgloss.Color("#3b00b9")
	LightAccent     = lipgloss.Color("#29abe2")
	LightMuted      = lipgloss.Color("#8a8f98")
	LightBorder     = lipgloss.Color("#d6dae0")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark mode
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#29abe2")
	DarkAccent     = lipgloss.Color("#f15a24")
	DarkMuted      = lipgloss.Color("#6b7280")
	DarkBorder     = lipgloss.Color("#2a3850")
	DarkCard       = lipgloss.Color("#1a2536")

	// Semantic colors, shared by both modes
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Coin        = lipgloss.Color("#fbb03b")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor returns the dark or light theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

// DetectDark guesses whether the terminal background is dark. COLORFGBG
// wins when set; otherwise lipgloss queries the terminal.
func DetectDark() bool {
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			return (bg >= 0 && bg <= 6) || bg == 8
		}
	}
	return lipgloss.HasDarkBackground()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	Header   lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style

	TokenOption   lipgloss.Style
	TokenSelected lipgloss.Style
	TokenDisabled lipgloss.Style

	Input  lipgloss.Style
	Button lipgloss.Style
	Busy   lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Coin    lipgloss.Style
	Spinner lipgloss.Style
	Footer  lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	option := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),
		Label: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		TokenOption: option.Foreground(theme.Foreground),
		TokenSelected: option.
			BorderForeground(theme.Primary).
			Foreground(theme.Primary).
			Bold(true),
		TokenDisabled: option.
			Foreground(theme.Muted).
			BorderForeground(theme.Muted),

		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Primary).
			Padding(0, 2).
			Bold(true),
		Busy: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Background(theme.Muted).
			Padding(0, 2),

		Success: lipgloss.NewStyle().Foreground(Success).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(theme.Accent),

		Coin:    lipgloss.NewStyle().Foreground(Coin).Bold(true),
		Spinner: lipgloss.NewStyle().Foreground(theme.Accent),
		Footer:  lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles for the detected terminal background.
func DefaultStyles() Styles {
	return NewStyles(ThemeFor(DetectDark()))
}
