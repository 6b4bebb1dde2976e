package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ledgerfaucet/internal/effects"
	"ledgerfaucet/internal/faucet"
	"ledgerfaucet/internal/token"
	"ledgerfaucet/internal/validate"
)

const (
	defaultWidth = 72
	maxWidth     = 100
	coinRows     = 4
	coinGlyph    = '●'
)

// ViewState is everything Render needs. It holds no references back into
// the orchestrator.
type ViewState struct {
	Snapshot faucet.Snapshot

	// Input is the text shown in the identifier field. When empty the
	// token's placeholder is shown instead.
	Input string

	// Spinner is the current spinner frame, shown while pending.
	Spinner string

	// Units are the visible effect units and Now the instant they are drawn at.
	Units []effects.Unit
	Now   time.Time

	Width  int
	Footer string
}

// Render draws the form for v. It has no side effects and the same input
// always produces the same output.
func Render(v ViewState, s Styles) string {
	width := v.Width
	if width <= 0 {
		width = defaultWidth
	}
	if width > maxWidth {
		width = maxWidth
	}

	sections := []string{
		renderHeader(s),
		renderCoins(v.Units, v.Now, width, s),
		renderTokens(v.Snapshot, s),
		renderInput(v, width, s),
		renderButton(v, s),
		renderStatus(v.Snapshot, s),
	}
	if v.Footer != "" {
		sections = append(sections, v.Footer)
	}

	out := make([]string, 0, len(sections))
	for _, sec := range sections {
		if sec != "" {
			out = append(out, sec)
		}
	}
	return strings.Join(out, "\n\n")
}

func renderHeader(s Styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Header.Render("Test Token Faucet"),
		s.Subtitle.Render(fmt.Sprintf("Get %d test tokens for development and testing", token.TransferAmount)),
	)
}

func renderTokens(snap faucet.Snapshot, s Styles) string {
	label := "Select token type:"
	if snap.InputsDisabled {
		label += s.Muted.Render(" (locked while processing)")
	}

	options := make([]string, 0, len(token.All))
	for _, tt := range token.All {
		marker := "○"
		style := s.TokenOption
		if tt == snap.SelectedToken {
			marker = "●"
			style = s.TokenSelected
		} else if snap.InputsDisabled {
			style = s.TokenDisabled
		}
		options = append(options, style.Render(fmt.Sprintf("%s %s\n  %s", marker, tt.Symbol(), tt.Description())))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Label.Render(label),
		lipgloss.JoinHorizontal(lipgloss.Top, options...),
	)
}

func renderInput(v ViewState, width int, s Styles) string {
	hint := validate.Hint(v.Snapshot.SelectedToken)

	content := v.Input
	if content == "" {
		content = s.Muted.Render(hint.Placeholder)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Label.Render(fmt.Sprintf("Enter your %s:", hint.Label)),
		s.Input.Width(width-2).Render(content),
	)
}

// ButtonText is the submit button caption for snap.
func ButtonText(snap faucet.Snapshot) string {
	if snap.InputsDisabled {
		return "Processing..."
	}
	return fmt.Sprintf("Request %s Tokens", snap.SelectedToken.Symbol())
}

func renderButton(v ViewState, s Styles) string {
	if v.Snapshot.InputsDisabled {
		text := ButtonText(v.Snapshot)
		if v.Spinner != "" {
			text = v.Spinner + " " + text
		}
		return s.Busy.Render(text)
	}
	return s.Button.Render(ButtonText(v.Snapshot)) + s.Muted.Render("  enter to submit · tab to switch token · esc to quit")
}

// StatusText is the status line for snap, empty when idle.
func StatusText(snap faucet.Snapshot) string {
	switch snap.State.Kind {
	case faucet.Pending:
		return "Processing your request..."
	case faucet.Succeeded, faucet.Failed:
		return snap.State.Message
	default:
		return ""
	}
}

func renderStatus(snap faucet.Snapshot, s Styles) string {
	text := StatusText(snap)
	if text == "" {
		return ""
	}
	switch snap.State.Kind {
	case faucet.Succeeded:
		return s.Success.Render(text)
	case faucet.Failed:
		if hint := FailureHint(snap); hint != "" {
			return lipgloss.JoinVertical(lipgloss.Left, s.Error.Render(text), s.Muted.Render(hint))
		}
		return s.Error.Render(text)
	default:
		return s.Info.Render(text)
	}
}

// FailureHint is the corrective detail of a local validation failure.
func FailureHint(snap faucet.Snapshot) string {
	var verr *faucet.ValidationError
	if snap.State.Kind != faucet.Failed || !errors.As(snap.State.Err, &verr) {
		return ""
	}
	return verr.Hint()
}

// renderCoins places each visible unit on a small grid: the column comes
// from its position, the row from how far through its lifetime it is.
func renderCoins(units []effects.Unit, now time.Time, width int, s Styles) string {
	visible := false
	grid := make([][]rune, coinRows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, u := range units {
		if u.Shown.IsZero() || u.Lifetime <= 0 {
			continue
		}
		progress := float64(now.Sub(u.Shown)) / float64(u.Lifetime)
		if progress < 0 {
			progress = 0
		}
		if progress >= 1 {
			continue
		}
		row := int(progress * coinRows)
		col := int(u.Position * float64(width))
		if col >= width {
			col = width - 1
		}
		grid[row][col] = coinGlyph
		visible = true
	}
	if !visible {
		return ""
	}

	rows := make([]string, coinRows)
	for i, r := range grid {
		rows[i] = s.Coin.Render(strings.TrimRight(string(r), " "))
	}
	return strings.Join(rows, "\n")
}
