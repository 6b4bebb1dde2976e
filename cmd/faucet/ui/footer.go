package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"ledgerfaucet/internal/ledger"
)

const (
	sourceURL    = "https://github.com/dfinity/ledger-faucet/"
	dashboardURL = "https://dashboard.internetcomputer.org/canister/"
)

// FooterMarkdown lists the project's resource links.
func FooterMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Source code on GitHub](%s) · ", sourceURL)
	fmt.Fprintf(&b, "[TESTICP Ledger Canister](%s%s) · ", dashboardURL, ledger.LegacyLedgerCanister)
	fmt.Fprintf(&b, "[TICRC1 Ledger Canister](%s%s)\n\n", dashboardURL, ledger.StandardLedgerCanister)
	fmt.Fprintf(&b, "Proudly hosted on the [Internet Computer](%s%s)\n", dashboardURL, ledger.FaucetCanister)
	return b.String()
}

// RenderFooter renders FooterMarkdown with glamour. style is a glamour
// style name ("dark", "light", "notty", ...). On failure the raw markdown
// is returned.
func RenderFooter(width int, style string) string {
	md := FooterMarkdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// FooterStyle picks the glamour style for a theme.
func FooterStyle(t Theme) string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
