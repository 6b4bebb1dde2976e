package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"ledgerfaucet/cmd/faucet/ui"
	"ledgerfaucet/internal/config"
	"ledgerfaucet/internal/effects"
	"ledgerfaucet/internal/faucet"
	"ledgerfaucet/internal/logging"
)

// runInteractive runs the form until the user quits. A config watcher runs
// alongside it and pushes theme and log level changes into the program.
func runInteractive(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}

	sched := effects.NewScheduler(effects.WithTimeUnit(cfg.UI.GetEffectTimeUnit()))
	orch := faucet.New(b, faucet.WithEffects(sched))

	// Query the terminal once, before bubbletea takes over stdin.
	detected := ui.DetectDark()
	model := ui.NewModel(orch, sched, ui.Options{
		Styles:     ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode(detected))),
		Width:      cfg.UI.Width,
		ShowFooter: cfg.UI.ShowFooter,
		Context:    ctx,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	start := time.Now()
	logging.Audit().Log(logging.AuditEvent{Type: logging.AuditSessionStart, Token: orch.Snapshot().SelectedToken.String()})
	defer func() {
		logging.Audit().Log(logging.AuditEvent{Type: logging.AuditSessionEnd, Success: true, Duration: time.Since(start)})
	}()

	g, gctx := errgroup.WithContext(ctx)

	watcher, err := config.NewWatcher(resolveConfigPath(), func(c *config.Config) {
		logging.SetLevel(c.Logging.Level)
		p.Send(ui.ThemeMsg{Dark: c.UI.DarkMode(detected)})
	})
	if err != nil {
		logging.BootWarn("config watcher unavailable: %v", err)
	} else {
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				// A missing config directory only disables live reload.
				logging.BootWarn("config watcher stopped: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("interactive form: %w", err)
		}
		return nil
	})

	return g.Wait()
}
