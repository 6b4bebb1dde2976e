package ui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ledgerfaucet/internal/effects"
	"ledgerfaucet/internal/faucet"
	"ledgerfaucet/internal/logging"
	"ledgerfaucet/internal/validate"
)

// TickInterval is how often the coin field is redrawn while units are alive.
const TickInterval = 100 * time.Millisecond

// Messages for tea updates
type (
	snapshotMsg   faucet.Snapshot
	submitDoneMsg faucet.Snapshot
	tickMsg       time.Time

	// ThemeMsg switches the color scheme at runtime.
	ThemeMsg struct{ Dark bool }
)

// Options configures a Model.
type Options struct {
	Styles     Styles
	Width      int
	ShowFooter bool

	// Context bounds transfers started from the form.
	Context context.Context
}

// Model is the bubbletea model of the faucet form. It never mutates the
// session directly; every change goes through the orchestrator.
type Model struct {
	orch    *faucet.Orchestrator
	effects *effects.Scheduler
	ctx     context.Context

	input   textinput.Model
	spinner spinner.Model
	styles  Styles

	snap        faucet.Snapshot
	updates     chan faucet.Snapshot
	done        chan struct{}
	closeOnce   *sync.Once
	unsubscribe func()

	width      int
	showFooter bool
	footer     string
	ticking    bool
	quitting   bool
}

// NewModel creates the form for orch. sched is stopped when the user quits.
func NewModel(orch *faucet.Orchestrator, sched *effects.Scheduler, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	ti := textinput.New()
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 256
	ti.Width = width - 6
	ti.PromptStyle = opts.Styles.Label
	ti.PlaceholderStyle = opts.Styles.Muted

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	updates := make(chan faucet.Snapshot, 32)
	unsubscribe := orch.Subscribe(func(s faucet.Snapshot) {
		select {
		case updates <- s:
		default:
		}
	})

	m := Model{
		orch:        orch,
		effects:     sched,
		ctx:         ctx,
		input:       ti,
		spinner:     sp,
		styles:      opts.Styles,
		snap:        orch.Snapshot(),
		updates:     updates,
		done:        make(chan struct{}),
		closeOnce:   &sync.Once{},
		unsubscribe: unsubscribe,
		width:       width,
		showFooter:  opts.ShowFooter,
	}
	m.syncPlaceholder()
	m.renderFooter()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen waits for the next orchestrator notification. It yields nil once
// the model is closed.
func (m Model) listen() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		select {
		case s := <-updates:
			return snapshotMsg(s)
		case <-done:
			return nil
		}
	}
}

func (m Model) submit(text string) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return submitDoneMsg(orch.Submit(ctx, text))
	}
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > maxWidth {
			m.width = maxWidth
		}
		m.input.Width = m.width - 6
		m.renderFooter()
		return m, nil

	case snapshotMsg:
		m.apply(faucet.Snapshot(msg))
		return m, m.listen()

	case submitDoneMsg:
		done := faucet.Snapshot(msg)
		m.apply(done)
		logging.UI("submit finished: %s (v%d)", done.State.Kind, done.Version)
		if done.State.Kind == faucet.Succeeded && !m.ticking {
			m.ticking = true
			return m, tick()
		}
		return m, nil

	case tickMsg:
		if m.effects != nil && m.effects.Busy() {
			return m, tick()
		}
		m.ticking = false
		return m, nil

	case spinner.TickMsg:
		if m.snap.InputsDisabled {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case ThemeMsg:
		m.styles = NewStyles(ThemeFor(msg.Dark))
		m.input.PromptStyle = m.styles.Label
		m.input.PlaceholderStyle = m.styles.Muted
		m.spinner.Style = m.styles.Spinner
		m.renderFooter()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		m.Close()
		logging.UI("quit requested")
		return m, tea.Quit

	case tea.KeyTab, tea.KeyShiftTab:
		if m.orch.ChangeTokenType(m.orch.Snapshot().SelectedToken.Next()) {
			m.input.Reset()
			m.apply(m.orch.Snapshot())
			m.syncPlaceholder()
		}
		return m, nil

	case tea.KeyEnter:
		if m.orch.InputsDisabled() {
			return m, nil
		}
		text := m.input.Value()
		m.orch.SetInput(text)
		m.apply(m.orch.Snapshot())
		return m, tea.Batch(m.submit(text), m.spinner.Tick)
	}

	if m.orch.InputsDisabled() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.orch.SetInput(m.input.Value())
	return m, cmd
}

// apply shows snap unless the model already shows a later session.
func (m *Model) apply(snap faucet.Snapshot) {
	if m.snap.Newer(snap) {
		logging.UI("ignoring stale snapshot v%d (showing v%d)", snap.Version, m.snap.Version)
		return
	}
	tokenChanged := snap.SelectedToken != m.snap.SelectedToken
	m.snap = snap
	if tokenChanged {
		m.input.Reset()
		m.syncPlaceholder()
	}
}

func (m *Model) syncPlaceholder() {
	m.input.Placeholder = validate.Hint(m.snap.SelectedToken).Placeholder
}

func (m *Model) renderFooter() {
	if !m.showFooter {
		m.footer = ""
		return
	}
	m.footer = m.styles.Footer.Render(RenderFooter(m.width, FooterStyle(m.styles.Theme)))
}

// Close detaches the model from the orchestrator and stops the effects.
func (m Model) Close() {
	m.closeOnce.Do(func() {
		m.unsubscribe()
		close(m.done)
		if m.effects != nil {
			m.effects.Stop()
		}
	})
}

// State returns the view state the model would render now.
func (m Model) State() ViewState {
	var units []effects.Unit
	if m.effects != nil {
		units = m.effects.Active()
	}
	spin := ""
	if m.snap.InputsDisabled {
		spin = m.spinner.View()
	}
	return ViewState{
		Snapshot: m.snap,
		Input:    m.input.View(),
		Spinner:  spin,
		Units:    units,
		Now:      time.Now(),
		Width:    m.width,
		Footer:   m.footer,
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return Render(m.State(), m.styles) + "\n"
}
