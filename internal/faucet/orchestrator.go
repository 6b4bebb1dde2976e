package faucet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledgerfaucet/internal/identity"
	"ledgerfaucet/internal/logging"
	"ledgerfaucet/internal/validate"
)

// RemoteClient performs transfers on behalf of the orchestrator.
type RemoteClient interface {
	// TransferLegacy sends tokens on the legacy rail to a principal or
	// account identifier, returning the backend's status text (may be empty).
	TransferLegacy(ctx context.Context, identifier string) (string, error)
	// TransferStandard sends tokens on the standard rail to owner.
	TransferStandard(ctx context.Context, owner identity.Principal) error
}

// EffectBatcher starts one feedback batch per successful transfer.
type EffectBatcher interface {
	FireBatch()
}

type noEffects struct{}

func (noEffects) FireBatch() {}

// Orchestrator owns a Session and applies every transition to it.
// All methods are safe for concurrent use.
type Orchestrator struct {
	client  RemoteClient
	effects EffectBatcher
	newID   func() string

	mu        sync.Mutex
	session   Session
	version   uint64
	observers map[uint64]func(Snapshot)
	nextObs   uint64

	// notifyMu orders deliveries; published is the newest version delivered.
	notifyMu  sync.Mutex
	published uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEffects sets the batcher fired on every transition into Succeeded.
func WithEffects(e EffectBatcher) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.effects = e
		}
	}
}

// WithAttemptIDs replaces the attempt id generator.
func WithAttemptIDs(gen func() string) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// New creates an orchestrator with a fresh session.
func New(client RemoteClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		effects:   noEffects{},
		newID:     uuid.NewString,
		session:   NewSession(),
		observers: make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func orchLog() *logging.Logger {
	return logging.Get(logging.CategoryOrchestrator)
}

// Submit validates text against the selected token and, when valid,
// performs one transfer. It blocks until the attempt resolves and returns
// the resulting snapshot. While a transfer is pending, Submit changes
// nothing and returns the current snapshot.
func (o *Orchestrator) Submit(ctx context.Context, text string) Snapshot {
	o.mu.Lock()
	if o.session.State.Kind == Pending {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		orchLog().Debug("submit ignored: attempt %s pending", snap.Attempt)
		return snap
	}

	tt := o.session.SelectedToken
	o.session.InputText = text
	outcome := validate.Validate(text, tt)

	if !outcome.Valid {
		verr := &ValidationError{Token: tt, Err: outcome.Err}
		o.session.State = State{Kind: Failed, Message: string(verr.Reason()), Err: verr}
		snap := o.changedLocked()
		o.mu.Unlock()

		orchLog().Info("submit rejected locally (%s): %s", tt, verr.Reason())
		logging.Audit().Log(logging.AuditEvent{
			Type:  logging.AuditAttemptRejected,
			Token: tt.String(),
			Error: verr.Error(),
		})
		o.publish(snap)
		return snap
	}

	attempt := o.newID()
	o.session.Attempt = attempt
	o.session.State = State{Kind: Pending}
	pending := o.changedLocked()
	o.mu.Unlock()

	log := orchLog().With("attempt", attempt)
	log.Info("transfer pending: token=%s format=%s", tt, outcome.Format)
	logging.Audit().Log(logging.AuditEvent{
		Type:      logging.AuditAttemptSubmitted,
		AttemptID: attempt,
		Token:     tt.String(),
		Format:    string(outcome.Format),
	})
	o.publish(pending)

	start := time.Now()
	message, err := o.transfer(ctx, tt, outcome)
	elapsed := time.Since(start)

	var next State
	if err != nil {
		rerr := newRemoteError(tt, err)
		next = State{Kind: Failed, Message: rerr.Error(), Err: rerr}
		log.Warn("transfer failed after %s (%s): %v", elapsed, rerr.Kind, err)
	} else {
		if message == "" {
			message = SuccessMessage(tt)
		}
		next = State{Kind: Succeeded, Message: message}
		log.Info("transfer succeeded after %s", elapsed)
	}

	o.mu.Lock()
	o.session.State = next
	snap := o.changedLocked()
	o.mu.Unlock()

	logging.Audit().Attempt(attempt, tt.String(), elapsed, err, next.Message)
	o.publish(snap)
	if next.Kind == Succeeded {
		o.effects.FireBatch()
	}
	return snap
}

// transfer dispatches to the operation of tt. A panicking client is
// reported as an error.
func (o *Orchestrator) transfer(ctx context.Context, tt TokenType, out validate.Outcome) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			message, err = "", panicError(r)
		}
	}()

	if tt == TokenStandard {
		return "", o.client.TransferStandard(ctx, out.Principal)
	}
	return o.client.TransferLegacy(ctx, out.Text)
}

// ChangeTokenType selects t and resets the session to Idle with empty
// input. It reports false, changing nothing, while a transfer is pending
// or when t is not a known token.
func (o *Orchestrator) ChangeTokenType(t TokenType) bool {
	if !t.Valid() {
		return false
	}

	o.mu.Lock()
	if o.session.State.Kind == Pending {
		o.mu.Unlock()
		orchLog().Debug("token change to %s ignored while pending", t)
		return false
	}
	prev := o.session.SelectedToken
	o.session.SelectedToken = t
	o.session.InputText = ""
	o.session.State = State{Kind: Idle}
	snap := o.changedLocked()
	o.mu.Unlock()

	orchLog().Debug("token changed: %s -> %s", prev, t)
	logging.Audit().Log(logging.AuditEvent{Type: logging.AuditTokenChanged, Token: t.String(), Success: true})
	o.publish(snap)
	return true
}

// SetInput records the identifier being typed. It reports false while a
// transfer is pending.
func (o *Orchestrator) SetInput(text string) bool {
	o.mu.Lock()
	if o.session.State.Kind == Pending {
		o.mu.Unlock()
		return false
	}
	if o.session.InputText == text {
		o.mu.Unlock()
		return true
	}
	o.session.InputText = text
	snap := o.changedLocked()
	o.mu.Unlock()

	o.publish(snap)
	return true
}

// Snapshot returns a copy of the current session.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// InputsDisabled reports whether the form should refuse input.
func (o *Orchestrator) InputsDisabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.State.Kind == Pending
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		Session:        o.session,
		InputsDisabled: o.session.State.Kind == Pending,
		Version:        o.version,
	}
}

// changedLocked records a session change and returns the new snapshot.
func (o *Orchestrator) changedLocked() Snapshot {
	o.version++
	return o.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change.
// fn runs on the goroutine that made the change, must not block and must
// not call back into the Orchestrator. Versions delivered to fn only grow;
// a snapshot overtaken by a newer change before delivery is dropped.
// The returned function removes the subscription.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) (cancel func()) {
	o.mu.Lock()
	o.nextObs++
	id := o.nextObs
	o.observers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, id)
			o.mu.Unlock()
		})
	}
}

func (o *Orchestrator) publish(snap Snapshot) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	if snap.Version <= o.published {
		orchLog().Debug("dropping stale snapshot v%d (delivered v%d)", snap.Version, o.published)
		return
	}
	o.published = snap.Version

	o.mu.Lock()
	fns := make([]func(Snapshot), 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
