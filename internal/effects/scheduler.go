// Package effects schedules the short-lived celebration units shown after a
// successful transfer. Units are fire-and-forget: each lives on its own
// timer and removes itself when its lifetime elapses.
package effects

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"ledgerfaucet/internal/logging"
)

// BatchSize is the number of units created per FireBatch call.
const BatchSize = 15

// Delay and lifetime bounds, in time units.
const (
	MaxStartDelay = 0.5
	MinLifetime   = 2.0
	MaxLifetime   = 3.0
)

// DefaultTimeUnit is the wall-clock length of one time unit.
const DefaultTimeUnit = time.Second

// Unit is one visual element of a batch.
type Unit struct {
	ID       uint64
	Batch    uint64
	Position float64 // horizontal position in [0, 1)
	Delay    time.Duration
	Lifetime time.Duration
	Shown    time.Time
}

// Stats counts scheduler activity since creation.
type Stats struct {
	Batches   uint64
	Scheduled uint64
	Shown     uint64
	Retired   uint64
	Pending   int
	Active    int
}

// Scheduler creates and retires batches of units.
type Scheduler struct {
	mu       sync.Mutex
	rng      *rand.Rand
	unit     time.Duration
	onChange func()
	now      func() time.Time

	nextID  uint64
	batches uint64
	shown   uint64
	retired uint64

	pending map[uint64]*time.Timer // waiting for their start delay
	active  map[uint64]Unit
	expiry  map[uint64]*time.Timer
	stopped bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimeUnit sets the wall-clock length of one time unit.
func WithTimeUnit(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.unit = d
		}
	}
}

// WithRand sets the random source used for delays, lifetimes and positions.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithOnChange registers a callback invoked (outside the lock) whenever a
// unit appears or disappears.
func WithOnChange(fn func()) Option {
	return func(s *Scheduler) {
		s.onChange = fn
	}
}

// NewScheduler creates a scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		unit:    DefaultTimeUnit,
		now:     time.Now,
		pending: make(map[uint64]*time.Timer),
		active:  make(map[uint64]Unit),
		expiry:  make(map[uint64]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FireBatch schedules BatchSize new units. Earlier batches keep running.
// After Stop, FireBatch does nothing.
func (s *Scheduler) FireBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.batches++
	batch := s.batches
	for i := 0; i < BatchSize; i++ {
		s.nextID++
		u := Unit{
			ID:       s.nextID,
			Batch:    batch,
			Position: s.rng.Float64(),
			Delay:    s.scale(s.rng.Float64() * MaxStartDelay),
			Lifetime: s.scale(MinLifetime + s.rng.Float64()*(MaxLifetime-MinLifetime)),
		}
		s.pending[u.ID] = time.AfterFunc(u.Delay, func() { s.show(u) })
	}

	logging.Get(logging.CategoryEffects).Debug("batch %d scheduled: %d units", batch, BatchSize)
}

func (s *Scheduler) scale(units float64) time.Duration {
	return time.Duration(units * float64(s.unit))
}

func (s *Scheduler) show(u Unit) {
	s.mu.Lock()
	if _, ok := s.pending[u.ID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, u.ID)
	u.Shown = s.now()
	s.active[u.ID] = u
	s.shown++
	s.expiry[u.ID] = time.AfterFunc(u.Lifetime, func() { s.retire(u.ID) })
	s.mu.Unlock()

	s.notify()
}

func (s *Scheduler) retire(id uint64) {
	s.mu.Lock()
	if _, ok := s.active[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	delete(s.expiry, id)
	s.retired++
	s.mu.Unlock()

	s.notify()
}

func (s *Scheduler) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Active returns the currently visible units ordered by ID.
func (s *Scheduler) Active() []Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Unit, 0, len(s.active))
	for _, u := range s.active {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Busy reports whether any unit is waiting or visible.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)+len(s.active) > 0
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Batches:   s.batches,
		Scheduled: s.nextID,
		Shown:     s.shown,
		Retired:   s.retired,
		Pending:   len(s.pending),
		Active:    len(s.active),
	}
}

// Stop cancels every timer and discards all units, pending or visible.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
	for id, t := range s.expiry {
		t.Stop()
		delete(s.expiry, id)
	}
	for id := range s.active {
		delete(s.active, id)
	}
}
