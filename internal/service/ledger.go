package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkordes/taximeter/internal/domain"
)

// Ledger owns the one Trip of a meter session and answers fare queries.
//
// Every method takes the same lock for its whole read-compute-write sequence,
// so callers on other goroutines (HTTP handlers, the live feed, an interrupt
// handler finishing the trip) never see a checkpointed-but-not-reset trip.
type Ledger struct {
	mu    sync.Mutex
	clock domain.Clock
	trip  domain.Trip
}

// NewLedger constructs a Ledger with no active trip. A nil clock means
// domain.SystemClock.
func NewLedger(clock domain.Clock) *Ledger {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &Ledger{clock: clock}
}

// Start opens a new trip in the stopped tier.
// Returns domain.ErrAlreadyActive if a trip is already open.
func (l *Ledger) Start() (domain.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.trip.Active {
		return domain.Snapshot{}, fmt.Errorf("service.Ledger.Start: %w", domain.ErrAlreadyActive)
	}
	now := l.clock.Now()
	l.trip = domain.NewTrip(now)
	return snapshot(l.trip, now), nil
}

// ChangeState checkpoints the time spent in the outgoing tier and switches
// to target. Asking for the current tier is a successful no-op reported via
// StateChange.Changed == false.
// Returns domain.ErrNoActiveTrip if no trip is open.
func (l *Ledger) ChangeState(target domain.State) (domain.StateChange, error) {
	if !target.Valid() {
		return domain.StateChange{}, fmt.Errorf("service.Ledger.ChangeState: %w: unknown state %q", domain.ErrValidation, target)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.trip.Active {
		return domain.StateChange{}, fmt.Errorf("service.Ledger.ChangeState: %w", domain.ErrNoActiveTrip)
	}
	prev := l.trip.State
	if prev == target {
		return domain.StateChange{Previous: prev, State: prev, Total: l.trip.Total}, nil
	}

	trip, inc := domain.Checkpoint(l.trip, l.clock.Now())
	trip.State = target
	l.trip = trip

	return domain.StateChange{
		Previous:  prev,
		State:     target,
		Changed:   true,
		Increment: inc,
		Total:     trip.Total,
	}, nil
}

// Peek reports the fare as of now without checkpointing.
// Returns domain.ErrNoActiveTrip if no trip is open.
func (l *Ledger) Peek() (domain.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.trip.Active {
		return domain.Snapshot{}, fmt.Errorf("service.Ledger.Peek: %w", domain.ErrNoActiveTrip)
	}
	return snapshot(l.trip, l.clock.Now()), nil
}

// Finish checkpoints the trip, returns its receipt and resets the ledger to
// inactive. Returns domain.ErrNoActiveTrip if no trip is open.
func (l *Ledger) Finish() (domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.trip.Active {
		return domain.Receipt{}, fmt.Errorf("service.Ledger.Finish: %w", domain.ErrNoActiveTrip)
	}
	trip, _ := domain.Checkpoint(l.trip, l.clock.Now())
	l.trip = domain.Trip{}
	return domain.NewReceipt(trip), nil
}

// Active reports whether a trip is open.
func (l *Ledger) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trip.Active
}

// Trip returns a copy of the current trip record.
func (l *Ledger) Trip() domain.Trip {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trip
}

func snapshot(t domain.Trip, now time.Time) domain.Snapshot {
	return domain.Snapshot{
		State:     t.State,
		Rate:      t.State.Rate(),
		StartedAt: t.StartedAt,
		Elapsed:   domain.Since(t.StartedAt, now),
		Total:     t.Total + t.Pending(now),
	}
}
