// Package domain contains the core data types for the taximeter.
// It has no dependencies on the other internal packages and is imported by
// every one of them (repo, service, handler, shell).
package domain

import "time"

// Trip is the single fare-accounting session owned by the ledger.
// The zero value is an inactive trip.
//
// While Active, Total holds the money accrued up to LastBoundary; time after
// LastBoundary has not been charged yet. Stopped and Moving split the
// already-charged interval (LastBoundary - StartedAt) by tier.
type Trip struct {
	Active       bool
	State        State
	StartedAt    time.Time
	LastBoundary time.Time
	Total        float64
	Stopped      time.Duration
	Moving       time.Duration
}

// NewTrip opens a trip at now in the stopped tier.
func NewTrip(now time.Time) Trip {
	return Trip{
		Active:       true,
		State:        StateStopped,
		StartedAt:    now,
		LastBoundary: now,
	}
}

// Checkpoint folds the time since t.LastBoundary into t.Total at the rate of
// the tier the trip is currently in, and advances the boundary by the same
// elapsed duration. It returns the updated trip and the amount added.
//
// A clock that reads earlier than the boundary yields zero elapsed time, so
// the total never decreases and the boundary never moves backwards.
// Inactive trips are returned unchanged.
func Checkpoint(t Trip, now time.Time) (Trip, float64) {
	if !t.Active {
		return t, 0
	}
	elapsed := Since(t.LastBoundary, now)
	increment := Charge(t.State, elapsed)

	t.Total += increment
	t.LastBoundary = t.LastBoundary.Add(elapsed)
	switch t.State {
	case StateStopped:
		t.Stopped += elapsed
	case StateMoving:
		t.Moving += elapsed
	}
	return t, increment
}

// Pending returns the amount accrued since the last boundary without
// touching the trip.
func (t Trip) Pending(now time.Time) float64 {
	if !t.Active {
		return 0
	}
	return Charge(t.State, Since(t.LastBoundary, now))
}

// Charge is the money owed for spending d in state s.
func Charge(s State, d time.Duration) float64 {
	return d.Seconds() * s.Rate()
}

// Since returns now - from, clamped to zero.
func Since(from, now time.Time) time.Duration {
	d := now.Sub(from)
	if d < 0 {
		return 0
	}
	return d
}

// Snapshot is a read-only view of an active trip at a point in time.
// Total includes time not yet checkpointed.
type Snapshot struct {
	State     State
	Rate      float64
	StartedAt time.Time
	Elapsed   time.Duration
	Total     float64
}

// StateChange describes the outcome of a ChangeState call.
// Changed is false when the trip was already in the requested state; in that
// case no checkpoint was taken and Increment is zero.
type StateChange struct {
	Previous  State
	State     State
	Changed   bool
	Increment float64
	Total     float64
}
