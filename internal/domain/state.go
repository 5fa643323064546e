package domain

import (
	"fmt"
	"strings"
)

// State is the billing tier a trip is currently accruing in.
type State string

const (
	StateStopped State = "stopped"
	StateMoving  State = "moving"
)

// Per-second rates in currency units. Fixed for this version of the meter.
const (
	StoppedRate = 0.02
	MovingRate  = 0.05
)

// Rate returns the per-second charge for s. Unknown states accrue nothing.
func (s State) Rate() float64 {
	switch s {
	case StateStopped:
		return StoppedRate
	case StateMoving:
		return MovingRate
	default:
		return 0
	}
}

// Valid reports whether s is one of the two billing tiers.
func (s State) Valid() bool {
	return s == StateStopped || s == StateMoving
}

func (s State) String() string {
	return string(s)
}

// ParseState converts user input ("Moving", " stopped ") into a State.
// Returns ErrValidation for anything that is not a known tier.
func ParseState(raw string) (State, error) {
	s := State(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown state %q", ErrValidation, raw)
	}
	return s, nil
}
