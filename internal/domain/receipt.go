package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Receipt is the record of a finished trip.
// Duration always equals FinishedAt - StartedAt and StoppedFor + MovingFor.
type Receipt struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	StoppedFor time.Duration
	MovingFor  time.Duration
	Total      float64
	FinalState State
	CreatedAt  time.Time
}

// NewReceipt builds the receipt for a trip that has just been checkpointed.
func NewReceipt(t Trip) Receipt {
	return Receipt{
		StartedAt:  t.StartedAt,
		FinishedAt: t.LastBoundary,
		Duration:   t.LastBoundary.Sub(t.StartedAt),
		StoppedFor: t.Stopped,
		MovingFor:  t.Moving,
		Total:      t.Total,
		FinalState: t.State,
	}
}

// RoundAmount rounds a stored amount to cents. Presentation only.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders an amount with two decimals, e.g. "1.70".
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
