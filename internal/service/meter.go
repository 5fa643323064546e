// Package service contains the business logic of the taximeter.
// Ledger is the fare state machine; MeterService and ReceiptService wrap it
// and the trip journal for the HTTP API and the interactive shell.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/taximeter/internal/domain"
	"github.com/pkordes/taximeter/internal/repo"
)

// EventPublisher announces finished trips to the outside world.
type EventPublisher interface {
	PublishTripFinished(ctx context.Context, r domain.Receipt) error
}

// MeterService drives one Ledger and records every finished trip.
type MeterService struct {
	ledger   *Ledger
	receipts repo.ReceiptRepo
	events   EventPublisher
	log      *slog.Logger
}

// NewMeterService constructs a MeterService. receipts and events may be nil,
// in which case finished trips are neither journaled nor published.
func NewMeterService(ledger *Ledger, receipts repo.ReceiptRepo, events EventPublisher, log *slog.Logger) *MeterService {
	if log == nil {
		log = slog.Default()
	}
	return &MeterService{ledger: ledger, receipts: receipts, events: events, log: log}
}

// Start opens a trip. Returns domain.ErrAlreadyActive if one is open.
func (s *MeterService) Start(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.ledger.Start()
	if err != nil {
		s.log.WarnContext(ctx, "attempted to start a trip while another is in progress")
		return domain.Snapshot{}, fmt.Errorf("service.MeterService.Start: %w", err)
	}
	s.log.InfoContext(ctx, "trip started",
		"started_at", snap.StartedAt,
		"state", snap.State,
	)
	return snap, nil
}

// ChangeState switches the billing tier of the open trip.
// Returns domain.ErrNoActiveTrip or domain.ErrValidation.
func (s *MeterService) ChangeState(ctx context.Context, target domain.State) (domain.StateChange, error) {
	change, err := s.ledger.ChangeState(target)
	if err != nil {
		s.log.WarnContext(ctx, "state change rejected", "target", target, "error", err)
		return domain.StateChange{}, fmt.Errorf("service.MeterService.ChangeState: %w", err)
	}
	if !change.Changed {
		s.log.DebugContext(ctx, "state change ignored", "state", change.State)
		return change, nil
	}
	s.log.InfoContext(ctx, "state changed",
		"from", change.Previous,
		"to", change.State,
		"increment", change.Increment,
		"total", change.Total,
	)
	return change, nil
}

// Peek returns the current fare without checkpointing.
// Returns domain.ErrNoActiveTrip if no trip is open.
func (s *MeterService) Peek(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.ledger.Peek()
	if err != nil {
		s.log.WarnContext(ctx, "status check attempted without active trip")
		return domain.Snapshot{}, fmt.Errorf("service.MeterService.Peek: %w", err)
	}
	s.log.DebugContext(ctx, "status check",
		"state", snap.State,
		"elapsed_s", snap.Elapsed.Seconds(),
		"total", domain.FormatAmount(snap.Total),
	)
	return snap, nil
}

// Finish closes the open trip and returns its receipt.
// Journaling and publishing are best-effort: their failures are logged and
// the receipt is still returned, because the fare itself is already final.
// Returns domain.ErrNoActiveTrip if no trip is open.
func (s *MeterService) Finish(ctx context.Context) (domain.Receipt, error) {
	rec, err := s.ledger.Finish()
	if err != nil {
		s.log.WarnContext(ctx, "attempted to finish a non-existent trip")
		return domain.Receipt{}, fmt.Errorf("service.MeterService.Finish: %w", err)
	}
	rec.ID = uuid.New()
	s.log.InfoContext(ctx, "trip finished",
		"receipt_id", rec.ID,
		"duration_s", rec.Duration.Seconds(),
		"total", domain.FormatAmount(rec.Total),
	)

	if s.receipts != nil {
		stored, err := s.receipts.Create(ctx, rec)
		if err != nil {
			s.log.ErrorContext(ctx, "failed to journal receipt", "receipt_id", rec.ID, "error", err)
		} else {
			rec = stored
		}
	}
	if s.events != nil {
		if err := s.events.PublishTripFinished(ctx, rec); err != nil {
			s.log.ErrorContext(ctx, "failed to publish trip.finished", "receipt_id", rec.ID, "error", err)
		}
	}
	return rec, nil
}

// Active reports whether a trip is open.
func (s *MeterService) Active() bool {
	return s.ledger.Active()
}

// IsLifecycleError reports whether err is one of the recoverable lifecycle
// errors (already active, no active trip).
func IsLifecycleError(err error) bool {
	return errors.Is(err, domain.ErrAlreadyActive) || errors.Is(err, domain.ErrNoActiveTrip)
}
