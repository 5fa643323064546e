package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pkordes/taximeter/internal/domain"
)

// SnapshotResponse is the JSON view of an open trip.
// Total is unrounded; TotalDisplay is the two-decimal presentation.
type SnapshotResponse struct {
	State          string    `json:"state"`
	RatePerSecond  float64   `json:"rate_per_second"`
	StartedAt      time.Time `json:"started_at"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Total          float64   `json:"total"`
	TotalDisplay   string    `json:"total_display"`
}

// StateChangeRequest is the body of PUT /trip/state.
type StateChangeRequest struct {
	State string `json:"state"`
}

// StateChangeResponse is the JSON view of a ChangeState outcome.
// Changed is false when the trip was already in the requested state.
type StateChangeResponse struct {
	Previous  string  `json:"previous"`
	State     string  `json:"state"`
	Changed   bool    `json:"changed"`
	Increment float64 `json:"increment"`
	Total     float64 `json:"total"`
}

// StartTrip handles POST /trip.
func (s *Server) StartTrip(w http.ResponseWriter, r *http.Request) {
	snap, err := s.meter.Start(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshotToResponse(snap))
}

// PeekTrip handles GET /trip. It never changes the accrued total.
func (s *Server) PeekTrip(w http.ResponseWriter, r *http.Request) {
	snap, err := s.meter.Peek(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap))
}

// ChangeTripState handles PUT /trip/state.
func (s *Server) ChangeTripState(w http.ResponseWriter, r *http.Request) {
	var body StateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be a JSON object")
		return
	}

	target, err := domain.ParseState(body.State)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	change, err := s.meter.ChangeState(r.Context(), target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StateChangeResponse{
		Previous:  change.Previous.String(),
		State:     change.State.String(),
		Changed:   change.Changed,
		Increment: change.Increment,
		Total:     change.Total,
	})
}

// FinishTrip handles POST /trip/finish.
func (s *Server) FinishTrip(w http.ResponseWriter, r *http.Request) {
	rec, err := s.meter.Finish(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptToResponse(rec))
}

// --- mapping helpers --------------------------------------------------------

func snapshotToResponse(s domain.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		State:          s.State.String(),
		RatePerSecond:  s.Rate,
		StartedAt:      s.StartedAt.UTC(),
		ElapsedSeconds: s.Elapsed.Seconds(),
		Total:          s.Total,
		TotalDisplay:   domain.FormatAmount(s.Total),
	}
}
