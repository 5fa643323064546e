package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/taximeter/internal/domain"
)

// ReceiptResponse is the JSON view of a finished trip.
type ReceiptResponse struct {
	ID              uuid.UUID  `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      time.Time  `json:"finished_at"`
	DurationSeconds float64    `json:"duration_seconds"`
	StoppedSeconds  float64    `json:"stopped_seconds"`
	MovingSeconds   float64    `json:"moving_seconds"`
	Total           float64    `json:"total"`
	TotalDisplay    string     `json:"total_display"`
	FinalState      string     `json:"final_state"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ReceiptListResponse is the body of GET /receipts.
type ReceiptListResponse struct {
	Data       []ReceiptResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// ListReceipts handles GET /receipts.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListReceipts(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &page); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "page must be an integer")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "limit must be an integer")
		return
	}

	params := domain.NewPaginationParams(page, limit)
	recs, total, err := s.receipts.ListPaged(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]ReceiptResponse, len(recs))
	for i, rec := range recs {
		data[i] = receiptToResponse(rec)
	}
	writeJSON(w, http.StatusOK, ReceiptListResponse{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetReceipt handles GET /receipts/{id}.
func (s *Server) GetReceipt(w http.ResponseWriter, r *http.Request) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id must be a UUID")
		return
	}

	rec, err := s.receipts.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptToResponse(rec))
}

// receiptToResponse converts a domain.Receipt into its JSON view.
func receiptToResponse(rec domain.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		ID:              rec.ID,
		StartedAt:       rec.StartedAt.UTC(),
		FinishedAt:      rec.FinishedAt.UTC(),
		DurationSeconds: rec.Duration.Seconds(),
		StoppedSeconds:  rec.StoppedFor.Seconds(),
		MovingSeconds:   rec.MovingFor.Seconds(),
		Total:           rec.Total,
		TotalDisplay:    domain.FormatAmount(rec.Total),
		FinalState:      rec.FinalState.String(),
	}
	if !rec.CreatedAt.IsZero() {
		created := rec.CreatedAt.UTC()
		resp.CreatedAt = &created
	}
	return resp
}
