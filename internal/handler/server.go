// Package handler implements the HTTP API of the taximeter.
// All handlers are methods on Server. Methods are split into files by
// resource (health.go, meter.go, receipt.go, export.go, live.go) but share
// the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pkordes/taximeter/internal/domain"
	"github.com/pkordes/taximeter/spec"
)

// MeterServicer defines the fare operations the meter handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without a ledger or journal.
type MeterServicer interface {
	Start(ctx context.Context) (domain.Snapshot, error)
	ChangeState(ctx context.Context, target domain.State) (domain.StateChange, error)
	Peek(ctx context.Context) (domain.Snapshot, error)
	Finish(ctx context.Context) (domain.Receipt, error)
	Active() bool
}

// ReceiptServicer defines the trip journal queries the receipt and export
// handlers depend on.
type ReceiptServicer interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Receipt, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error)
	Export(ctx context.Context) ([]domain.Receipt, error)
}

// DefaultLiveInterval is used when NewServer is given a non-positive interval.
const DefaultLiveInterval = time.Second

// Server serves every API endpoint. Wire it in main.go via Routes.
type Server struct {
	meter        MeterServicer
	receipts     ReceiptServicer
	liveInterval time.Duration
	upgrader     websocket.Upgrader
}

// NewServer constructs the Server with all its dependencies.
// liveInterval is the push period of the /trip/live websocket.
func NewServer(meter MeterServicer, receipts ReceiptServicer, liveInterval time.Duration) *Server {
	if liveInterval <= 0 {
		liveInterval = DefaultLiveInterval
	}
	return &Server{
		meter:        meter,
		receipts:     receipts,
		liveInterval: liveInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are policed by the CORS middleware for plain requests;
			// the live feed is read-only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, 0)
}

// Routes returns a chi router with every endpoint registered.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/trip", func(r chi.Router) {
		r.Post("/", s.StartTrip)
		r.Get("/", s.PeekTrip)
		r.Put("/state", s.ChangeTripState)
		r.Post("/finish", s.FinishTrip)
		r.Get("/live", s.LiveTrip)
	})

	r.Route("/receipts", func(r chi.Router) {
		r.Get("/", s.ListReceipts)
		r.Get("/{id}", s.GetReceipt)
	})
	r.Get("/export", s.GetExport)

	return r
}

// serveOpenAPI handles GET /openapi.yaml.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
