package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/taximeter/internal/domain"
)

const liveWriteWait = 10 * time.Second

// LiveMessage is pushed on the /trip/live websocket.
// Trip is nil while no trip is open.
type LiveMessage struct {
	Active bool              `json:"active"`
	Trip   *SnapshotResponse `json:"trip,omitempty"`
}

// LiveTrip handles GET /trip/live. It upgrades to a websocket and pushes the
// current fare immediately and then every liveInterval until the client goes
// away. Frames sent by the client are read and discarded.
func (s *Server) LiveTrip(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := r.Context()
	ticker := time.NewTicker(s.liveInterval)
	defer ticker.Stop()

	for {
		if err := s.pushLive(ctx, conn); err != nil {
			slog.DebugContext(ctx, "live feed closed", "error", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pushLive(ctx context.Context, conn *websocket.Conn) error {
	msg := LiveMessage{}
	if s.meter.Active() {
		snap, err := s.meter.Peek(ctx)
		switch {
		case err == nil:
			resp := snapshotToResponse(snap)
			msg = LiveMessage{Active: true, Trip: &resp}
		case errors.Is(err, domain.ErrNoActiveTrip):
			// Finished between Active and Peek.
		default:
			return err
		}
	}

	if err := conn.SetWriteDeadline(time.Now().Add(liveWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
