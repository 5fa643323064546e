package handler_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/taximeter/internal/domain"
	"github.com/pkordes/taximeter/internal/handler"
)

func dialLive(t *testing.T, svc handler.MeterServicer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(handler.NewServer(svc, nil, 10*time.Millisecond).Routes())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/trip/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLiveTrip_PushesSnapshots(t *testing.T) {
	svc := &mockMeterServicer{
		active: func() bool { return true },
		peek:   func(_ context.Context) (domain.Snapshot, error) { return snapshotFixture(), nil },
	}
	conn := dialLive(t, svc)

	for range 2 {
		var msg handler.LiveMessage
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		assert.True(t, msg.Active)
		require.NotNil(t, msg.Trip)
		assert.Equal(t, "moving", msg.Trip.State)
		assert.Equal(t, "1.20", msg.Trip.TotalDisplay)
	}
}

func TestLiveTrip_Inactive(t *testing.T) {
	svc := &mockMeterServicer{
		active: func() bool { return false },
	}
	conn := dialLive(t, svc)

	var msg handler.LiveMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.False(t, msg.Active)
	assert.Nil(t, msg.Trip)
}

func TestLiveTrip_TripFinishedBetweenChecks(t *testing.T) {
	svc := &mockMeterServicer{
		active: func() bool { return true },
		peek: func(_ context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{}, domain.ErrNoActiveTrip
		},
	}
	conn := dialLive(t, svc)

	var msg handler.LiveMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.False(t, msg.Active)
}
