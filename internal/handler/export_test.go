package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/taximeter/internal/domain"
	"github.com/pkordes/taximeter/internal/handler"
)

func exportingService(recs []domain.Receipt) *mockReceiptServicer {
	return &mockReceiptServicer{
		export: func(_ context.Context) ([]domain.Receipt, error) { return recs, nil },
	}
}

func TestGetExport_JSONDefault(t *testing.T) {
	fixture := receiptFixture()
	h := newReceiptHTTPHandler(exportingService([]domain.Receipt{fixture}))

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rows []handler.ReceiptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, fixture.ID, rows[0].ID)
}

func TestGetExport_CSV(t *testing.T) {
	fixture := receiptFixture()
	h := newReceiptHTTPHandler(exportingService([]domain.Receipt{fixture}))

	req := httptest.NewRequest(http.MethodGet, "/export?format=csv", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus one row")
	assert.Equal(t, "receipt_id", records[0][0])
	assert.Equal(t, []string{
		fixture.ID.String(),
		"2025-06-27T09:00:00Z",
		"2025-06-27T09:00:40Z",
		"40.0", "10.0", "30.0",
		"1.70",
		"moving",
	}, records[1])
}

func TestGetExport_CSV_Empty(t *testing.T) {
	h := newReceiptHTTPHandler(exportingService([]domain.Receipt{}))

	req := httptest.NewRequest(http.MethodGet, "/export?format=csv", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 1, "only the header row")
}

func TestGetExport_422_UnknownFormat(t *testing.T) {
	h := newReceiptHTTPHandler(exportingService(nil))

	req := httptest.NewRequest(http.MethodGet, "/export?format=xml", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
