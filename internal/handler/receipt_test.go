package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/taximeter/internal/domain"
	"github.com/pkordes/taximeter/internal/handler"
)

// mockReceiptServicer is a test double for handler.ReceiptServicer.
type mockReceiptServicer struct {
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Receipt, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error)
	export    func(ctx context.Context) ([]domain.Receipt, error)
}

func (m *mockReceiptServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Receipt, error) {
	return m.getByID(ctx, id)
}
func (m *mockReceiptServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockReceiptServicer) Export(ctx context.Context) ([]domain.Receipt, error) {
	return m.export(ctx)
}

// compile-time check: mockReceiptServicer must satisfy handler.ReceiptServicer.
var _ handler.ReceiptServicer = (*mockReceiptServicer)(nil)

func newReceiptHTTPHandler(svc handler.ReceiptServicer) http.Handler {
	return handler.NewServer(nil, svc, time.Second).Routes()
}

// ---- GET /receipts ---------------------------------------------------------

func TestListReceipts_200(t *testing.T) {
	var gotParams domain.PaginationParams
	svc := &mockReceiptServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error) {
			gotParams = p
			return []domain.Receipt{receiptFixture(), receiptFixture()}, 7, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/receipts?page=2&limit=2", nil)
	rec := httptest.NewRecorder()
	newReceiptHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 2}, gotParams)

	var resp handler.ReceiptListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 2, Total: 7}, resp.Pagination)
}

func TestListReceipts_Defaults(t *testing.T) {
	var gotParams domain.PaginationParams
	svc := &mockReceiptServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error) {
			gotParams = p
			return []domain.Receipt{}, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/receipts", nil)
	rec := httptest.NewRecorder()
	newReceiptHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 20}, gotParams)
	assert.Contains(t, rec.Body.String(), `"data":[]`, "empty page is an empty array, not null")
}

func TestListReceipts_400_BadPage(t *testing.T) {
	svc := &mockReceiptServicer{}

	req := httptest.NewRequest(http.MethodGet, "/receipts?page=two", nil)
	rec := httptest.NewRecorder()
	newReceiptHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /receipts/{id} ----------------------------------------------------

func TestGetReceipt_200(t *testing.T) {
	fixture := receiptFixture()
	svc := &mockReceiptServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Receipt, error) {
			if id != fixture.ID {
				return domain.Receipt{}, domain.ErrNotFound
			}
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/receipts/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()
	newReceiptHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ReceiptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, "moving", resp.FinalState)
	require.NotNil(t, resp.CreatedAt)
}

func TestGetReceipt_404(t *testing.T) {
	svc := &mockReceiptServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Receipt, error) {
			return domain.Receipt{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/receipts/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	newReceiptHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestGetReceipt_400_BadID(t *testing.T) {
	svc := &mockReceiptServicer{}

	req := httptest.NewRequest(http.MethodGet, "/receipts/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newReceiptHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
