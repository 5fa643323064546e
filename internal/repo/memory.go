package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/taximeter/internal/domain"
)

// memReceiptRepo keeps receipts in process memory. It is the journal used
// when no database is configured; everything is lost when the process exits.
type memReceiptRepo struct {
	mu       sync.RWMutex
	now      func() time.Time
	receipts []domain.Receipt // sorted by FinishedAt DESC
}

// NewMemoryReceiptRepo constructs an empty in-memory ReceiptRepo.
func NewMemoryReceiptRepo() ReceiptRepo {
	return &memReceiptRepo{now: time.Now}
}

func (r *memReceiptRepo) Create(_ context.Context, rec domain.Receipt) (domain.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	for _, existing := range r.receipts {
		if existing.ID == rec.ID {
			return domain.Receipt{}, fmt.Errorf("repo.ReceiptRepo.Create: duplicate id %s", rec.ID)
		}
	}
	rec.CreatedAt = r.now().UTC()

	i, _ := slices.BinarySearchFunc(r.receipts, rec, func(a, b domain.Receipt) int {
		return b.FinishedAt.Compare(a.FinishedAt)
	})
	r.receipts = slices.Insert(r.receipts, i, rec)
	return rec, nil
}

func (r *memReceiptRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.receipts {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.Receipt{}, fmt.Errorf("repo.ReceiptRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *memReceiptRepo) List(_ context.Context) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.receipts), nil
}

func (r *memReceiptRepo) ListPaged(_ context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := p.Window(len(r.receipts))
	return slices.Clone(r.receipts[lo:hi]), int64(len(r.receipts)), nil
}
