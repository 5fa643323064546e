package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/taximeter/internal/domain"
	"github.com/pkordes/taximeter/internal/repo"
)

// ReceiptService reads the trip journal.
type ReceiptService struct {
	repo repo.ReceiptRepo
}

// NewReceiptService constructs a ReceiptService backed by the provided repo.
func NewReceiptService(r repo.ReceiptRepo) *ReceiptService {
	return &ReceiptService{repo: r}
}

// GetByID returns one receipt. Returns domain.ErrNotFound if it does not exist.
func (s *ReceiptService) GetByID(ctx context.Context, id uuid.UUID) (domain.Receipt, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.GetByID: %w", err)
	}
	return rec, nil
}

// ListPaged returns one page of receipts, newest first, and the total count.
// Always returns a non-nil slice.
func (s *ReceiptService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error) {
	recs, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReceiptService.ListPaged: %w", err)
	}
	if recs == nil {
		recs = []domain.Receipt{}
	}
	return recs, total, nil
}

// Export returns every receipt in the journal, newest first.
// Always returns a non-nil slice.
func (s *ReceiptService) Export(ctx context.Context) ([]domain.Receipt, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReceiptService.Export: %w", err)
	}
	if recs == nil {
		return []domain.Receipt{}, nil
	}
	return recs, nil
}
