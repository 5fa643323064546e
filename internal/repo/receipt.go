// Package repo contains the trip journal: storage for receipts of finished
// trips. The active trip itself is never stored; it lives in the ledger.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/taximeter/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReceiptRepo defines the persistence operations for finished-trip receipts.
type ReceiptRepo interface {
	// Create stores a receipt. A zero ID is generated by the store; a
	// non-zero ID is kept. Returns the persisted record with CreatedAt set.
	Create(ctx context.Context, r domain.Receipt) (domain.Receipt, error)

	// GetByID returns domain.ErrNotFound if no receipt has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Receipt, error)

	// List returns every receipt, most recently finished first.
	List(ctx context.Context) ([]domain.Receipt, error)

	// ListPaged returns one page of receipts, most recently finished first,
	// plus the total number of receipts.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error)
}

// pgReceiptRepo is the Postgres implementation of ReceiptRepo.
type pgReceiptRepo struct {
	db db
}

// NewReceiptRepo constructs a ReceiptRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReceiptRepo(db db) ReceiptRepo {
	return &pgReceiptRepo{db: db}
}

const receiptColumns = `id, started_at, finished_at, duration_ms, stopped_ms, moving_ms, total, final_state, created_at`

// Create inserts a receipt row and returns the full persisted record.
func (r *pgReceiptRepo) Create(ctx context.Context, rec domain.Receipt) (domain.Receipt, error) {
	const q = `
		INSERT INTO receipts (id, started_at, finished_at, duration_ms, stopped_ms, moving_ms, total, final_state)
		VALUES (COALESCE(@id, gen_random_uuid()), @started_at, @finished_at, @duration_ms, @stopped_ms, @moving_ms, @total, @final_state)
		RETURNING ` + receiptColumns

	var id pgtype.UUID
	if rec.ID != uuid.Nil {
		id = pgtype.UUID{Bytes: rec.ID, Valid: true}
	}

	args := pgx.NamedArgs{
		"id":          id, // invalid becomes NULL
		"started_at":  rec.StartedAt,
		"finished_at": rec.FinishedAt,
		"duration_ms": rec.Duration.Milliseconds(),
		"stopped_ms":  rec.StoppedFor.Milliseconds(),
		"moving_ms":   rec.MovingFor.Milliseconds(),
		"total":       rec.Total,
		"final_state": string(rec.FinalState),
	}

	result, err := scanReceipt(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("repo.ReceiptRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a receipt by primary key.
func (r *pgReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Receipt, error) {
	const q = `SELECT ` + receiptColumns + ` FROM receipts WHERE id = @id`

	result, err := scanReceipt(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("repo.ReceiptRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all receipts ordered by finished_at descending.
func (r *pgReceiptRepo) List(ctx context.Context) ([]domain.Receipt, error) {
	const q = `SELECT ` + receiptColumns + ` FROM receipts ORDER BY finished_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ReceiptRepo.List: %w", err)
	}
	out, err := collectReceipts(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ReceiptRepo.List: %w", err)
	}
	return out, nil
}

// ListPaged returns one page of receipts and the total row count.
func (r *pgReceiptRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error) {
	const countQ = `SELECT count(*) FROM receipts`
	const q = `
		SELECT ` + receiptColumns + `
		FROM receipts
		ORDER BY finished_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReceiptRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReceiptRepo.ListPaged: %w", err)
	}
	out, err := collectReceipts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReceiptRepo.ListPaged: %w", err)
	}
	return out, total, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func collectReceipts(rows pgx.Rows) ([]domain.Receipt, error) {
	defer rows.Close()

	var out []domain.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// scanReceipt maps a single row into a domain.Receipt, converting the
// millisecond columns back into durations.
func scanReceipt(s scanner) (domain.Receipt, error) {
	var (
		rec                   domain.Receipt
		id                    pgtype.UUID
		durMS, stopMS, moveMS int64
		state                 string
	)

	err := s.Scan(&id, &rec.StartedAt, &rec.FinishedAt, &durMS, &stopMS, &moveMS, &rec.Total, &state, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Receipt{}, domain.ErrNotFound
		}
		return domain.Receipt{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	rec.Duration = time.Duration(durMS) * time.Millisecond
	rec.StoppedFor = time.Duration(stopMS) * time.Millisecond
	rec.MovingFor = time.Duration(moveMS) * time.Millisecond
	rec.FinalState = domain.State(state)
	return rec, nil
}
