// Package app wires the taximeter's collaborators from a Config.
// Both binaries (the HTTP API and the interactive shell) share it so they
// journal and publish finished trips the same way.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/taximeter/internal/config"
	"github.com/pkordes/taximeter/internal/events"
	"github.com/pkordes/taximeter/internal/repo"
	"github.com/pkordes/taximeter/internal/service"
)

// App holds the services built by New.
type App struct {
	Meter    *service.MeterService
	Receipts *service.ReceiptService

	closers []func()
}

// New builds the ledger, the trip journal and the optional event publisher.
//
// With DATABASE_URL set the journal is Postgres (migrated on startup);
// otherwise receipts are kept in memory for the life of the process.
// With AMQP_URL set, finished trips are published to AMQP_EXCHANGE.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{}

	receipts, err := a.openJournal(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher service.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app.New: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := p.Close(); err != nil {
				log.Warn("failed to close event publisher", "error", err)
			}
		})
		publisher = p
		log.Info("publishing trip events", "exchange", cfg.AMQPExchange)
	}

	ledger := service.NewLedger(nil)
	a.Meter = service.NewMeterService(ledger, receipts, publisher, log)
	a.Receipts = service.NewReceiptService(receipts)
	return a, nil
}

func (a *App) openJournal(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.ReceiptRepo, error) {
	if cfg.DatabaseURL == "" {
		log.Info("no DATABASE_URL set, keeping receipts in memory")
		return repo.NewMemoryReceiptRepo(), nil
	}

	// pgxpool.New does not open connections immediately; the Ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.New: create database pool: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("app.New: connect to database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	err = repo.Migrate(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}
	log.Info("database connection established")

	return repo.NewReceiptRepo(pool), nil
}

// Close releases the database pool and the broker connection.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
