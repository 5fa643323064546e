// Package main is the entry point for the taximeter HTTP API.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/taximeter/internal/app"
	"github.com/pkordes/taximeter/internal/config"
	"github.com/pkordes/taximeter/internal/handler"
	"github.com/pkordes/taximeter/internal/middleware"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Services ---------------------------------------------------------
	deps, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID, RealIP, Logger, Recoverer, CORS, body cap.
	// Recoverer sits inside the logger so a panic is still logged as a 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(deps.Meter, deps.Receipts, cfg.LiveInterval)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// No WriteTimeout: it would cut /trip/live websocket connections.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	// A trip still open at shutdown is closed so its receipt reaches the journal.
	if deps.Meter.Active() {
		if _, err := deps.Meter.Finish(ctx); err != nil {
			slog.Error("failed to finish open trip", "error", err)
		}
	}
	slog.Info("server stopped")
}
