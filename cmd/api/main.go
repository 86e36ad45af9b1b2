// Package main is the entry point for the Trip Atlas API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/mwhitfield/tripatlas/backend/internal/config"
	"github.com/mwhitfield/tripatlas/backend/internal/directory"
	"github.com/mwhitfield/tripatlas/backend/internal/geocode"
	"github.com/mwhitfield/tripatlas/backend/internal/handler"
	"github.com/mwhitfield/tripatlas/backend/internal/middleware"
	"github.com/mwhitfield/tripatlas/backend/internal/resolver"
	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"
	"github.com/mwhitfield/tripatlas/backend/internal/service"
	"github.com/mwhitfield/tripatlas/backend/migrations"
)

// lockName identifies the store-wide exclusive trip-mutation lock. Every
// process sharing the database contends on this one name.
const lockName = "tripatlas:trip-mutations"

// maxBodySize bounds incoming request bodies. A trip with a few dozen legs
// is a few KB; 1 MiB leaves generous headroom.
const maxBodySize = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// The bootstrap path (sheet table + header rows) is allowed to fail hard;
	// everything after this point reports errors in-band instead.
	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// --- Core wiring ------------------------------------------------------
	store := rowstore.NewPostgres(pool)
	if err := rowstore.CheckSheets(context.Background(), store); err != nil {
		slog.Error("row store not bootstrapped", "error", err)
		os.Exit(1)
	}

	lock := rowstore.NewAdvisoryLock(pool, lockName, cfg.LockTimeout)
	airports := directory.New(store)
	geocoder := geocode.NewCache(store, geocode.NewHTTPClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey, nil))
	trips := service.NewTripService(store, lock, resolver.New(airports, geocoder))

	srv := handler.NewServer(trips, airports, geocoder, func(ctx context.Context) error {
		return rowstore.CheckSheets(ctx, store)
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))

	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // mutations may wait out the 10s lock bound
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
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
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all embedded migrations through the goose
// programmatic API over a database/sql connection.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("applied migration", "migration", res.Source.Path)
	}
	return nil
}
