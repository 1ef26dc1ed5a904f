package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"skytycoon/internal/api"
	"skytycoon/internal/auth"
	"skytycoon/internal/config"
	"skytycoon/internal/events"
	"skytycoon/internal/game"
	"skytycoon/internal/logger"
	"skytycoon/internal/models"
	"skytycoon/internal/store"
	"skytycoon/internal/store/sqlstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging, cfg.Server.Environment, os.Stdout)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer logClose("store", closeStore)

	airports, err := loadAirports(cfg.Data.AirportsCSV)
	if err != nil {
		return fmt.Errorf("failed to load airports: %w", err)
	}
	if _, err := game.SeedAirports(ctx, st, airports); err != nil {
		return err
	}

	opts := []game.Option{game.WithAirlineCode(cfg.Game.AirlineCode)}
	if cfg.Data.AircraftCatalog != "" {
		catalog, err := game.LoadCatalogJSON(cfg.Data.AircraftCatalog)
		if err != nil {
			return fmt.Errorf("failed to load aircraft: %w", err)
		}
		opts = append(opts, game.WithCatalog(catalog))
	}

	var pub events.Publisher
	if cfg.Events.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nats.Close()
		pub = nats
	}
	opts = append(opts, game.WithEvents(events.NewLog(pub)))
	engine := game.NewEngine(st, opts...)

	apiOpts := api.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CORSDebug:      cfg.CORS.Debug,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.Auth.Enabled {
		apiOpts.Tokens = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	}
	if cfg.RateLimit.Enabled {
		apiOpts.Limiter = api.NewRateLimiter(api.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.New(engine, apiOpts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening",
			"port", cfg.Server.Port,
			"store", cfg.Store.Driver,
			"auth_enabled", cfg.Auth.Enabled,
			"airports", len(airports),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if apiOpts.Limiter != nil {
		g.Go(func() error {
			return apiOpts.Limiter.Cleanup(gctx, time.Minute)
		})
	}
	err = g.Wait()

	if snap, ok := st.(store.Snapshotter); ok {
		if serr := snap.Snapshot(context.Background()); serr != nil {
			slog.Error("Failed to save game state", "error", serr)
		}
	}
	return err
}

func logClose(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		slog.Error("Failed to close "+what, "error", err)
	}
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.Driver), cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
		}
		return db, db.Close, nil
	default:
		mem := store.NewMemStore(store.WithSnapshotPath(cfg.SnapshotPath))
		if err := mem.LoadSnapshot(); err != nil {
			return nil, nil, fmt.Errorf("failed to load savegame: %w", err)
		}
		slog.Info("Memory store ready", "snapshot_path", cfg.SnapshotPath)
		return mem, func() error { return nil }, nil
	}
}

func loadAirports(path string) ([]models.Airport, error) {
	if path == "" {
		return game.DefaultAirports()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return game.LoadAirportsCSV(f)
}
