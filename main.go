package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/shopdesk-be/internal/api"
	"github.com/isdelr/shopdesk-be/internal/auth"
	"github.com/isdelr/shopdesk-be/internal/config"
	"github.com/isdelr/shopdesk-be/internal/database"
	"github.com/isdelr/shopdesk-be/internal/logger"
	"github.com/isdelr/shopdesk-be/internal/monitoring"
	"github.com/isdelr/shopdesk-be/internal/repository"
	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/isdelr/shopdesk-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
}

// run wires everything and serves until SIGINT/SIGTERM. Returning instead
// of exiting lets the deferred store and hub cleanup run on every path.
func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up the store
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	creds, err := auth.NewCredentials(auth.Config{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
		Cost:   cfg.BcryptCost,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize credentials: %w", err)
	}

	allocator, err := services.NewInvoiceIDAllocator(store, services.AllocatorConfig{
		Prefix:     cfg.InvoiceIDPrefix,
		Width:      cfg.InvoiceIDWidth,
		Retries:    cfg.InvoiceIDRetries,
		RetryDelay: cfg.InvoiceIDRetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize invoice id allocator: %w", err)
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// Set up services
	svc := api.Services{
		Accounts:    services.NewAccountService(store, creds),
		Invoices:    services.NewInvoiceService(store, store, allocator, hub),
		Customers:   services.NewCustomerService(store),
		Inventory:   services.NewInventoryService(store),
		ShopProfile: services.NewShopProfileService(store),
	}

	// Set up and run the sequence headroom monitor
	monitor, err := monitoring.NewSequenceMonitor(allocator, hub, cfg.SequenceCheckSchedule, cfg.SequenceWarnRatio)
	if err != nil {
		return fmt.Errorf("failed to initialize sequence monitor: %w", err)
	}
	monitor.Start()

	// Set up router
	router := api.NewRouter(api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TokenTTL:       cfg.TokenTTL,
		SecureCookies:  !cfg.IsDevelopment(),
	}, creds, svc, hub, store)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case err := <-serveErr:
		runErr = fmt.Errorf("listen and serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	monitor.Stop(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	stopHub()

	log.Info().Msg("Server exiting")
	return runErr
}

// openStore connects the backend selected by STORE_DRIVER and prepares its
// schema or indexes.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repository.NewMongoStore(client, cfg.MongoDatabase), nil

	case config.StoreSQLite:
		db, err := database.NewSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		return repository.NewSQLiteStore(db), nil

	case config.StoreMemory:
		log.Warn().Msg("Using the in-memory store; data is lost on exit")
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
