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

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/config"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Open database connection
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("connected to database", slog.String("driver", string(db.Dialect)))

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	// Create repositories
	snapshotRepo := repository.NewSnapshotRepository(db)
	requestRepo := repository.NewCapitalRequestRepository(db)
	stateRepo := repository.NewFundStateRepository(db)

	anchor, err := service.NewWeekAnchor(cfg.Ledger.WeekStartSchedule)
	if err != nil {
		return err
	}

	// Create services
	selector := service.NewSnapshotSelector(snapshotRepo, anchor, cfg.Ledger.DayAgoWindow)
	freezeService := service.NewFreezeService(stateRepo)
	requestService := service.NewCapitalRequestService(requestRepo)

	sessions, err := auth.NewAdminSessions(auth.AdminSessionsConfig{
		Key:      cfg.Auth.SessionKey,
		Password: cfg.Auth.AdminPassword,
		Token:    cfg.Auth.AdminToken,
		TTL:      cfg.Auth.SessionTTL,
	})
	if err != nil {
		return err
	}
	if cfg.Auth.SessionKey == "" {
		logger.Warn("ADMIN_SESSION_KEY not set, admin sessions will not survive a restart")
	}
	if cfg.Auth.ProviderURL == "" {
		logger.Warn("SUPABASE_URL not set, investor routes will answer 502")
	}

	router := api.NewRouter(api.Dependencies{
		System:   service.NewSystemService(db),
		Fund:     service.NewFundService(selector, snapshotRepo, requestRepo, freezeService),
		Category: service.NewCategoryService(selector, snapshotRepo),
		Ledger:   service.NewLedgerService(requestRepo, snapshotRepo, freezeService),
		Requests: requestService,
		Freeze:   freezeService,
		Verifier: auth.NewSupabaseClient(cfg.Auth.ProviderURL, cfg.Auth.ProviderAnonKey, cfg.Ledger.FundWideRead),
		Sessions: sessions,
		Logger:   logger,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", version.Version),
			slog.String("week_start", anchor.Spec()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server exited")
	return nil
}
