package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/config"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// app holds the services a subcommand works with.
type app struct {
	db       *database.DB
	fund     *service.FundService
	freeze   *service.FreezeService
	requests *service.CapitalRequestService
	out      io.Writer
}

func newApp(db *database.DB, ledger config.LedgerConfig, out io.Writer) (*app, error) {
	snapshotRepo := repository.NewSnapshotRepository(db)
	requestRepo := repository.NewCapitalRequestRepository(db)

	anchor, err := service.NewWeekAnchor(ledger.WeekStartSchedule)
	if err != nil {
		return nil, err
	}

	selector := service.NewSnapshotSelector(snapshotRepo, anchor, ledger.DayAgoWindow)
	freeze := service.NewFreezeService(repository.NewFundStateRepository(db))

	return &app{
		db:       db,
		fund:     service.NewFundService(selector, snapshotRepo, requestRepo, freeze),
		freeze:   freeze,
		requests: service.NewCapitalRequestService(requestRepo),
		out:      out,
	}, nil
}

// openApp loads configuration from the environment and opens the database.
// The returned context carries the CLI logger.
func openApp(ctx context.Context, out io.Writer) (*app, context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewWithWriter(cfg.Logging, os.Stderr)
	database.SilenceMigrations()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	a, err := newApp(db, cfg.Ledger, out)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	ctx = logging.WithLogger(ctx, logger.With(slog.String("component", "fundctl")))
	return a, ctx, nil
}

// runner is the part of a subcommand that needs an open app.
type runner func(ctx context.Context, a *app, args []string) error

// execute opens the app, runs fn and maps its error onto an exit status.
func execute(ctx context.Context, out io.Writer, args []string, fn runner) subcommands.ExitStatus {
	a, ctx, err := openApp(ctx, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.db.Close()

	if err := fn(ctx, a, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// usageError marks bad command-line input.
type usageError string

func (e usageError) Error() string { return string(e) }
