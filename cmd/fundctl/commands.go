package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/validation"
)

// register adds every fundctl subcommand to c, writing reports to out.
func register(c *subcommands.Commander, out io.Writer) {
	c.Register(&metricsCmd{out: out}, "fund")
	c.Register(&freezeCmd{out: out}, "fund")
	c.Register(&recordSnapshotCmd{out: out}, "fund")

	c.Register(&pendingCmd{out: out}, "requests")
	c.Register(&settleCmd{out: out}, "requests")

	c.Register(&migrateCmd{out: out}, "maintenance")
}

type freezeCmd struct{ out io.Writer }

func (*freezeCmd) Name() string     { return "freeze" }
func (*freezeCmd) Synopsis() string { return "turn PnL attribution freeze on or off" }
func (*freezeCmd) Usage() string {
	return `fundctl freeze on|off

  Sets the fund-wide freeze flag. Setting the state already in effect is a no-op.
`
}
func (*freezeCmd) SetFlags(*flag.FlagSet) {}

func (c *freezeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c.out, f.Args(), runFreeze)
}

func runFreeze(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("expected exactly one argument: on or off")
	}

	var frozen bool
	switch strings.ToLower(args[0]) {
	case "on":
		frozen = true
	case "off":
		frozen = false
	default:
		return usageError(fmt.Sprintf("unknown freeze state %q, expected on or off", args[0]))
	}

	result, err := a.freeze.SetFrozen(ctx, frozen)
	if err != nil {
		return err
	}

	state := "OFF"
	if result.Frozen {
		state = "ON"
	}
	if result.Changed {
		fmt.Fprintf(a.out, "freeze %s (updated %s)\n", state, result.UpdatedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintf(a.out, "freeze already %s\n", state)
	}
	return nil
}

type metricsCmd struct{ out io.Writer }

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "print fund metrics and allocation" }
func (*metricsCmd) Usage() string {
	return `fundctl metrics

  Prints NAV, week-to-date PnL, total principal, the freeze flag and the
  category allocation of the latest snapshot.
`
}
func (*metricsCmd) SetFlags(*flag.FlagSet) {}

func (c *metricsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c.out, f.Args(), runMetrics)
}

func runMetrics(ctx context.Context, a *app, _ []string) error {
	metrics, err := a.fund.Metrics(ctx)
	if err != nil {
		return err
	}
	allocation, err := a.fund.Allocation(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAV\t%s\n", formatUSDNull(metrics.NAV))
	if metrics.NAVTimestamp != nil {
		fmt.Fprintf(w, "As of\t%s\n", metrics.NAVTimestamp.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Week to date\t%s\n", formatUSDNull(metrics.WeekToDatePnL))
	fmt.Fprintf(w, "Total principal\t%s\n", formatUSDNull(metrics.TotalPrincipal))
	fmt.Fprintf(w, "Frozen\t%t\n", metrics.Frozen)

	if len(allocation.Rows) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Category\tValue")
		for _, row := range allocation.Rows {
			fmt.Fprintf(w, "%s\t%s\n", row.Category, formatUSD(row.Value))
		}
		fmt.Fprintf(w, "Discrepancy\t%s\n", formatUSDNull(allocation.Discrepancy))
	}
	return w.Flush()
}

type pendingCmd struct {
	out  io.Writer
	kind string
}

func (*pendingCmd) Name() string     { return "pending" }
func (*pendingCmd) Synopsis() string { return "list pending capital requests" }
func (*pendingCmd) Usage() string {
	return `fundctl pending [-kind deposit|withdrawal]

  Lists PENDING deposit and withdrawal requests of every investor, newest first.
`
}

func (c *pendingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "only list deposit or withdrawal requests")
}

func (c *pendingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c.out, f.Args(), func(ctx context.Context, a *app, args []string) error {
		return runPending(ctx, a, c.kind)
	})
}

func runPending(ctx context.Context, a *app, kind string) error {
	filter, err := request.ParseRequestFilter(kind, string(model.StatusPending), "")
	if err != nil {
		return usageError(err.Error())
	}

	requests, err := a.requests.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Fprintln(a.out, "no pending requests")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tInvestor\tKind\tAmount\tCreated")
	for _, req := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			req.ID, req.InvestorID, req.Kind, formatUSD(req.Amount), req.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

type settleCmd struct{ out io.Writer }

func (*settleCmd) Name() string     { return "settle" }
func (*settleCmd) Synopsis() string { return "settle a pending capital request" }
func (*settleCmd) Usage() string {
	return `fundctl settle <request-id>

  Moves a PENDING request to SETTLED so that it counts toward principal.
`
}
func (*settleCmd) SetFlags(*flag.FlagSet) {}

func (c *settleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c.out, f.Args(), runSettle)
}

func runSettle(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("expected exactly one request id")
	}
	if err := validation.ValidateUUID(args[0]); err != nil {
		return usageError(err.Error())
	}

	req, err := a.requests.Settle(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "settled %s %s of %s for %s\n", req.Kind, req.ID, formatUSD(req.Amount), req.InvestorID)
	return nil
}

type recordSnapshotCmd struct{ out io.Writer }

func (*recordSnapshotCmd) Name() string     { return "record-snapshot" }
func (*recordSnapshotCmd) Synopsis() string { return "record a NAV snapshot from a JSON file" }
func (*recordSnapshotCmd) Usage() string {
	return `fundctl record-snapshot <file.json>

  Records one NAV snapshot and its positions atomically. Use - to read stdin.
  The file holds {"timestamp": RFC3339 (optional), "total_nav": number,
  "positions": [{"category", "source", "asset", "chain", "amount", "value"}]}.
`
}
func (*recordSnapshotCmd) SetFlags(*flag.FlagSet) {}

func (c *recordSnapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c.out, f.Args(), runRecordSnapshot)
}

func runRecordSnapshot(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("expected exactly one snapshot file")
	}

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		r = file
	}

	return recordSnapshot(ctx, a, r)
}

func recordSnapshot(ctx context.Context, a *app, r io.Reader) error {
	var body request.RecordSnapshotRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("invalid snapshot file: %w", err)
	}

	input, err := validation.ValidateRecordSnapshot(body)
	if err != nil {
		return err
	}

	id, err := a.fund.RecordSnapshot(ctx, service.RecordSnapshotParams{
		Timestamp: input.Timestamp,
		TotalNAV:  input.TotalNAV,
		Positions: input.Positions,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "recorded snapshot %d with %d positions, NAV %s\n", id, len(input.Positions), formatUSD(input.TotalNAV))
	return nil
}

type migrateCmd struct{ out io.Writer }

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending schema migrations" }
func (*migrateCmd) Usage() string {
	return `fundctl migrate

  Applies every pending migration for the configured database driver.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c.out, f.Args(), runMigrate)
}

func runMigrate(_ context.Context, a *app, _ []string) error {
	if err := database.Migrate(a.db); err != nil {
		return err
	}
	version, err := database.SchemaVersion(a.db)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "schema at version %d (%s)\n", version, a.db.Dialect)
	return nil
}
