package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// LedgerRequest identifies whose ledger to compute and what the caller may read.
type LedgerRequest struct {
	InvestorID string
	// FundWideRead grants access to the fund-wide principal aggregate.
	// Without it the attribution fields stay null.
	FundWideRead bool
}

// LedgerService computes an investor's principal, pending withdrawals and
// share of the profit pool.
type LedgerService struct {
	requests  CapitalRequestStore
	snapshots SnapshotStore
	freeze    *FreezeService
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(requests CapitalRequestStore, snapshots SnapshotStore, freeze *FreezeService) *LedgerService {
	return &LedgerService{
		requests:  requests,
		snapshots: snapshots,
		freeze:    freeze,
	}
}

// Ledger computes the investor's ledger.
//
// The investor's own sums and the freeze flag are load-bearing: any failure
// there fails the call. The fund-wide principal is best effort and a failure
// degrades the attribution fields to null. Attribution is also null while
// frozen or when no NAV is available.
func (s *LedgerService) Ledger(ctx context.Context, req LedgerRequest) (model.InvestorLedger, error) {
	var (
		principal, pending decimal.Decimal
		frozen             bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		principal, err = InvestorPrincipal(gctx, s.requests, req.InvestorID)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.requests.Sum(gctx, model.RequestFilter{
			InvestorID: req.InvestorID,
			Kind:       model.KindWithdrawal,
			Status:     model.StatusPending,
		})
		return err
	})
	g.Go(func() error {
		var err error
		frozen, err = s.freeze.IsFrozen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.InvestorLedger{}, errors.Join(apperrors.ErrFailedToRetrieveLedger, err)
	}

	ledger := model.InvestorLedger{
		InvestorID:      req.InvestorID,
		Principal:       principal,
		PendingWithdraw: pending,
		Frozen:          frozen,
	}

	logger := logging.FromContext(ctx)

	latest, err := optional(s.snapshots.Latest(ctx))
	if err != nil {
		logger.Warn("nav unavailable for ledger", slog.String("error", err.Error()))
	}
	if latest != nil {
		ledger.NAV = model.NullDecimal(latest.TotalNAV)
	}

	if frozen || !ledger.NAV.Valid || !req.FundWideRead {
		return ledger, nil
	}

	total, err := InvestorPrincipal(ctx, s.requests, "")
	if err != nil {
		logger.Warn("fund-wide principal unavailable, attribution omitted",
			slog.String("investor_id", req.InvestorID),
			slog.String("error", err.Error()),
		)
		return ledger, nil
	}

	profitPool, share := Attribute(ledger.NAV.Decimal, total, principal)
	ledger.TotalPrincipal = model.NullDecimal(total)
	ledger.ProfitPool = model.NullDecimal(profitPool)
	ledger.InvestorPnL = model.NullDecimal(share)
	return ledger, nil
}

// Attribute splits the profit pool (nav - totalPrincipal) pro rata by
// principal. The share is zero when totalPrincipal is not positive.
func Attribute(nav, totalPrincipal, principal decimal.Decimal) (profitPool, share decimal.Decimal) {
	profitPool = nav.Sub(totalPrincipal)
	if !totalPrincipal.IsPositive() {
		return profitPool, decimal.Zero
	}
	return profitPool, profitPool.Mul(principal).Div(totalPrincipal)
}
