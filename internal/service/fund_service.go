package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

const (
	// DefaultNavHistoryLimit is used when no limit is requested.
	DefaultNavHistoryLimit = 2000
	// MaxNavHistoryLimit caps the NAV history series.
	MaxNavHistoryLimit = 5000
)

// FundService serves the public fund-level views: headline metrics,
// allocation, NAV history and raw positions. It also records new snapshots.
type FundService struct {
	selector  *SnapshotSelector
	snapshots SnapshotStore
	requests  CapitalRequestStore
	freeze    *FreezeService
	now       func() time.Time
}

// NewFundService creates a new FundService.
func NewFundService(selector *SnapshotSelector, snapshots SnapshotStore, requests CapitalRequestStore, freeze *FreezeService) *FundService {
	return &FundService{
		selector:  selector,
		snapshots: snapshots,
		requests:  requests,
		freeze:    freeze,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to resolve baselines.
func (s *FundService) WithClock(now func() time.Time) *FundService {
	s.now = now
	return s
}

// Metrics returns the headline numbers. With no snapshots the NAV fields are
// null; the week-to-date PnL is null when no week-start baseline exists.
func (s *FundService) Metrics(ctx context.Context) (model.FundMetrics, error) {
	frozen, err := s.freeze.IsFrozen(ctx)
	if err != nil {
		return model.FundMetrics{}, errors.Join(apperrors.ErrFailedToRetrieveMetrics, err)
	}

	set, err := s.selector.Select(ctx, s.now())
	if err != nil {
		return model.FundMetrics{}, errors.Join(apperrors.ErrFailedToRetrieveMetrics, err)
	}

	metrics := model.FundMetrics{Frozen: frozen}

	if set.HasData() {
		ts := set.Latest.Timestamp
		metrics.NAV = model.NullDecimal(set.Latest.TotalNAV)
		metrics.NAVTimestamp = &ts
		metrics.LatestSnapshotID = snapshotID(set.Latest)
		if set.WeekStart != nil {
			metrics.WeekToDatePnL = model.NullDecimal(set.Latest.TotalNAV.Sub(set.WeekStart.TotalNAV))
		}
	}

	total, err := InvestorPrincipal(ctx, s.requests, "")
	if err != nil {
		logging.FromContext(ctx).Warn("fund-wide principal unavailable for metrics",
			slog.String("error", err.Error()),
		)
	} else {
		metrics.TotalPrincipal = model.NullDecimal(total)
	}

	return metrics, nil
}

// Allocation breaks the latest snapshot down by category and reports how far
// the positions are from the recorded NAV. A mismatch is never an error.
func (s *FundService) Allocation(ctx context.Context) (model.Allocation, error) {
	allocation := model.Allocation{Rows: []model.AllocationRow{}}

	latest, err := optional(s.snapshots.Latest(ctx))
	if err != nil {
		return model.Allocation{}, errors.Join(apperrors.ErrFailedToRetrieveAllocation, err)
	}
	if latest == nil {
		return allocation, nil
	}

	totals, err := s.snapshots.CategoryTotals(ctx, latest.ID)
	if err != nil {
		return model.Allocation{}, errors.Join(apperrors.ErrFailedToRetrieveAllocation, err)
	}

	positionTotal := decimal.Zero
	for category, value := range totals {
		allocation.Rows = append(allocation.Rows, model.AllocationRow{Category: category, Value: value})
		positionTotal = positionTotal.Add(value)
	}
	sort.Slice(allocation.Rows, func(i, j int) bool {
		if c := allocation.Rows[i].Value.Cmp(allocation.Rows[j].Value); c != 0 {
			return c > 0
		}
		return allocation.Rows[i].Category < allocation.Rows[j].Category
	})

	allocation.SnapshotID = snapshotID(latest)
	allocation.NAV = model.NullDecimal(latest.TotalNAV)
	allocation.PositionTotal = positionTotal
	allocation.Discrepancy = model.NullDecimal(latest.TotalNAV.Sub(positionTotal))

	if !allocation.Discrepancy.Decimal.IsZero() {
		logging.FromContext(ctx).Debug("positions do not sum to nav",
			slog.Int64("snapshot_id", latest.ID),
			slog.String("discrepancy", allocation.Discrepancy.Decimal.String()),
		)
	}
	return allocation, nil
}

// NavHistory returns the NAV series in ascending time order. A non-positive
// limit uses DefaultNavHistoryLimit; larger limits are clamped to MaxNavHistoryLimit.
func (s *FundService) NavHistory(ctx context.Context, limit int) ([]model.NavPoint, error) {
	if limit <= 0 {
		limit = DefaultNavHistoryLimit
	}
	if limit > MaxNavHistoryLimit {
		limit = MaxNavHistoryLimit
	}

	points, err := s.snapshots.NavHistory(ctx, limit)
	if err != nil {
		return nil, errors.Join(apperrors.ErrFailedToRetrieveNavHistory, err)
	}
	return points, nil
}

// Positions returns the raw positions of the latest snapshot, or an empty
// slice and a nil id when no snapshot exists.
func (s *FundService) Positions(ctx context.Context) (*int64, []model.PositionSnapshot, error) {
	latest, err := optional(s.snapshots.Latest(ctx))
	if err != nil {
		return nil, nil, errors.Join(apperrors.ErrFailedToRetrievePositions, err)
	}
	if latest == nil {
		return nil, []model.PositionSnapshot{}, nil
	}

	positions, err := s.snapshots.Positions(ctx, latest.ID)
	if err != nil {
		return nil, nil, errors.Join(apperrors.ErrFailedToRetrievePositions, err)
	}
	return snapshotID(latest), positions, nil
}

// RecordSnapshotParams is one snapshot as produced by the valuation job.
type RecordSnapshotParams struct {
	Timestamp time.Time
	TotalNAV  decimal.Decimal
	Positions []model.PositionSnapshot
}

// RecordSnapshot stores a NAV snapshot and its positions atomically.
// A zero timestamp means now.
func (s *FundService) RecordSnapshot(ctx context.Context, params RecordSnapshotParams) (int64, error) {
	if params.TotalNAV.IsNegative() {
		return 0, fmt.Errorf("total nav must not be negative, got %s", params.TotalNAV)
	}

	ts := params.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	id, err := s.snapshots.RecordSnapshot(ctx, ts.UTC(), params.TotalNAV, params.Positions)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("snapshot recorded",
		slog.Int64("snapshot_id", id),
		slog.Time("timestamp", ts.UTC()),
		slog.String("total_nav", params.TotalNAV.String()),
		slog.Int("positions", len(params.Positions)),
	)
	return id, nil
}
