package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// DefaultDayAgoWindow is the distance between now and the day-ago baseline.
const DefaultDayAgoWindow = 24 * time.Hour

// SnapshotStore is the snapshot data the services read from and the snapshot
// producer writes to. Lookups that match nothing return apperrors.ErrSnapshotNotFound.
type SnapshotStore interface {
	Latest(ctx context.Context) (*model.NavSnapshot, error)
	Previous(ctx context.Context, id int64) (*model.NavSnapshot, error)
	AtOrBefore(ctx context.Context, t time.Time) (*model.NavSnapshot, error)
	CategoryTotals(ctx context.Context, snapshotID int64) (model.CategoryTotals, error)
	Positions(ctx context.Context, snapshotID int64) ([]model.PositionSnapshot, error)
	NavHistory(ctx context.Context, limit int) ([]model.NavPoint, error)
	RecordSnapshot(ctx context.Context, ts time.Time, totalNAV decimal.Decimal, positions []model.PositionSnapshot) (int64, error)
}

// SnapshotSelector finds the latest snapshot and the three baselines the
// PnL views compare against.
type SnapshotSelector struct {
	snapshots SnapshotStore
	anchor    *WeekAnchor
	dayAgo    time.Duration
}

// NewSnapshotSelector creates a SnapshotSelector. A non-positive dayAgo falls
// back to DefaultDayAgoWindow.
func NewSnapshotSelector(snapshots SnapshotStore, anchor *WeekAnchor, dayAgo time.Duration) *SnapshotSelector {
	if dayAgo <= 0 {
		dayAgo = DefaultDayAgoWindow
	}
	return &SnapshotSelector{
		snapshots: snapshots,
		anchor:    anchor,
		dayAgo:    dayAgo,
	}
}

// Select resolves the baselines for now. An empty store yields a BaselineSet
// without data and no error; a missing baseline is left nil.
func (s *SnapshotSelector) Select(ctx context.Context, now time.Time) (model.BaselineSet, error) {
	anchor, err := s.anchor.Anchor(now)
	if err != nil {
		return model.BaselineSet{}, err
	}
	set := model.BaselineSet{WeekStartAnchor: anchor}

	latest, err := optional(s.snapshots.Latest(ctx))
	if err != nil {
		return model.BaselineSet{}, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	if latest == nil {
		return set, nil
	}
	set.Latest = latest

	if set.Previous, err = optional(s.snapshots.Previous(ctx, latest.ID)); err != nil {
		return model.BaselineSet{}, fmt.Errorf("failed to load previous snapshot: %w", err)
	}
	if set.DayAgo, err = optional(s.snapshots.AtOrBefore(ctx, now.Add(-s.dayAgo))); err != nil {
		return model.BaselineSet{}, fmt.Errorf("failed to load day-ago snapshot: %w", err)
	}
	if set.WeekStart, err = optional(s.snapshots.AtOrBefore(ctx, anchor)); err != nil {
		return model.BaselineSet{}, fmt.Errorf("failed to load week-start snapshot: %w", err)
	}

	return set, nil
}

// optional turns "not found" into a nil snapshot.
func optional(s *model.NavSnapshot, err error) (*model.NavSnapshot, error) {
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func snapshotID(s *model.NavSnapshot) *int64 {
	if s == nil {
		return nil
	}
	id := s.ID
	return &id
}
