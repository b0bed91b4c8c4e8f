package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// CategoryService builds the per-category PnL report.
type CategoryService struct {
	selector  *SnapshotSelector
	snapshots SnapshotStore
	now       func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(selector *SnapshotSelector, snapshots SnapshotStore) *CategoryService {
	return &CategoryService{
		selector:  selector,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to resolve baselines.
func (s *CategoryService) WithClock(now func() time.Time) *CategoryService {
	s.now = now
	return s
}

// CategoryPnL compares the latest category totals against the previous,
// day-ago and week-start snapshots. With no snapshots at all it returns an
// empty report and no error.
func (s *CategoryService) CategoryPnL(ctx context.Context) (model.CategoryPnLReport, error) {
	set, err := s.selector.Select(ctx, s.now())
	if err != nil {
		return model.CategoryPnLReport{}, errors.Join(apperrors.ErrFailedToRetrieveCategoryPnL, err)
	}

	report := model.CategoryPnLReport{
		Latest:          snapshotID(set.Latest),
		Previous:        snapshotID(set.Previous),
		DayAgo:          snapshotID(set.DayAgo),
		WeekStart:       snapshotID(set.WeekStart),
		WeekStartAnchor: set.WeekStartAnchor,
		Rows:            []model.CategoryPnLRow{},
	}
	if !set.HasData() {
		return report, nil
	}

	totals, err := s.loadTotals(ctx, set.Latest, set.Previous, set.DayAgo, set.WeekStart)
	if err != nil {
		return model.CategoryPnLReport{}, errors.Join(apperrors.ErrFailedToRetrieveCategoryPnL, err)
	}

	report.Rows = DiffCategories(
		totals[set.Latest.ID],
		lookupTotals(totals, set.Previous),
		lookupTotals(totals, set.DayAgo),
		lookupTotals(totals, set.WeekStart),
	)
	return report, nil
}

// loadTotals aggregates each distinct snapshot once, concurrently.
func (s *CategoryService) loadTotals(ctx context.Context, snaps ...*model.NavSnapshot) (map[int64]model.CategoryTotals, error) {
	var (
		mu     sync.Mutex
		totals = make(map[int64]model.CategoryTotals, len(snaps))
		seen   = make(map[int64]bool, len(snaps))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, snap := range snaps {
		if snap == nil || seen[snap.ID] {
			continue
		}
		seen[snap.ID] = true

		id := snap.ID
		g.Go(func() error {
			t, err := s.snapshots.CategoryTotals(gctx, id)
			if err != nil {
				return fmt.Errorf("snapshot %d: %w", id, err)
			}
			mu.Lock()
			totals[id] = t
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}

func lookupTotals(totals map[int64]model.CategoryTotals, snap *model.NavSnapshot) model.CategoryTotals {
	if snap == nil {
		return nil
	}
	return totals[snap.ID]
}

// DiffCategories computes one row per category seen in any of the four
// aggregates. A nil baseline counts every category as zero. Rows are ordered
// by current value descending, then by category name.
func DiffCategories(current, previous, dayAgo, weekStart model.CategoryTotals) []model.CategoryPnLRow {
	categories := map[string]struct{}{}
	for _, totals := range []model.CategoryTotals{current, previous, dayAgo, weekStart} {
		for category := range totals {
			categories[category] = struct{}{}
		}
	}

	rows := make([]model.CategoryPnLRow, 0, len(categories))
	for category := range categories {
		value := valueOf(current, category)
		rows = append(rows, model.CategoryPnLRow{
			Category:     category,
			CurrentValue: value,
			PnLNow:       value.Sub(valueOf(previous, category)),
			PnL24h:       value.Sub(valueOf(dayAgo, category)),
			PnLWTD:       value.Sub(valueOf(weekStart, category)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].CurrentValue.Cmp(rows[j].CurrentValue); c != 0 {
			return c > 0
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

func valueOf(totals model.CategoryTotals, category string) decimal.Decimal {
	if v, ok := totals[category]; ok {
		return v
	}
	return decimal.Zero
}
