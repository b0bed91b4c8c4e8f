package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryPnLRow is the value of one category and its change against each baseline.
type CategoryPnLRow struct {
	Category     string          `json:"category"`
	CurrentValue decimal.Decimal `json:"current_value"`
	PnLNow       decimal.Decimal `json:"pnl_now"`
	PnL24h       decimal.Decimal `json:"pnl_24h"`
	PnLWTD       decimal.Decimal `json:"pnl_wtd"`
}

// CategoryPnLReport carries the rows and the snapshot ids they were computed from.
// A null baseline id means the matching delta was taken against zero.
type CategoryPnLReport struct {
	Latest          *int64           `json:"latest"`
	Previous        *int64           `json:"previous"`
	DayAgo          *int64           `json:"day_ago"`
	WeekStart       *int64           `json:"week_start"`
	WeekStartAnchor time.Time        `json:"week_start_anchor"`
	Rows            []CategoryPnLRow `json:"rows"`
}

// AllocationRow is one category's share of the latest snapshot.
type AllocationRow struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// Allocation is the category breakdown of the latest snapshot.
// Discrepancy is NAV minus the sum of positions; it is reported, never rejected.
type Allocation struct {
	SnapshotID    *int64              `json:"snapshot_id"`
	NAV           decimal.NullDecimal `json:"nav"`
	PositionTotal decimal.Decimal     `json:"position_total"`
	Discrepancy   decimal.NullDecimal `json:"discrepancy"`
	Rows          []AllocationRow     `json:"rows"`
}
