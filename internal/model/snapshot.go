package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NavSnapshot is the fund's total net asset value at a point in time.
// Snapshots are ordered by (Timestamp, ID); the greatest pair is the latest.
type NavSnapshot struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	TotalNAV  decimal.Decimal `json:"total_nav"`
}

// PositionSnapshot is one holding recorded alongside a NAV snapshot.
// Category is free-form ("CEX", "DeFi", "Staking", ...).
type PositionSnapshot struct {
	ID            int64               `json:"id"`
	NavSnapshotID int64               `json:"nav_snapshot_id"`
	Category      string              `json:"category"`
	Source        string              `json:"source"`
	Asset         string              `json:"asset"`
	Chain         string              `json:"chain"`
	Amount        decimal.NullDecimal `json:"amount"`
	Value         decimal.Decimal     `json:"value"`
}

// NavPoint is one entry of the NAV history series.
type NavPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	TotalNAV  decimal.Decimal `json:"total_nav"`
}

// BaselineSet holds the snapshots a category PnL report compares against.
// A nil baseline means no qualifying snapshot exists.
type BaselineSet struct {
	Latest          *NavSnapshot
	Previous        *NavSnapshot
	DayAgo          *NavSnapshot
	WeekStart       *NavSnapshot
	WeekStartAnchor time.Time
}

// HasData reports whether any snapshot exists.
func (b BaselineSet) HasData() bool {
	return b.Latest != nil
}

// CategoryTotals maps a category label to the summed position value.
type CategoryTotals map[string]decimal.Decimal
