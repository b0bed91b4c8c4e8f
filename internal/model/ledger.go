package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestorLedger is the per-request view of one investor's position in the fund.
// TotalPrincipal, ProfitPool and InvestorPnL are null while frozen or when
// fund-wide data is unavailable; null is distinct from zero.
type InvestorLedger struct {
	InvestorID      string              `json:"investor_id"`
	Principal       decimal.Decimal     `json:"principal"`
	PendingWithdraw decimal.Decimal     `json:"pending_withdraw"`
	TotalPrincipal  decimal.NullDecimal `json:"total_principal"`
	ProfitPool      decimal.NullDecimal `json:"profit_pool"`
	InvestorPnL     decimal.NullDecimal `json:"investor_pnl"`
	Frozen          bool                `json:"frozen"`
	NAV             decimal.NullDecimal `json:"nav"`
}

// FundMetrics is the public headline view of the fund.
type FundMetrics struct {
	NAV              decimal.NullDecimal `json:"nav"`
	NAVTimestamp     *time.Time          `json:"nav_timestamp"`
	WeekToDatePnL    decimal.NullDecimal `json:"week_to_date_pnl"`
	TotalPrincipal   decimal.NullDecimal `json:"total_principal"`
	Frozen           bool                `json:"frozen"`
	LatestSnapshotID *int64              `json:"latest_snapshot_id"`
}
