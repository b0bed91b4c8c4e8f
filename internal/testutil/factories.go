package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// NavSnapshotBuilder provides a fluent interface for creating test snapshots.
//
// Example usage:
//
//	// Simple creation with defaults
//	snap := testutil.NewNavSnapshot().Build(t, db)
//
//	// Customized snapshot with positions
//	snap := testutil.NewNavSnapshot().
//	    At(now.Add(-time.Hour)).
//	    WithNAV("10000").
//	    WithPosition("CEX", "6000").
//	    WithPosition("DeFi", "4000").
//	    Build(t, db)
type NavSnapshotBuilder struct {
	ID        int64
	Timestamp time.Time
	TotalNAV  decimal.Decimal
	Positions []PositionBuilder
}

// PositionBuilder describes one position of a NavSnapshotBuilder.
// A nil Category or Value is stored as NULL.
type PositionBuilder struct {
	Category *string
	Source   string
	Asset    string
	Chain    string
	Amount   *string
	Value    *string
}

// NewNavSnapshot creates a NavSnapshotBuilder with sensible defaults.
func NewNavSnapshot() *NavSnapshotBuilder {
	return &NavSnapshotBuilder{
		Timestamp: time.Now().UTC().Add(-time.Minute),
		TotalNAV:  decimal.NewFromInt(10000),
	}
}

// WithID forces the snapshot id. Zero lets the database assign one.
func (b *NavSnapshotBuilder) WithID(id int64) *NavSnapshotBuilder {
	b.ID = id
	return b
}

// At sets the snapshot timestamp.
func (b *NavSnapshotBuilder) At(ts time.Time) *NavSnapshotBuilder {
	b.Timestamp = ts
	return b
}

// WithNAV sets the total NAV from a decimal string.
func (b *NavSnapshotBuilder) WithNAV(nav string) *NavSnapshotBuilder {
	b.TotalNAV = decimal.RequireFromString(nav)
	return b
}

// WithPosition adds a position with the given category and value.
func (b *NavSnapshotBuilder) WithPosition(category, value string) *NavSnapshotBuilder {
	b.Positions = append(b.Positions, PositionBuilder{Category: &category, Value: &value})
	return b
}

// WithRawPosition adds a fully specified position, including NULL or
// non-numeric values.
func (b *NavSnapshotBuilder) WithRawPosition(p PositionBuilder) *NavSnapshotBuilder {
	b.Positions = append(b.Positions, p)
	return b
}

// Build creates the snapshot and its positions in the database and returns it.
func (b *NavSnapshotBuilder) Build(t *testing.T, db *database.DB) model.NavSnapshot {
	t.Helper()

	var (
		id  int64
		err error
	)
	if b.ID != 0 {
		_, err = db.Exec(
			db.Rebind(`INSERT INTO nav_snapshot (id, ts, total_nav) VALUES (?, ?, ?)`),
			b.ID, db.Dialect.TimeArg(b.Timestamp), b.TotalNAV.String(),
		)
		id = b.ID
	} else {
		err = db.QueryRow(
			db.Rebind(`INSERT INTO nav_snapshot (ts, total_nav) VALUES (?, ?) RETURNING id`),
			db.Dialect.TimeArg(b.Timestamp), b.TotalNAV.String(),
		).Scan(&id)
	}
	if err != nil {
		t.Fatalf("Failed to create test nav snapshot: %v", err)
	}

	for _, p := range b.Positions {
		_, err := db.Exec(
			db.Rebind(`
				INSERT INTO position_snapshot (nav_snapshot_id, category, source, asset, chain, amount, value)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`),
			id, p.Category, p.Source, p.Asset, p.Chain, p.Amount, p.Value,
		)
		if err != nil {
			t.Fatalf("Failed to create test position: %v", err)
		}
	}

	return model.NavSnapshot{
		ID:        id,
		Timestamp: b.Timestamp.UTC(),
		TotalNAV:  b.TotalNAV,
	}
}

// CapitalRequestBuilder provides a fluent interface for creating test capital requests.
//
// Example usage:
//
//	req := testutil.NewCapitalRequest(investorID).Deposit().Amount("2000").Settled().Build(t, db)
type CapitalRequestBuilder struct {
	ID         string
	InvestorID string
	Kind       model.RequestKind
	amount     decimal.Decimal
	Status     model.RequestStatus
	Note       *string
	createdAt  time.Time
}

// NewCapitalRequest creates a PENDING deposit of 100 for investorID.
func NewCapitalRequest(investorID string) *CapitalRequestBuilder {
	return &CapitalRequestBuilder{
		ID:         MakeID(),
		InvestorID: investorID,
		Kind:       model.KindDeposit,
		amount:     decimal.NewFromInt(100),
		Status:     model.StatusPending,
		createdAt:  time.Now().UTC(),
	}
}

// Deposit makes the request a deposit.
func (b *CapitalRequestBuilder) Deposit() *CapitalRequestBuilder {
	b.Kind = model.KindDeposit
	return b
}

// Withdrawal makes the request a withdrawal.
func (b *CapitalRequestBuilder) Withdrawal() *CapitalRequestBuilder {
	b.Kind = model.KindWithdrawal
	return b
}

// Amount sets the amount from a decimal string.
func (b *CapitalRequestBuilder) Amount(amount string) *CapitalRequestBuilder {
	b.amount = decimal.RequireFromString(amount)
	return b
}

// Settled marks the request SETTLED.
func (b *CapitalRequestBuilder) Settled() *CapitalRequestBuilder {
	b.Status = model.StatusSettled
	return b
}

// WithNote sets the note.
func (b *CapitalRequestBuilder) WithNote(note string) *CapitalRequestBuilder {
	b.Note = &note
	return b
}

// CreatedAt sets the creation time.
func (b *CapitalRequestBuilder) CreatedAt(ts time.Time) *CapitalRequestBuilder {
	b.createdAt = ts.UTC()
	return b
}

// Build creates the request in the database and returns it.
func (b *CapitalRequestBuilder) Build(t *testing.T, db *database.DB) model.CapitalRequest {
	t.Helper()

	var settledAt any
	var settledPtr *time.Time
	if b.Status == model.StatusSettled {
		ts := b.createdAt
		settledAt = db.Dialect.TimeArg(ts)
		settledPtr = &ts
	}

	_, err := db.Exec(
		db.Rebind(`
			INSERT INTO capital_request (id, investor_id, kind, amount, status, note, created_at, settled_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`),
		b.ID, b.InvestorID, string(b.Kind), b.amount.String(), string(b.Status), b.Note,
		db.Dialect.TimeArg(b.createdAt), settledAt,
	)
	if err != nil {
		t.Fatalf("Failed to create test capital request: %v", err)
	}

	return model.CapitalRequest{
		ID:         b.ID,
		InvestorID: b.InvestorID,
		Kind:       b.Kind,
		Amount:     b.amount,
		Status:     b.Status,
		Note:       b.Note,
		CreatedAt:  b.createdAt,
		SettledAt:  settledPtr,
	}
}

// Convenience functions

// CreateSettledDeposit creates a settled deposit of amount for investorID.
func CreateSettledDeposit(t *testing.T, db *database.DB, investorID, amount string) model.CapitalRequest {
	t.Helper()
	return NewCapitalRequest(investorID).Deposit().Amount(amount).Settled().Build(t, db)
}

// CreateSettledWithdrawal creates a settled withdrawal of amount for investorID.
func CreateSettledWithdrawal(t *testing.T, db *database.DB, investorID, amount string) model.CapitalRequest {
	t.Helper()
	return NewCapitalRequest(investorID).Withdrawal().Amount(amount).Settled().Build(t, db)
}

// CreatePendingWithdrawal creates a pending withdrawal of amount for investorID.
func CreatePendingWithdrawal(t *testing.T, db *database.DB, investorID, amount string) model.CapitalRequest {
	t.Helper()
	return NewCapitalRequest(investorID).Withdrawal().Amount(amount).Build(t, db)
}

// SetFrozen writes the freeze flag directly.
func SetFrozen(t *testing.T, db *database.DB, frozen bool) {
	t.Helper()
	_, err := db.Exec(db.Rebind(`UPDATE fund_state SET frozen = ? WHERE id = 1`), frozen)
	if err != nil {
		t.Fatalf("Failed to set freeze flag: %v", err)
	}
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
