package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// CapitalRequestRepository provides data access methods for the capital_request table.
// Deposits and withdrawals share the table and are told apart by kind.
type CapitalRequestRepository struct {
	db *database.DB
}

// NewCapitalRequestRepository creates a new CapitalRequestRepository with the provided database connection.
func NewCapitalRequestRepository(db *database.DB) *CapitalRequestRepository {
	return &CapitalRequestRepository{db: db}
}

const capitalRequestColumns = `id, investor_id, kind, amount, status, note, created_at, settled_at`

// Insert stores a new capital request.
func (r *CapitalRequestRepository) Insert(ctx context.Context, req model.CapitalRequest) error {
	query := `
		INSERT INTO capital_request (` + capitalRequestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var settledAt any
	if req.SettledAt != nil {
		settledAt = r.db.Dialect.TimeArg(*req.SettledAt)
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		req.ID,
		req.InvestorID,
		string(req.Kind),
		decimalArg(req.Amount),
		string(req.Status),
		req.Note,
		r.db.Dialect.TimeArg(req.CreatedAt),
		settledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert capital_request: %w", err)
	}
	return nil
}

// Get returns one capital request by id.
// Returns ErrRequestNotFound if no record with the given ID exists.
func (r *CapitalRequestRepository) Get(ctx context.Context, id string) (model.CapitalRequest, error) {
	query := `SELECT ` + capitalRequestColumns + ` FROM capital_request WHERE id = ?`

	req, err := scanCapitalRequest(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.CapitalRequest{}, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return model.CapitalRequest{}, fmt.Errorf("failed to query capital_request: %w", err)
	}
	return req, nil
}

// List returns requests matching filter, newest first.
// Returns an empty slice if nothing matches.
func (r *CapitalRequestRepository) List(ctx context.Context, filter model.RequestFilter) ([]model.CapitalRequest, error) {
	query := `SELECT ` + capitalRequestColumns + ` FROM capital_request WHERE 1=1`
	where, args := filterClause(filter)
	query += where + ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query capital_request table: %w", err)
	}
	defer rows.Close()

	requests := []model.CapitalRequest{}
	for rows.Next() {
		req, err := scanCapitalRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capital_request results: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capital_request table: %w", err)
	}

	return requests, nil
}

// Sum adds up the amounts of every request matching filter. Limit is ignored.
// Amounts are summed as decimals so the result is exact on every dialect.
func (r *CapitalRequestRepository) Sum(ctx context.Context, filter model.RequestFilter) (decimal.Decimal, error) {
	query := `SELECT amount FROM capital_request WHERE 1=1`
	where, args := filterClause(filter)
	query += where

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query capital_request amounts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount sql.NullString
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan capital_request amount: %w", err)
		}
		total = total.Add(coerceDecimal(amount))
	}

	if err = rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating capital_request amounts: %w", err)
	}

	return total, nil
}

// Settle moves a PENDING request to SETTLED and stamps settled_at.
// Returns ErrRequestNotFound for an unknown id and ErrInvalidTransition when the
// request is not PENDING.
func (r *CapitalRequestRepository) Settle(ctx context.Context, id string, now time.Time) (model.CapitalRequest, error) {
	query := `UPDATE capital_request SET status = ?, settled_at = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		string(model.StatusSettled),
		r.db.Dialect.TimeArg(now),
		id,
		string(model.StatusPending),
	)
	if err != nil {
		return model.CapitalRequest{}, fmt.Errorf("failed to update capital_request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.CapitalRequest{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	req, err := r.Get(ctx, id)
	if err != nil {
		return model.CapitalRequest{}, err
	}
	if rowsAffected == 0 {
		return req, apperrors.ErrInvalidTransition
	}
	return req, nil
}

func filterClause(filter model.RequestFilter) (string, []any) {
	var (
		where string
		args  []any
	)
	if filter.InvestorID != "" {
		where += ` AND investor_id = ?`
		args = append(args, filter.InvestorID)
	}
	if filter.Kind != "" {
		where += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCapitalRequest(row rowScanner) (model.CapitalRequest, error) {
	var (
		req                  model.CapitalRequest
		kind, status         string
		amount, note         sql.NullString
		createdAt, settledAt dbTime
	)

	err := row.Scan(
		&req.ID,
		&req.InvestorID,
		&kind,
		&amount,
		&status,
		&note,
		&createdAt,
		&settledAt,
	)
	if err != nil {
		return model.CapitalRequest{}, err
	}

	req.Kind = model.RequestKind(kind)
	req.Status = model.RequestStatus(status)
	req.Amount = coerceDecimal(amount)
	if note.Valid {
		req.Note = &note.String
	}
	req.CreatedAt = createdAt.Time
	req.SettledAt = settledAt.Ptr()
	return req, nil
}
