package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// fundStateID is the key of the single fund_state row.
const fundStateID = 1

// FundStateRepository reads and writes the single-row fund_state table.
type FundStateRepository struct {
	db *database.DB
}

// NewFundStateRepository creates a new FundStateRepository with the provided database connection.
func NewFundStateRepository(db *database.DB) *FundStateRepository {
	return &FundStateRepository{db: db}
}

// Get returns the current fund state.
// Returns ErrFundStateNotFound if the row is missing.
func (r *FundStateRepository) Get(ctx context.Context) (model.FundState, error) {
	query := `SELECT frozen, updated_at FROM fund_state WHERE id = ?`

	var (
		state     model.FundState
		updatedAt dbTime
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), fundStateID).Scan(&state.Frozen, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FundState{}, apperrors.ErrFundStateNotFound
	}
	if err != nil {
		return model.FundState{}, fmt.Errorf("failed to query fund_state: %w", err)
	}

	state.UpdatedAt = updatedAt.Time
	return state, nil
}

// SetFrozen sets the freeze flag to frozen. The row and its timestamp are only
// touched when the value actually changes, so repeating a call is a no-op.
func (r *FundStateRepository) SetFrozen(ctx context.Context, frozen bool, now time.Time) (model.FreezeResult, error) {
	query := `UPDATE fund_state SET frozen = ?, updated_at = ? WHERE id = ? AND frozen <> ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		frozen,
		r.db.Dialect.TimeArg(now),
		fundStateID,
		frozen,
	)
	if err != nil {
		return model.FreezeResult{}, fmt.Errorf("failed to update fund_state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.FreezeResult{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	state, err := r.Get(ctx)
	if err != nil {
		return model.FreezeResult{}, err
	}

	return model.FreezeResult{
		Frozen:    state.Frozen,
		UpdatedAt: state.UpdatedAt,
		Changed:   rowsAffected > 0,
	}, nil
}
