package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// FundStateStore persists the fund-wide freeze flag.
type FundStateStore interface {
	Get(ctx context.Context) (model.FundState, error)
	SetFrozen(ctx context.Context, frozen bool, now time.Time) (model.FreezeResult, error)
}

// FreezeService is the only reader and writer of the freeze flag.
// Every caller may read it; the HTTP layer only routes admins to SetFrozen.
type FreezeService struct {
	state FundStateStore
	now   func() time.Time
}

// NewFreezeService creates a new FreezeService.
func NewFreezeService(state FundStateStore) *FreezeService {
	return &FreezeService{
		state: state,
		now:   time.Now,
	}
}

// WithClock replaces the time source used to stamp changes.
func (s *FreezeService) WithClock(now func() time.Time) *FreezeService {
	s.now = now
	return s
}

// State returns the current freeze flag.
func (s *FreezeService) State(ctx context.Context) (model.FundState, error) {
	return s.state.Get(ctx)
}

// IsFrozen reports whether PnL attribution is suspended.
func (s *FreezeService) IsFrozen(ctx context.Context) (bool, error) {
	state, err := s.state.Get(ctx)
	if err != nil {
		return false, err
	}
	return state.Frozen, nil
}

// SetFrozen switches the freeze flag. Setting the state already in effect
// succeeds with Changed=false and leaves updated_at alone.
func (s *FreezeService) SetFrozen(ctx context.Context, frozen bool) (model.FreezeResult, error) {
	result, err := s.state.SetFrozen(ctx, frozen, s.now())
	if err != nil {
		return model.FreezeResult{}, errors.Join(apperrors.ErrFailedToUpdateFreeze, err)
	}

	if result.Changed {
		logging.FromContext(ctx).Info("fund freeze state changed",
			slog.Bool("frozen", result.Frozen),
			slog.Time("updated_at", result.UpdatedAt),
		)
	}
	return result, nil
}
