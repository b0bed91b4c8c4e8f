package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// MaxRequestListLimit caps how many requests one listing returns.
const MaxRequestListLimit = 50

// CapitalRequestStore persists deposit and withdrawal requests.
type CapitalRequestStore interface {
	Insert(ctx context.Context, req model.CapitalRequest) error
	Get(ctx context.Context, id string) (model.CapitalRequest, error)
	List(ctx context.Context, filter model.RequestFilter) ([]model.CapitalRequest, error)
	Sum(ctx context.Context, filter model.RequestFilter) (decimal.Decimal, error)
	Settle(ctx context.Context, id string, now time.Time) (model.CapitalRequest, error)
}

// CapitalRequestService creates, lists and settles capital requests.
// Submission is never blocked by the freeze flag.
type CapitalRequestService struct {
	requests CapitalRequestStore
	now      func() time.Time
}

// NewCapitalRequestService creates a new CapitalRequestService.
func NewCapitalRequestService(requests CapitalRequestStore) *CapitalRequestService {
	return &CapitalRequestService{
		requests: requests,
		now:      time.Now,
	}
}

// WithClock replaces the time source used to stamp requests.
func (s *CapitalRequestService) WithClock(now func() time.Time) *CapitalRequestService {
	s.now = now
	return s
}

// CreateRequestParams holds the input of a new capital request.
type CreateRequestParams struct {
	InvestorID string
	Kind       model.RequestKind
	Amount     decimal.Decimal
	Note       *string
}

// Create stores a new PENDING request. A non-positive amount is rejected
// before anything is written.
func (s *CapitalRequestService) Create(ctx context.Context, params CreateRequestParams) (model.CapitalRequest, error) {
	if !model.ValidRequestKinds[params.Kind] {
		return model.CapitalRequest{}, errors.Join(apperrors.ErrFailedToCreateRequest, errors.New("unknown request kind"))
	}
	if !params.Amount.IsPositive() {
		return model.CapitalRequest{}, apperrors.ErrNonPositiveAmount
	}

	req := model.CapitalRequest{
		ID:         uuid.New().String(),
		InvestorID: params.InvestorID,
		Kind:       params.Kind,
		Amount:     params.Amount,
		Status:     model.StatusPending,
		Note:       params.Note,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.requests.Insert(ctx, req); err != nil {
		return model.CapitalRequest{}, errors.Join(apperrors.ErrFailedToCreateRequest, err)
	}

	logging.FromContext(ctx).Info("capital request created",
		slog.String("request_id", req.ID),
		slog.String("investor_id", req.InvestorID),
		slog.String("kind", string(req.Kind)),
		slog.String("amount", req.Amount.String()),
	)
	return req, nil
}

// List returns requests matching filter, newest first. The limit is clamped
// to MaxRequestListLimit.
func (s *CapitalRequestService) List(ctx context.Context, filter model.RequestFilter) ([]model.CapitalRequest, error) {
	if filter.Limit <= 0 || filter.Limit > MaxRequestListLimit {
		filter.Limit = MaxRequestListLimit
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, errors.Join(apperrors.ErrFailedToRetrieveRequests, err)
	}
	return requests, nil
}

// Settle finalizes a PENDING request so that it counts toward principal.
// Returns ErrRequestNotFound or ErrInvalidTransition unwrapped so callers can
// tell them apart.
func (s *CapitalRequestService) Settle(ctx context.Context, id string) (model.CapitalRequest, error) {
	req, err := s.requests.Settle(ctx, id, s.now())
	switch {
	case errors.Is(err, apperrors.ErrRequestNotFound), errors.Is(err, apperrors.ErrInvalidTransition):
		return req, err
	case err != nil:
		return model.CapitalRequest{}, errors.Join(apperrors.ErrFailedToSettleRequest, err)
	}

	logging.FromContext(ctx).Info("capital request settled",
		slog.String("request_id", req.ID),
		slog.String("investor_id", req.InvestorID),
		slog.String("kind", string(req.Kind)),
		slog.String("amount", req.Amount.String()),
	)
	return req, nil
}

// InvestorPrincipal is settled deposits minus settled withdrawals for one
// investor, or for the whole fund when investorID is empty. It may be negative.
func InvestorPrincipal(ctx context.Context, requests CapitalRequestStore, investorID string) (decimal.Decimal, error) {
	deposits, err := requests.Sum(ctx, model.RequestFilter{
		InvestorID: investorID,
		Kind:       model.KindDeposit,
		Status:     model.StatusSettled,
	})
	if err != nil {
		return decimal.Zero, err
	}

	withdrawals, err := requests.Sum(ctx, model.RequestFilter{
		InvestorID: investorID,
		Kind:       model.KindWithdrawal,
		Status:     model.StatusSettled,
	})
	if err != nil {
		return decimal.Zero, err
	}

	return deposits.Sub(withdrawals), nil
}
