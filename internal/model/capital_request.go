package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestKind is the direction of a capital request.
type RequestKind string

const (
	KindDeposit    RequestKind = "deposit"
	KindWithdrawal RequestKind = "withdrawal"
)

// RequestStatus is the lifecycle state of a capital request.
// Only PENDING -> SETTLED is a valid transition.
type RequestStatus string

const (
	StatusPending RequestStatus = "PENDING"
	StatusSettled RequestStatus = "SETTLED"
)

// ValidRequestKinds contains the allowed kind values.
var ValidRequestKinds = map[RequestKind]bool{
	KindDeposit: true, KindWithdrawal: true,
}

// ValidRequestStatuses contains the allowed status values.
var ValidRequestStatuses = map[RequestStatus]bool{
	StatusPending: true, StatusSettled: true,
}

// CapitalRequest is an investor's request to deposit or withdraw capital.
type CapitalRequest struct {
	ID         string          `json:"id"`
	InvestorID string          `json:"investor_id"`
	Kind       RequestKind     `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Status     RequestStatus   `json:"status"`
	Note       *string         `json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
	SettledAt  *time.Time      `json:"settled_at"`
}

// RequestFilter narrows capital request listings. Zero values match everything.
type RequestFilter struct {
	InvestorID string
	Kind       RequestKind
	Status     RequestStatus
	Limit      int
}
