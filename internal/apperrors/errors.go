package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrSnapshotNotFound indicates that no NAV snapshot matches the query.
	// Callers selecting baselines treat it as "no baseline", not as a failure.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrRequestNotFound indicates that a capital request with the given ID does not exist.
	ErrRequestNotFound = errors.New("capital request not found")

	// ErrFundStateNotFound indicates the single fund state row is missing.
	ErrFundStateNotFound = errors.New("fund state not found")
)

// Authentication errors. These are reported immediately and never retried.
var (
	// ErrMissingCredential indicates that no bearer token or admin credential was supplied.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential indicates that the credential was rejected by the verifier.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidPassword indicates a failed admin login.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrAuthUnavailable indicates the hosted auth provider could not be reached
	// or answered with an unexpected status.
	ErrAuthUnavailable = errors.New("auth provider unavailable")

	// ErrAuthNotConfigured indicates the server has no credential configured to compare against.
	ErrAuthNotConfigured = errors.New("authentication not configured")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrNonPositiveAmount indicates that a request amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInvalidAmount indicates that a request amount is not a number.
	ErrInvalidAmount = errors.New("amount must be a number")

	// ErrInvalidTransition indicates a capital request status change that is not PENDING -> SETTLED.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidSchedule indicates a week start schedule that cannot anchor a week.
	ErrInvalidSchedule = errors.New("invalid week start schedule")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrieveMetrics     = errors.New("failed to retrieve fund metrics")
	ErrFailedToRetrieveCategoryPnL = errors.New("failed to retrieve category pnl")
	ErrFailedToRetrieveAllocation  = errors.New("failed to retrieve allocation")
	ErrFailedToRetrieveNavHistory  = errors.New("failed to retrieve nav history")
	ErrFailedToRetrievePositions   = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveLedger      = errors.New("failed to retrieve ledger")
	ErrFailedToRetrieveRequests    = errors.New("failed to retrieve capital requests")
	ErrFailedToCreateRequest       = errors.New("failed to create capital request")
	ErrFailedToSettleRequest       = errors.New("failed to settle capital request")
	ErrFailedToUpdateFreeze        = errors.New("failed to update freeze state")
	ErrFailedToGetVersionInfo      = errors.New("failed to get version information")
	ErrFailedToCreateSession       = errors.New("failed to create admin session")
)
