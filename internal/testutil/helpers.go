package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// Services bundles every service wired against one test database.
type Services struct {
	Freeze   *service.FreezeService
	Requests *service.CapitalRequestService
	Ledger   *service.LedgerService
	Category *service.CategoryService
	Fund     *service.FundService
	System   *service.SystemService
	Selector *service.SnapshotSelector
}

// NewTestWeekAnchor returns the default Sunday 00:00 Taipei anchor.
func NewTestWeekAnchor(t *testing.T) *service.WeekAnchor {
	t.Helper()

	anchor, err := service.NewWeekAnchor(service.DefaultWeekStart)
	if err != nil {
		t.Fatalf("Failed to build week anchor: %v", err)
	}
	return anchor
}

// NewTestServices wires all services against db. When now is non-nil every
// service uses it as its clock.
func NewTestServices(t *testing.T, db *database.DB, now func() time.Time) *Services {
	t.Helper()

	snapshotRepo := repository.NewSnapshotRepository(db)
	requestRepo := repository.NewCapitalRequestRepository(db)
	stateRepo := repository.NewFundStateRepository(db)

	selector := service.NewSnapshotSelector(snapshotRepo, NewTestWeekAnchor(t), service.DefaultDayAgoWindow)
	freeze := service.NewFreezeService(stateRepo)
	requests := service.NewCapitalRequestService(requestRepo)
	category := service.NewCategoryService(selector, snapshotRepo)
	fund := service.NewFundService(selector, snapshotRepo, requestRepo, freeze)

	if now != nil {
		freeze.WithClock(now)
		requests.WithClock(now)
		category.WithClock(now)
		fund.WithClock(now)
	}

	return &Services{
		Freeze:   freeze,
		Requests: requests,
		Ledger:   service.NewLedgerService(requestRepo, snapshotRepo, freeze),
		Category: category,
		Fund:     fund,
		System:   service.NewSystemService(db),
		Selector: selector,
	}
}

// NewTestLedgerService creates a LedgerService against db.
func NewTestLedgerService(t *testing.T, db *database.DB) *service.LedgerService {
	t.Helper()
	return NewTestServices(t, db, nil).Ledger
}

// NewTestFreezeService creates a FreezeService against db.
func NewTestFreezeService(t *testing.T, db *database.DB) *service.FreezeService {
	t.Helper()
	return NewTestServices(t, db, nil).Freeze
}

// NewTestCapitalRequestService creates a CapitalRequestService against db.
func NewTestCapitalRequestService(t *testing.T, db *database.DB) *service.CapitalRequestService {
	t.Helper()
	return NewTestServices(t, db, nil).Requests
}

// NewTestSystemService creates a SystemService against db.
func NewTestSystemService(t *testing.T, db *database.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

// NewTestAdminSessions creates admin sessions with a fresh key, the given
// password and static token, and a 12h TTL.
func NewTestAdminSessions(t *testing.T, password, token string) *auth.AdminSessions {
	t.Helper()

	sessions, err := auth.NewAdminSessions(auth.AdminSessionsConfig{
		Password: password,
		Token:    token,
		TTL:      12 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create admin sessions: %v", err)
	}
	return sessions
}

// FixedClock returns a clock that always reports ts.
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}
