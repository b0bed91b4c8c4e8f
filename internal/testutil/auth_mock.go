package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
)

// MockVerifier is a mock implementation of auth.Verifier for testing.
// It resolves tokens from a fixed table instead of calling the auth provider.
type MockVerifier struct {
	mu sync.Mutex
	// Identities maps a bearer token to the identity it resolves to.
	Identities map[string]auth.Identity
	// MockError, when set, is returned for every call.
	MockError error
	// VerifyCount tracks how many times Verify was called
	VerifyCount int
}

// NewMockVerifier creates a mock verifier with no known tokens.
func NewMockVerifier() *MockVerifier {
	return &MockVerifier{Identities: map[string]auth.Identity{}}
}

// Verify resolves token from Identities. Unknown tokens are invalid credentials.
func (m *MockVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.VerifyCount++
	if m.MockError != nil {
		return auth.Identity{}, m.MockError
	}
	if token == "" {
		return auth.Identity{}, apperrors.ErrMissingCredential
	}
	id, ok := m.Identities[token]
	if !ok {
		return auth.Identity{}, apperrors.ErrInvalidCredential
	}
	return id, nil
}

// WithInvestor registers token for investorID with fund-wide read access.
func (m *MockVerifier) WithInvestor(token, investorID string) *MockVerifier {
	m.Identities[token] = auth.Identity{InvestorID: investorID, FundWideRead: true}
	return m
}

// WithIdentity registers token for id.
func (m *MockVerifier) WithIdentity(token string, id auth.Identity) *MockVerifier {
	m.Identities[token] = id
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockVerifier) WithError(err error) *MockVerifier {
	m.MockError = err
	return m
}
