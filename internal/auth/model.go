package auth

import "context"

// Identity is a verified investor.
type Identity struct {
	// InvestorID is the stable user id issued by the auth provider.
	InvestorID string
	Email      string
	// FundWideRead grants read access to fund-wide principal totals.
	FundWideRead bool
}

// Verifier resolves a bearer token into an Identity.
//
// Implementations return apperrors.ErrInvalidCredential when the provider
// rejects the token and apperrors.ErrAuthUnavailable when the provider cannot
// give an answer.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// userResponse is the subset of the provider's /auth/v1/user payload we use.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the Identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
