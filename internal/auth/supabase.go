package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
)

// maxUserResponseBytes bounds how much of the provider's reply is read.
const maxUserResponseBytes = 1 << 20

// SupabaseClient verifies investor bearer tokens against a hosted Supabase
// project. It wraps an HTTP client and calls the provider's user endpoint.
type SupabaseClient struct {
	httpClient   *http.Client
	baseURL      string
	anonKey      string
	fundWideRead bool
}

// NewSupabaseClient creates a client for the project at baseURL.
// fundWideRead is copied into every Identity the client returns.
func NewSupabaseClient(baseURL, anonKey string, fundWideRead bool) *SupabaseClient {
	return &SupabaseClient{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		anonKey:      anonKey,
		fundWideRead: fundWideRead,
	}
}

// Verify resolves token into an Identity.
//
// Returns:
//   - ErrMissingCredential if token is empty
//   - ErrInvalidCredential if the provider answers 401 or 403, or the user id is not a UUID
//   - ErrAuthUnavailable on transport errors and any other status
func (c *SupabaseClient) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, apperrors.ErrMissingCredential
	}
	if c.baseURL == "" {
		return Identity{}, fmt.Errorf("%w: provider url not configured", apperrors.ErrAuthUnavailable)
	}

	user, err := c.queryUser(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if _, err := uuid.Parse(user.ID); err != nil {
		return Identity{}, fmt.Errorf("%w: provider returned a malformed user id", apperrors.ErrInvalidCredential)
	}

	return Identity{
		InvestorID:   user.ID,
		Email:        user.Email,
		FundWideRead: c.fundWideRead,
	}, nil
}

// queryUser calls GET {base}/auth/v1/user with the project key and the
// caller's token.
func (c *SupabaseClient) queryUser(ctx context.Context, token string) (userResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return userResponse{}, fmt.Errorf("%w: %v", apperrors.ErrAuthUnavailable, err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return userResponse{}, fmt.Errorf("%w: %v", apperrors.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return userResponse{}, apperrors.ErrInvalidCredential
	case resp.StatusCode != http.StatusOK:
		return userResponse{}, fmt.Errorf("%w: provider returned status %d", apperrors.ErrAuthUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUserResponseBytes))
	if err != nil {
		return userResponse{}, fmt.Errorf("%w: %v", apperrors.ErrAuthUnavailable, err)
	}

	var user userResponse
	if err := json.Unmarshal(data, &user); err != nil {
		return userResponse{}, fmt.Errorf("%w: malformed user response: %v", apperrors.ErrAuthUnavailable, err)
	}
	return user, nil
}
