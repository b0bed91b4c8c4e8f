package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
)

const testUserID = "2b7c1d5e-4f0a-4c6b-9a53-8d1e2f3a4b5c"

func newProvider(t *testing.T, handler http.HandlerFunc) *SupabaseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSupabaseClient(srv.URL+"/", "anon-key", true)
}

func TestSupabaseClient_Verify(t *testing.T) {
	t.Run("resolves a valid token", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/user", r.URL.Path)
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + testUserID + `","email":"lp@example.com","role":"authenticated"}`))
		})

		id, err := client.Verify(context.Background(), "good-token")
		require.NoError(t, err)
		assert.Equal(t, testUserID, id.InvestorID)
		assert.Equal(t, "lp@example.com", id.Email)
		assert.True(t, id.FundWideRead)
	})

	t.Run("rejected token is an invalid credential", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			client := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			})

			_, err := client.Verify(context.Background(), "bad-token")
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredential, "status %d", status)
		}
	})

	t.Run("provider failure is an upstream error", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Verify(context.Background(), "token")
		assert.ErrorIs(t, err, apperrors.ErrAuthUnavailable)
	})

	t.Run("malformed body is an upstream error", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.Verify(context.Background(), "token")
		assert.ErrorIs(t, err, apperrors.ErrAuthUnavailable)
	})

	t.Run("non uuid user id is rejected", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"someone"}`))
		})

		_, err := client.Verify(context.Background(), "token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
	})

	t.Run("empty token never reaches the provider", func(t *testing.T) {
		called := false
		client := newProvider(t, func(_ http.ResponseWriter, _ *http.Request) {
			called = true
		})

		_, err := client.Verify(context.Background(), "  ")
		assert.ErrorIs(t, err, apperrors.ErrMissingCredential)
		assert.False(t, called)
	})

	t.Run("unreachable provider is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewSupabaseClient(url, "k", false).Verify(context.Background(), "token")
		assert.ErrorIs(t, err, apperrors.ErrAuthUnavailable)
	})
}

func newSessions(t *testing.T) *AdminSessions {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())

	s, err := NewAdminSessions(AdminSessionsConfig{
		Key:      key.Encode(),
		Password: "correct horse",
		Token:    "static-admin-token",
		TTL:      12 * time.Hour,
	})
	require.NoError(t, err)
	return s
}

func TestAdminSessions(t *testing.T) {
	t.Run("issued session verifies", func(t *testing.T) {
		s := newSessions(t)

		token, expiresAt, err := s.Issue()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiresAt, time.Minute)
		assert.NoError(t, s.Verify(token))
	})

	t.Run("session expires after ttl", func(t *testing.T) {
		s := newSessions(t)
		token, _, err := s.Issue()
		require.NoError(t, err)

		s.WithClock(func() time.Time { return time.Now().Add(12*time.Hour + time.Minute) })
		assert.ErrorIs(t, s.Verify(token), apperrors.ErrInvalidCredential)
	})

	t.Run("expiry follows the session clock, not the wall clock", func(t *testing.T) {
		s, err := NewAdminSessions(AdminSessionsConfig{TTL: time.Second})
		require.NoError(t, err)

		issuedAt := time.Now()
		s.WithClock(func() time.Time { return issuedAt })
		token, expiresAt, err := s.Issue()
		require.NoError(t, err)
		exp := time.Unix(expiresAt.Unix(), 0)

		// The wall clock moves past the ttl while the session clock stands still.
		time.Sleep(2100 * time.Millisecond)
		assert.NoError(t, s.Verify(token))

		s.WithClock(func() time.Time { return exp.Add(-time.Millisecond) })
		assert.NoError(t, s.Verify(token))

		s.WithClock(func() time.Time { return exp })
		assert.ErrorIs(t, s.Verify(token), apperrors.ErrInvalidCredential)
	})

	t.Run("session clock moved back before issue still honours exp", func(t *testing.T) {
		s := newSessions(t)
		issuedAt := time.Now().Add(-30 * time.Hour)
		s.WithClock(func() time.Time { return issuedAt })
		token, _, err := s.Issue()
		require.NoError(t, err)

		s.WithClock(func() time.Time { return issuedAt.Add(11 * time.Hour) })
		assert.NoError(t, s.Verify(token))

		s.WithClock(time.Now)
		assert.ErrorIs(t, s.Verify(token), apperrors.ErrInvalidCredential)
	})

	t.Run("session from another key is rejected", func(t *testing.T) {
		token, _, err := newSessions(t).Issue()
		require.NoError(t, err)

		assert.ErrorIs(t, newSessions(t).Verify(token), apperrors.ErrInvalidCredential)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		assert.ErrorIs(t, newSessions(t).Verify("not-a-token"), apperrors.ErrInvalidCredential)
		assert.ErrorIs(t, newSessions(t).Verify(""), apperrors.ErrMissingCredential)
	})

	t.Run("password check", func(t *testing.T) {
		s := newSessions(t)
		assert.NoError(t, s.CheckPassword("correct horse"))
		assert.ErrorIs(t, s.CheckPassword("wrong"), apperrors.ErrInvalidPassword)
	})

	t.Run("unset password rejects every login", func(t *testing.T) {
		s, err := NewAdminSessions(AdminSessionsConfig{TTL: time.Hour})
		require.NoError(t, err)
		assert.ErrorIs(t, s.CheckPassword(""), apperrors.ErrAuthNotConfigured)
	})

	t.Run("authenticate accepts session or static token", func(t *testing.T) {
		s := newSessions(t)
		token, _, err := s.Issue()
		require.NoError(t, err)

		assert.NoError(t, s.Authenticate(token, ""))
		assert.NoError(t, s.Authenticate("", "static-admin-token"))
		assert.NoError(t, s.Authenticate("stale", "static-admin-token"))
		assert.ErrorIs(t, s.Authenticate("stale", ""), apperrors.ErrInvalidCredential)
		assert.ErrorIs(t, s.Authenticate("", "wrong"), apperrors.ErrInvalidCredential)
		assert.ErrorIs(t, s.Authenticate("", ""), apperrors.ErrMissingCredential)
	})

	t.Run("rejects bad configuration", func(t *testing.T) {
		_, err := NewAdminSessions(AdminSessionsConfig{Key: "short", TTL: time.Hour})
		assert.Error(t, err)

		_, err = NewAdminSessions(AdminSessionsConfig{TTL: 0})
		assert.Error(t, err)
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{InvestorID: testUserID})
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, testUserID, id.InvestorID)
}
