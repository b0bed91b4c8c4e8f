package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
)

// AdminTokenHeader carries the static admin token.
const AdminTokenHeader = "X-Admin-Token"

// InvestorAuth returns a middleware that requires a bearer token and stores the
// verified auth.Identity in the request context.
//
// Responds 401 for a missing or rejected token and 502 when the auth provider
// cannot be reached.
func InvestorAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			switch {
			case errors.Is(err, apperrors.ErrAuthUnavailable):
				logging.FromContext(r.Context()).Warn("auth provider unavailable", slog.String("error", err.Error()))
				response.RespondError(w, http.StatusBadGateway, "auth provider unavailable", err.Error())
				return
			case err != nil:
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			logger := logging.FromContext(r.Context()).With(slog.String("investor_id", identity.InvestorID))
			ctx := logging.WithLogger(auth.WithIdentity(r.Context(), identity), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth returns a middleware that accepts either the admin session cookie
// or the static admin token header.
func AdminAuth(sessions *auth.AdminSessions, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session string
			if c, err := r.Cookie(cookieName); err == nil {
				session = c.Value
			}

			if err := sessions.Authenticate(session, r.Header.Get(AdminTokenHeader)); err != nil {
				details := "Invalid admin credential"
				if errors.Is(err, apperrors.ErrMissingCredential) {
					details = "Missing admin credential"
				}
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", details)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
