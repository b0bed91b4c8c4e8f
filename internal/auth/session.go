package auth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
)

// adminSubject is the only subject an admin session token carries.
const adminSubject = "admin"

type sessionClaims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

// AdminSessions issues and checks admin credentials: the login password, the
// static shared token, and the encrypted, time-boxed session token kept in a cookie.
type AdminSessions struct {
	key      *fernet.Key
	password string
	token    string
	ttl      time.Duration
	now      func() time.Time
}

// AdminSessionsConfig holds the inputs of NewAdminSessions.
type AdminSessionsConfig struct {
	// Key is a base64 fernet key. Empty generates a random key, so sessions do
	// not survive a restart.
	Key      string
	Password string
	Token    string
	TTL      time.Duration
}

// NewAdminSessions creates an AdminSessions from cfg.
func NewAdminSessions(cfg AdminSessionsConfig) (*AdminSessions, error) {
	var key *fernet.Key
	if cfg.Key == "" {
		key = new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
	} else {
		decoded, err := fernet.DecodeKey(cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid session key: %w", err)
		}
		key = decoded
	}

	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.TTL)
	}

	return &AdminSessions{
		key:      key,
		password: cfg.Password,
		token:    cfg.Token,
		ttl:      cfg.TTL,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source used for expiry.
func (s *AdminSessions) WithClock(now func() time.Time) *AdminSessions {
	s.now = now
	return s
}

// TTL is how long an issued session stays valid.
func (s *AdminSessions) TTL() time.Duration {
	return s.ttl
}

// CheckPassword compares password with the configured admin password in
// constant time. An unset admin password rejects every login.
func (s *AdminSessions) CheckPassword(password string) error {
	if s.password == "" {
		return apperrors.ErrAuthNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return apperrors.ErrInvalidPassword
	}
	return nil
}

// CheckToken compares token with the static admin token in constant time.
func (s *AdminSessions) CheckToken(token string) error {
	if s.token == "" {
		return apperrors.ErrAuthNotConfigured
	}
	if token == "" {
		return apperrors.ErrMissingCredential
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return apperrors.ErrInvalidCredential
	}
	return nil
}

// Issue creates a session token and returns it with its expiry.
func (s *AdminSessions) Issue() (string, time.Time, error) {
	expiresAt := s.now().Add(s.ttl)
	payload, err := json.Marshal(sessionClaims{Subject: adminSubject, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToCreateSession, err)
	}

	tok, err := fernet.EncryptAndSign(payload, s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToCreateSession, err)
	}
	return string(tok), expiresAt, nil
}

// Verify checks a session token: it must decrypt under our key, name the
// admin subject and not be expired. Expiry is judged only by the exp claim
// against the session clock; the fernet timestamp age is not checked.
func (s *AdminSessions) Verify(token string) error {
	if token == "" {
		return apperrors.ErrMissingCredential
	}

	payload := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{s.key})
	if payload == nil {
		return apperrors.ErrInvalidCredential
	}

	var claims sessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return apperrors.ErrInvalidCredential
	}
	if claims.Subject != adminSubject || !s.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return apperrors.ErrInvalidCredential
	}
	return nil
}

// Authenticate accepts either a valid session token or the static admin token.
func (s *AdminSessions) Authenticate(sessionToken, staticToken string) error {
	if sessionToken != "" {
		if err := s.Verify(sessionToken); err == nil {
			return nil
		}
	}
	if staticToken != "" {
		return s.CheckToken(staticToken)
	}
	if sessionToken != "" {
		return apperrors.ErrInvalidCredential
	}
	return apperrors.ErrMissingCredential
}
