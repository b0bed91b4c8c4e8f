package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	response.RespondJSON(w, status, data)
}

// parseJSON decodes the request body into dst. Unknown fields are rejected.
func parseJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// respondError maps a service error onto the HTTP error taxonomy.
//
//   - validation failures                      -> 400
//   - missing or rejected credentials          -> 401
//   - unknown capital request                  -> 404
//   - settling a request that is not PENDING   -> 409
//   - auth provider unavailable                -> 502
//   - anything else                            -> 500 with the cause in details
func respondError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrNonPositiveAmount), errors.Is(err, apperrors.ErrInvalidAmount):
		response.RespondError(w, http.StatusBadRequest, "validation failed", map[string]string{"amount": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidUUID):
		response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
	case errors.Is(err, apperrors.ErrMissingCredential),
		errors.Is(err, apperrors.ErrInvalidCredential),
		errors.Is(err, apperrors.ErrInvalidPassword),
		errors.Is(err, apperrors.ErrAuthNotConfigured):
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, apperrors.ErrRequestNotFound):
		response.RespondError(w, http.StatusNotFound, "capital request not found", err.Error())
	case errors.Is(err, apperrors.ErrInvalidTransition):
		response.RespondError(w, http.StatusConflict, "capital request is not pending", err.Error())
	case errors.Is(err, apperrors.ErrAuthUnavailable):
		response.RespondError(w, http.StatusBadGateway, "auth provider unavailable", err.Error())
	default:
		logging.FromContext(r.Context()).Error(message, slog.String("error", err.Error()))
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}
