package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/validation"
)

// AdminHandler serves login and the admin-only routes.
type AdminHandler struct {
	sessions       *auth.AdminSessions
	freezeService  *service.FreezeService
	requestService *service.CapitalRequestService
	cookieName     string
	secureCookie   bool
}

// AdminCookieConfig controls the admin session cookie.
type AdminCookieConfig struct {
	Name   string
	Secure bool
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	sessions *auth.AdminSessions,
	freezeService *service.FreezeService,
	requestService *service.CapitalRequestService,
	cookie AdminCookieConfig,
) *AdminHandler {
	return &AdminHandler{
		sessions:       sessions,
		freezeService:  freezeService,
		requestService: requestService,
		cookieName:     cookie.Name,
		secureCookie:   cookie.Secure,
	}
}

// LoginResponse is returned by a successful admin login.
type LoginResponse struct {
	OK        bool      `json:"ok"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST requests exchanging the admin password for a session cookie.
//
// Endpoint: POST /api/admin/login
// Request body: {"password": string}
// Response: 200 OK with LoginResponse and an HttpOnly, SameSite=Strict session cookie
// Error: 400 Bad Request for a malformed body
// Error: 401 Unauthorized for a wrong password or when no admin password is configured
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body request.AdminLoginRequest
	if err := parseJSON(r, &body); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.sessions.CheckPassword(body.Password); err != nil {
		logging.FromContext(r.Context()).Warn("admin login rejected", slog.String("reason", err.Error()))
		respondError(w, r, "unauthorized", err)
		return
	}

	token, expiresAt, err := h.sessions.Issue()
	if err != nil {
		respondError(w, r, "failed to create session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	logging.FromContext(r.Context()).Info("admin logged in")
	respondJSON(w, http.StatusOK, LoginResponse{OK: true, ExpiresAt: expiresAt})
}

// Logout handles POST requests clearing the session cookie.
//
// Endpoint: POST /api/admin/logout
// Response: 200 OK
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me reports that the caller holds a valid admin credential. The check itself
// is done by middleware.AdminAuth.
//
// Endpoint: GET /api/admin/me
// Response: 200 OK with {"admin": true}
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"admin": true})
}

// FreezeOn handles POST requests suspending PnL attribution.
//
// Endpoint: POST /api/admin/freeze-on
// Response: 200 OK with model.FreezeResult; changed is false if already frozen
func (h *AdminHandler) FreezeOn(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, true)
}

// FreezeOff handles POST requests resuming PnL attribution.
//
// Endpoint: POST /api/admin/freeze-off
// Response: 200 OK with model.FreezeResult; changed is false if not frozen
func (h *AdminHandler) FreezeOff(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, false)
}

func (h *AdminHandler) setFrozen(w http.ResponseWriter, r *http.Request, frozen bool) {
	result, err := h.freezeService.SetFrozen(r.Context(), frozen)
	if err != nil {
		respondError(w, r, "failed to update freeze state", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Requests handles GET requests listing capital requests of every investor.
//
// Endpoint: GET /api/admin/requests
// Query params:
//   - status (optional): PENDING or SETTLED
//   - kind (optional): deposit or withdrawal
//   - limit (optional): positive integer, capped at 50
//
// Response: 200 OK with []model.CapitalRequest, newest first
// Error: 400 Bad Request for an invalid filter
func (h *AdminHandler) Requests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := request.ParseRequestFilter(q.Get("kind"), q.Get("status"), q.Get("limit"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	requests, err := h.requestService.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, "failed to retrieve requests", err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// Settle handles POST requests moving a PENDING request to SETTLED.
//
// Endpoint: POST /api/admin/requests/{uuid}/settle
// Response: 200 OK with the settled model.CapitalRequest
// Error: 400 Bad Request for a malformed id
// Error: 404 Not Found for an unknown id
// Error: 409 Conflict if the request is already settled
func (h *AdminHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if err := validation.ValidateUUID(id); err != nil {
		respondError(w, r, "invalid UUID format", err)
		return
	}

	req, err := h.requestService.Settle(r.Context(), id)
	if err != nil {
		respondError(w, r, "failed to settle request", err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
