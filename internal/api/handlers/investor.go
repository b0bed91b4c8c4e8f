package handlers

import (
	"net/http"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/validation"
)

// InvestorHandler serves the authenticated investor surface. Every route
// expects middleware.InvestorAuth to have stored the caller's identity.
type InvestorHandler struct {
	ledgerService  *service.LedgerService
	requestService *service.CapitalRequestService
}

// NewInvestorHandler creates a new InvestorHandler
func NewInvestorHandler(ledgerService *service.LedgerService, requestService *service.CapitalRequestService) *InvestorHandler {
	return &InvestorHandler{
		ledgerService:  ledgerService,
		requestService: requestService,
	}
}

// Ledger handles GET requests for the caller's ledger.
//
// Endpoint: GET /api/investor/ledger
// Response: 200 OK with model.InvestorLedger; attribution fields are null while frozen
// Error: 401 Unauthorized without a verified identity
// Error: 500 Internal Server Error if the caller's own sums cannot be read
func (h *InvestorHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, "unauthorized", apperrors.ErrMissingCredential)
		return
	}

	ledger, err := h.ledgerService.Ledger(r.Context(), service.LedgerRequest{
		InvestorID:   identity.InvestorID,
		FundWideRead: identity.FundWideRead,
	})
	if err != nil {
		respondError(w, r, "failed to retrieve ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// Deposit handles POST requests creating a PENDING deposit.
//
// Endpoint: POST /api/investor/deposit
// Request body: {"amount": positive number, "note": optional string}
// Response: 201 Created with model.CapitalRequest
// Error: 400 Bad Request for a missing, non-numeric or non-positive amount
// Error: 401 Unauthorized without a verified identity
func (h *InvestorHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.KindDeposit)
}

// Withdraw handles POST requests creating a PENDING withdrawal.
// Same contract as Deposit.
//
// Endpoint: POST /api/investor/withdraw
func (h *InvestorHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.KindWithdrawal)
}

func (h *InvestorHandler) submit(w http.ResponseWriter, r *http.Request, kind model.RequestKind) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, "unauthorized", apperrors.ErrMissingCredential)
		return
	}

	var body request.CapitalRequestBody
	if err := parseJSON(r, &body); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := validation.ValidateCapitalRequest(body)
	if err != nil {
		respondError(w, r, "validation failed", err)
		return
	}

	req, err := h.requestService.Create(r.Context(), service.CreateRequestParams{
		InvestorID: identity.InvestorID,
		Kind:       kind,
		Amount:     input.Amount,
		Note:       input.Note,
	})
	if err != nil {
		respondError(w, r, "failed to create request", err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

// Requests handles GET requests listing the caller's own capital requests, newest first.
//
// Endpoint: GET /api/investor/requests
// Query params:
//   - kind (optional): deposit or withdrawal
//   - status (optional): PENDING or SETTLED
//   - limit (optional): positive integer, capped at 50
//
// Response: 200 OK with []model.CapitalRequest
// Error: 400 Bad Request for an invalid filter
func (h *InvestorHandler) Requests(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, "unauthorized", apperrors.ErrMissingCredential)
		return
	}

	q := r.URL.Query()
	filter, err := request.ParseRequestFilter(q.Get("kind"), q.Get("status"), q.Get("limit"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}
	filter.InvestorID = identity.InvestorID

	requests, err := h.requestService.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, "failed to retrieve requests", err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}
