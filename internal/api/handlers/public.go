package handlers

import (
	"net/http"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// PublicHandler serves the unauthenticated fund views.
type PublicHandler struct {
	fundService     *service.FundService
	categoryService *service.CategoryService
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(fundService *service.FundService, categoryService *service.CategoryService) *PublicHandler {
	return &PublicHandler{
		fundService:     fundService,
		categoryService: categoryService,
	}
}

// PoolMetrics handles GET requests for the headline fund numbers.
//
// Endpoint: GET /api/public/pool-metrics
// Response: 200 OK with model.FundMetrics; NAV fields are null before the first snapshot
// Error: 500 Internal Server Error if the freeze flag or snapshots cannot be read
func (h *PublicHandler) PoolMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.fundService.Metrics(r.Context())
	if err != nil {
		respondError(w, r, "failed to retrieve pool metrics", err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// CategoryPnL handles GET requests for the per-category PnL report.
// A null baseline id in the response means the matching delta was taken against zero.
//
// Endpoint: GET /api/public/category-pnl
// Response: 200 OK with model.CategoryPnLReport
// Error: 500 Internal Server Error if snapshots cannot be read
func (h *PublicHandler) CategoryPnL(w http.ResponseWriter, r *http.Request) {
	report, err := h.categoryService.CategoryPnL(r.Context())
	if err != nil {
		respondError(w, r, "failed to retrieve category pnl", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Allocation handles GET requests for the category breakdown of the latest snapshot.
//
// Endpoint: GET /api/public/allocation
// Response: 200 OK with model.Allocation
// Error: 500 Internal Server Error if snapshots cannot be read
func (h *PublicHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	allocation, err := h.fundService.Allocation(r.Context())
	if err != nil {
		respondError(w, r, "failed to retrieve allocation", err)
		return
	}
	respondJSON(w, http.StatusOK, allocation)
}

// NavHistory handles GET requests for the NAV series.
//
// Endpoint: GET /api/public/nav-history
// Query params:
//   - limit (optional): positive integer, default 2000, capped at 5000
//
// Response: 200 OK with []model.NavPoint in ascending time order
// Error: 400 Bad Request for an invalid limit
// Error: 500 Internal Server Error if snapshots cannot be read
func (h *PublicHandler) NavHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	points, err := h.fundService.NavHistory(r.Context(), limit)
	if err != nil {
		respondError(w, r, "failed to retrieve nav history", err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// PositionsResponse is the body of GET /api/public/positions.
type PositionsResponse struct {
	SnapshotID *int64                   `json:"snapshot_id"`
	Positions  []model.PositionSnapshot `json:"positions"`
}

// Positions handles GET requests for the raw positions of the latest snapshot.
//
// Endpoint: GET /api/public/positions
// Response: 200 OK with PositionsResponse; snapshot_id is null and positions empty without data
// Error: 500 Internal Server Error if snapshots cannot be read
func (h *PublicHandler) Positions(w http.ResponseWriter, r *http.Request) {
	id, positions, err := h.fundService.Positions(r.Context())
	if err != nil {
		respondError(w, r, "failed to retrieve positions", err)
		return
	}
	respondJSON(w, http.StatusOK, PositionsResponse{SnapshotID: id, Positions: positions})
}
