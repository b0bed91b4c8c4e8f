package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

func setupPublicHandler(t *testing.T) (*PublicHandler, *database.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db, nil)
	return NewPublicHandler(svc.Fund, svc.Category), db
}

// seedTwoSnapshots records an older and a newer snapshot, both within the
// last day so that only the previous baseline differs from the latest.
func seedTwoSnapshots(t *testing.T, db *database.DB) (older, newer model.NavSnapshot) {
	t.Helper()
	now := time.Now().UTC()

	older = testutil.NewNavSnapshot().
		At(now.Add(-2 * time.Hour)).
		WithNAV("10000").
		WithPosition("CEX", "6000").
		WithPosition("DeFi", "4000").
		Build(t, db)
	newer = testutil.NewNavSnapshot().
		At(now.Add(-time.Hour)).
		WithNAV("10500").
		WithPosition("CEX", "6300").
		WithPosition("DeFi", "4200").
		Build(t, db)
	return older, newer
}

func TestPublicHandler_PoolMetrics(t *testing.T) {
	t.Run("null nav before the first snapshot", func(t *testing.T) {
		handler, _ := setupPublicHandler(t)

		w := httptest.NewRecorder()
		handler.PoolMetrics(w, httptest.NewRequest(http.MethodGet, "/api/public/pool-metrics", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Nil(t, body["nav"])
		assert.Nil(t, body["latest_snapshot_id"])
		assert.Equal(t, false, body["frozen"])
	})

	t.Run("reports the latest nav", func(t *testing.T) {
		handler, db := setupPublicHandler(t)
		_, newer := seedTwoSnapshots(t, db)
		testutil.CreateSettledDeposit(t, db, "investor-a", "10000")
		testutil.SetFrozen(t, db, true)

		w := httptest.NewRecorder()
		handler.PoolMetrics(w, httptest.NewRequest(http.MethodGet, "/api/public/pool-metrics", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var metrics model.FundMetrics
		require.NoError(t, json.NewDecoder(w.Body).Decode(&metrics))
		require.True(t, metrics.NAV.Valid)
		assert.Equal(t, "10500", metrics.NAV.Decimal.String())
		require.NotNil(t, metrics.LatestSnapshotID)
		assert.Equal(t, newer.ID, *metrics.LatestSnapshotID)
		require.True(t, metrics.TotalPrincipal.Valid)
		assert.Equal(t, "10000", metrics.TotalPrincipal.Decimal.String())
		assert.True(t, metrics.Frozen)
	})
}

func TestPublicHandler_CategoryPnL(t *testing.T) {
	t.Run("empty report without snapshots", func(t *testing.T) {
		handler, _ := setupPublicHandler(t)

		w := httptest.NewRecorder()
		handler.CategoryPnL(w, httptest.NewRequest(http.MethodGet, "/api/public/category-pnl", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report model.CategoryPnLReport
		require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
		assert.Nil(t, report.Latest)
		assert.Empty(t, report.Rows)
	})

	t.Run("diffs against the previous snapshot", func(t *testing.T) {
		handler, db := setupPublicHandler(t)
		older, newer := seedTwoSnapshots(t, db)

		w := httptest.NewRecorder()
		handler.CategoryPnL(w, httptest.NewRequest(http.MethodGet, "/api/public/category-pnl", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report model.CategoryPnLReport
		require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
		require.NotNil(t, report.Latest)
		require.NotNil(t, report.Previous)
		assert.Equal(t, newer.ID, *report.Latest)
		assert.Equal(t, older.ID, *report.Previous)

		require.Len(t, report.Rows, 2)
		assert.Equal(t, "CEX", report.Rows[0].Category)
		assert.Equal(t, "6300", report.Rows[0].CurrentValue.String())
		assert.Equal(t, "300", report.Rows[0].PnLNow.String())
		assert.Equal(t, "DeFi", report.Rows[1].Category)
		assert.Equal(t, "200", report.Rows[1].PnLNow.String())
	})
}

func TestPublicHandler_Allocation(t *testing.T) {
	handler, db := setupPublicHandler(t)
	testutil.NewNavSnapshot().
		At(time.Now().UTC().Add(-time.Hour)).
		WithNAV("1000").
		WithPosition("CEX", "300").
		WithPosition("DeFi", "650").
		Build(t, db)

	w := httptest.NewRecorder()
	handler.Allocation(w, httptest.NewRequest(http.MethodGet, "/api/public/allocation", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var allocation model.Allocation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&allocation))
	require.Len(t, allocation.Rows, 2)
	assert.Equal(t, "DeFi", allocation.Rows[0].Category)
	assert.Equal(t, "950", allocation.PositionTotal.String())
	require.True(t, allocation.Discrepancy.Valid)
	assert.Equal(t, "50", allocation.Discrepancy.Decimal.String())
}

func TestPublicHandler_NavHistory(t *testing.T) {
	t.Run("ascending series", func(t *testing.T) {
		handler, db := setupPublicHandler(t)
		seedTwoSnapshots(t, db)

		w := httptest.NewRecorder()
		handler.NavHistory(w, httptest.NewRequest(http.MethodGet, "/api/public/nav-history", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var points []model.NavPoint
		require.NoError(t, json.NewDecoder(w.Body).Decode(&points))
		require.Len(t, points, 2)
		assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
		assert.Equal(t, "10000", points[0].TotalNAV.String())
	})

	t.Run("limit keeps the most recent points", func(t *testing.T) {
		handler, db := setupPublicHandler(t)
		seedTwoSnapshots(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/public/nav-history", map[string]string{"limit": "1"})
		w := httptest.NewRecorder()
		handler.NavHistory(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var points []model.NavPoint
		require.NoError(t, json.NewDecoder(w.Body).Decode(&points))
		require.Len(t, points, 1)
		assert.Equal(t, "10500", points[0].TotalNAV.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		handler, _ := setupPublicHandler(t)

		for _, limit := range []string{"abc", "0", "-5"} {
			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/public/nav-history", map[string]string{"limit": limit})
			w := httptest.NewRecorder()
			handler.NavHistory(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, "limit %q", limit)
		}
	})
}

func TestPublicHandler_Positions(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		handler, _ := setupPublicHandler(t)

		w := httptest.NewRecorder()
		handler.Positions(w, httptest.NewRequest(http.MethodGet, "/api/public/positions", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body PositionsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Nil(t, body.SnapshotID)
		assert.Empty(t, body.Positions)
	})

	t.Run("positions of the latest snapshot", func(t *testing.T) {
		handler, db := setupPublicHandler(t)
		_, newer := seedTwoSnapshots(t, db)

		w := httptest.NewRecorder()
		handler.Positions(w, httptest.NewRequest(http.MethodGet, "/api/public/positions", nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body PositionsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.NotNil(t, body.SnapshotID)
		assert.Equal(t, newer.ID, *body.SnapshotID)
		require.Len(t, body.Positions, 2)
		for _, p := range body.Positions {
			assert.Equal(t, newer.ID, p.NavSnapshotID)
		}
	})
}
