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

func setupInvestorHandler(t *testing.T) (*InvestorHandler, *database.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db, nil)
	return NewInvestorHandler(svc.Ledger, svc.Requests), db
}

func TestInvestorHandler_Ledger(t *testing.T) {
	seed := func(t *testing.T, db *database.DB) {
		t.Helper()
		testutil.CreateSettledDeposit(t, db, "investor-a", "6000")
		testutil.CreateSettledDeposit(t, db, "investor-b", "4000")
		testutil.CreatePendingWithdrawal(t, db, "investor-a", "100")
		testutil.NewNavSnapshot().
			At(time.Now().UTC().Add(-time.Hour)).
			WithNAV("11000").
			WithPosition("CEX", "11000").
			Build(t, db)
	}

	t.Run("attributes the profit pool pro rata", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)
		seed(t, db)

		req := testutil.WithIdentity(httptest.NewRequest(http.MethodGet, "/api/investor/ledger", nil), "investor-a", true)
		w := httptest.NewRecorder()
		handler.Ledger(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var ledger model.InvestorLedger
		require.NoError(t, json.NewDecoder(w.Body).Decode(&ledger))
		assert.Equal(t, "investor-a", ledger.InvestorID)
		assert.Equal(t, "6000", ledger.Principal.String())
		assert.Equal(t, "100", ledger.PendingWithdraw.String())
		require.True(t, ledger.TotalPrincipal.Valid)
		assert.Equal(t, "10000", ledger.TotalPrincipal.Decimal.String())
		require.True(t, ledger.ProfitPool.Valid)
		assert.Equal(t, "1000", ledger.ProfitPool.Decimal.String())
		require.True(t, ledger.InvestorPnL.Valid)
		assert.Equal(t, "600", ledger.InvestorPnL.Decimal.String())
		assert.False(t, ledger.Frozen)
	})

	t.Run("attribution is null while frozen", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)
		seed(t, db)
		testutil.SetFrozen(t, db, true)

		req := testutil.WithIdentity(httptest.NewRequest(http.MethodGet, "/api/investor/ledger", nil), "investor-a", true)
		w := httptest.NewRecorder()
		handler.Ledger(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, true, body["frozen"])
		assert.Nil(t, body["profit_pool"])
		assert.Nil(t, body["investor_pnl"])
		assert.NotNil(t, body["principal"])
	})

	t.Run("attribution is null without fund-wide read", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)
		seed(t, db)

		req := testutil.WithIdentity(httptest.NewRequest(http.MethodGet, "/api/investor/ledger", nil), "investor-a", false)
		w := httptest.NewRecorder()
		handler.Ledger(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var ledger model.InvestorLedger
		require.NoError(t, json.NewDecoder(w.Body).Decode(&ledger))
		assert.Equal(t, "6000", ledger.Principal.String())
		assert.False(t, ledger.TotalPrincipal.Valid)
		assert.False(t, ledger.InvestorPnL.Valid)
	})

	t.Run("401 without identity", func(t *testing.T) {
		handler, _ := setupInvestorHandler(t)

		w := httptest.NewRecorder()
		handler.Ledger(w, httptest.NewRequest(http.MethodGet, "/api/investor/ledger", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestInvestorHandler_Submit(t *testing.T) {
	t.Run("deposit creates a pending request for the caller", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)

		req := testutil.WithIdentity(
			testutil.NewJSONRequest(http.MethodPost, "/api/investor/deposit", `{"amount": 250.5, "note": "  first  "}`),
			"investor-a", true,
		)
		w := httptest.NewRecorder()
		handler.Deposit(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created model.CapitalRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, "investor-a", created.InvestorID)
		assert.Equal(t, model.KindDeposit, created.Kind)
		assert.Equal(t, model.StatusPending, created.Status)
		assert.Equal(t, "250.5", created.Amount.String())
		require.NotNil(t, created.Note)
		assert.Equal(t, "first", *created.Note)
		assert.Nil(t, created.SettledAt)

		testutil.AssertRowCount(t, db, "capital_request", 1)
	})

	t.Run("withdraw accepts a quoted amount", func(t *testing.T) {
		handler, _ := setupInvestorHandler(t)

		req := testutil.WithIdentity(
			testutil.NewJSONRequest(http.MethodPost, "/api/investor/withdraw", `{"amount": "40"}`),
			"investor-a", true,
		)
		w := httptest.NewRecorder()
		handler.Withdraw(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created model.CapitalRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, model.KindWithdrawal, created.Kind)
		assert.Equal(t, "40", created.Amount.String())
	})

	t.Run("rejects invalid bodies", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"zero amount", `{"amount": 0}`},
			{"negative amount", `{"amount": -5}`},
			{"non-numeric amount", `{"amount": "abc"}`},
			{"huge exponent", `{"amount": "1e200000000"}`},
			{"tiny exponent", `{"amount": "1e-200000000"}`},
			{"huge bare exponent", `{"amount": 1e200000000}`},
			{"missing amount", `{"note": "hi"}`},
			{"unknown field", `{"amount": 5, "investor_id": "someone-else"}`},
			{"malformed json", `{"amount":`},
			{"empty body", ``},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				handler, db := setupInvestorHandler(t)

				req := testutil.WithIdentity(
					testutil.NewJSONRequest(http.MethodPost, "/api/investor/deposit", tt.body),
					"investor-a", true,
				)
				w := httptest.NewRecorder()
				handler.Deposit(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
				testutil.AssertRowCount(t, db, "capital_request", 0)
			})
		}
	})

	t.Run("401 without identity", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)

		w := httptest.NewRecorder()
		handler.Deposit(w, testutil.NewJSONRequest(http.MethodPost, "/api/investor/deposit", `{"amount": 5}`))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		testutil.AssertRowCount(t, db, "capital_request", 0)
	})
}

func TestInvestorHandler_Requests(t *testing.T) {
	t.Run("lists only the caller's requests", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)
		mine := testutil.NewCapitalRequest("investor-a").Build(t, db)
		testutil.NewCapitalRequest("investor-b").Build(t, db)

		req := testutil.WithIdentity(httptest.NewRequest(http.MethodGet, "/api/investor/requests", nil), "investor-a", true)
		w := httptest.NewRecorder()
		handler.Requests(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var requests []model.CapitalRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&requests))
		require.Len(t, requests, 1)
		assert.Equal(t, mine.ID, requests[0].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)
		testutil.NewCapitalRequest("investor-a").Build(t, db)
		settled := testutil.CreateSettledDeposit(t, db, "investor-a", "10")

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/investor/requests", map[string]string{"status": "settled"})
		w := httptest.NewRecorder()
		handler.Requests(w, testutil.WithIdentity(req, "investor-a", true))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var requests []model.CapitalRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&requests))
		require.Len(t, requests, 1)
		assert.Equal(t, settled.ID, requests[0].ID)
	})

	t.Run("newest first", func(t *testing.T) {
		handler, db := setupInvestorHandler(t)
		base := time.Now().UTC().Add(-time.Hour)
		older := testutil.NewCapitalRequest("investor-a").CreatedAt(base).Build(t, db)
		newer := testutil.NewCapitalRequest("investor-a").CreatedAt(base.Add(time.Minute)).Build(t, db)

		req := testutil.WithIdentity(httptest.NewRequest(http.MethodGet, "/api/investor/requests", nil), "investor-a", true)
		w := httptest.NewRecorder()
		handler.Requests(w, req)

		var requests []model.CapitalRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&requests))
		require.Len(t, requests, 2)
		assert.Equal(t, newer.ID, requests[0].ID)
		assert.Equal(t, older.ID, requests[1].ID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		handler, _ := setupInvestorHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/investor/requests", map[string]string{"kind": "loan"})
		w := httptest.NewRecorder()
		handler.Requests(w, testutil.WithIdentity(req, "investor-a", true))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
