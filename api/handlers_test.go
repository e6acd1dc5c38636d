/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Built-in scenario listing and lookup
- Running and exporting simulations (built-in and inline)
- Reading runs, filtered ledgers and reports back
- Error status mapping
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/store/sqlite"
)

func setupTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store)
	h.Now = func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) }
	return h, NewRouter(h)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// runSingle runs the "single" built-in for one quarter.
func runSingle(t *testing.T, srv http.Handler) SimulationResponse {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/simulations", map[string]any{
		"scenario_id":  "single",
		"horizon_days": 90,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SimulationResponse](t, rec)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestListScenarios(t *testing.T) {
	_, srv := setupTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]ScenarioDTO](t, rec)
	require.Len(t, got, 3)
	assert.Equal(t, "bond-mix", got[0].ID)
	assert.Equal(t, "ladder", got[1].ID)
	assert.Equal(t, 3, got[1].Instruments)
	assert.Equal(t, "single", got[2].ID)
	assert.Equal(t, "2023-01-01", got[2].StartDate)
}

func TestGetScenario(t *testing.T) {
	_, srv := setupTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/scenarios/bond-mix", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ScenarioDetailDTO](t, rec)
	require.NotNil(t, got.Definition)
	assert.Equal(t, "bond-5y", got.Definition.Instruments[0].Name)
	assert.InDelta(t, 0.04, got.Definition.Instruments[0].Rate, 1e-12)

	rec = do(t, srv, http.MethodGet, "/api/scenarios/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SIMULATIONS
// =============================================================================

func TestCreateSimulation_Builtin(t *testing.T) {
	// GIVEN: The single-deposit scenario
	_, srv := setupTestServer(t)

	// WHEN: Running it for one quarter
	resp := runSingle(t, srv)

	// THEN: Activation, withholding and the first gain are exported
	run := resp.Run
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "single", run.Scenario)
	assert.Equal(t, 90, run.Horizon)
	assert.Equal(t, "2023-04-01", run.EndDate)
	assert.Equal(t, "2026-01-01T09:00:00Z", run.CreatedAt)
	assert.InDelta(t, 10046.25, run.Balance, 1e-9)
	assert.InDelta(t, 62.5, run.TotalGain, 1e-9)
	assert.InDelta(t, 16.25, run.TotalPaid, 1e-9)
	assert.Empty(t, run.Advisories)

	require.Len(t, resp.Ledger, 3)
	assert.Equal(t, "activation", resp.Ledger[0].Kind)
	assert.Equal(t, "tax", resp.Ledger[1].Kind)
	assert.Equal(t, "gain", resp.Ledger[2].Kind)
	assert.InDelta(t, 10046.25, resp.Ledger[2].WalletAmount, 1e-9)
}

func TestCreateSimulation_Inline(t *testing.T) {
	// GIVEN: An inline scenario with a trailing stub
	_, srv := setupTestServer(t)
	body := `{
		"scenario": {
			"name": "stub",
			"wallet": {"start_date": "2023-01-01"},
			"instruments": [
				{"name": "four-months", "principal": 5000, "rate": 0.03,
				 "compounding": "quarterly", "duration_months": 4}
			]
		}
	}`

	// WHEN: Running it to maturity
	rec := do(t, srv, http.MethodPost, "/api/simulations", body)

	// THEN: The advisory is reported and the ID falls back to the name
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[SimulationResponse](t, rec)
	assert.Equal(t, "stub", resp.Run.Scenario)
	require.Len(t, resp.Run.Advisories, 1)
	assert.Equal(t, "four-months", resp.Run.Advisories[0].Instrument)
	assert.Equal(t, -61, resp.Run.Advisories[0].DaysShort)
	assert.Contains(t, resp.Run.Advisories[0].Message, "won't gain interests")
}

func TestCreateSimulation_Errors(t *testing.T) {
	_, srv := setupTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{"scenario_id":`, http.StatusBadRequest, ""},
		{"empty request", `{}`, http.StatusBadRequest, "invalid_scenario"},
		{"both forms", `{"scenario_id":"single","scenario":{"wallet":{"start_date":"2023-01-01"}}}`, http.StatusBadRequest, "invalid_scenario_id"},
		{"unknown builtin", `{"scenario_id":"nope"}`, http.StatusNotFound, ""},
		{
			"negative principal",
			`{"scenario":{"wallet":{"start_date":"2023-01-01"},"instruments":[{"name":"a","principal":-5,"rate":0.02,"compounding":"annual","duration_months":12}]}}`,
			http.StatusBadRequest, "invalid_principal",
		},
		{
			"duplicate names",
			`{"scenario":{"wallet":{"start_date":"2023-01-01"},"instruments":[` +
				`{"name":"a","principal":100,"rate":0.02,"compounding":"annual","duration_months":12},` +
				`{"name":"a","principal":100,"rate":0.02,"compounding":"annual","duration_months":12}]}}`,
			http.StatusBadRequest, "",
		},
		{"zero horizon", `{"scenario_id":"single","horizon_days":0}`, http.StatusBadRequest, ""},
		{"horizon too long", `{"scenario_id":"single","horizon_days":40000}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/simulations", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			if tt.code != "" {
				assert.Equal(t, tt.code, resp.Code)
			}
		})
	}
}

// =============================================================================
// RUNS
// =============================================================================

func TestRuns_ReadBack(t *testing.T) {
	_, srv := setupTestServer(t)
	created := runSingle(t, srv).Run

	rec := do(t, srv, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]RunDTO](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, created.ID, runs[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/runs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[RunDTO](t, rec)
	assert.Equal(t, created, got)
}

func TestGetLedger_Filters(t *testing.T) {
	_, srv := setupTestServer(t)
	id := runSingle(t, srv).Run.ID

	rec := do(t, srv, http.MethodGet, "/api/runs/"+id+"/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[LedgerResponse](t, rec)
	assert.Equal(t, 3, all.Total)
	assert.Len(t, all.Entries, 3)

	rec = do(t, srv, http.MethodGet, "/api/runs/"+id+"/ledger?kind=gain", nil)
	gains := decode[LedgerResponse](t, rec)
	require.Len(t, gains.Entries, 1)
	assert.InDelta(t, 62.5, gains.Entries[0].Operation, 1e-9)

	rec = do(t, srv, http.MethodGet, "/api/runs/"+id+"/ledger?from=2023-03-01&to=2023-12-31", nil)
	assert.Len(t, decode[LedgerResponse](t, rec).Entries, 2)

	rec = do(t, srv, http.MethodGet, "/api/runs/"+id+"/ledger?limit=1", nil)
	assert.Len(t, decode[LedgerResponse](t, rec).Entries, 1)

	rec = do(t, srv, http.MethodGet, "/api/runs/"+id+"/ledger?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	_, srv := setupTestServer(t)
	id := runSingle(t, srv).Run.ID

	rec := do(t, srv, http.MethodGet, "/api/runs/"+id+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "<title>single</title>")
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = do(t, srv, http.MethodGet, "/api/runs/"+id+"/report.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestRuns_NotFound(t *testing.T) {
	_, srv := setupTestServer(t)

	for _, path := range []string{
		"/api/runs/missing",
		"/api/runs/missing/ledger",
		"/api/runs/missing/report",
		"/api/runs/missing/report.pdf",
	} {
		rec := do(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
