/*
handlers.go - HTTP API handlers for the deposit projection engine

PURPOSE:
  Exposes the simulation engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the factory (build + run) and the
  run store (export + read back).

ENDPOINTS:
  Scenarios:
    GET    /api/scenarios              List built-in scenarios
    GET    /api/scenarios/{id}         Built-in scenario with its definition

  Simulations:
    POST   /api/simulations            Run a scenario and export the run

  Runs:
    GET    /api/runs                   List exported runs, most recent first
    GET    /api/runs/{id}              Run summary and advisories
    GET    /api/runs/{id}/ledger       Ledger rows (?name=&kind=&from=&to=&limit=)
    GET    /api/runs/{id}/report       HTML report
    GET    /api/runs/{id}/report.pdf   PDF report

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Run export (any generic.Store, SQLite in production)
  - Logger: Engine logger handed to every simulated wallet
  - Now: Wall clock for run metadata

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Build and run the simulation (factory)
  4. Export run + ledger atomically
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid body, invalid scenario, duplicate instrument names
  - 404: Unknown scenario or run
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - factory/scenario.go: Scenario schema and Simulation
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/report"
	"github.com/warp/deposit-engine/wallet"
)

// maxHorizonDays bounds a single request to a century of simulated days.
const maxHorizonDays = 36500

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  generic.Store
	Logger *slog.Logger
	Now    func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store generic.Store) *Handler {
	return &Handler{
		Store:  store,
		Logger: slog.New(slog.DiscardHandler),
		Now:    time.Now,
	}
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// CreateSimulation runs a scenario to its horizon and exports the run.
func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sc, err := h.resolveScenario(req)
	if err != nil {
		writeDomainError(w, "Invalid scenario", err)
		return
	}
	if req.HorizonDays != nil {
		if *req.HorizonDays <= 0 {
			writeError(w, http.StatusBadRequest, "horizon_days must be positive", nil)
			return
		}
		sc.HorizonDays = *req.HorizonDays
	}

	sim, err := sc.Build(wallet.WithLogger(h.Logger))
	if err != nil {
		writeDomainError(w, "Failed to build simulation", err)
		return
	}
	if sim.Horizon > maxHorizonDays {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Horizon of %d days exceeds the limit of %d", sim.Horizon, maxHorizonDays), nil)
		return
	}
	if _, err := sim.Run(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Simulation interrupted", err)
		return
	}

	run := sim.Record("", h.Now())
	entries := sim.Wallet.Ledger()
	if err := h.Store.SaveRun(r.Context(), run, entries); err != nil {
		writeDomainError(w, "Failed to export run", err)
		return
	}

	writeJSON(w, http.StatusCreated, SimulationResponse{
		Run:    toRunDTO(run),
		Ledger: generic.Records(entries),
	})
}

// resolveScenario picks the built-in or inline scenario of a request.
func (h *Handler) resolveScenario(req SimulationRequest) (*factory.Scenario, error) {
	switch {
	case req.ScenarioID != "" && req.Scenario != nil:
		return nil, &generic.ConfigurationError{Field: "scenario_id", Value: req.ScenarioID, Reason: "give either scenario_id or scenario, not both"}
	case req.ScenarioID != "":
		return factory.Lookup(req.ScenarioID)
	case req.Scenario != nil:
		if err := req.Scenario.Validate(); err != nil {
			return nil, err
		}
		if req.Scenario.ID == "" {
			req.Scenario.ID = req.Scenario.Name
		}
		return req.Scenario, nil
	default:
		return nil, &generic.ConfigurationError{Field: "scenario", Value: nil, Reason: "scenario_id or scenario is required"}
	}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// ListRuns returns all exported runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTOs(runs))
}

// GetRun returns one exported run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get run", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(*run))
}

// GetLedger returns a run's ledger rows, optionally filtered by instrument
// name, entry kind and date range, and truncated to limit rows.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	filter, err := parseLedgerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ledger filter", err)
		return
	}

	entries, err := h.Store.LoadEntries(r.Context(), runID)
	if err != nil {
		writeDomainError(w, "Failed to load ledger", err)
		return
	}

	selected := filter.apply(entries)
	writeJSON(w, http.StatusOK, LedgerResponse{
		RunID:   runID,
		Total:   len(entries),
		Entries: generic.Records(selected),
	})
}

// GetReport renders the run as an HTML page.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	run, entries, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	page, err := report.HTMLPage(reportTitle(run), report.Document(*run, entries, limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// GetReportPDF renders the run as a PDF document.
func (h *Handler) GetReportPDF(w http.ResponseWriter, r *http.Request) {
	run, entries, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	pdf, err := report.PDF(*run, entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", run.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (*generic.Run, []generic.Entry, bool) {
	id := chi.URLParam(r, "id")
	run, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get run", err)
		return nil, nil, false
	}
	entries, err := h.Store.LoadEntries(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load ledger", err)
		return nil, nil, false
	}
	return run, entries, true
}

func reportTitle(run *generic.Run) string {
	if run.Scenario != "" {
		return run.Scenario
	}
	return run.ID
}

// =============================================================================
// LEDGER FILTER
// =============================================================================

type ledgerFilter struct {
	name  string
	kind  generic.EntryKind
	from  *generic.TimePoint
	to    *generic.TimePoint
	limit int
}

func parseLedgerFilter(r *http.Request) (ledgerFilter, error) {
	q := r.URL.Query()
	f := ledgerFilter{name: q.Get("name"), kind: generic.EntryKind(q.Get("kind"))}

	if v := q.Get("from"); v != "" {
		tp, err := generic.ParseTimePoint(v)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.from = &tp
	}
	if v := q.Get("to"); v != "" {
		tp, err := generic.ParseTimePoint(v)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		f.to = &tp
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("limit: must be a non-negative integer")
		}
		f.limit = n
	}
	return f, nil
}

func (f ledgerFilter) apply(entries []generic.Entry) []generic.Entry {
	out := make([]generic.Entry, 0, len(entries))
	for _, e := range entries {
		if f.name != "" && e.Source != f.name {
			continue
		}
		if f.kind != "" && e.Kind != f.kind {
			continue
		}
		if f.from != nil && e.Date.Before(*f.from) {
			continue
		}
		if f.to != nil && e.Date.After(*f.to) {
			continue
		}
		out = append(out, e)
		if f.limit > 0 && len(out) == f.limit {
			break
		}
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to a status code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: message, Details: err.Error()}

	var cfgErr *generic.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		status = http.StatusBadRequest
		resp.Code = "invalid_" + cfgErr.Field
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	}
	writeJSON(w, status, resp)
}
