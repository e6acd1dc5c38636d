/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - Plain numbers for charting front-ends
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Scenarios:
    ScenarioDTO, ScenarioDetailDTO

  Simulations:
    SimulationRequest, SimulationResponse

  Runs:
    RunDTO, AdvisoryDTO, LedgerResponse (rows are generic.Record)

VALIDATION:
  Validation is done in handlers and in factory.Scenario.Validate, not in
  DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/scenario.go: Scenario schema
  - generic/ledger.go: Record, the flat ledger row
*/
package api

import (
	"time"

	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ScenarioDTO summarizes a built-in scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date"`
	Instruments int    `json:"instruments"`
}

// ScenarioDetailDTO is a built-in scenario with its full definition, in the
// same shape accepted by POST /api/simulations.
type ScenarioDetailDTO struct {
	ScenarioDTO
	Definition *factory.Scenario `json:"definition"`
}

// SimulationRequest runs either a built-in scenario or an inline one.
type SimulationRequest struct {
	ScenarioID  string            `json:"scenario_id,omitempty"`
	Scenario    *factory.Scenario `json:"scenario,omitempty"`
	HorizonDays *int              `json:"horizon_days,omitempty"` // overrides the scenario's horizon
}

// SimulationResponse is returned after a simulation was run and exported.
type SimulationResponse struct {
	Run    RunDTO           `json:"run"`
	Ledger []generic.Record `json:"ledger"`
}

// RunDTO represents an exported run.
type RunDTO struct {
	ID          string        `json:"id"`
	Scenario    string        `json:"scenario"`
	Description string        `json:"description,omitempty"`
	CreatedAt   string        `json:"created_at"`
	Horizon     int           `json:"horizon"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Currency    string        `json:"currency"`
	Balance     float64       `json:"balance"`
	Injected    float64       `json:"injected"`
	TotalGain   float64       `json:"total_gain"`
	TotalPaid   float64       `json:"total_paid"`
	NetGain     float64       `json:"net_gain"`
	Instruments int           `json:"instruments"`
	Entries     int           `json:"entries"`
	Advisories  []AdvisoryDTO `json:"advisories"`
}

// AdvisoryDTO represents a non-fatal condition found during a run.
type AdvisoryDTO struct {
	Kind       string `json:"kind"`
	Instrument string `json:"instrument"`
	On         string `json:"on"`
	EndDate    string `json:"end_date"`
	Scheduled  string `json:"scheduled"`
	DaysShort  int    `json:"days_short"`
	Message    string `json:"message"`
}

// LedgerResponse is a run's ledger, possibly filtered.
type LedgerResponse struct {
	RunID   string           `json:"run_id"`
	Total   int              `json:"total"`
	Entries []generic.Record `json:"entries"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toScenarioDTO(sc *factory.Scenario) ScenarioDTO {
	return ScenarioDTO{
		ID:          sc.ID,
		Name:        sc.Name,
		Description: sc.Description,
		StartDate:   sc.Wallet.StartDate,
		Instruments: len(sc.Instruments),
	}
}

func toRunDTO(run generic.Run) RunDTO {
	s := run.Summary
	advisories := make([]AdvisoryDTO, len(run.Advisories))
	for i, a := range run.Advisories {
		advisories[i] = AdvisoryDTO{
			Kind:       string(a.Kind),
			Instrument: a.Instrument,
			On:         a.On.String(),
			EndDate:    a.EndDate.String(),
			Scheduled:  a.Scheduled.String(),
			DaysShort:  a.DaysShort,
			Message:    a.String(),
		}
	}
	return RunDTO{
		ID:          run.ID,
		Scenario:    run.Scenario,
		Description: run.Description,
		CreatedAt:   run.CreatedAt.Format(time.RFC3339),
		Horizon:     run.Horizon,
		StartDate:   s.StartDate.String(),
		EndDate:     s.CurrentDate.String(),
		Currency:    string(s.Balance.Currency),
		Balance:     s.Balance.Float64(),
		Injected:    s.Injected.Float64(),
		TotalGain:   s.TotalGain.Float64(),
		TotalPaid:   s.TotalPaid.Float64(),
		NetGain:     s.NetGain().Float64(),
		Instruments: s.Instruments,
		Entries:     s.Entries,
		Advisories:  advisories,
	}
}

func toRunDTOs(runs []generic.Run) []RunDTO {
	dtos := make([]RunDTO, len(runs))
	for i, r := range runs {
		dtos[i] = toRunDTO(r)
	}
	return dtos
}
