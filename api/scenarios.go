/*
scenarios.go - Built-in scenario endpoints

PURPOSE:

	Lists the scenarios compiled into the binary (factory/scenarios/*.yaml)
	so clients can run them by ID or copy a definition, edit it, and post it
	back inline.

USAGE VIA API:

	GET  /api/scenarios
	GET  /api/scenarios/ladder
	POST /api/simulations
	{"scenario_id": "ladder"}

ADDING NEW SCENARIOS:
 1. Add a YAML file under factory/scenarios/ with a unique id
 2. Nothing else: it is embedded and listed automatically

SEE ALSO:
  - handlers.go: CreateSimulation
  - factory/builtin.go: Embedded scenario registry
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/deposit-engine/factory"
)

// ListScenarios returns the built-in scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	all, err := factory.Builtins()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenarios", err)
		return
	}

	dtos := make([]ScenarioDTO, len(all))
	for i, sc := range all {
		dtos[i] = toScenarioDTO(sc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScenario returns one built-in scenario with its definition.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := factory.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDetailDTO{ScenarioDTO: toScenarioDTO(sc), Definition: sc})
}
