/*
store.go - Export interface for simulation runs and their ledgers

PURPOSE:
  The engine itself owns no persistence format. A Store is a downstream
  collaborator: it receives a finished (or paused) run's summary plus a
  snapshot of its ledger and keeps them for tabular tooling, the HTTP API
  and later reporting.

APPEND-ONLY CONTRACT:
  - SaveRun(): Writes the run and all its entries atomically
  - NO Update() or Delete() methods exist
  - A run ID can be saved only once (ErrDuplicateRun)

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite tables for spreadsheet/dataframe tools
  - generic/store/memory.go: In-memory for tests and the CLI

EXAMPLE:
  run := generic.Run{ID: uuid.NewString(), Scenario: "bp-2023", Summary: w.Snapshot()}
  if err := store.SaveRun(ctx, run, w.Ledger()); err != nil {
      return err
  }

SEE ALSO:
  - ledger.go: Entry, the exported row
  - api/handlers.go: Saves runs on POST /api/simulations
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// RUN - Metadata of one exported simulation
// =============================================================================

type Run struct {
	ID          string
	Scenario    string
	Description string
	CreatedAt   time.Time // wall clock, metadata only
	Horizon     int       // wallet ticks simulated
	Summary     WalletSnapshot
	Advisories  []Advisory
}

// =============================================================================
// STORE - Interface for run export (append-only)
// =============================================================================

type Store interface {
	// SaveRun persists a run and its entries atomically.
	// Either all succeed or none do.
	SaveRun(ctx context.Context, run Run, entries []Entry) error

	// GetRun returns the run, or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns all runs, most recent first.
	ListRuns(ctx context.Context) ([]Run, error)

	// LoadEntries returns the ledger of a run ordered by ID.
	LoadEntries(ctx context.Context, runID string) ([]Entry, error)
}
