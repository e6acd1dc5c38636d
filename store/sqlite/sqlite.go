/*
Package sqlite provides a SQLite-backed implementation of generic.Store.

PURPOSE:
  Exports simulation runs and their ledgers into plain tables that
  spreadsheet and dataframe tools can read directly:
    SELECT currday, operation, wallet_amount FROM ledger_entries WHERE run_id = ?

INTERFACES IMPLEMENTED:
  generic.Store: Run metadata + ledger snapshot persistence

APPEND-ONLY ENFORCEMENT:
  The Store enforces append-only semantics:
  - No UPDATE statements on either table
  - No DELETE statements on either table
  - A run ID can be saved only once (ErrDuplicateRun)

KEY TABLES:
  runs:           One row per exported run (summary columns + JSON snapshot)
  ledger_entries: One row per ledger entry, columns named like generic.Record

NUMBERS:
  Money columns are stored twice: as TEXT holding the exact decimal (used to
  load entries back) and as REAL for charting tools.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are pinned to a
  single connection, otherwise every pooled connection would see its own
  empty database.

USAGE:
  store, err := sqlite.New("./data/runs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.SaveRun(ctx, sim.Record("", time.Now()), sim.Wallet.Ledger())

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/ledger.go: Entry and Record
  - generic/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/deposit-engine/generic"
)

// Store implements generic.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Runs (one per export)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		description TEXT,
		horizon INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		currency TEXT NOT NULL,
		balance TEXT NOT NULL,
		total_gain TEXT NOT NULL,
		total_paid TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		advisories_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);

	-- Ledger entries (append-only snapshot of a run's ledger)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		op_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		currency TEXT NOT NULL,
		amount TEXT NOT NULL,
		operation REAL NOT NULL,
		currday TEXT NOT NULL,
		totalticks INTEGER,
		wallet_ticks INTEGER NOT NULL,
		quarter INTEGER,
		instrument_total_paid TEXT,
		instrument_total_gain TEXT,
		totalpaid REAL,
		totalgain REAL,
		wallet_total_paid TEXT NOT NULL,
		wallet_total_gain TEXT NOT NULL,
		balance TEXT NOT NULL,
		totalpaid_wallet REAL NOT NULL,
		totalgain_wallet REAL NOT NULL,
		wallet_amount REAL NOT NULL,
		PRIMARY KEY (run_id, op_id)
	);

	-- Per-instrument charts
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_run_name
		ON ledger_entries(run_id, name, op_id);

	-- Date-range queries
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_run_day
		ON ledger_entries(run_id, currday);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUNS (generic.Store interface)
// =============================================================================

// createdAtLayout has a fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveRun writes the run and all its entries in one transaction.
func (s *Store) SaveRun(ctx context.Context, run generic.Run, entries []generic.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := s.insertRun(ctx, sqlTx, run); err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.insertEntry(ctx, sqlTx, run.ID, e); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func (s *Store) insertRun(ctx context.Context, db execer, run generic.Run) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	advisories := run.Advisories
	if advisories == nil {
		advisories = []generic.Advisory{}
	}
	advisoriesJSON, err := json.Marshal(advisories)
	if err != nil {
		return fmt.Errorf("failed to encode advisories: %w", err)
	}

	query := `
		INSERT INTO runs
		(id, scenario, description, horizon, start_date, end_date, currency,
		 balance, total_gain, total_paid, summary_json, advisories_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	sum := run.Summary
	_, err = db.ExecContext(ctx, query,
		run.ID,
		run.Scenario,
		nullString(run.Description),
		run.Horizon,
		sum.StartDate.String(),
		sum.CurrentDate.String(),
		string(sum.Balance.Currency),
		sum.Balance.Value.String(),
		sum.TotalGain.Value.String(),
		sum.TotalPaid.Value.String(),
		string(summaryJSON),
		string(advisoriesJSON),
		run.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateRun
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (s *Store) insertEntry(ctx context.Context, db execer, runID string, e generic.Entry) error {
	r := e.Record()

	query := `
		INSERT INTO ledger_entries
		(run_id, op_id, name, kind, currency, amount, operation, currday, totalticks,
		 wallet_ticks, quarter, instrument_total_paid, instrument_total_gain, totalpaid,
		 totalgain, wallet_total_paid, wallet_total_gain, balance, totalpaid_wallet,
		 totalgain_wallet, wallet_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		runID,
		e.ID,
		e.Source,
		string(e.Kind),
		string(e.Amount.Currency),
		e.Amount.Value.String(),
		r.Operation,
		r.Date,
		nullInt(e.InstrumentTicks),
		e.WalletTicks,
		nullInt(e.InstrumentPeriods),
		nullDecimal(e.InstrumentTotalPaid),
		nullDecimal(e.InstrumentTotalGain),
		nullFloat(r.TotalPaid),
		nullFloat(r.TotalGain),
		e.WalletTotalPaid.Value.String(),
		e.WalletTotalGain.Value.String(),
		e.Balance.Value.String(),
		r.WalletTotalPaid,
		r.WalletTotalGain,
		r.WalletAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %d: %w", e.ID, err)
	}
	return nil
}

const runColumns = `id, scenario, description, horizon, summary_json, advisories_json, created_at`

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*generic.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]generic.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []generic.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (generic.Run, error) {
	var (
		run            generic.Run
		description    sql.NullString
		summaryJSON    string
		advisoriesJSON string
		createdAt      string
	)

	err := row.Scan(&run.ID, &run.Scenario, &description, &run.Horizon, &summaryJSON, &advisoriesJSON, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Description = description.String
	if run.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return run, fmt.Errorf("failed to decode created_at of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return run, fmt.Errorf("failed to decode summary of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(advisoriesJSON), &run.Advisories); err != nil {
		return run, fmt.Errorf("failed to decode advisories of run %s: %w", run.ID, err)
	}
	if len(run.Advisories) == 0 {
		run.Advisories = nil
	}
	return run, nil
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

// LoadEntries returns the ledger of a run ordered by op_id.
func (s *Store) LoadEntries(ctx context.Context, runID string) ([]generic.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, generic.ErrRunNotFound
	}

	query := `
		SELECT op_id, name, kind, currency, amount, currday, totalticks, wallet_ticks, quarter,
		       instrument_total_paid, instrument_total_gain, wallet_total_paid,
		       wallet_total_gain, balance
		FROM ledger_entries
		WHERE run_id = ?
		ORDER BY op_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []generic.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (generic.Entry, error) {
	var (
		e               generic.Entry
		kind            string
		currency        string
		amount          string
		day             string
		instrTicks      sql.NullInt64
		periods         sql.NullInt64
		instrTotalPaid  sql.NullString
		instrTotalGain  sql.NullString
		walletTotalPaid string
		walletTotalGain string
		balance         string
	)

	err := rows.Scan(
		&e.ID, &e.Source, &kind, &currency, &amount, &day, &instrTicks, &e.WalletTicks,
		&periods, &instrTotalPaid, &instrTotalGain, &walletTotalPaid, &walletTotalGain, &balance,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	cur := generic.Currency(currency)
	e.Kind = generic.EntryKind(kind)
	e.Amount = parseAmount(amount, cur)
	e.Date, err = generic.ParseTimePoint(day)
	if err != nil {
		return e, fmt.Errorf("failed to parse entry date: %w", err)
	}
	e.InstrumentTicks = intPtr(instrTicks)
	e.InstrumentPeriods = intPtr(periods)
	if instrTotalPaid.Valid {
		e.InstrumentTotalPaid = parseAmount(instrTotalPaid.String, cur).Ptr()
	}
	if instrTotalGain.Valid {
		e.InstrumentTotalGain = parseAmount(instrTotalGain.String, cur).Ptr()
	}
	e.WalletTotalPaid = parseAmount(walletTotalPaid, cur)
	e.WalletTotalGain = parseAmount(walletTotalGain, cur)
	e.Balance = parseAmount(balance, cur)
	return e, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullDecimal(a *generic.Amount) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.Value.String(), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func parseAmount(value string, cur generic.Currency) generic.Amount {
	return generic.NewAmountFromDecimal(generic.MustParseDecimal(value), cur)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}

var _ generic.Store = (*Store)(nil)
