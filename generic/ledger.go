/*
ledger.go - Append-only cash-flow ledger

PURPOSE:
  The Ledger is the chronological record of every cash-flow event the
  wallet recognizes: principal activations, interest gains, withheld
  taxes, year-end levies and the wallet's flat tax. Each row also carries
  the counters of the instrument and the wallet right after the event, so
  that a snapshot of the ledger is enough to chart a whole simulation.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: Rows are never updated or removed
  2. IMMUTABLE: Only the dense ID is recomputed (Reindex), nothing else
  3. CONSERVATION: The sum of all amounts equals the wallet balance
  4. SNAPSHOT-SAFE: Entries() returns a copy; callers can't mutate the ledger

NULLABLE COLUMNS:
  Wallet-level rows (the flat tax) have no instrument: InstrumentTicks,
  InstrumentPeriods, InstrumentTotalPaid and InstrumentTotalGain are nil.

SEE ALSO:
  - wallet/wallet.go: The only writer
  - store.go: Export interface for ledger snapshots
  - store/sqlite/sqlite.go: Tabular export
*/
package generic

import (
	"strconv"
)

// =============================================================================
// ENTRY - One recognized cash-flow event
// =============================================================================

type EntryKind string

const (
	EntryActivation EntryKind = "activation" // principal injected into the pool
	EntryGain       EntryKind = "gain"       // gross interest recognized by an instrument
	EntryTax        EntryKind = "tax"        // withholding and levies charged by an instrument
	EntryFlatTax    EntryKind = "flat_tax"   // wallet-level yearly charge
)

// WalletSource is the source name of rows that belong to no instrument.
const WalletSource = "wallet operation"

type Entry struct {
	ID     int
	Source string
	Kind   EntryKind
	Amount Amount
	Date   TimePoint

	InstrumentTicks     *int
	WalletTicks         int
	InstrumentPeriods   *int
	InstrumentTotalPaid *Amount
	InstrumentTotalGain *Amount
	WalletTotalPaid     Amount
	WalletTotalGain     Amount
	Balance             Amount
}

// IsWalletOperation reports whether the row belongs to the wallet itself.
func (e Entry) IsWalletOperation() bool {
	return e.InstrumentTicks == nil
}

// =============================================================================
// LEDGER - Append-only sequence of entries
// =============================================================================

// Ledger is owned by exactly one wallet. The zero value is ready to use.
type Ledger struct {
	entries []Entry
}

// Append adds e at the end of the ledger and returns it with its ID set.
// This is the ONLY write operation besides Reindex.
func (l *Ledger) Append(e Entry) Entry {
	e.ID = len(l.entries)
	l.entries = append(l.entries, e)
	return e
}

// Reindex assigns a dense, zero-based ID to every entry.
func (l *Ledger) Reindex() {
	for i := range l.entries {
		l.entries[i].ID = i
	}
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of all entries, chronologically.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns a copy of the entries with ID >= id.
func (l *Ledger) Since(id int) []Entry {
	if id < 0 {
		id = 0
	}
	if id >= len(l.entries) {
		return nil
	}
	out := make([]Entry, len(l.entries)-id)
	copy(out, l.entries[id:])
	return out
}

// Sum adds up all amounts. It equals the wallet balance at any time.
func (l *Ledger) Sum(cur Currency) Amount {
	return SumEntries(l.entries, cur)
}

// SumEntries adds up the amounts of entries.
func SumEntries(entries []Entry, cur Currency) Amount {
	total := Zero(cur)
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// =============================================================================
// RECORD - Flat, uniform row for tabular tools
// =============================================================================

// Record is the dataframe-friendly shape of an Entry: plain numbers, pointer
// fields for the nullable columns. JSON and CSV exports use it.
type Record struct {
	ID              int      `json:"op_id"`
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Operation       float64  `json:"operation"`
	Date            string   `json:"currday"`
	InstrumentTicks *int     `json:"totalticks"`
	WalletTicks     int      `json:"wallet_ticks"`
	Quarter         *int     `json:"quarter"`
	TotalPaid       *float64 `json:"totalpaid"`
	TotalGain       *float64 `json:"totalgain"`
	WalletTotalPaid float64  `json:"totalpaid_wallet"`
	WalletTotalGain float64  `json:"totalgain_wallet"`
	WalletAmount    float64  `json:"wallet_amount"`
}

// RecordHeader is the CSV header matching Record.Strings.
var RecordHeader = []string{
	"op_id", "name", "kind", "operation", "currday", "totalticks", "wallet_ticks",
	"quarter", "totalpaid", "totalgain", "totalpaid_wallet", "totalgain_wallet", "wallet_amount",
}

// Record flattens the entry.
func (e Entry) Record() Record {
	r := Record{
		ID:              e.ID,
		Name:            e.Source,
		Kind:            string(e.Kind),
		Operation:       e.Amount.Float64(),
		Date:            e.Date.String(),
		InstrumentTicks: e.InstrumentTicks,
		WalletTicks:     e.WalletTicks,
		Quarter:         e.InstrumentPeriods,
		WalletTotalPaid: e.WalletTotalPaid.Float64(),
		WalletTotalGain: e.WalletTotalGain.Float64(),
		WalletAmount:    e.Balance.Float64(),
	}
	if e.InstrumentTotalPaid != nil {
		v := e.InstrumentTotalPaid.Float64()
		r.TotalPaid = &v
	}
	if e.InstrumentTotalGain != nil {
		v := e.InstrumentTotalGain.Float64()
		r.TotalGain = &v
	}
	return r
}

// Records flattens a slice of entries.
func Records(entries []Entry) []Record {
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e.Record()
	}
	return out
}

// Strings renders the record as a CSV row. Null columns are empty.
func (r Record) Strings() []string {
	return []string{
		strconv.Itoa(r.ID),
		r.Name,
		r.Kind,
		formatFloat(r.Operation),
		r.Date,
		formatIntPtr(r.InstrumentTicks),
		strconv.Itoa(r.WalletTicks),
		formatIntPtr(r.Quarter),
		formatFloatPtr(r.TotalPaid),
		formatFloatPtr(r.TotalGain),
		formatFloat(r.WalletTotalPaid),
		formatFloat(r.WalletTotalGain),
		formatFloat(r.WalletAmount),
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatIntPtr(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
