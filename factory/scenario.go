/*
Package factory turns scenario files into ready-to-run simulations.

PURPOSE:
  A scenario describes a wallet and the deposits it will hold, in YAML or
  JSON, so projections can be set up without code changes. The factory
  parses the file, applies defaults, validates it and builds a configured
  wallet.Wallet wrapped in a Simulation.

SCHEMA (YAML; JSON uses the same keys):
  id: ladder
  name: Three-rung ladder
  description: Staggered quarterly deposits
  horizon_months: 72          # or horizon_days; omit both to run to maturity
  wallet:
    start_date: 2023-01-01
    flat_tax: 34.20           # default 34.20
    flat_tax_day: 31          # default 31
    flat_tax_month: 12        # default 12
    exemption_threshold: 5000 # default 5000
  instruments:
    - name: bp-2023
      principal: 10000
      start_date: 2023-01-01  # default: wallet start
      rate: 2.5%              # or 0.025
      compounding: quarterly  # quarterly | annual | 3 | 12
      duration_months: 72

PERCENTAGES:
  In YAML, "2.5%" is read as 0.025.

USAGE:
  sc, err := factory.LoadFile("ladder.yaml")
  sim, err := sc.Build(wallet.WithLogger(logger))
  snap, err := sim.Run(ctx)

SEE ALSO:
  - builtin.go: Scenarios compiled into the binary
  - deposit/policies.go: Go-side presets
  - wallet/wallet.go: What Build produces
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/wallet"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

type Scenario struct {
	ID            string           `yaml:"id" json:"id"`
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description,omitempty" json:"description,omitempty"`
	HorizonDays   int              `yaml:"horizon_days,omitempty" json:"horizon_days,omitempty"`
	HorizonMonths int              `yaml:"horizon_months,omitempty" json:"horizon_months,omitempty"`
	Wallet        WalletSpec       `yaml:"wallet" json:"wallet"`
	Instruments   []InstrumentSpec `yaml:"instruments" json:"instruments"`
}

// WalletSpec fields left nil take the wallet defaults.
type WalletSpec struct {
	StartDate          string   `yaml:"start_date" json:"start_date"`
	Currency           string   `yaml:"currency,omitempty" json:"currency,omitempty"`
	FlatTax            *float64 `yaml:"flat_tax,omitempty" json:"flat_tax,omitempty"`
	FlatTaxDay         *int     `yaml:"flat_tax_day,omitempty" json:"flat_tax_day,omitempty"`
	FlatTaxMonth       *int     `yaml:"flat_tax_month,omitempty" json:"flat_tax_month,omitempty"`
	ExemptionThreshold *float64 `yaml:"exemption_threshold,omitempty" json:"exemption_threshold,omitempty"`
}

type InstrumentSpec struct {
	Name           string  `yaml:"name" json:"name"`
	Principal      float64 `yaml:"principal" json:"principal"`
	StartDate      string  `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	Rate           float64 `yaml:"rate" json:"rate"`
	Compounding    string  `yaml:"compounding" json:"compounding"`
	DurationMonths int     `yaml:"duration_months" json:"duration_months"`
}

// =============================================================================
// PARSING
// =============================================================================

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf guesses the format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.ID == "" {
		sc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte, format Format) (*Scenario, error) {
	var sc Scenario
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal([]byte(preprocessPercentages(string(data))), &sc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown scenario format %q", format)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

var percentRe = regexp.MustCompile(`(:\s*)(\d+\.?\d*)%`)

// preprocessPercentages rewrites "key: 2.5%" as "key: 0.025".
func preprocessPercentages(content string) string {
	return percentRe.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentRe.FindStringSubmatch(match)
		num, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return match
		}
		return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
	})
}

// =============================================================================
// VALIDATION & CONVERSION
// =============================================================================

// Validate checks everything that can be checked without building.
func (s *Scenario) Validate() error {
	if _, err := s.WalletConfig(); err != nil {
		return err
	}
	if s.HorizonDays < 0 {
		return &generic.ConfigurationError{Field: "horizon_days", Value: s.HorizonDays, Reason: "must not be negative"}
	}
	if s.HorizonMonths < 0 {
		return &generic.ConfigurationError{Field: "horizon_months", Value: s.HorizonMonths, Reason: "must not be negative"}
	}

	seen := make(map[string]bool, len(s.Instruments))
	for i := range s.Instruments {
		cfg, err := s.InstrumentConfig(i)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("instrument %q: %w", cfg.Name, err)
		}
		if seen[cfg.Name] {
			return &generic.DuplicateNameError{Name: cfg.Name}
		}
		seen[cfg.Name] = true
	}
	return nil
}

func (s *Scenario) currency() generic.Currency {
	if s.Wallet.Currency == "" {
		return generic.DefaultCurrency
	}
	return generic.Currency(strings.ToUpper(s.Wallet.Currency))
}

// WalletConfig converts the wallet section, applying defaults.
func (s *Scenario) WalletConfig() (wallet.Config, error) {
	start, err := generic.ParseTimePoint(s.Wallet.StartDate)
	if err != nil {
		return wallet.Config{}, &generic.ConfigurationError{Field: "wallet.start_date", Value: s.Wallet.StartDate, Reason: err.Error()}
	}

	cur := s.currency()
	cfg := wallet.DefaultConfig(start)
	cfg.FlatTax.Currency = cur
	cfg.ExemptionThreshold.Currency = cur

	if s.Wallet.FlatTax != nil {
		cfg.FlatTax = generic.NewAmount(*s.Wallet.FlatTax, cur)
	}
	if s.Wallet.ExemptionThreshold != nil {
		cfg.ExemptionThreshold = generic.NewAmount(*s.Wallet.ExemptionThreshold, cur)
	}
	if s.Wallet.FlatTaxDay != nil {
		cfg.FlatTaxAnchor.Day = *s.Wallet.FlatTaxDay
	}
	if s.Wallet.FlatTaxMonth != nil {
		cfg.FlatTaxAnchor.Month = time.Month(*s.Wallet.FlatTaxMonth)
	}
	if err := cfg.Validate(); err != nil {
		return wallet.Config{}, err
	}
	return cfg, nil
}

// InstrumentConfig converts the i-th instrument. A missing start date
// falls back to the wallet start.
func (s *Scenario) InstrumentConfig(i int) (deposit.Config, error) {
	spec := s.Instruments[i]

	period, err := generic.ParseCompoundingPeriod(spec.Compounding)
	if err != nil {
		return deposit.Config{}, fmt.Errorf("instrument %q: %w", spec.Name, err)
	}

	startStr := spec.StartDate
	if startStr == "" {
		startStr = s.Wallet.StartDate
	}
	start, err := generic.ParseTimePoint(startStr)
	if err != nil {
		return deposit.Config{}, &generic.ConfigurationError{Field: "instruments.start_date", Value: startStr, Reason: err.Error()}
	}

	return deposit.Config{
		Name:           spec.Name,
		Principal:      generic.NewAmount(spec.Principal, s.currency()),
		StartDate:      start,
		Rate:           generic.NewRate(spec.Rate),
		Period:         period,
		DurationMonths: spec.DurationMonths,
	}, nil
}

// =============================================================================
// SIMULATION
// =============================================================================

// Simulation is a built scenario: a wallet holding its deposits and the
// number of days to run it for.
type Simulation struct {
	Scenario *Scenario
	Wallet   *wallet.Wallet
	Horizon  int
}

// Build creates a fresh wallet with every instrument of the scenario.
func (s *Scenario) Build(opts ...wallet.Option) (*Simulation, error) {
	wcfg, err := s.WalletConfig()
	if err != nil {
		return nil, err
	}
	w, err := wallet.New(wcfg, opts...)
	if err != nil {
		return nil, err
	}

	expiry := 0
	for i := range s.Instruments {
		cfg, err := s.InstrumentConfig(i)
		if err != nil {
			return nil, err
		}
		l, err := w.Lock(cfg)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: %w", cfg.Name, err)
		}
		expiry = max(expiry, expiryTick(wcfg.StartDate, l))
	}

	return &Simulation{Scenario: s, Wallet: w, Horizon: s.horizon(wcfg.StartDate, expiry)}, nil
}

// expiryTick is the wallet tick on which l is marked expired. An instrument
// is first ticked once the wallet reaches its start date (or on the first
// tick when it started earlier) and expires MaxTicks ticks later.
func expiryTick(walletStart generic.TimePoint, l *deposit.Locked) int {
	first := max(1, generic.DaysBetween(walletStart, l.StartDate()))
	return first + l.MaxTicks()
}

// horizon resolves the number of wallet ticks. Without an explicit horizon
// the run lasts until every instrument has expired.
func (s *Scenario) horizon(start generic.TimePoint, expiry int) int {
	switch {
	case s.HorizonDays > 0:
		return s.HorizonDays
	case s.HorizonMonths > 0:
		return generic.DaysBetween(start, start.AddMonths(s.HorizonMonths))
	default:
		return expiry
	}
}

// Run ticks the wallet for the remaining horizon. It checks ctx once per
// simulated year.
func (sim *Simulation) Run(ctx context.Context) (generic.WalletSnapshot, error) {
	for sim.Wallet.TotalTicks() < sim.Horizon {
		if sim.Wallet.TotalTicks()%365 == 0 {
			if err := ctx.Err(); err != nil {
				return sim.Wallet.Snapshot(), err
			}
		}
		sim.Wallet.Tick()
	}
	return sim.Wallet.Snapshot(), nil
}

// Record describes the simulation for export. An empty id gets a fresh UUID.
func (sim *Simulation) Record(id string, createdAt time.Time) generic.Run {
	if id == "" {
		id = uuid.NewString()
	}
	return generic.Run{
		ID:          id,
		Scenario:    sim.Scenario.ID,
		Description: sim.Scenario.Description,
		CreatedAt:   createdAt,
		Horizon:     sim.Wallet.TotalTicks(),
		Summary:     sim.Wallet.Snapshot(),
		Advisories:  sim.Wallet.Advisories(),
	}
}
