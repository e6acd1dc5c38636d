package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/wallet"
)

// scenarioFlags selects a scenario for the commands that simulate one.
type scenarioFlags struct {
	id      string
	file    string
	horizon int
}

func (s *scenarioFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.id, "scenario", "", "ID of a built-in scenario (see 'scenarios').")
	f.StringVar(&s.file, "file", "", "Scenario file (.yaml, .yml or .json). Overrides -scenario.")
	f.IntVar(&s.horizon, "horizon", 0, "Days to simulate. Defaults to the scenario's horizon, or until every deposit has expired.")
}

func (s *scenarioFlags) load() (*factory.Scenario, error) {
	var (
		sc  *factory.Scenario
		err error
	)
	switch {
	case s.file != "":
		sc, err = factory.LoadFile(s.file)
	case s.id != "":
		sc, err = factory.Lookup(s.id)
	default:
		return nil, fmt.Errorf("one of -scenario or -file is required")
	}
	if err != nil {
		return nil, err
	}
	if s.horizon < 0 {
		return nil, fmt.Errorf("-horizon must not be negative")
	}
	if s.horizon > 0 {
		sc.HorizonDays = s.horizon
	}
	return sc, nil
}

// simulate loads, builds and runs the selected scenario.
func (s *scenarioFlags) simulate(ctx context.Context) (*factory.Simulation, error) {
	sc, err := s.load()
	if err != nil {
		return nil, err
	}
	sim, err := sc.Build(wallet.WithLogger(engineLogger()))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.ID, err)
	}
	if _, err := sim.Run(ctx); err != nil {
		return nil, err
	}
	return sim, nil
}
