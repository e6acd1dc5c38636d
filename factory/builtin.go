package factory

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// BUILT-IN SCENARIOS - Compiled into the binary
// =============================================================================

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// Builtins returns every embedded scenario, sorted by ID. Each call parses
// fresh copies, so callers may modify them.
func Builtins() ([]*Scenario, error) {
	files, err := fs.Glob(builtinFS, "scenarios/*.yaml")
	if err != nil {
		return nil, err
	}

	out := make([]*Scenario, 0, len(files))
	for _, name := range files {
		sc, err := loadBuiltin(name)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Lookup returns the built-in scenario with the given ID, or an error
// wrapping generic.ErrScenarioNotFound.
func Lookup(id string) (*Scenario, error) {
	all, err := Builtins()
	if err != nil {
		return nil, err
	}
	for _, sc := range all {
		if sc.ID == id {
			return sc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", generic.ErrScenarioNotFound, id)
}

func loadBuiltin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in %s: %w", path.Base(name), err)
	}
	return sc, nil
}
