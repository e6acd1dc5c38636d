/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these errors; outer layers (factory, api, cmd)
  wrap them with fmt.Errorf("...: %w", err) and inspect them with
  errors.Is / errors.As.

ERROR CATEGORIES:
  1. Configuration errors - Invalid instrument or wallet parameters
  2. Collection errors - Duplicate instrument names in a wallet
  3. Store errors - Missing or duplicate exported runs

NON-ERRORS:
  Ticking an expired instrument, ticking an instrument whose start date is
  still ahead, and dates that land exactly on a boundary are ordinary
  branches of the tick machines. A trailing partial period is an Advisory
  (see accrual.go), never an error.

SEE ALSO:
  - accrual.go: Advisory, the non-fatal condition
  - deposit/locked.go: Returns ConfigurationError from New
  - wallet/wallet.go: Returns DuplicateNameError from Add
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is returned when an instrument or wallet cannot be
	// built from the given parameters. Construction is aborted.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDuplicateName is returned when a wallet already holds an
	// instrument with the same name. The wallet is left unchanged.
	ErrDuplicateName = errors.New("duplicate instrument name")

	// ErrRunNotFound is returned when an exported run does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrDuplicateRun is returned when a run ID is exported twice.
	ErrDuplicateRun = errors.New("duplicate run id")

	// ErrScenarioNotFound is returned when a named scenario is not registered.
	ErrScenarioNotFound = errors.New("scenario not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError names the offending parameter.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DuplicateNameError reports the colliding instrument name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("can't add locked sums with the same name: %q", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrDuplicateRun)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrScenarioNotFound)
}
