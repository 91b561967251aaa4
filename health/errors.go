package health

import "errors"

// Registration errors.
var (
	// ErrInvalidName indicates a blank check name.
	ErrInvalidName = errors.New("health: check name is required")

	// ErrNilChecker indicates a nil Checker was registered.
	ErrNilChecker = errors.New("health: checker is nil")

	// ErrDuplicateCheck indicates the name is already registered.
	ErrDuplicateCheck = errors.New("health: check already registered")

	// ErrCheckNotFound indicates no check is registered under the name.
	ErrCheckNotFound = errors.New("health: check not found")
)

// Execution errors, recorded in CheckResult.Error.
var (
	// ErrCheckFailed is reported by a BoolFunc that returned false.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check exceeded its timeout.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckPanicked indicates a check panicked.
	ErrCheckPanicked = errors.New("health: check panicked")
)
