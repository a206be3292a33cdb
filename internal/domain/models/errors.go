package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema marks malformed input: missing columns, bad values, unordered or duplicate timestamps.
	ErrSchema = errors.New("schema error")
	// ErrInsufficientHistory marks a series shorter than an indicator's warm-up.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrIO marks an unreadable input or unwritable output.
	ErrIO = errors.New("io error")
	// ErrNotifier marks a failed digest delivery.
	ErrNotifier = errors.New("notifier error")
	// ErrInvalidConfig marks rejected configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrRunInProgress is returned when another run holds the run lock.
	ErrRunInProgress = errors.New("run in progress")
	// ErrNoReport is returned by snapshot readers before the first run completes.
	ErrNoReport = errors.New("no report available")
)

// SymbolError scopes an error to one symbol and pipeline stage.
type SymbolError struct {
	Symbol string
	Stage  string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Symbol, e.Stage, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }

// NewSymbolError wraps err for symbol at stage.
func NewSymbolError(symbol, stage string, err error) *SymbolError {
	return &SymbolError{Symbol: symbol, Stage: stage, Err: err}
}

// KindOf maps an error onto the failure manifest taxonomy.
func KindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return FailureInsufficient
	case errors.Is(err, ErrSchema):
		return FailureSchema
	default:
		return FailureIO
	}
}

// FailureFrom builds a manifest entry from a symbol-scoped error.
func FailureFrom(symbol, stage string, err error) SymbolFailure {
	var se *SymbolError
	if errors.As(err, &se) {
		symbol, stage = se.Symbol, se.Stage
		err = se.Err
	}
	return SymbolFailure{Symbol: symbol, Stage: stage, Kind: KindOf(err), Reason: err.Error()}
}
