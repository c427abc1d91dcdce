package qexp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedQubits is returned when hardware is requested for a device
	// size that has no backend in the selection table.
	ErrUnsupportedQubits = errors.New("only 5 qubit and 16 qubit quantum computers are available")
	ErrCircuitOpen       = errors.New("circuit breaker is open")
	ErrJobFailed         = errors.New("job failed")
	ErrUnknownBackend    = errors.New("unknown backend")
	ErrUnknownExperiment = errors.New("unknown experiment")
)

/*
ConfigError reports a configuration that cannot be used to run an experiment.
Field names the offending setting, Err carries the cause.
*/
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
