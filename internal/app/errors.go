// Package app wires configuration, logging, and the ruby text pipeline
// into the rubytext command.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrUnknownFormat indicates an output format that cannot be rendered.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownMeasurer indicates an unsupported ruler.measurer value.
	ErrUnknownMeasurer = errors.New("unknown measurer")

	// ErrNoInput indicates watch mode was requested without input files.
	ErrNoInput = errors.New("no input files")

	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // e.g. "parse", "wrap", "render"
	Target string // e.g. file path
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is matches ErrInitialization.
func (e *InitError) Is(target error) bool {
	return target == ErrInitialization
}
