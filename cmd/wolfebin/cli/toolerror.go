// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/transfer"
)

// ErrorCategory classifies command failures.
type ErrorCategory string

const (
	// CategoryValidation: bad arguments or flags. Fix the input.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: the server has no such key, or a local path
	// does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient: the server could not be reached or the
	// connection broke. Retrying may help; an interrupted put resumes.
	CategoryTransient ErrorCategory = "transient"

	// CategoryIncomplete: a download stopped before a file was whole.
	CategoryIncomplete ErrorCategory = "incomplete"

	// CategoryInternal: anything else, including protocol violations.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error. Error returns the inner
// message unchanged.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err in a ToolError according to what went wrong. An
// error that already carries a category is returned as is. Server
// error messages pass through verbatim.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return err
	}

	var (
		connectionError *protocol.ConnectionError
		commandError    *protocol.CommandError
		incomplete      *transfer.IncompleteTransferError
		protocolError   *protocol.ProtocolError
	)
	switch {
	case errors.As(err, &incomplete):
		return &ToolError{Category: CategoryIncomplete, Err: err}
	case errors.As(err, &connectionError):
		return &ToolError{Category: CategoryTransient, Err: err}
	case errors.As(err, &commandError):
		return &ToolError{Category: CategoryInternal, Err: err}
	case errors.As(err, &protocolError):
		return &ToolError{Category: CategoryInternal, Err: err}
	case errors.Is(err, transfer.ErrStdoutNeedsOneFile):
		return &ToolError{Category: CategoryValidation, Err: err}
	}
	return &ToolError{Category: CategoryInternal, Err: err}
}
