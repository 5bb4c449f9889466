// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitFailure    = 1
	ExitIncomplete = 2
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have written its own
// output already.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface to
// tell a handled non-zero exit from an error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCodeFor returns the exit code for an error main is about to
// print: ExitIncomplete for a download that stopped short, otherwise
// ExitFailure.
func ExitCodeFor(err error) int {
	var toolError *ToolError
	if errors.As(err, &toolError) && toolError.Category == CategoryIncomplete {
		return ExitIncomplete
	}
	return ExitFailure
}
