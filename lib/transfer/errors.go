// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrStdoutNeedsOneFile is returned when "-" is the destination of
	// a download that does not consist of exactly one file.
	ErrStdoutNeedsOneFile = errors.New("output to stdout requires exactly one file")

	// ErrUnsafeName is returned when the server reports a file name
	// that would escape the destination directory.
	ErrUnsafeName = errors.New("unsafe file name")

	// ErrSourceChanged is returned when a local file delivers fewer
	// bytes than its size when the upload started.
	ErrSourceChanged = errors.New("source file changed during upload")

	// errResumeRejected signals that the server refused the resume
	// digest. It never leaves this package: Upload restarts instead.
	errResumeRejected = errors.New("resume rejected by server")
)

// IncompleteTransferError reports a download whose file Name ended
// after Received of Size bytes. Files before it were written in full.
type IncompleteTransferError struct {
	Name     string
	Received int64
	Size     int64
}

func (e *IncompleteTransferError) Error() string {
	return fmt.Sprintf("incomplete: %s ended after %d of %d bytes", e.Name, e.Received, e.Size)
}
