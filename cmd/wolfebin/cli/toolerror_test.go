// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/transfer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
		code int
	}{
		{"dial failure", &protocol.ConnectionError{Address: "host:1", Err: errors.New("refused")}, CategoryTransient, ExitFailure},
		{"server error", &protocol.CommandError{Message: "key not found: 'x'"}, CategoryInternal, ExitFailure},
		{"short read", &protocol.ProtocolError{Op: "reading payload", Err: io.ErrUnexpectedEOF}, CategoryInternal, ExitFailure},
		{"incomplete", fmt.Errorf("get: %w", &transfer.IncompleteTransferError{Name: "a", Received: 1, Size: 2}), CategoryIncomplete, ExitIncomplete},
		{"stdout", transfer.ErrStdoutNeedsOneFile, CategoryValidation, ExitFailure},
		{"already classified", NotFound("no such path"), CategoryNotFound, ExitFailure},
		{"other", errors.New("disk full"), CategoryInternal, ExitFailure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			classified := Classify(test.err)
			var toolError *ToolError
			if !errors.As(classified, &toolError) {
				t.Fatalf("Classify returned %T", classified)
			}
			if toolError.Category != test.want {
				t.Errorf("category = %s, want %s", toolError.Category, test.want)
			}
			if classified.Error() != test.err.Error() {
				t.Errorf("message changed: %q -> %q", test.err, classified)
			}
			if code := ExitCodeFor(classified); code != test.code {
				t.Errorf("exit code = %d, want %d", code, test.code)
			}
		})
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
}

func TestPrintErrorPlainWhenNotTerminal(t *testing.T) {
	var output bytes.Buffer
	styles := NewStyles(&output)
	styles.PrintError(&output, errors.New("key not found: 'photos'"))
	if output.String() != "error: key not found: 'photos'\n" {
		t.Errorf("output = %q", output.String())
	}
	if styles.WarningPrefix() != "WARNING:" {
		t.Errorf("warning prefix = %q", styles.WarningPrefix())
	}
}

func TestWriteJSONNormalizesNilSlice(t *testing.T) {
	var output bytes.Buffer
	var items []string
	if err := WriteJSON(&output, items); err != nil {
		t.Fatal(err)
	}
	if output.String() != "[]\n" {
		t.Errorf("output = %q", output.String())
	}
}
