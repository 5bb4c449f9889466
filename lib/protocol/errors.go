// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
)

// ConnectionError reports a failure to establish the TCP connection.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError reports a peer that broke the protocol: a malformed or
// truncated frame, an envelope missing a field required at that point,
// or a value outside its allowed range. The connection is unusable
// afterwards.
type ProtocolError struct {
	// Op describes what the client was doing, e.g. "reading resume offer".
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// CommandError carries the server's "error" field. Message is kept
// verbatim; servers send multi-line messages (for example a usage
// summary) and they are printed as-is.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// ChecksumMismatch records a file whose digest disagreed between the
// two ends. It is a warning: the file is kept and the transfer goes on.
type ChecksumMismatch struct {
	Name   string
	Local  string
	Remote string
}

func (e *ChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: local %s, server %s", e.Name, e.Local, e.Remote)
}

var (
	// ErrMissingField is wrapped by ProtocolError when an envelope
	// lacks a field the current exchange requires.
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedEnvelope is wrapped by ProtocolError when a text
	// frame is not a JSON object of the envelope vocabulary.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrMalformedDigest is wrapped by ProtocolError when a digest is
	// not 40 hex characters.
	ErrMalformedDigest = errors.New("malformed sha1 digest")

	// ErrChecksumGeneration is wrapped by ProtocolError when the
	// server speaks an older checksum generation (32 hex characters,
	// MD5). Mixing generations is refused rather than silently
	// reporting every file as corrupt.
	ErrChecksumGeneration = errors.New("server uses an incompatible checksum generation")
)
