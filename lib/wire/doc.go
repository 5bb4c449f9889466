// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the frame layer of the wolfebin protocol.
//
// Every unit on the wire is an 8-byte big-endian unsigned length
// followed by that many bytes. Text frames carry UTF-8 (the envelope
// layer puts JSON inside them). Raw binary payloads that follow an
// envelope announcing their length are not framed at all: the reader
// pulls exactly the announced count with [ReadExactly].
//
// A peer that closes the stream before a declared count arrives
// produces a [*ShortReadError]. Short reads are terminal for the
// connection; callers never see a partial or empty result in place of
// the error.
package wire
