// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the envelope layer of the wolfebin wire
// protocol on top of the frames in lib/wire.
//
// An envelope is one text frame holding a JSON object whose fields come
// from a small fixed vocabulary (command, key, files, error, warning,
// version, continue_start, continue_sha1, continue_good, sha1,
// __bin_len__, keys, items, attempt_continue). Which fields appear
// depends on the message; absence is meaningful.
//
// Outbound messages are typed values ([PutRequest], [FileDigest],
// [PayloadHeader], ...) rendered to the wire form with the sender's
// version attached. Inbound envelopes decode into [Envelope] and are
// checked against the [Kind] the caller expects at that point in the
// exchange, so a missing field is reported where it matters rather
// than as a nil dereference later.
//
// Two fields are handled for every inbound envelope before the caller
// sees it:
//
//   - error aborts the exchange with a [*CommandError] carrying the
//     server's message verbatim.
//   - warning is printed (after the connection's BeforeWarning hook
//     has had a chance to clear any status line) and processing
//     continues.
//
// Binary payloads are an envelope carrying only __bin_len__ followed by
// exactly that many raw bytes. A zero length carries no bytes; the
// download loop treats it as an end marker.
//
// A [Conn] owns one TCP stream for one command invocation. It imposes
// no read or write deadlines: a peer that stops responding blocks the
// caller until the process is interrupted.
package protocol
