// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package client holds the wolfebin command entry points. Each method
// dials a fresh connection to the server, runs exactly one command on
// it, and closes it before returning.
//
// Transfers are delegated to lib/transfer; the framing and envelope
// rules live in lib/protocol. A Client carries no connection state
// between calls and can be reused freely, though not concurrently
// when its Progress renderer is shared.
package client
