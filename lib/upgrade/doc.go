// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package upgrade stages a client binary fetched from the server for
// an external installer.
//
// [Stage] streams the payload into the staging directory without
// holding it in memory, hashing it with SHA256 and BLAKE3 on the way
// through, and writes a CBOR [Manifest] beside it. The SHA256 is
// compared with the running executable so an identical payload is
// reported as already current and the installer is not run.
//
// The payload is not authenticated: whatever the server sends is
// staged. The manifest records digests so the installer can apply its
// own policy.
package upgrade
