// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the wolfebin
// client and the informational comparison against a server's version.
//
// Four package-level variables are injected at build time via
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/andrewrk/wolfebin/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// [Version] is also the string the client puts in the "version" field
// of every envelope it sends.
//
// [CompareServer] classifies a server's reported version so the CLI can
// mention that an upgrade is available. [ComputeSelfHash] returns the
// SHA256 digest of the running binary, which the upgrade command uses
// to recognise a payload identical to what is already installed.
package version
