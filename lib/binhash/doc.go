// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides content hashing for executable payloads.
//
// The upgrade command streams a replacement binary from the server and
// needs two answers about it: whether it differs from the binary that
// is running now (SHA256 of both, via [HashFile] and [Hasher]), and a
// digest the external installer can record alongside the staged file
// (BLAKE3, computed in the same pass by [Hasher]).
//
//   - [HashFile] streams a file through SHA256 with constant memory
//   - [Hasher] is an io.Writer that feeds SHA256 and BLAKE3 together
//   - [FormatDigest] renders a [32]byte digest as lowercase hex
//
// This package has no dependencies on other wolfebin packages.
package binhash
