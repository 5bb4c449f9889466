// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the client's CBOR encoding configuration.
//
// The client uses two serialization formats with a clear boundary:
//
//   - JSON for the wire: every envelope exchanged with a wolfebin
//     server is a JSON object, and --json CLI output is JSON.
//   - CBOR for local state handed to other programs: the upgrade
//     manifest written next to a staged binary.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same manifest always produces identical bytes:
//
//	data, err := codec.Marshal(manifest)
//	err = codec.Unmarshal(data, &manifest)
package codec
