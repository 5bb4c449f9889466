// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transfer moves file sets between the local machine and a
// wolfebin server over one protocol connection.
//
// # Upload
//
// [Upload] sends a put request listing the files in byte-wise name
// order, then streams each file in 64 KiB payloads followed by its
// hex SHA-1 digest. The server answers each digest; a disagreement
// comes back as a warning and the upload continues.
//
// An upload can resume one that was interrupted. The server offers a
// byte offset (continue_start) into the logical stream, which is every
// file's bytes followed by its 40 digest characters, in order. The
// client regenerates that stream locally, withholds everything before
// the offset while hashing it, and asks the server to confirm the hash
// of the prefix. If the server agrees, streaming continues from the
// offset. If not, the whole upload restarts from the first byte of the
// first file on the same connection with resume disabled. The states
// of that negotiation are modelled by [ResumeState] and its pure
// transition functions.
//
// # Download
//
// [Download] sends a get request, resolves where each reported file
// goes (see [ResolveDestination]) before reading any file data, then
// reads payloads per file until the declared size is reached and
// compares the server's digest with the local one. A mismatch is a
// warning; a file that ends early stops the download with an
// [*IncompleteTransferError] and keeps the files already written.
package transfer
