// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package storetest provides an in-memory wolfebin server for tests.
//
// [Server] speaks the same envelope protocol as a production server:
// put with resume offers and prefix verification, get, delete, list,
// version, and upgrade. Each key holds its file list and the logical
// stream of the upload that stored it (every file's bytes followed by
// its 40-character hex digest), which is also what a get replays.
//
// An upload whose connection drops part-way is kept as a partial
// entry. The next put of the same key with the same file list is
// offered the partial length as continue_start, so a test can
// interrupt a client and watch it resume.
//
// [Faults] injects the misbehaviour needed to exercise client error
// paths: truncated bodies, wrong digests, forced offers, warnings.
//
//	server := storetest.New()
//	client, serverSide := net.Pipe()
//	go server.ServeConn(serverSide)
//	conn := protocol.NewConn(client, protocol.Options{Version: "6.0"})
package storetest
