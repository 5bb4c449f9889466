// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io"
	"net"
	"testing"
	"time"
)

// ServePipe connects a client to serve over an in-memory pipe. serve
// runs on its own goroutine with the server end. The returned channel
// closes when serve returns. Both ends are closed at test cleanup, and
// cleanup waits for serve so a test never leaks the goroutine.
func ServePipe(t *testing.T, serve func(io.ReadWriteCloser)) (net.Conn, <-chan struct{}) {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		serve(server)
	}()
	t.Cleanup(func() {
		client.Close()
		server.Close()
		RequireClosed(t, done, 5*time.Second, "server goroutine exit")
	})
	return client, done
}
