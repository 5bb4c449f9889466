// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/storetest"
	"github.com/andrewrk/wolfebin/lib/testutil"
)

// pipeClient is one client connection to a storetest server.
type pipeClient struct {
	conn     *protocol.Conn
	done     <-chan struct{}
	warnings *bytes.Buffer
}

func connect(t *testing.T, server *storetest.Server) *pipeClient {
	t.Helper()
	client, done := testutil.ServePipe(t, server.ServeConn)
	warnings := &bytes.Buffer{}
	conn := protocol.NewConn(client, protocol.Options{Version: "6.0", Warnings: warnings})
	return &pipeClient{conn: conn, done: done, warnings: warnings}
}

// finish closes the client side and waits for the server to record
// the outcome of the connection.
func (s *pipeClient) finish(t *testing.T) {
	t.Helper()
	s.conn.Close()
	testutil.RequireClosed(t, s.done, 5*time.Second, "server finished connection")
}

// pattern returns size deterministic bytes seeded by seed.
func pattern(size int, seed byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i%251) ^ seed
	}
	return data
}

func memoryFile(name string, data []byte) FileDescriptor {
	return FileDescriptor{Name: name, Size: int64(len(data)), Data: data}
}

func infos(files ...FileDescriptor) []protocol.FileInfo {
	return NewSession(files).FileInfos()
}

func bodies(files ...FileDescriptor) [][]byte {
	var result [][]byte
	for _, file := range NewSession(files).Files() {
		result = append(result, file.Data)
	}
	return result
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}
