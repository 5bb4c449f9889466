// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/andrewrk/wolfebin/lib/protocol"
)

func TestCollect(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "loose.txt"), []byte("12345"))
	writeFile(t, filepath.Join(base, "tree", "a"), []byte("a"))
	writeFile(t, filepath.Join(base, "tree", "deep", "b"), []byte("bb"))

	files, err := Collect([]string{filepath.Join(base, "loose.txt"), filepath.Join(base, "tree") + "/"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	got := make(map[string]int64)
	var collected []string
	for _, file := range files {
		got[file.Name] = file.Size
		collected = append(collected, file.Name)
	}
	sort.Strings(collected)
	if strings.Join(collected, ",") != "loose.txt,tree/a,tree/deep/b" {
		t.Fatalf("names = %v", collected)
	}
	if got["loose.txt"] != 5 || got["tree/deep/b"] != 2 {
		t.Errorf("sizes = %v", got)
	}
}

func TestCollectMissingPath(t *testing.T) {
	if _, err := Collect([]string{filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestFromReader(t *testing.T) {
	file, err := FromReader(strings.NewReader(""), "stdin")
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if file.Name != "stdin" || file.Size != 0 || file.Data == nil {
		t.Errorf("file = %+v, want an empty in-memory file", file)
	}
}

func TestSessionTotals(t *testing.T) {
	session := NewSession([]FileDescriptor{
		memoryFile("z", make([]byte, 10)),
		memoryFile("a", make([]byte, 5)),
	})
	if session.TotalSize() != 15 {
		t.Errorf("TotalSize = %d", session.TotalSize())
	}
	if session.TotalWithDigests() != 15+2*protocol.DigestSize {
		t.Errorf("TotalWithDigests = %d", session.TotalWithDigests())
	}
	if session.Files()[0].Name != "a" {
		t.Errorf("first file = %s, want a", session.Files()[0].Name)
	}
}
