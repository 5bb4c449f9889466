// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/lib/config"
	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/storetest"
	"github.com/andrewrk/wolfebin/lib/testutil"
)

type harness struct {
	server *storetest.Server
	host   string
	port   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := storetest.New()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		server.Serve(ctx, listener)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, stopped, 5*time.Second, "server shutdown")
	})

	host, port, _ := net.SplitHostPort(listener.Addr().String())
	return &harness{server: server, host: host, port: port}
}

type outcome struct {
	stdout string
	stderr string
	err    error
}

// run executes one wolfebin command line against the harness server.
func (h *harness) run(t *testing.T, stdin string, args ...string) outcome {
	t.Helper()
	var stdout, stderr bytes.Buffer
	streams := Streams{Stdin: strings.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}
	full := append([]string{args[0], "--host", h.host, "--port", h.port}, args[1:]...)
	err := Root(streams).Execute(full)
	return outcome{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestPutListGetDelete(t *testing.T) {
	h := newHarness(t)
	directory := t.TempDir()
	notes := filepath.Join(directory, "notes.txt")
	if err := os.WriteFile(notes, []byte("remember the milk"), 0o644); err != nil {
		t.Fatal(err)
	}

	if result := h.run(t, "piped data", "put", "--name", "log.txt", "bundle", notes, "-"); result.err != nil {
		t.Fatalf("put: %v (stderr %q)", result.err, result.stderr)
	}
	_, stored, ok := h.server.Contents("bundle")
	if !ok || string(stored[0]) != "piped data" || string(stored[1]) != "remember the milk" {
		t.Fatalf("stored = %q", stored)
	}

	listed := h.run(t, "", "list")
	if listed.err != nil {
		t.Fatalf("list: %v", listed.err)
	}
	for _, want := range []string{"bundle", "(2 files)", "log.txt", "notes.txt"} {
		if !strings.Contains(listed.stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, listed.stdout)
		}
	}

	asJSON := h.run(t, "", "list", "--json")
	var listing struct {
		Items []protocol.Item `json:"items"`
	}
	if err := json.Unmarshal([]byte(asJSON.stdout), &listing); err != nil {
		t.Fatalf("list --json output %q: %v", asJSON.stdout, err)
	}
	if len(listing.Items) != 1 || len(listing.Items[0].Files) != 2 {
		t.Errorf("json items = %+v", listing.Items)
	}

	target := filepath.Join(t.TempDir(), "restored")
	if result := h.run(t, "", "get", "bundle", target); result.err != nil {
		t.Fatalf("get: %v", result.err)
	}
	got, err := os.ReadFile(filepath.Join(target, "notes.txt"))
	if err != nil || string(got) != "remember the milk" {
		t.Errorf("restored notes.txt = %q, %v", got, err)
	}

	if result := h.run(t, "", "delete", "bundle"); result.err != nil {
		t.Fatalf("delete: %v", result.err)
	}
	missing := h.run(t, "", "delete", "bundle")
	if missing.err == nil || missing.err.Error() != "key not found: 'bundle'" {
		t.Errorf("second delete err = %v", missing.err)
	}
}

func TestGetToStdout(t *testing.T) {
	h := newHarness(t)
	h.server.Store("one", []protocol.FileInfo{{Name: "a", Size: 3}}, [][]byte{[]byte("abc")})
	h.server.Store("two", []protocol.FileInfo{{Name: "a", Size: 1}, {Name: "b", Size: 1}}, [][]byte{[]byte("1"), []byte("2")})

	single := h.run(t, "", "get", "one", "-")
	if single.err != nil || single.stdout != "abc" {
		t.Errorf("get one - = %q, %v", single.stdout, single.err)
	}

	several := h.run(t, "", "get", "two", "-")
	if several.err == nil || !strings.Contains(several.err.Error(), "exactly one file") {
		t.Fatalf("get two - err = %v", several.err)
	}
	if several.stdout != "" {
		t.Errorf("stdout = %q, want nothing written", several.stdout)
	}
	if code := cli.ExitCodeFor(several.err); code != cli.ExitFailure {
		t.Errorf("exit code = %d", code)
	}
}

func TestIncompleteDownloadExitCode(t *testing.T) {
	h := newHarness(t)
	h.server.Faults.TruncateFile = "a"
	h.server.Faults.TruncateAt = 2
	h.server.Store("k", []protocol.FileInfo{{Name: "a", Size: 5}}, [][]byte{[]byte("abcde")})

	result := h.run(t, "", "get", "k", t.TempDir())
	if result.err == nil || !strings.HasPrefix(result.err.Error(), "incomplete") {
		t.Fatalf("err = %v", result.err)
	}
	if code := cli.ExitCodeFor(result.err); code != cli.ExitIncomplete {
		t.Errorf("exit code = %d, want %d", code, cli.ExitIncomplete)
	}
}

func TestDroppedConnectionExitCode(t *testing.T) {
	h := newHarness(t)
	h.server.Faults.TruncateFile = "a"
	h.server.Faults.TruncateAt = 2
	h.server.Faults.DropConnection = true
	h.server.Store("k", []protocol.FileInfo{{Name: "a", Size: 5}}, [][]byte{[]byte("abcde")})

	result := h.run(t, "", "get", "k", t.TempDir())
	if result.err == nil || !strings.HasPrefix(result.err.Error(), "incomplete") {
		t.Fatalf("err = %v", result.err)
	}
	if code := cli.ExitCodeFor(result.err); code != cli.ExitIncomplete {
		t.Errorf("exit code = %d, want %d", code, cli.ExitIncomplete)
	}
}

func TestChecksumMismatchIsWarning(t *testing.T) {
	h := newHarness(t)
	h.server.Faults.CorruptDigestFile = "a"
	h.server.Store("k", []protocol.FileInfo{{Name: "a", Size: 1}}, [][]byte{[]byte("x")})

	result := h.run(t, "", "get", "k", t.TempDir())
	if result.err != nil {
		t.Fatalf("get: %v", result.err)
	}
	if !strings.HasPrefix(result.stderr, "WARNING: checksum mismatch for a") {
		t.Errorf("stderr = %q", result.stderr)
	}
}

func TestVersionSuggestsUpgrade(t *testing.T) {
	h := newHarness(t)
	h.server.Version = "9.0"

	result := h.run(t, "", "version")
	if result.err != nil {
		t.Fatalf("version: %v", result.err)
	}
	if !strings.Contains(result.stdout, "server: 9.0") || !strings.Contains(result.stdout, "wolfebin upgrade") {
		t.Errorf("stdout = %q", result.stdout)
	}

	h.server.Version = storetest.Version
	same := h.run(t, "", "version", "--json")
	var report map[string]any
	if err := json.Unmarshal([]byte(same.stdout), &report); err != nil {
		t.Fatalf("version --json output %q: %v", same.stdout, err)
	}
	if report["comparison"] != "same" || report["upgrade_available"] != false {
		t.Errorf("report = %v", report)
	}
}

func TestUpgradeStagesPayload(t *testing.T) {
	h := newHarness(t)
	h.server.UpgradePayload = []byte("#!/bin/sh\necho new\n")
	staging := t.TempDir()

	result := h.run(t, "", "upgrade", "--staging-dir", staging)
	if result.err != nil {
		t.Fatalf("upgrade: %v", result.err)
	}
	if !strings.HasPrefix(result.stdout, "staged "+filepath.Join(staging, "wolfebin")) {
		t.Errorf("stdout = %q", result.stdout)
	}
	if _, err := os.Stat(filepath.Join(staging, "manifest.cbor")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
}

func TestUpgradeShowsManifest(t *testing.T) {
	h := newHarness(t)
	h.server.UpgradePayload = []byte("#!/bin/sh\necho newer\n")

	result := h.run(t, "", "upgrade", "--staging-dir", t.TempDir(), "--show-manifest")
	if result.err != nil {
		t.Fatalf("upgrade: %v", result.err)
	}
	for _, want := range []string{`"size": 21`, `"sha256": "`, `"blake3": "`, `"already_current": false`} {
		if !strings.Contains(result.stdout, want) {
			t.Errorf("stdout missing %s:\n%s", want, result.stdout)
		}
	}
}

func TestConfigFileSuppliesServer(t *testing.T) {
	h := newHarness(t)
	h.server.Store("k", []protocol.FileInfo{}, nil)
	port, _ := strconv.Atoi(h.port)

	configPath := filepath.Join(t.TempDir(), "wolfebin.yaml")
	content := "host_name: " + h.host + "\nport_number: " + strconv.Itoa(port) + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	streams := Streams{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &bytes.Buffer{}}
	if err := Root(streams).Execute([]string{"list", "--config", configPath}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout.String(), "k") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"put", "only-a-key"},
		{"get"},
		{"delete", "a", "b"},
		{"put", "k", "-", "-"},
	} {
		result := h.run(t, "", args...)
		var toolError *cli.ToolError
		if !errors.As(result.err, &toolError) || toolError.Category != cli.CategoryValidation {
			t.Errorf("%v: err = %v, want a validation error", args, result.err)
		}
	}

	missing := h.run(t, "", "put", "k", filepath.Join(t.TempDir(), "absent"))
	var toolError *cli.ToolError
	if !errors.As(missing.err, &toolError) || toolError.Category != cli.CategoryNotFound {
		t.Errorf("missing path: err = %v", missing.err)
	}
}

func TestUnreachableServer(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(listener.Addr().String())
	listener.Close()

	streams := Streams{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err = Root(streams).Execute([]string{"list", "--host", "127.0.0.1", "--port", port})
	var toolError *cli.ToolError
	if !errors.As(err, &toolError) || toolError.Category != cli.CategoryTransient {
		t.Fatalf("err = %v, want a transient error", err)
	}
}
