// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upgrade

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andrewrk/wolfebin/lib/client"
	"github.com/andrewrk/wolfebin/lib/clock"
	"github.com/andrewrk/wolfebin/lib/protocol"
)

type fakeFetcher struct {
	payload []byte
	version string
	err     error
}

func (f *fakeFetcher) FetchUpgrade(ctx context.Context, consume func(client.UpgradeHeader, io.Reader) error) error {
	if f.err != nil {
		return f.err
	}
	header := client.UpgradeHeader{Size: int64(len(f.payload)), Version: f.version}
	return consume(header, bytes.NewReader(f.payload))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func otherBinary() (string, string, error) {
	return strings.Repeat("0", 64), "/usr/bin/wolfebin", nil
}

func TestStageWritesPayloadAndManifest(t *testing.T) {
	staging := filepath.Join(t.TempDir(), "staging")
	payload := bytes.Repeat([]byte{0x7f, 'E', 'L', 'F'}, 1000)
	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result, err := Stage(context.Background(), &fakeFetcher{payload: payload, version: "6.1"}, Options{
		StagingDir: staging,
		SelfHash:   otherBinary,
		Clock:      clock.Fake(fetchedAt),
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	staged, err := os.ReadFile(result.PayloadPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(staged, payload) {
		t.Error("staged payload differs")
	}
	info, err := os.Stat(result.PayloadPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("payload mode %v is not executable", info.Mode())
	}

	manifest, err := ReadManifest(result.ManifestPath)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.Version != "6.1" || manifest.Size != int64(len(payload)) {
		t.Errorf("manifest = %+v", manifest)
	}
	if manifest.SHA256 != sha256Hex(payload) {
		t.Errorf("sha256 = %s", manifest.SHA256)
	}
	if len(manifest.BLAKE3) != 64 || manifest.BLAKE3 == manifest.SHA256 {
		t.Errorf("blake3 = %q", manifest.BLAKE3)
	}
	if !manifest.FetchedAt.Equal(fetchedAt) {
		t.Errorf("fetched_at = %v", manifest.FetchedAt)
	}
	if manifest.AlreadyCurrent || result.Installed {
		t.Errorf("result = %+v", result)
	}

	leftovers, _ := filepath.Glob(filepath.Join(staging, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestStageRecognisesCurrentBinary(t *testing.T) {
	payload := []byte("same bytes as the running binary")
	result, err := Stage(context.Background(), &fakeFetcher{payload: payload}, Options{
		StagingDir: t.TempDir(),
		Installer:  "/nonexistent/installer",
		SelfHash: func() (string, string, error) {
			return sha256Hex(payload), "/usr/bin/wolfebin", nil
		},
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !result.Manifest.AlreadyCurrent {
		t.Error("payload matching the running binary should be already current")
	}
	if result.Installed {
		t.Error("installer should not run for a current binary")
	}
}

func TestStageRunsInstaller(t *testing.T) {
	directory := t.TempDir()
	record := filepath.Join(directory, "installed")
	script := filepath.Join(directory, "install.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > \""+record+"\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	staging := filepath.Join(directory, "staging")
	result, err := Stage(context.Background(), &fakeFetcher{payload: []byte("new")}, Options{
		StagingDir: staging,
		Installer:  script + " --quiet",
		SelfHash:   otherBinary,
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !result.Installed {
		t.Error("Installed = false")
	}
	got, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("installer did not run: %v", err)
	}
	want := "--quiet " + result.PayloadPath + " " + result.ManifestPath + "\n"
	if string(got) != want {
		t.Errorf("installer arguments = %q, want %q", got, want)
	}
}

func TestStageSurvivesSelfHashFailure(t *testing.T) {
	result, err := Stage(context.Background(), &fakeFetcher{payload: []byte("x")}, Options{
		StagingDir: t.TempDir(),
		SelfHash: func() (string, string, error) {
			return "", "", errors.New("no /proc")
		},
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if result.Manifest.AlreadyCurrent {
		t.Error("unknown self hash must not count as current")
	}
}

func TestStageErrors(t *testing.T) {
	if _, err := Stage(context.Background(), &fakeFetcher{}, Options{}); !errors.Is(err, ErrNoStagingDir) {
		t.Errorf("empty staging dir: err = %v", err)
	}

	refused := &protocol.CommandError{Message: "no upgrade available"}
	_, err := Stage(context.Background(), &fakeFetcher{err: refused}, Options{StagingDir: t.TempDir(), SelfHash: otherBinary})
	var commandError *protocol.CommandError
	if !errors.As(err, &commandError) {
		t.Errorf("server refusal: err = %v", err)
	}
}
