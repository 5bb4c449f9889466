// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/andrewrk/wolfebin/lib/binhash"
	"github.com/andrewrk/wolfebin/lib/client"
	"github.com/andrewrk/wolfebin/lib/clock"
	"github.com/andrewrk/wolfebin/lib/progress"
	"github.com/andrewrk/wolfebin/lib/version"
)

// File names inside the staging directory.
const (
	PayloadName  = "wolfebin"
	ManifestName = "manifest.cbor"
)

// ErrNoStagingDir is returned when Options.StagingDir is empty.
var ErrNoStagingDir = errors.New("no upgrade staging directory configured")

// Fetcher delivers an upgrade payload. *client.Client implements it.
type Fetcher interface {
	FetchUpgrade(ctx context.Context, consume func(header client.UpgradeHeader, body io.Reader) error) error
}

// Options configures Stage.
type Options struct {
	// StagingDir receives the payload and manifest. Created if
	// missing.
	StagingDir string

	// Installer, when non-empty, is a command line run after staging
	// with the payload and manifest paths appended as arguments.
	Installer string

	// InstallerOutput receives the installer's stdout and stderr.
	// Nil discards them.
	InstallerOutput io.Writer

	// SelfHash returns the SHA256 hex digest of the running binary.
	// Nil means version.ComputeSelfHash.
	SelfHash func() (hash string, binaryPath string, err error)

	Clock    clock.Clock
	Progress progress.Renderer
	Logger   *slog.Logger
}

// Result reports where the payload went and what it was.
type Result struct {
	PayloadPath  string
	ManifestPath string
	Manifest     Manifest
	// Installed is true when the installer ran and exited zero.
	Installed bool
}

// Stage fetches the payload into options.StagingDir, writes its
// manifest, and runs the installer unless the payload matches the
// running executable.
func Stage(ctx context.Context, fetcher Fetcher, options Options) (*Result, error) {
	if options.StagingDir == "" {
		return nil, ErrNoStagingDir
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := options.Clock
	if now == nil {
		now = clock.Real()
	}
	if err := os.MkdirAll(options.StagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	result := &Result{
		PayloadPath:  filepath.Join(options.StagingDir, PayloadName),
		ManifestPath: filepath.Join(options.StagingDir, ManifestName),
	}
	err := fetcher.FetchUpgrade(ctx, func(header client.UpgradeHeader, body io.Reader) error {
		tracker := progress.NewTracker(now, options.Progress, header.Size)
		tracker.SetLabel(PayloadName)
		defer tracker.Clear()

		digests, err := receivePayload(result.PayloadPath, body, tracker)
		if err != nil {
			return err
		}
		result.Manifest = Manifest{
			Version:   header.Version,
			Size:      header.Size,
			SHA256:    binhash.FormatDigest(digests.SHA256),
			BLAKE3:    binhash.FormatDigest(digests.BLAKE3),
			FetchedAt: now.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("upgrade payload staged", "path", result.PayloadPath,
		"size", result.Manifest.Size, "sha256", result.Manifest.SHA256)

	selfHash := options.SelfHash
	if selfHash == nil {
		selfHash = version.ComputeSelfHash
	}
	if current, binaryPath, err := selfHash(); err != nil {
		logger.Warn("cannot hash running binary", "error", err)
	} else if current == result.Manifest.SHA256 {
		logger.Debug("payload matches running binary", "path", binaryPath)
		result.Manifest.AlreadyCurrent = true
	}

	if err := WriteManifest(result.ManifestPath, result.Manifest); err != nil {
		return nil, err
	}

	if strings.TrimSpace(options.Installer) == "" || result.Manifest.AlreadyCurrent {
		return result, nil
	}
	if err := runInstaller(ctx, options, result); err != nil {
		return result, err
	}
	result.Installed = true
	return result, nil
}

// receivePayload streams body into a temporary file beside path and
// renames it into place once complete.
func receivePayload(path string, body io.Reader, tracker *progress.Tracker) (binhash.Digests, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "payload-*.tmp")
	if err != nil {
		return binhash.Digests{}, fmt.Errorf("creating temp payload: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	hasher := binhash.NewHasher()
	destination := io.MultiWriter(tmpFile, hasher, trackerWriter{tracker})
	if _, err := io.Copy(destination, body); err != nil {
		tmpFile.Close()
		return binhash.Digests{}, fmt.Errorf("writing payload: %w", err)
	}
	if err := tmpFile.Chmod(0o755); err != nil {
		tmpFile.Close()
		return binhash.Digests{}, fmt.Errorf("marking payload executable: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return binhash.Digests{}, fmt.Errorf("closing temp payload: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return binhash.Digests{}, fmt.Errorf("renaming payload to %s: %w", path, err)
	}

	success = true
	return hasher.Sum(), nil
}

type trackerWriter struct {
	tracker *progress.Tracker
}

func (w trackerWriter) Write(p []byte) (int, error) {
	w.tracker.Add(int64(len(p)))
	return len(p), nil
}

func runInstaller(ctx context.Context, options Options, result *Result) error {
	fields := strings.Fields(options.Installer)
	arguments := append(fields[1:], result.PayloadPath, result.ManifestPath)
	command := exec.CommandContext(ctx, fields[0], arguments...)
	output := options.InstallerOutput
	if output == nil {
		output = io.Discard
	}
	command.Stdout = output
	command.Stderr = output
	if err := command.Run(); err != nil {
		return fmt.Errorf("running installer %s: %w", fields[0], err)
	}
	return nil
}
