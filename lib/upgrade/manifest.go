// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upgrade

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andrewrk/wolfebin/lib/codec"
)

// Manifest describes a staged payload. It is stored as a CBOR map
// with text keys.
type Manifest struct {
	// Version is the payload version the server announced, empty if
	// it named none.
	Version string `cbor:"version"`

	// Size is the payload length in bytes.
	Size int64 `cbor:"size"`

	// SHA256 and BLAKE3 are lowercase hex digests of the payload.
	SHA256 string `cbor:"sha256"`
	BLAKE3 string `cbor:"blake3"`

	// FetchedAt is when the payload finished arriving.
	FetchedAt time.Time `cbor:"fetched_at"`

	// AlreadyCurrent is true when the payload is byte-identical to
	// the running executable.
	AlreadyCurrent bool `cbor:"already_current"`
}

// WriteManifest atomically replaces the manifest at path.
func WriteManifest(path string, manifest Manifest) error {
	data, err := codec.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming manifest to %s: %w", path, err)
	}

	success = true
	return nil
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var manifest Manifest
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	return &manifest, nil
}
