// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/andrewrk/wolfebin/lib/protocol"
)

// StdoutTarget is the destination that sends a single file to
// standard output.
const StdoutTarget = "-"

// Destination maps each reported file to where it is written.
type Destination struct {
	// Stdout is true when the only file goes to standard output.
	Stdout bool
	// Paths holds the local path of each file, in reported order.
	// Empty when Stdout is set.
	Paths []string
}

// ResolveDestination decides where the reported files go:
//
//   - "-" sends the single file to standard output and fails for any
//     other file count.
//   - "" places the files under their reported names in the current
//     directory.
//   - an existing directory, or any target when the files have more
//     than one distinct top-level name, becomes a prefix directory.
//   - otherwise the target replaces the first path segment of every
//     name, so "get key renamed.txt" renames a single file and
//     "get key newdir" renames a single top-level directory.
//
// Names that are absolute or climb out with ".." are rejected.
func ResolveDestination(target string, files []protocol.FileInfo) (*Destination, error) {
	for _, file := range files {
		if err := checkName(file.Name); err != nil {
			return nil, err
		}
	}

	if target == StdoutTarget {
		if len(files) != 1 {
			return nil, fmt.Errorf("%w (key holds %d)", ErrStdoutNeedsOneFile, len(files))
		}
		return &Destination{Stdout: true}, nil
	}

	paths := make([]string, len(files))
	if target == "" {
		for index, file := range files {
			paths[index] = filepath.FromSlash(file.Name)
		}
		return &Destination{Paths: paths}, nil
	}

	info, err := os.Stat(target)
	targetIsDirectory := err == nil && info.IsDir()
	if targetIsDirectory || countRoots(files) > 1 {
		for index, file := range files {
			paths[index] = filepath.Join(target, filepath.FromSlash(file.Name))
		}
		return &Destination{Paths: paths}, nil
	}

	for index, file := range files {
		_, rest, _ := strings.Cut(file.Name, "/")
		paths[index] = filepath.Join(target, filepath.FromSlash(rest))
	}
	return &Destination{Paths: paths}, nil
}

func checkName(name string) error {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) || strings.Contains(name, "\\") {
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." || segment == "" || segment == "." {
			return fmt.Errorf("%w: %q", ErrUnsafeName, name)
		}
	}
	return nil
}

func countRoots(files []protocol.FileInfo) int {
	roots := make(map[string]struct{})
	for _, file := range files {
		root, _, _ := strings.Cut(file.Name, "/")
		roots[root] = struct{}{}
	}
	return len(roots)
}
