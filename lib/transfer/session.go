// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/andrewrk/wolfebin/lib/protocol"
)

// ChunkSize is the payload size used when streaming file bodies.
const ChunkSize = 64 * 1024

// FileDescriptor is one file of an upload.
type FileDescriptor struct {
	// Name is the relative, slash-separated name stored on the server.
	Name string
	// Size is the byte count announced in the put request.
	Size int64

	// Path is the local file to read. Ignored when Data is non-nil.
	Path string
	// Data is an in-memory source, used for standard input.
	Data []byte
}

func (f FileDescriptor) open() (io.ReadCloser, error) {
	if f.Data != nil {
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Path, err)
	}
	return file, nil
}

// Session is the ordered file set of one upload.
type Session struct {
	files []FileDescriptor
}

// NewSession sorts files by name, byte-wise. Duplicate names are kept
// in their original relative order.
func NewSession(files []FileDescriptor) *Session {
	sorted := append([]FileDescriptor(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Session{files: sorted}
}

// Files returns the files in wire order.
func (s *Session) Files() []FileDescriptor {
	return s.files
}

// FileInfos returns the file list for the put request.
func (s *Session) FileInfos() []protocol.FileInfo {
	infos := make([]protocol.FileInfo, len(s.files))
	for index, file := range s.files {
		infos[index] = protocol.FileInfo{Name: file.Name, Size: file.Size}
	}
	return infos
}

// TotalSize returns the sum of file sizes.
func (s *Session) TotalSize() int64 {
	var total int64
	for _, file := range s.files {
		total += file.Size
	}
	return total
}

// TotalWithDigests returns the length of the logical upload stream:
// every file's bytes plus one hex digest per file.
func (s *Session) TotalWithDigests() int64 {
	return s.TotalSize() + int64(protocol.DigestSize*len(s.files))
}

// Collect builds descriptors for local paths. A regular file is named
// by its base name. A directory contributes every regular file below
// it, named by the directory's base name followed by the relative
// path. Symbolic links are followed.
func Collect(paths []string) ([]FileDescriptor, error) {
	var files []FileDescriptor
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(filepath.Clean(root))
		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				return nil, fmt.Errorf("%s is not a regular file or directory", root)
			}
			files = append(files, FileDescriptor{Name: base, Size: info.Size(), Path: root})
			continue
		}

		err = filepath.WalkDir(root, func(current string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			info, err := os.Stat(current)
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			relative, err := filepath.Rel(root, current)
			if err != nil {
				return err
			}
			files = append(files, FileDescriptor{
				Name: path.Join(base, filepath.ToSlash(relative)),
				Size: info.Size(),
				Path: current,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

// FromReader reads r to the end and returns it as a single in-memory
// file called name.
func FromReader(r io.Reader, name string) (FileDescriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if data == nil {
		data = []byte{}
	}
	return FileDescriptor{Name: name, Size: int64(len(data)), Data: data}, nil
}
