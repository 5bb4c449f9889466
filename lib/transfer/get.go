// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/andrewrk/wolfebin/lib/progress"
	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/wire"
)

// DownloadResult summarises a finished download.
type DownloadResult struct {
	// Files lists the local paths written, in server order. A
	// download to standard output lists "-".
	Files []string
	// Bytes counts file bytes received.
	Bytes int64
	// Mismatches lists files whose digest disagreed with the server.
	// They were kept and reported as warnings.
	Mismatches []protocol.ChecksumMismatch
}

// Download fetches key into target (see ResolveDestination). The
// destination is resolved before any file data is read; if that fails
// the caller closes the connection with the body unread.
func Download(ctx context.Context, conn *protocol.Conn, key, target string, options Options) (*DownloadResult, error) {
	logger := options.Logger
	if logger == nil {
		logger = conn.Logger()
	}

	if err := conn.Send(protocol.GetRequest{Key: key}); err != nil {
		return nil, err
	}
	listing, err := conn.Receive(protocol.KindFileList)
	if err != nil {
		return nil, err
	}
	files := listing.Files

	destination, err := ResolveDestination(target, files)
	if errors.Is(err, ErrUnsafeName) {
		return nil, &protocol.ProtocolError{Op: "reading file list", Err: err}
	}
	if err != nil {
		return nil, err
	}
	stdout := options.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	var total int64
	for _, file := range files {
		total += file.Size
	}
	tracker := progress.NewTracker(options.clock(), options.Progress, total)
	conn.BeforeWarning = tracker.Clear
	defer func() {
		tracker.Clear()
		conn.BeforeWarning = nil
	}()

	result := &DownloadResult{}
	for index, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		tracker.SetLabel(file.Name)

		var output io.Writer
		var localPath string
		var closer io.Closer
		if destination.Stdout {
			output = stdout
			localPath = StdoutTarget
		} else {
			localPath = destination.Paths[index]
			created, err := createOutput(localPath)
			if err != nil {
				return result, err
			}
			output, closer = created, created
		}

		digest := protocol.NewDigest()
		received, err := receiveBody(conn, io.MultiWriter(output, digest), file, tracker)
		if closer != nil {
			if closeErr := closer.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("closing %s: %w", localPath, closeErr)
			}
		}
		result.Bytes += received
		if err != nil {
			return result, err
		}
		if received < file.Size {
			logger.Debug("file ended early", "name", file.Name, "received", received, "size", file.Size)
			return result, &IncompleteTransferError{Name: file.Name, Received: received, Size: file.Size}
		}

		if err := checkDigest(conn, file.Name, digest, result); err != nil {
			return result, err
		}
		result.Files = append(result.Files, localPath)
		logger.Debug("file received", "name", file.Name, "path", localPath, "size", file.Size)
	}
	return result, nil
}

func createOutput(localPath string) (*os.File, error) {
	if directory := filepath.Dir(localPath); directory != "." {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	file, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", localPath, err)
	}
	return file, nil
}

// receiveBody reads payloads until file.Size bytes have arrived, the
// server sends a zero-length end marker, or the stream ends. The size
// decides completeness; a marker or hang-up before it means the file is
// short. Bytes of a payload cut off mid-way are not written.
func receiveBody(conn *protocol.Conn, output io.Writer, file protocol.FileInfo, tracker *progress.Tracker) (int64, error) {
	var received int64
	for received < file.Size {
		data, err := conn.ReceivePayload()
		if errors.Is(err, wire.ErrShortRead) {
			break
		}
		if err != nil {
			return received, err
		}
		if len(data) == 0 {
			break
		}
		if received+int64(len(data)) > file.Size {
			return received, &protocol.ProtocolError{
				Op:  "reading " + file.Name,
				Err: fmt.Errorf("payload overruns declared size %d", file.Size),
			}
		}
		if _, err := output.Write(data); err != nil {
			return received, fmt.Errorf("writing %s: %w", file.Name, err)
		}
		received += int64(len(data))
		tracker.Add(int64(len(data)))
	}
	return received, nil
}

// checkDigest reads the server's digest for a completed file. A server
// may close a body with a zero-length marker even when the size was
// reached; one such marker before the digest is skipped.
func checkDigest(conn *protocol.Conn, name string, digest hash.Hash, result *DownloadResult) error {
	envelope, err := conn.Receive(protocol.KindAck)
	if err != nil {
		return err
	}
	if envelope.SHA1 == nil && envelope.BinLen != nil && *envelope.BinLen == 0 {
		envelope, err = conn.Receive(protocol.KindDigest)
		if err != nil {
			return err
		}
	}
	if err := envelope.Require(protocol.KindDigest); err != nil {
		return &protocol.ProtocolError{Op: "reading digest for " + name, Err: err}
	}
	remote, err := protocol.ParseDigest(*envelope.SHA1)
	if err != nil {
		return &protocol.ProtocolError{Op: "reading digest for " + name, Err: err}
	}
	local := protocol.FormatDigest(digest)
	if local != remote {
		mismatch := protocol.ChecksumMismatch{Name: name, Local: local, Remote: remote}
		conn.Warn(mismatch.Error())
		result.Mismatches = append(result.Mismatches, mismatch)
	}
	return nil
}
