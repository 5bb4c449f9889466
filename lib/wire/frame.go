// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/andrewrk/wolfebin/lib/netutil"
)

const (
	// PrefixSize is the width of the length prefix on every frame.
	PrefixSize = 8

	// MaxTextSize bounds a single text frame. Envelopes are small
	// JSON objects; the largest realistic one is a list response
	// naming every key on a busy server.
	MaxTextSize = 16 * 1024 * 1024
)

// ErrShortRead matches every [*ShortReadError] via errors.Is.
var ErrShortRead = errors.New("short read")

// ErrLengthOutOfRange is returned when a frame declares a length the
// reader refuses to allocate.
var ErrLengthOutOfRange = errors.New("length prefix out of range")

// ErrInvalidText is returned by ReadText when a frame is not valid UTF-8.
var ErrInvalidText = errors.New("frame is not valid UTF-8")

// ShortReadError reports a stream that ended before Want bytes were
// delivered.
type ShortReadError struct {
	Want int64
	Got  int64
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: peer closed after %d of %d bytes", e.Got, e.Want)
}

// Is makes errors.Is(err, ErrShortRead) true for any short read.
func (e *ShortReadError) Is(target error) bool {
	return target == ErrShortRead
}

// ReadExactly reads exactly n bytes from r. A stream that ends (or is
// reset by the peer) before n bytes arrive yields a *ShortReadError.
func ReadExactly(r io.Reader, n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrLengthOutOfRange, n)
	}
	buffer := make([]byte, n)
	if err := readFull(r, buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

// readFull fills buffer or returns a *ShortReadError describing how far
// it got. Non-close errors from r pass through wrapped.
func readFull(r io.Reader, buffer []byte) error {
	got, err := io.ReadFull(r, buffer)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || netutil.IsExpectedCloseError(err) {
		return &ShortReadError{Want: int64(len(buffer)), Got: int64(got)}
	}
	return fmt.Errorf("reading %d bytes: %w", len(buffer), err)
}

// ReadLength reads one length prefix.
func ReadLength(r io.Reader) (uint64, error) {
	var prefix [PrefixSize]byte
	if err := readFull(r, prefix[:]); err != nil {
		return 0, fmt.Errorf("reading length prefix: %w", err)
	}
	return binary.BigEndian.Uint64(prefix[:]), nil
}

// WriteLength writes one length prefix.
func WriteLength(w io.Writer, length uint64) error {
	var prefix [PrefixSize]byte
	binary.BigEndian.PutUint64(prefix[:], length)
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("writing length prefix: %w", err)
	}
	return nil
}

// WriteBytes writes data as one frame.
func WriteBytes(w io.Writer, data []byte) error {
	if err := WriteLength(w, uint64(len(data))); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

// ReadBytes reads one frame, rejecting any declared length above limit.
func ReadBytes(r io.Reader, limit uint64) ([]byte, error) {
	length, err := ReadLength(r)
	if err != nil {
		return nil, err
	}
	if length > limit {
		return nil, fmt.Errorf("%w: %d exceeds maximum %d", ErrLengthOutOfRange, length, limit)
	}
	data := make([]byte, length)
	if err := readFull(r, data); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}
	return data, nil
}

// WriteText writes s as one frame.
func WriteText(w io.Writer, s string) error {
	return WriteBytes(w, []byte(s))
}

// ReadText reads one frame of at most MaxTextSize bytes and checks that
// it is valid UTF-8.
func ReadText(r io.Reader) (string, error) {
	data, err := ReadBytes(r, MaxTextSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	return string(data), nil
}
