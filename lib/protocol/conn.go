// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/andrewrk/wolfebin/lib/wire"
)

// MaxPayloadSize bounds a single binary payload read into memory.
// Servers send 64 KiB chunks; anything beyond this is a broken peer.
const MaxPayloadSize = 64 * 1024 * 1024

// Options configures a Conn.
type Options struct {
	// Version is sent in every outbound envelope.
	Version string

	// Logger receives protocol milestones at Debug level. Nil
	// discards.
	Logger *slog.Logger

	// Warnings receives server warnings and ChecksumMismatch notices,
	// one line each. Nil discards.
	Warnings io.Writer

	// WarningPrefix is printed before each warning. Defaults to
	// "WARNING:".
	WarningPrefix string
}

// Conn is one protocol session over one stream. It is not safe for
// concurrent use; the protocol is strictly request/response.
type Conn struct {
	stream  io.ReadWriteCloser
	reader  *bufio.Reader
	writer  *bufio.Writer
	version string
	logger  *slog.Logger

	warnings      io.Writer
	warningPrefix string

	// BeforeWarning, if set, runs before each warning is printed. The
	// transfer engine points it at the progress renderer so a warning
	// never lands in the middle of a status line.
	BeforeWarning func()
}

// NewConn wraps an established stream.
func NewConn(stream io.ReadWriteCloser, options Options) *Conn {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	warnings := options.Warnings
	if warnings == nil {
		warnings = io.Discard
	}
	prefix := options.WarningPrefix
	if prefix == "" {
		prefix = "WARNING:"
	}
	return &Conn{
		stream:        stream,
		reader:        bufio.NewReaderSize(stream, 64*1024),
		writer:        bufio.NewWriterSize(stream, 64*1024+512),
		version:       options.Version,
		logger:        logger,
		warnings:      warnings,
		warningPrefix: prefix,
	}
}

// Dial connects to address over TCP. timeout bounds connection
// establishment only; zero means no limit beyond ctx.
func Dial(ctx context.Context, address string, timeout time.Duration, options Options) (*Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	stream, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &ConnectionError{Address: address, Err: err}
	}
	conn := NewConn(stream, options)
	conn.logger.Debug("connected", "address", address)
	return conn, nil
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.stream.Close()
}

// Send writes one envelope and flushes it.
func (c *Conn) Send(m Message) error {
	if err := c.writeEnvelope(m); err != nil {
		return err
	}
	return c.flush(m.Name())
}

func (c *Conn) writeEnvelope(m Message) error {
	text, err := Render(m, c.version)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", m.Name(), err)
	}
	if err := wire.WriteBytes(c.writer, text); err != nil {
		return fmt.Errorf("sending %s: %w", m.Name(), err)
	}
	return nil
}

func (c *Conn) flush(name string) error {
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("sending %s: %w", name, err)
	}
	return nil
}

// SendPayload writes a payload header followed by data.
func (c *Conn) SendPayload(data []byte) error {
	header := PayloadHeader{Length: int64(len(data))}
	if err := c.writeEnvelope(header); err != nil {
		return err
	}
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("sending payload: %w", err)
	}
	return c.flush("payload")
}

// Receive reads the next envelope and checks it against kind. An error
// field yields *CommandError. A warning field is printed and the
// envelope is still returned.
func (c *Conn) Receive(kind Kind) (*Envelope, error) {
	text, err := wire.ReadText(c.reader)
	if err != nil {
		return nil, &ProtocolError{Op: "reading " + kind.String(), Err: err}
	}
	envelope, err := DecodeEnvelope([]byte(text))
	if err != nil {
		return nil, &ProtocolError{Op: "decoding " + kind.String(), Err: err}
	}
	if envelope.Error != nil {
		return nil, &CommandError{Message: *envelope.Error}
	}
	if envelope.Warning != nil {
		c.Warn(*envelope.Warning)
	}
	if err := envelope.Require(kind); err != nil {
		return nil, &ProtocolError{Op: "reading " + kind.String(), Err: err}
	}
	return envelope, nil
}

// ReceivePayload reads a payload header and its bytes. A zero-length
// payload returns an empty, non-nil slice.
func (c *Conn) ReceivePayload() ([]byte, error) {
	envelope, err := c.Receive(KindPayload)
	if err != nil {
		return nil, err
	}
	length := *envelope.BinLen
	if length > MaxPayloadSize {
		return nil, &ProtocolError{
			Op:  "reading payload",
			Err: fmt.Errorf("%w: __bin_len__ %d exceeds %d", wire.ErrLengthOutOfRange, length, MaxPayloadSize),
		}
	}
	data, err := wire.ReadExactly(c.reader, length)
	if err != nil {
		return nil, &ProtocolError{Op: "reading payload", Err: err}
	}
	return data, nil
}

// ReceiveStream reads an envelope of kind (which must announce
// __bin_len__) and returns a reader over exactly that many following
// bytes. The reader must be drained before the next Receive.
func (c *Conn) ReceiveStream(kind Kind) (*Envelope, io.Reader, error) {
	envelope, err := c.Receive(kind)
	if err != nil {
		return nil, nil, err
	}
	if envelope.BinLen == nil {
		return nil, nil, &ProtocolError{
			Op:  "reading " + kind.String(),
			Err: fmt.Errorf("%w __bin_len__ in %s", ErrMissingField, kind),
		}
	}
	return envelope, newSizedReader(c.reader, *envelope.BinLen), nil
}

// Warn prints one warning line after running BeforeWarning.
func (c *Conn) Warn(message string) {
	if c.BeforeWarning != nil {
		c.BeforeWarning()
	}
	c.logger.Debug("server warning", "message", message)
	fmt.Fprintf(c.warnings, "%s %s\n", c.warningPrefix, message)
}

// Logger returns the connection's logger.
func (c *Conn) Logger() *slog.Logger {
	return c.logger
}
