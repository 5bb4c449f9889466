// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storetest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"sync"

	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/wire"
)

// Version is the version the server reports unless overridden.
const Version = "6.0"

// chunkSize is the payload size the server uses for get responses.
const chunkSize = 64 * 1024

// Faults injects server misbehaviour. Set it before serving.
type Faults struct {
	// OfferOverride, when non-nil, replaces every resume offer.
	OfferOverride *int64

	// TruncateFile names a file whose get body ends after TruncateAt
	// bytes with a zero-length marker.
	TruncateFile string
	TruncateAt   int64

	// DropConnection closes the connection at the truncation point
	// instead of sending the end marker.
	DropConnection bool

	// CorruptDigestFile names a file whose get digest is wrong.
	CorruptDigestFile string

	// LegacyDigests sends 32-character digests on get.
	LegacyDigests bool

	// EndMarkers sends a zero-length payload after every complete
	// file body on get.
	EndMarkers bool

	// AckWarning is attached to every upload digest acknowledgement.
	AckWarning string

	// KeysOnly answers list with plain keys instead of items.
	KeysOnly bool
}

// PutRecord describes one put request as the server saw it.
type PutRecord struct {
	Key             string
	Files           []protocol.FileInfo
	AttemptContinue bool
	Offer           int64
	// Verified is nil when no prefix digest was checked.
	Verified *bool
	// PayloadBytes counts raw payload bytes received.
	PayloadBytes int64
	// Digests counts file digest envelopes received.
	Digests int
	// Completed is true once the whole upload was stored.
	Completed bool
}

type entry struct {
	files  []protocol.FileInfo
	stream []byte
}

// Server is an in-memory wolfebin server. Its methods are safe for
// concurrent use.
type Server struct {
	Faults  Faults
	Version string

	// UpgradePayload is served to upgrade requests. Nil answers with
	// an error.
	UpgradePayload []byte

	logger *slog.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	partials map[string]*entry
	puts     []*PutRecord
	requests []protocol.Envelope
}

// New returns an empty server.
func New() *Server {
	return &Server{
		Version:  Version,
		logger:   slog.New(slog.DiscardHandler),
		entries:  make(map[string]*entry),
		partials: make(map[string]*entry),
	}
}

// SetLogger directs server diagnostics to logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed, handling each on its own goroutine.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	var active sync.WaitGroup
	defer active.Wait()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting: %w", err)
		}
		active.Add(1)
		go func() {
			defer active.Done()
			s.ServeConn(conn)
		}()
	}
}

// ServeConn handles one command on conn and closes it.
func (s *Server) ServeConn(conn io.ReadWriteCloser) {
	defer conn.Close()
	session := &serverSession{server: s, stream: conn}
	if err := session.handle(); err != nil {
		s.logger.Debug("connection ended", "error", err)
	}
}

// Store places files under key as if a client had uploaded them.
// contents[i] is the body of files[i].
func (s *Server) Store(key string, files []protocol.FileInfo, contents [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{files: files, stream: LogicalStream(contents)}
}

// SeedPartial records an interrupted upload of key holding the first
// length bytes of the logical stream of contents.
func (s *Server) SeedPartial(key string, files []protocol.FileInfo, contents [][]byte, length int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := LogicalStream(contents)
	s.partials[key] = &entry{files: files, stream: stream[:length]}
}

// Contents returns the stored bodies of key's files, in stored order,
// and whether the key exists.
func (s *Server) Contents(key string) ([]protocol.FileInfo, [][]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[key]
	if !ok {
		return nil, nil, false
	}
	var bodies [][]byte
	offset := int64(0)
	for _, file := range stored.files {
		bodies = append(bodies, append([]byte(nil), stored.stream[offset:offset+file.Size]...))
		offset += file.Size + protocol.DigestSize
	}
	return stored.files, bodies, true
}

// PartialLength returns the length of key's interrupted upload, or -1.
func (s *Server) PartialLength(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	partial, ok := s.partials[key]
	if !ok {
		return -1
	}
	return int64(len(partial.stream))
}

// Puts returns a copy of every put record so far.
func (s *Server) Puts() []PutRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]PutRecord, len(s.puts))
	for index, record := range s.puts {
		records[index] = *record
	}
	return records
}

// Requests returns every command envelope received so far.
func (s *Server) Requests() []protocol.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Envelope(nil), s.requests...)
}

// LogicalStream returns the upload stream for the given bodies: each
// body followed by the hex SHA-1 of that body.
func LogicalStream(contents [][]byte) []byte {
	var stream []byte
	for _, body := range contents {
		stream = append(stream, body...)
		stream = append(stream, Digest(body)...)
	}
	return stream
}

// Digest returns the hex SHA-1 of data.
func Digest(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func sameFiles(a, b []protocol.FileInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for index := range a {
		if a[index] != b[index] {
			return false
		}
	}
	return true
}

func sortedKeys(entries map[string]*entry) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// serverSession is the state of one connection.
type serverSession struct {
	server *Server
	stream io.ReadWriteCloser
}

func (c *serverSession) send(fields map[string]any) error {
	fields["version"] = c.server.Version
	text, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return wire.WriteBytes(c.stream, text)
}

func (c *serverSession) sendError(message string) error {
	return c.send(map[string]any{"error": message})
}

func (c *serverSession) receive() (*protocol.Envelope, error) {
	text, err := wire.ReadText(c.stream)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeEnvelope([]byte(text))
}

func (c *serverSession) handle() error {
	request, err := c.receive()
	if err != nil {
		return err
	}
	c.server.mu.Lock()
	c.server.requests = append(c.server.requests, *request)
	c.server.mu.Unlock()

	if request.Command == nil {
		return c.sendError("missing command")
	}
	switch *request.Command {
	case "put":
		return c.handlePut(request)
	case "get":
		return c.handleGet(request)
	case "delete":
		return c.handleDelete(request)
	case "list":
		return c.handleList()
	case "version":
		return c.send(map[string]any{})
	case "upgrade":
		return c.handleUpgrade()
	default:
		return c.sendError(fmt.Sprintf("unknown command: '%s'", *request.Command))
	}
}

func keyOf(request *protocol.Envelope) string {
	if request.Key == nil {
		return ""
	}
	return *request.Key
}
