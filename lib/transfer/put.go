// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"

	"github.com/andrewrk/wolfebin/lib/progress"
	"github.com/andrewrk/wolfebin/lib/protocol"
)

// UploadResult summarises a finished upload.
type UploadResult struct {
	Files int
	// Total is the length of the logical stream, digests included.
	Total int64
	// Sent counts file bytes written to the wire, excluding any
	// prefix the server already held.
	Sent int64
	// ResumedAt is the offset the upload resumed from, or NoResume.
	ResumedAt int64
	// Restarted is true when the server rejected the resume and the
	// upload was sent again from the beginning.
	Restarted bool
}

// Upload stores session under key. The connection must be fresh; it is
// left open for the caller to close.
func Upload(ctx context.Context, conn *protocol.Conn, key string, session *Session, options Options) (*UploadResult, error) {
	logger := options.Logger
	if logger == nil {
		logger = conn.Logger()
	}
	total := session.TotalWithDigests()
	tracker := progress.NewTracker(options.clock(), options.Progress, total)
	conn.BeforeWarning = tracker.Clear
	defer func() {
		tracker.Clear()
		conn.BeforeWarning = nil
	}()

	request := protocol.PutRequest{Key: key, Files: session.FileInfos(), AttemptContinue: true}
	if err := conn.Send(request); err != nil {
		return nil, err
	}
	offer, err := conn.Receive(protocol.KindResumeOffer)
	if err != nil {
		return nil, err
	}
	state, err := Offer(*offer.ContinueStart, total)
	if err != nil {
		return nil, &protocol.ProtocolError{Op: "reading resume offer", Err: err}
	}
	logger.Debug("resume offer", "continue_start", state.ContinueStart, "total", total)

	result := &UploadResult{Files: len(session.files), Total: total, ResumedAt: state.ContinueStart}
	attempt := &uploadAttempt{
		ctx:       ctx,
		conn:      conn,
		session:   session,
		tracker:   tracker,
		logger:    logger,
		chunkSize: options.chunkSize(),
		result:    result,
	}

	err = attempt.run(state)
	if errors.Is(err, errResumeRejected) {
		logger.Debug("resume rejected, restarting upload from the first byte")
		result.Restarted = true
		result.ResumedAt = NoResume
		result.Sent = 0
		tracker.Update(0)
		err = attempt.run(Restart())
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// uploadAttempt streams the logical stream once, honouring the resume
// state it is started with.
type uploadAttempt struct {
	ctx       context.Context
	conn      *protocol.Conn
	session   *Session
	tracker   *progress.Tracker
	logger    *slog.Logger
	chunkSize int
	result    *UploadResult

	state  ResumeState
	prefix hash.Hash
}

func (a *uploadAttempt) run(state ResumeState) error {
	a.state = state
	a.prefix = protocol.NewDigest()

	// An offer of zero is verified before any unit is produced.
	if err := a.verifyIfDue(); err != nil {
		return err
	}

	buffer := make([]byte, a.chunkSize)
	for _, file := range a.session.files {
		if err := a.sendFile(file, buffer); err != nil {
			return err
		}
	}
	return nil
}

func (a *uploadAttempt) sendFile(file FileDescriptor, buffer []byte) error {
	source, err := file.open()
	if err != nil {
		return err
	}
	defer source.Close()

	a.tracker.SetLabel(file.Name)
	digest := protocol.NewDigest()
	reader := io.LimitReader(source, file.Size)
	var read int64
	for read < file.Size {
		if err := a.ctx.Err(); err != nil {
			return err
		}
		want := min(int64(len(buffer)), file.Size-read)
		count, err := io.ReadFull(reader, buffer[:want])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: %s is shorter than %d bytes", ErrSourceChanged, file.Name, file.Size)
			}
			return fmt.Errorf("reading %s: %w", file.Name, err)
		}
		chunk := buffer[:count]
		read += int64(count)
		digest.Write(chunk)

		outgoing, err := a.consume(chunk)
		if err != nil {
			return err
		}
		if len(outgoing) > 0 {
			if err := a.conn.SendPayload(outgoing); err != nil {
				return err
			}
			a.result.Sent += int64(len(outgoing))
		}
		a.tracker.Add(int64(count))
	}

	hexDigest := protocol.FormatDigest(digest)
	outgoing, err := a.consume([]byte(hexDigest))
	if err != nil {
		return err
	}
	// A digest is sent whole or not at all: if any part of it lies
	// past the resume offset, the server expects the entire envelope.
	if len(outgoing) > 0 {
		if err := a.conn.Send(protocol.FileDigest{SHA1: hexDigest}); err != nil {
			return err
		}
		if _, err := a.conn.Receive(protocol.KindAck); err != nil {
			return err
		}
		a.logger.Debug("file stored", "name", file.Name, "size", file.Size, "sha1", hexDigest)
	}
	a.tracker.Add(protocol.DigestSize)
	return nil
}

// consume runs one unit of the logical stream through the resume
// state, hashing any withheld prefix, and verifying with the server
// when the offset is reached. It returns the part of unit to send.
func (a *uploadAttempt) consume(unit []byte) ([]byte, error) {
	var withheld int64
	a.state, withheld = Consume(a.state, int64(len(unit)))
	a.prefix.Write(unit[:withheld])
	if err := a.verifyIfDue(); err != nil {
		return nil, err
	}
	return unit[withheld:], nil
}

func (a *uploadAttempt) verifyIfDue() error {
	if a.state.Phase != Verifying {
		return nil
	}
	check := protocol.ResumeCheck{SHA1: protocol.FormatDigest(a.prefix)}
	if err := a.conn.Send(check); err != nil {
		return err
	}
	verdict, err := a.conn.Receive(protocol.KindResumeVerdict)
	if err != nil {
		return err
	}
	a.state = Verdict(a.state, *verdict.ContinueGood)
	a.logger.Debug("resume verdict", "offset", a.state.ContinueStart, "good", *verdict.ContinueGood)
	if a.state.Phase == Restarting {
		return errResumeRejected
	}
	return nil
}
