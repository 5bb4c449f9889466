// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storetest

import (
	"errors"
	"fmt"

	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/wire"
)

var errClientViolation = errors.New("client broke the protocol")

func (c *serverSession) violation(message string) error {
	c.sendError(message)
	return fmt.Errorf("%w: %s", errClientViolation, message)
}

func (c *serverSession) sendPayload(data []byte) error {
	if err := c.send(map[string]any{"__bin_len__": len(data)}); err != nil {
		return err
	}
	_, err := c.stream.Write(data)
	return err
}

func (c *serverSession) handlePut(request *protocol.Envelope) error {
	key := keyOf(request)
	if key == "" || request.Files == nil {
		return c.violation("put requires key and files")
	}
	files := request.Files
	record := &PutRecord{
		Key:             key,
		Files:           files,
		AttemptContinue: request.AttemptContinue != nil && *request.AttemptContinue,
		Offer:           -1,
	}

	server := c.server
	server.mu.Lock()
	server.puts = append(server.puts, record)
	var held []byte
	if record.AttemptContinue {
		if partial, ok := server.partials[key]; ok && sameFiles(partial.files, files) {
			held = append([]byte(nil), partial.stream...)
			record.Offer = int64(len(held))
		}
	}
	if server.Faults.OfferOverride != nil {
		record.Offer = *server.Faults.OfferOverride
	}
	offer := record.Offer
	server.mu.Unlock()

	if err := c.send(map[string]any{"continue_start": offer}); err != nil {
		return err
	}

	var stream []byte
	if offer >= 0 {
		check, err := c.receive()
		if err != nil {
			return err
		}
		if check.ContinueSHA1 == nil {
			return c.violation("expected continue_sha1")
		}
		prefix := held
		if int64(len(prefix)) > offer {
			prefix = prefix[:offer]
		}
		good := int64(len(prefix)) == offer && Digest(prefix) == *check.ContinueSHA1
		server.mu.Lock()
		record.Verified = &good
		server.mu.Unlock()
		if err := c.send(map[string]any{"continue_good": good}); err != nil {
			return err
		}
		if good {
			stream = prefix
		}
	}

	// The upload is stored before the final acknowledgement so a
	// client that reconnects straight away sees it.
	commit := func() {
		server.mu.Lock()
		defer server.mu.Unlock()
		if record.Completed {
			return
		}
		server.entries[key] = &entry{files: files, stream: stream}
		delete(server.partials, key)
		record.Completed = true
	}
	if err := c.receiveUpload(files, &stream, record, commit); err != nil {
		server.mu.Lock()
		if !record.Completed {
			server.partials[key] = &entry{files: files, stream: stream}
		}
		server.mu.Unlock()
		return err
	}
	commit()
	return nil
}

// receiveUpload reads the logical stream from wherever stream ends to
// the end of the last file's digest. commit runs before the last
// acknowledgement is sent.
func (c *serverSession) receiveUpload(files []protocol.FileInfo, stream *[]byte, record *PutRecord, commit func()) error {
	server := c.server
	position := int64(len(*stream))
	var offset int64
	for index, file := range files {
		fileEnd := offset + file.Size
		digestEnd := fileEnd + protocol.DigestSize

		for position < fileEnd {
			header, err := c.receive()
			if err != nil {
				return err
			}
			if header.BinLen == nil {
				return c.violation(fmt.Sprintf("expected payload for %s", file.Name))
			}
			data, err := wire.ReadExactly(c.stream, *header.BinLen)
			if err != nil {
				return err
			}
			if position+int64(len(data)) > fileEnd {
				return c.violation(fmt.Sprintf("payload overruns %s", file.Name))
			}
			*stream = append(*stream, data...)
			position += int64(len(data))
			server.mu.Lock()
			record.PayloadBytes += int64(len(data))
			server.mu.Unlock()
		}

		if position < digestEnd {
			envelope, err := c.receive()
			if err != nil {
				return err
			}
			if envelope.SHA1 == nil {
				return c.violation(fmt.Sprintf("expected sha1 for %s", file.Name))
			}
			body := (*stream)[offset:fileEnd]
			*stream = append((*stream)[:fileEnd], *envelope.SHA1...)
			position = digestEnd

			ack := map[string]any{}
			server.mu.Lock()
			record.Digests++
			warning := server.Faults.AckWarning
			server.mu.Unlock()
			if Digest(body) != *envelope.SHA1 {
				ack["warning"] = fmt.Sprintf("checksum mismatch for %s", file.Name)
			} else if warning != "" {
				ack["warning"] = warning
			}
			if index == len(files)-1 {
				commit()
			}
			if err := c.send(ack); err != nil {
				return err
			}
		}
		offset = digestEnd
	}
	return nil
}

func (c *serverSession) handleGet(request *protocol.Envelope) error {
	key := keyOf(request)
	server := c.server
	server.mu.Lock()
	stored, ok := server.entries[key]
	faults := server.Faults
	server.mu.Unlock()
	if !ok {
		return c.sendError(fmt.Sprintf("key not found: '%s'", key))
	}

	files := stored.files
	if files == nil {
		files = []protocol.FileInfo{}
	}
	if err := c.send(map[string]any{"files": files}); err != nil {
		return err
	}

	var offset int64
	for _, file := range files {
		body := stored.stream[offset : offset+file.Size]
		limit := file.Size
		if file.Name == faults.TruncateFile && faults.TruncateAt < limit {
			limit = faults.TruncateAt
		}
		for sent := int64(0); sent < limit; {
			count := min(int64(chunkSize), limit-sent)
			if err := c.sendPayload(body[sent : sent+count]); err != nil {
				return err
			}
			sent += count
		}
		if limit < file.Size {
			if faults.DropConnection {
				return nil
			}
			return c.sendPayload(nil)
		}
		if faults.EndMarkers {
			if err := c.sendPayload(nil); err != nil {
				return err
			}
		}

		digest := string(stored.stream[offset+file.Size : offset+file.Size+protocol.DigestSize])
		if file.Name == faults.CorruptDigestFile {
			digest = Digest([]byte("corrupt"))
		}
		if faults.LegacyDigests {
			digest = digest[:32]
		}
		if err := c.send(map[string]any{"sha1": digest}); err != nil {
			return err
		}
		offset += file.Size + protocol.DigestSize
	}
	return nil
}

func (c *serverSession) handleDelete(request *protocol.Envelope) error {
	key := keyOf(request)
	server := c.server
	server.mu.Lock()
	_, ok := server.entries[key]
	delete(server.entries, key)
	delete(server.partials, key)
	server.mu.Unlock()
	if !ok {
		return c.sendError(fmt.Sprintf("key not found: '%s'", key))
	}
	return c.send(map[string]any{})
}

func (c *serverSession) handleList() error {
	server := c.server
	server.mu.Lock()
	keys := sortedKeys(server.entries)
	items := make([]protocol.Item, 0, len(keys))
	for _, key := range keys {
		items = append(items, protocol.Item{Key: key, Files: server.entries[key].files})
	}
	keysOnly := server.Faults.KeysOnly
	server.mu.Unlock()

	if keysOnly {
		return c.send(map[string]any{"keys": keys})
	}
	return c.send(map[string]any{"items": items})
}

func (c *serverSession) handleUpgrade() error {
	c.server.mu.Lock()
	payload := c.server.UpgradePayload
	c.server.mu.Unlock()
	if payload == nil {
		return c.sendError("no upgrade available")
	}
	if err := c.send(map[string]any{"__bin_len__": len(payload)}); err != nil {
		return err
	}
	_, err := c.stream.Write(payload)
	return err
}
