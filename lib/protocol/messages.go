// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "encoding/json"

// Message is an outbound envelope. The set of implementations is
// closed; each renders only the fields its kind uses.
type Message interface {
	// Name identifies the message in logs and error context.
	Name() string
	fields() map[string]any
}

// PutRequest opens an upload. Files must already be in wire order.
type PutRequest struct {
	Key             string
	Files           []FileInfo
	AttemptContinue bool
}

func (PutRequest) Name() string { return "put request" }

func (m PutRequest) fields() map[string]any {
	files := m.Files
	if files == nil {
		files = []FileInfo{}
	}
	fields := map[string]any{"command": "put", "key": m.Key, "files": files}
	if m.AttemptContinue {
		fields["attempt_continue"] = true
	}
	return fields
}

// GetRequest opens a download.
type GetRequest struct {
	Key string
}

func (GetRequest) Name() string { return "get request" }

func (m GetRequest) fields() map[string]any {
	return map[string]any{"command": "get", "key": m.Key}
}

// DeleteRequest removes a key from the server.
type DeleteRequest struct {
	Key string
}

func (DeleteRequest) Name() string { return "delete request" }

func (m DeleteRequest) fields() map[string]any {
	return map[string]any{"command": "delete", "key": m.Key}
}

// ListRequest asks for every stored key.
type ListRequest struct{}

func (ListRequest) Name() string { return "list request" }

func (ListRequest) fields() map[string]any {
	return map[string]any{"command": "list"}
}

// VersionRequest asks the server for its version.
type VersionRequest struct{}

func (VersionRequest) Name() string { return "version request" }

func (VersionRequest) fields() map[string]any {
	return map[string]any{"command": "version"}
}

// UpgradeRequest asks the server for the current client binary.
type UpgradeRequest struct{}

func (UpgradeRequest) Name() string { return "upgrade request" }

func (UpgradeRequest) fields() map[string]any {
	return map[string]any{"command": "upgrade"}
}

// ResumeCheck carries the digest of the logical stream prefix the
// client skipped, for the server to compare against what it holds.
type ResumeCheck struct {
	SHA1 string
}

func (ResumeCheck) Name() string { return "resume check" }

func (m ResumeCheck) fields() map[string]any {
	return map[string]any{"continue_sha1": m.SHA1}
}

// FileDigest follows the last payload of a file during upload.
type FileDigest struct {
	SHA1 string
}

func (FileDigest) Name() string { return "file digest" }

func (m FileDigest) fields() map[string]any {
	return map[string]any{"sha1": m.SHA1}
}

// PayloadHeader announces Length raw bytes immediately after it.
type PayloadHeader struct {
	Length int64
}

func (PayloadHeader) Name() string { return "payload header" }

func (m PayloadHeader) fields() map[string]any {
	return map[string]any{"__bin_len__": m.Length}
}

// Render returns the JSON text of m with version attached. Keys are
// emitted in sorted order.
func Render(m Message, version string) ([]byte, error) {
	fields := m.fields()
	fields["version"] = version
	return json.Marshal(fields)
}
