// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FileInfo names one file of a stored set.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Item is one entry of a list response: a key and its files.
type Item struct {
	Key   string     `json:"key"`
	Files []FileInfo `json:"files"`
}

// Envelope is a decoded message. Pointer and slice fields are nil when
// the field was absent, which is distinct from present-but-zero. An
// empty JSON list decodes to an empty non-nil slice.
type Envelope struct {
	Command         *string    `json:"command,omitempty"`
	Key             *string    `json:"key,omitempty"`
	Files           []FileInfo `json:"files,omitempty"`
	Error           *string    `json:"error,omitempty"`
	Warning         *string    `json:"warning,omitempty"`
	Version         *string    `json:"version,omitempty"`
	ContinueStart   *int64     `json:"continue_start,omitempty"`
	ContinueSHA1    *string    `json:"continue_sha1,omitempty"`
	ContinueGood    *bool      `json:"continue_good,omitempty"`
	SHA1            *string    `json:"sha1,omitempty"`
	BinLen          *int64     `json:"__bin_len__,omitempty"`
	Keys            []string   `json:"keys,omitempty"`
	Items           []Item     `json:"items,omitempty"`
	AttemptContinue *bool      `json:"attempt_continue,omitempty"`
}

// DecodeEnvelope parses the JSON text of one envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedEnvelope)
	}
	var envelope Envelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return &envelope, nil
}

// Kind names the envelope the client expects next. Each kind has a
// field that must be present; Receive reports its absence as a
// ProtocolError.
type Kind int

const (
	// KindAck is any reply without required fields: the answer to a
	// file digest, to delete, or a verdict that carries only a warning.
	KindAck Kind = iota
	// KindResumeOffer carries continue_start.
	KindResumeOffer
	// KindResumeVerdict carries continue_good.
	KindResumeVerdict
	// KindFileList carries files.
	KindFileList
	// KindPayload carries __bin_len__.
	KindPayload
	// KindDigest carries sha1.
	KindDigest
	// KindListing carries keys or items.
	KindListing
	// KindVersionInfo carries version.
	KindVersionInfo
	// KindUpgradeHeader carries __bin_len__ for the upgrade payload.
	KindUpgradeHeader
)

var kindNames = [...]string{
	KindAck:           "acknowledgement",
	KindResumeOffer:   "resume offer",
	KindResumeVerdict: "resume verdict",
	KindFileList:      "file list",
	KindPayload:       "payload header",
	KindDigest:        "file digest",
	KindListing:       "key listing",
	KindVersionInfo:   "version info",
	KindUpgradeHeader: "upgrade header",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Require checks that the envelope carries the field kind needs.
func (e *Envelope) Require(kind Kind) error {
	missing := ""
	switch kind {
	case KindResumeOffer:
		if e.ContinueStart == nil {
			missing = "continue_start"
		}
	case KindResumeVerdict:
		if e.ContinueGood == nil {
			missing = "continue_good"
		}
	case KindFileList:
		if e.Files == nil {
			missing = "files"
		}
	case KindPayload, KindUpgradeHeader:
		if e.BinLen == nil {
			missing = "__bin_len__"
		} else if *e.BinLen < 0 {
			return fmt.Errorf("%w: __bin_len__ %d is negative", ErrMalformedEnvelope, *e.BinLen)
		}
	case KindDigest:
		if e.SHA1 == nil {
			missing = "sha1"
		}
	case KindListing:
		if e.Keys == nil && e.Items == nil {
			missing = "keys or items"
		}
	case KindVersionInfo:
		if e.Version == nil {
			missing = "version"
		}
	}
	if missing != "" {
		return fmt.Errorf("%w %s in %s", ErrMissingField, missing, kind)
	}
	return nil
}

// Listing flattens a list response into items. Servers that send only
// keys produce items without files.
func (e *Envelope) Listing() []Item {
	if e.Items != nil {
		return e.Items
	}
	items := make([]Item, 0, len(e.Keys))
	for _, key := range e.Keys {
		items = append(items, Item{Key: key})
	}
	return items
}
