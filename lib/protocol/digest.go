// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// DigestSize is the length of a hex-encoded digest on the wire. Every
// file in an upload contributes this many bytes to the progress total.
const DigestSize = 2 * sha1.Size

// NewDigest returns the rolling hash used for file and resume digests.
func NewDigest() hash.Hash {
	return sha1.New()
}

// FormatDigest returns the wire form of h's current sum.
func FormatDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// ParseDigest validates a digest received from the server and returns
// it in lowercase. A 32-character hex string is the previous protocol
// generation and yields ErrChecksumGeneration.
func ParseDigest(s string) (string, error) {
	lower := strings.ToLower(s)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedDigest, s)
	}
	switch len(lower) {
	case DigestSize:
		return lower, nil
	case 2 * 16:
		return "", fmt.Errorf("%w: got a %d-character digest", ErrChecksumGeneration, len(lower))
	default:
		return "", fmt.Errorf("%w: %d characters, want %d", ErrMalformedDigest, len(lower), DigestSize)
	}
}
