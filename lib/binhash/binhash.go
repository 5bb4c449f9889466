// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the SHA256 digest of the file at path. The file is
// streamed through the hash function in chunks (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the lowercase hex encoding of a 32-byte digest.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// Digests holds the two content digests computed by a Hasher.
type Digests struct {
	SHA256 [32]byte
	BLAKE3 [32]byte
}

// Hasher feeds everything written to it through SHA256 and BLAKE3.
// Use it with io.TeeReader or io.MultiWriter while the bytes are on
// their way somewhere else.
type Hasher struct {
	sha    hash.Hash
	blake  *blake3.Hasher
	length int64
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{sha: sha256.New(), blake: blake3.New()}
}

// Write never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	h.sha.Write(p)
	h.blake.Write(p)
	h.length += int64(len(p))
	return len(p), nil
}

// Len returns the number of bytes written so far.
func (h *Hasher) Len() int64 {
	return h.length
}

// Sum returns the digests of everything written so far.
func (h *Hasher) Sum() Digests {
	var digests Digests
	copy(digests.SHA256[:], h.sha.Sum(nil))
	copy(digests.BLAKE3[:], h.blake.Sum(nil))
	return digests
}
