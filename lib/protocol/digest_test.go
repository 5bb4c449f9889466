// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"testing"
)

func TestFormatDigest(t *testing.T) {
	digest := NewDigest()
	digest.Write([]byte("abc"))
	if got := FormatDigest(digest); got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("FormatDigest = %s", got)
	}
	if got := FormatDigest(NewDigest()); got != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Errorf("empty digest = %s", got)
	}
}

func TestParseDigest(t *testing.T) {
	got, err := ParseDigest("A9993E364706816ABA3E25717850C26C9CD0D89D")
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("ParseDigest = %s, want lowercase", got)
	}

	if _, err := ParseDigest("900150983cd24fb0d6963f7d28e17f72"); !errors.Is(err, ErrChecksumGeneration) {
		t.Errorf("md5-length digest err = %v, want ErrChecksumGeneration", err)
	}
	for _, bad := range []string{"", "xyz", "a9993e36"} {
		if _, err := ParseDigest(bad); !errors.Is(err, ErrMalformedDigest) {
			t.Errorf("ParseDigest(%q) err = %v, want ErrMalformedDigest", bad, err)
		}
	}
}
