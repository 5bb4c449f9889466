// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"io"

	"github.com/andrewrk/wolfebin/lib/netutil"
	"github.com/andrewrk/wolfebin/lib/wire"
)

// sizedReader reads exactly size bytes from the underlying reader,
// then returns io.EOF. A stream that ends early yields a ProtocolError
// wrapping *wire.ShortReadError instead of a silent short result.
type sizedReader struct {
	reader    io.Reader
	size      int64
	remaining int64
}

func newSizedReader(r io.Reader, size int64) *sizedReader {
	return &sizedReader{reader: r, size: size, remaining: size}
}

func (sr *sizedReader) Read(p []byte) (int, error) {
	if sr.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > sr.remaining {
		p = p[:sr.remaining]
	}

	bytesRead, err := sr.reader.Read(p)
	sr.remaining -= int64(bytesRead)

	if err != nil && sr.remaining > 0 && (errors.Is(err, io.EOF) || netutil.IsExpectedCloseError(err)) {
		return bytesRead, &ProtocolError{
			Op:  "reading payload stream",
			Err: &wire.ShortReadError{Want: sr.size, Got: sr.size - sr.remaining},
		}
	}
	if sr.remaining == 0 && errors.Is(err, io.EOF) {
		// All bytes consumed; report the final EOF on the next call.
		return bytesRead, nil
	}
	return bytesRead, err
}
