// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"io"
	"log/slog"

	"github.com/andrewrk/wolfebin/lib/clock"
	"github.com/andrewrk/wolfebin/lib/progress"
)

// Options configures an upload or download.
type Options struct {
	// Clock drives progress timing. Defaults to clock.Real().
	Clock clock.Clock

	// Progress draws the status line. Nil draws nothing.
	Progress progress.Renderer

	// Logger receives Debug-level milestones. Nil uses the
	// connection's logger.
	Logger *slog.Logger

	// Stdout receives the file of a download whose destination is "-".
	Stdout io.Writer

	// ChunkSize overrides the payload size for uploads. Zero means
	// ChunkSize.
	ChunkSize int
}

func (o Options) clock() clock.Clock {
	if o.Clock == nil {
		return clock.Real()
	}
	return o.Clock
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return ChunkSize
	}
	return o.ChunkSize
}
