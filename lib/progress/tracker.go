// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"time"

	"github.com/andrewrk/wolfebin/lib/clock"
)

// Renderer displays status lines.
type Renderer interface {
	// Width returns the columns available for a line.
	Width() int
	// Render replaces the current status line.
	Render(line string)
	// Clear erases the status line, leaving the cursor at column 0.
	Clear()
}

// Tracker turns cumulative byte counts into status lines. It is used
// from a single goroutine.
type Tracker struct {
	clock    clock.Clock
	renderer Renderer
	total    int64
	label    string
	done     int64

	start   time.Time
	started bool
}

// NewTracker returns a tracker for a transfer of total bytes. A nil
// renderer discards output.
func NewTracker(c clock.Clock, renderer Renderer, total int64) *Tracker {
	if renderer == nil {
		renderer = Discard()
	}
	return &Tracker{clock: c, renderer: renderer, total: total}
}

// SetLabel changes the text overlaid on the bar, typically the name of
// the file in flight. It takes effect at the next Update.
func (t *Tracker) SetLabel(label string) {
	t.label = label
}

// Update records done bytes transferred so far and redraws. The start
// time is fixed at the first update with done > 0, so time spent
// negotiating before any byte moves does not dilute the throughput.
func (t *Tracker) Update(done int64) {
	t.done = done
	if !t.started && done > 0 {
		t.start = t.clock.Now()
		t.started = true
	}
	t.renderer.Render(Line(t.snapshot()))
}

// Add advances the count by delta and redraws.
func (t *Tracker) Add(delta int64) {
	t.Update(t.done + delta)
}

// Done returns the last recorded byte count.
func (t *Tracker) Done() int64 {
	return t.done
}

// Total returns the byte count that means 100%.
func (t *Tracker) Total() int64 {
	return t.total
}

// Clear erases the status line. It is the hook to run before printing
// anything else to the terminal.
func (t *Tracker) Clear() {
	t.renderer.Clear()
}

func (t *Tracker) snapshot() Snapshot {
	var elapsed time.Duration
	if t.started {
		elapsed = t.clock.Since(t.start)
	}
	return Snapshot{
		Done:    t.done,
		Total:   t.total,
		Label:   t.label,
		Elapsed: elapsed,
		Width:   t.renderer.Width(),
	}
}
