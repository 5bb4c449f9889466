// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/andrewrk/wolfebin/lib/clock"
)

type recordingRenderer struct {
	lines   []string
	cleared int
}

func (r *recordingRenderer) Width() int         { return 80 }
func (r *recordingRenderer) Render(line string) { r.lines = append(r.lines, line) }
func (r *recordingRenderer) Clear()             { r.cleared++ }

func (r *recordingRenderer) last() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

func TestTrackerStartsClockAtFirstByte(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	renderer := &recordingRenderer{}
	tracker := NewTracker(fake, renderer, 10*1024)

	tracker.Update(0)
	// Negotiation time before the first byte does not count.
	fake.Advance(30 * time.Second)
	tracker.Update(1024)
	fake.Advance(2 * time.Second)
	tracker.Update(5 * 1024)

	if !strings.Contains(renderer.last(), " 2.5k/s") {
		t.Errorf("line %q: throughput should be measured from the first byte", renderer.last())
	}
	if !strings.HasSuffix(renderer.last(), "ETA 2s") {
		t.Errorf("line %q: want ETA 2s", renderer.last())
	}
}

func TestTrackerAddAndLabel(t *testing.T) {
	renderer := &recordingRenderer{}
	tracker := NewTracker(clock.Fake(time.Unix(0, 0)), renderer, 200)

	tracker.SetLabel("a.txt")
	tracker.Add(50)
	tracker.Add(50)
	if tracker.Done() != 100 {
		t.Errorf("Done = %d, want 100", tracker.Done())
	}
	if !strings.Contains(renderer.last(), "a.txt") || !strings.Contains(renderer.last(), " 50.0%") {
		t.Errorf("line = %q", renderer.last())
	}

	tracker.Clear()
	if renderer.cleared != 1 {
		t.Errorf("cleared = %d, want 1", renderer.cleared)
	}
}

func TestTerminalRendererRedrawsInPlace(t *testing.T) {
	var output bytes.Buffer
	renderer := NewTerminal(&output, func() int { return 50 })

	renderer.Clear()
	if output.Len() != 0 {
		t.Errorf("Clear with nothing shown wrote %q", output.String())
	}

	renderer.Render("[==  ] 50.0%")
	if !strings.HasSuffix(output.String(), "\r[==  ] 50.0%") {
		t.Errorf("output %q does not end with the redrawn line", output.String())
	}
	if !strings.Contains(output.String(), "\x1b[2K") {
		t.Errorf("output %q does not erase the previous line", output.String())
	}

	output.Reset()
	renderer.Clear()
	if output.String() != "\x1b[2K\r" {
		t.Errorf("Clear wrote %q", output.String())
	}
}
