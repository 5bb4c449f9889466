// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// DefaultWidth is used when the output is not a terminal or its size
// cannot be read.
const DefaultWidth = 80

// minBarWidth keeps the bar legible on very narrow terminals; the line
// wraps rather than losing the bar entirely.
const minBarWidth = 10

// Snapshot is everything one status line depends on.
type Snapshot struct {
	Done  int64
	Total int64
	Label string

	// Elapsed is the time since the transfer started. Throughput and
	// ETA appear only once it exceeds one second.
	Elapsed time.Duration

	// Width is the number of terminal columns available.
	Width int
}

// Line renders a status line no wider than Width-1 columns (the last
// column is left empty so the cursor never wraps), unless Width is too
// small to fit a minimal bar.
func Line(s Snapshot) string {
	done, total := s.Done, s.Total
	if done < 0 {
		done = 0
	}
	fraction := 1.0
	if total > 0 {
		if done > total {
			done = total
		}
		fraction = float64(done) / float64(total)
	}

	var tail strings.Builder
	fmt.Fprintf(&tail, " %5.1f%% %s/%s", fraction*100, FormatBinary(done), FormatBinary(total))
	if seconds := s.Elapsed.Seconds(); seconds > 1 {
		rate := float64(done) / seconds
		fmt.Fprintf(&tail, " %s/s", FormatBinary(int64(rate)))
		if rate > 0 && total > 0 {
			eta := float64(total-done) / rate
			fmt.Fprintf(&tail, " ETA %s", FormatDuration(int64(eta+0.5)))
		}
	}

	width := s.Width
	if width <= 0 {
		width = DefaultWidth
	}
	barWidth := width - 1 - 2 - ansi.StringWidth(tail.String())
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	return "[" + bar(barWidth, fraction, s.Label) + "]" + tail.String()
}

// bar draws barWidth cells, filled in proportion to fraction, with
// label written over the cells starting at the second one.
func bar(barWidth int, fraction float64, label string) string {
	filled := int(fraction * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	cells := []byte(strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled))

	if label == "" || barWidth < 3 {
		return string(cells)
	}
	label = ansi.Strip(label)
	label = ansi.Truncate(label, barWidth-2, "…")
	labelWidth := ansi.StringWidth(label)
	return string(cells[:1]) + label + string(cells[1+labelWidth:])
}
