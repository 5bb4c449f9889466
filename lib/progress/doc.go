// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress renders the single-line transfer status shown while
// files move to or from the server.
//
// A line reads, left to right: a proportional bar with the current
// label overlaid near its leading edge, the percentage with one
// decimal, done/total in binary units, and once more than a second has
// passed, the throughput and an ETA:
//
//	[=src/main.go=======          ]  41.2% 2.3M/5.6M 812.0k/s ETA 4s
//
// [Line] is a pure function of its inputs. [Tracker] holds the one
// piece of state a line needs (when the transfer started, fixed at the
// first non-zero update) and hands finished lines to a [Renderer]. The
// terminal renderer redraws in place with a carriage return and clears
// the line before anything else is printed; when stderr is not a
// terminal no status is written at all.
package progress
