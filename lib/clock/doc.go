// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Code that measures elapsed time (the progress tracker's throughput
// and ETA) accepts a Clock instead of calling time.Now directly. In
// production, Real() provides the standard library behavior. In tests,
// Fake() provides a clock that moves only when Advance or Set is
// called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	tracker := progress.NewTracker(c, ...)
//	tracker.Update(1024)
//	c.Advance(2 * time.Second)
//	tracker.Update(4096)
package clock
