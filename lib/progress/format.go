// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"math"
)

var binaryUnits = [...]string{"", "k", "M", "G", "T", "P", "E", "Z", "Y"}

// FormatBinary renders a byte count in powers of 1024. Scaled values
// below 9.5 keep one decimal; everything else is a whole number.
//
//	0 → "0", 1023 → "1023", 1024 → "1.0k", 2408358 → "2.3M"
func FormatBinary(n int64) string {
	value := float64(n)
	unit := 0
	for math.Abs(value) >= 1024 && unit < len(binaryUnits)-1 {
		value /= 1024
		unit++
	}
	if unit > 0 && value < 9.5 {
		return fmt.Sprintf("%.1f%s", value, binaryUnits[unit])
	}
	return fmt.Sprintf("%.0f%s", value, binaryUnits[unit])
}

// FormatDuration renders whole seconds as "Ns", "MmSSs", "HhMMm", or,
// from 100 hours on, bare "Hh".
//
//	0 → "0s", 3599 → "59m59s", 359999 → "99h59m", 360000 → "100h"
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	case seconds < 100*3600:
		return fmt.Sprintf("%dh%02dm", seconds/3600, seconds%3600/60)
	default:
		return fmt.Sprintf("%dh", seconds/3600)
	}
}
