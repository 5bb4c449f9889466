// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Discard returns a renderer that draws nothing.
func Discard() Renderer { return discardRenderer{} }

type discardRenderer struct{}

func (discardRenderer) Width() int    { return DefaultWidth }
func (discardRenderer) Render(string) {}
func (discardRenderer) Clear()        {}

// ForFile returns a terminal renderer when file is a terminal and a
// discarding renderer otherwise. Piped or redirected stderr gets no
// status lines.
func ForFile(file *os.File) Renderer {
	if !term.IsTerminal(int(file.Fd())) {
		return Discard()
	}
	return NewTerminal(file, func() int {
		columns, _, err := term.GetSize(int(file.Fd()))
		if err != nil || columns <= 0 {
			return DefaultWidth
		}
		return columns
	})
}

// Terminal redraws one line in place.
type Terminal struct {
	output  *termenv.Output
	width   func() int
	visible bool
}

// NewTerminal returns a renderer writing to w. width reports the
// current column count and is consulted on every redraw so a resized
// window takes effect immediately.
func NewTerminal(w io.Writer, width func() int) *Terminal {
	if width == nil {
		width = func() int { return DefaultWidth }
	}
	return &Terminal{output: termenv.NewOutput(w), width: width}
}

// Width returns the current column count.
func (r *Terminal) Width() int {
	return r.width()
}

// Render replaces the current line.
func (r *Terminal) Render(line string) {
	r.output.ClearLine()
	r.output.WriteString("\r" + line)
	r.visible = true
}

// Clear erases the line if one is showing.
func (r *Terminal) Clear() {
	if !r.visible {
		return
	}
	r.output.ClearLine()
	r.output.WriteString("\r")
	r.visible = false
}
