// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles renders the prefixes of diagnostic lines. Colors are used
// only when the output is a terminal.
type Styles struct {
	errorPrefix   lipgloss.Style
	warningPrefix lipgloss.Style
	emphasis      lipgloss.Style
}

// NewStyles returns styles for output written to w.
func NewStyles(w io.Writer) *Styles {
	renderer := lipgloss.NewRenderer(w)
	if !IsTerminal(w) {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		errorPrefix:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warningPrefix: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		emphasis:      renderer.NewStyle().Bold(true),
	}
}

// WarningPrefix returns the "WARNING:" label.
func (s *Styles) WarningPrefix() string {
	return s.warningPrefix.Render("WARNING:")
}

// Emphasis renders text in bold.
func (s *Styles) Emphasis(text string) string {
	return s.emphasis.Render(text)
}

// PrintError writes "error: <message>" to w.
func (s *Styles) PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", s.errorPrefix.Render("error:"), err)
}
