// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cli renders analysis progress and reports for the terminal.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/wirecheck/wirecheck/services/wiring/analyzer"
	"github.com/wirecheck/wirecheck/services/wiring/cycle"
)

var (
	headingStyle    = lipgloss.NewStyle().Bold(true)
	diagnosticStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cycleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle        = lipgloss.NewStyle().Faint(true)
)

// Console renders analysis output. On a terminal it uses color and in-place
// progress updates; piped output stays plain and line-oriented.
type Console struct {
	out         io.Writer
	interactive bool
	progressive bool
}

// NewConsole creates a Console writing to the file, detecting whether it is
// a terminal.
func NewConsole(out *os.File) *Console {
	interactive := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return &Console{out: out, interactive: interactive}
}

// NewPlainConsole creates a Console that never uses terminal features.
// Used for tests and piped output.
func NewPlainConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Progress renders one progress update. Interactive output rewrites a
// single status line; otherwise updates are dropped to keep pipes quiet.
func (c *Console) Progress(p analyzer.Progress) {
	if !c.interactive {
		return
	}
	c.progressive = true
	fmt.Fprintf(c.out, "\r\033[K%s %d/%d classes, %d edges, %d findings",
		dimStyle.Render(p.Phase.String()),
		p.ClassesProcessed, p.ClassesTotal, p.EdgesCreated, p.Diagnostics)
}

// PrintReport renders a finished report.
func (c *Console) PrintReport(report *analyzer.Report) {
	if c.progressive {
		fmt.Fprint(c.out, "\r\033[K")
		c.progressive = false
	}

	s := report.Stats
	fmt.Fprintf(c.out, "%s\n", headingStyle.Render(fmt.Sprintf(
		"wiring report %s", report.ID)))
	fmt.Fprintf(c.out, "%s\n", dimStyle.Render(fmt.Sprintf(
		"%d classes, %d beans, %d injection points, %d edges (%dms)",
		s.ClassesTotal, s.BeansFound, s.InjectionPoints, s.EdgesCreated, s.DurationMilli)))

	if report.Incomplete {
		fmt.Fprintf(c.out, "%s\n", diagnosticStyle.Render("analysis was cancelled; results are partial"))
	}

	for _, message := range report.Diagnostics {
		fmt.Fprintf(c.out, "  %s\n", diagnosticStyle.Render(message))
	}
	for _, classErr := range report.ClassErrors {
		fmt.Fprintf(c.out, "  %s\n", diagnosticStyle.Render(
			fmt.Sprintf("%s: %s", classErr.Class, classErr.Message)))
	}
	for _, found := range report.Cycles {
		fmt.Fprintf(c.out, "\n%s\n", cycleStyle.Render(cycle.RenderBox(found)))
	}

	if report.Clean() {
		fmt.Fprintf(c.out, "%s\n", okStyle.Render("no wiring problems found"))
	}
}
