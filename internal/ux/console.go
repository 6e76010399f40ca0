package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
)

// Console writes styled progress output for a harness run. Log records
// go to the logger; Console is the human-facing channel.
type Console struct {
	w io.Writer
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Default returns a console writing to stdout.
func Default() *Console {
	return NewConsole(os.Stdout)
}

// Notice prints an informational, non-fatal message, used for expected
// no-work conditions ("✓ No eligible todos for worker1 - continuing").
func (c *Console) Notice(format string, args ...any) {
	fmt.Fprintln(c.w, noticeStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// StepBanner prints the header announcing a step execution.
func (c *Console) StepBanner(name, description string) {
	rule := strings.Repeat("#", 80)
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, bannerStyle.Render(rule))
	fmt.Fprintln(c.w, bannerStyle.Render(fmt.Sprintf("STEP %s: %s", name, description)))
	fmt.Fprintln(c.w, bannerStyle.Render(rule))
}

// Failure prints a run-fatal message.
func (c *Console) Failure(format string, args ...any) {
	fmt.Fprintln(c.w, failureStyle.Render(fmt.Sprintf(format, args...)))
}

// Infof prints an unstyled line.
func (c *Console) Infof(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}
