// Package ui holds the small amount of terminal formatting sluice does:
// optional ANSI styling, headed sections, and prefixed warnings on stderr.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput overrides the stdout and stderr writers (for testing).
// A nil writer restores the process default.
func SetOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout, stderr = out, errOut
}

// Stdout returns the writer used for primary output.
func Stdout() io.Writer { return stdout }

var colorEnabled = detectColor(os.Stdout)

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides color detection (for testing).
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

func ansi(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Bold returns s wrapped in bold ANSI codes.
func Bold(s string) string { return ansi("1", s) }

// Dim returns s wrapped in dim ANSI codes.
func Dim(s string) string { return ansi("2", s) }

// Green returns s wrapped in green ANSI codes.
func Green(s string) string { return ansi("32", s) }

// Red returns s wrapped in red ANSI codes.
func Red(s string) string { return ansi("31", s) }

// Yellow returns s wrapped in yellow ANSI codes.
func Yellow(s string) string { return ansi("33", s) }

// Section prints a bold title with a thin underline.
func Section(title string) {
	fmt.Fprintln(stdout, Bold(title))
	fmt.Fprintln(stdout, Dim(strings.Repeat("─", len(title))))
}

// Field prints an indented "label: value" line, padding label to width.
func Field(label string, width int, value string) {
	fmt.Fprintf(stdout, "  %-*s %s\n", width+1, label+":", value)
}

// Warnf prints a formatted user-facing warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", ansi("33", "Warning:"), fmt.Sprintf(format, args...))
}

// Errorf prints a formatted user-facing error to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", ansi("31", "Error:"), fmt.Sprintf(format, args...))
}

// OKTag returns a green "✓" for success indicators.
func OKTag() string { return Green("✓") }

// FailTag returns a red "✗" for failure indicators.
func FailTag() string { return Red("✗") }

// WarnTag returns a yellow "⚠" for warning indicators.
func WarnTag() string { return Yellow("⚠") }
