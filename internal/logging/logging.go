package logging

import (
	"fmt"
	"io"
	"strings"
)

// Basic ANSI color codes for log prefixes. Rendered output elsewhere uses the
// lipgloss styles in package ui; loggers stay dependency free so every
// internal package can import them.
const (
	Reset     = "\033[0m"
	FgCyan    = "\033[36m"
	FgGreen   = "\033[32m"
	FgMagenta = "\033[35m"
	FgYellow  = "\033[33m"
	FgRed     = "\033[31m"
)

// Color wraps a string with the given ANSI code.
func Color(s string, code string) string {
	return code + s + Reset
}

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> <field>=<subject> <formattedMessage>\n
//
// where <field> defaults to "view" and <subject> is trimmed and defaults to
// "(unknown)".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// Field names the subject column, e.g. "model", "endpoint", "user".
	Field string

	// OmitField drops the subject column entirely.
	OmitField bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(subject string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitField {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	field := l.Field
	if field == "" {
		field = "view"
	}
	s := strings.TrimSpace(subject)
	if s == "" {
		s = "(unknown)"
	}
	fmt.Fprintf(l.Writer, "%s %s=%s %s\n", prefix, field, s, msg)
}
