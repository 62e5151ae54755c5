// Package console renders user-facing CLI output: status messages and
// compiler diagnostics. Colors degrade automatically when stdout is not a
// terminal or NO_COLOR is set (handled by fatih/color).
package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	verboseColor = color.New(color.Faint)
	positionBold = color.New(color.Bold)
)

// ErrorPosition locates a diagnostic in a source file.
type ErrorPosition struct {
	File   string
	Line   int
	Column int
}

// CompilerError is a positioned diagnostic with optional source context.
type CompilerError struct {
	Position ErrorPosition
	Type     string // "error" or "warning"
	Message  string
	Context  []string // source lines surrounding the error
	Hint     string
}

func (e CompilerError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.File, e.Position.Line, e.Position.Column, e.Message)
}

// FormatError renders a CompilerError in the familiar
// file:line:col: severity: message form, followed by numbered context lines.
func FormatError(err CompilerError) string {
	var b strings.Builder

	pos := fmt.Sprintf("%s:%d:%d:", err.Position.File, err.Position.Line, err.Position.Column)
	severity := err.Type
	if severity == "" {
		severity = "error"
	}

	b.WriteString(positionBold.Sprint(pos))
	b.WriteString(" ")
	if severity == "warning" {
		b.WriteString(warningColor.Sprintf("%s:", severity))
	} else {
		b.WriteString(errorColor.Sprintf("%s:", severity))
	}
	b.WriteString(" ")
	b.WriteString(err.Message)
	b.WriteString("\n")

	if len(err.Context) > 0 {
		// Context lines are numbered from the line preceding the error so the
		// offending line sits in the middle of the excerpt.
		start := err.Position.Line - 1
		if start < 1 {
			start = 1
		}
		for i, line := range err.Context {
			fmt.Fprintf(&b, "  %d | %s\n", start+i, line)
		}
	}

	if err.Hint != "" {
		fmt.Fprintf(&b, "  hint: %s\n", err.Hint)
	}

	return b.String()
}

// FormatErrorMessage renders a one-line error for terminal output.
func FormatErrorMessage(msg string) string {
	return errorColor.Sprint("✗ ") + msg
}

// FormatWarningMessage renders a one-line warning for terminal output.
func FormatWarningMessage(msg string) string {
	return warningColor.Sprint("⚠ ") + msg
}

// FormatSuccessMessage renders a one-line success confirmation.
func FormatSuccessMessage(msg string) string {
	return successColor.Sprint("✓ ") + msg
}

// FormatInfoMessage renders a one-line informational message.
func FormatInfoMessage(msg string) string {
	return infoColor.Sprint("ℹ ") + msg
}

// FormatVerboseMessage renders a dimmed message for --verbose output.
func FormatVerboseMessage(msg string) string {
	return verboseColor.Sprint(msg)
}

// FormatErrorWithSuggestions renders an error followed by a bulleted list of
// recovery suggestions.
func FormatErrorWithSuggestions(msg string, suggestions []string) string {
	var b strings.Builder
	b.WriteString(errorColor.Sprint("✗ "))
	b.WriteString(msg)
	b.WriteString("\n")
	if len(suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "  • %s\n", s)
		}
	}
	return b.String()
}
