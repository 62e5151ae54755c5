package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/flowforge/flowc/pkg/console"
	"github.com/flowforge/flowc/pkg/workflow"
)

// positioned is implemented by compile errors that can point at a script
// line (workflow.UnsupportedConstructError and friends).
type positioned interface {
	Message() string
	SourceLine() int
}

// scriptDiagnostic renders a compile error as a positioned diagnostic with
// a source excerpt, or as an error with recovery suggestions when the
// error carries hints instead of a position. It returns "" when the plain
// error message is all there is to show.
func scriptDiagnostic(scriptPath string, err error) string {
	var pos positioned
	if errors.As(err, &pos) && pos.SourceLine() > 0 {
		diag := console.CompilerError{
			Position: console.ErrorPosition{File: scriptPath, Line: pos.SourceLine(), Column: 1},
			Type:     "error",
			Message:  pos.Message(),
			Context:  contextLines(scriptPath, pos.SourceLine()),
		}
		var refErr *workflow.UnresolvedReferenceError
		if errors.As(err, &refErr) {
			diag.Hint = "check the name against the script's declarations"
		}
		return console.FormatError(diag)
	}

	var confErr *workflow.ConfigurationError
	if errors.As(err, &confErr) && len(confErr.Hints) > 0 {
		return console.FormatErrorWithSuggestions(confErr.Message, confErr.Hints)
	}

	return ""
}

// contextLines returns the source lines surrounding the given 1-based
// line, matching the excerpt window FormatError numbers from line-1.
func contextLines(scriptPath string, line int) []string {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil
	}
	lines := strings.Split(string(src), "\n")

	start := line - 2
	if start < 0 {
		start = 0
	}
	end := line + 1
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return lines[start:end]
}
