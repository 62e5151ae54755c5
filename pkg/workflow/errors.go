package workflow

import "fmt"

// ConfigurationError reports a missing or duplicated script-level
// declaration (workflow parameters, mount points, entrypoint). Hints carry
// recovery suggestions for the CLI to display.
type ConfigurationError struct {
	Message string
	Hints   []string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// UnsupportedConstructError reports a statement or expression shape outside
// the restricted script grammar. The compiler never approximates: anything
// it cannot transpile exactly is rejected, with the offending construct
// named.
type UnsupportedConstructError struct {
	Construct string
	Detail    string
	Line      int
}

// Message returns the diagnostic text without the line prefix.
func (e *UnsupportedConstructError) Message() string {
	msg := fmt.Sprintf("unsupported construct %s", e.Construct)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// SourceLine returns the 1-based script line, or 0 when unknown.
func (e *UnsupportedConstructError) SourceLine() int {
	return e.Line
}

func (e *UnsupportedConstructError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message())
	}
	return e.Message()
}

// UnresolvedReferenceError reports a subscript that cannot be traced to the
// workflow parameters, a mount point, or a previously bound transput.
type UnresolvedReferenceError struct {
	Object string
	Key    string
	Line   int
}

// Message returns the diagnostic text without the line prefix.
func (e *UnresolvedReferenceError) Message() string {
	return fmt.Sprintf("cannot resolve %s[%q]", e.Object, e.Key)
}

// SourceLine returns the 1-based script line, or 0 when unknown.
func (e *UnresolvedReferenceError) SourceLine() int {
	return e.Line
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message())
	}
	return e.Message()
}

// LineageConflictError reports an output entry produced by more than one
// step. Every output has exactly one producer.
type LineageConflictError struct {
	Step      string
	Name      string
	PriorStep string
}

func (e *LineageConflictError) Error() string {
	return fmt.Sprintf("step %q produces output %q, but it was already produced by step %q",
		e.Step, e.Name, e.PriorStep)
}

// EmptyBundleError reports a transput carrying neither parameters nor
// artifacts.
type EmptyBundleError struct {
	Context string
	Line    int
}

// Message returns the diagnostic text without the line prefix.
func (e *EmptyBundleError) Message() string {
	return fmt.Sprintf("empty %s: a step bundle must carry at least one parameter or artifact", e.Context)
}

// SourceLine returns the 1-based script line, or 0 when unknown.
func (e *EmptyBundleError) SourceLine() int {
	return e.Line
}

func (e *EmptyBundleError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message())
	}
	return e.Message()
}
