package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowforge/flowc/pkg/logger"
)

var fillLog = logger.New("template:fill")

// PathStringer yields the local filesystem path of an artifact, the string
// substituted for artifact tokens when filling a template.
type PathStringer interface {
	PathString() string
}

// Bundle is the filler's view of a resolved transput: parameter values and
// artifact paths by name.
type Bundle struct {
	Parameters map[string]string
	Artifacts  map[string]PathStringer
}

// ErrNoVariables is returned when Fill is invoked on text containing no
// placeholder tokens at all, which is almost always a caller mistake.
var ErrNoVariables = errors.New("no variables found in template")

// MissingError aggregates every token that could not be resolved from the
// provided bundles. No substitution is performed when any token is missing.
type MissingError struct {
	Missing []Token
}

func (e *MissingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d template variables were not provided:\n", len(e.Missing))
	for _, tok := range e.Missing {
		fmt.Fprintf(&b, "  line %d, offset %d: %s\n", tok.Line, tok.Start, tok.Name)
	}
	return b.String()
}

// Fill extracts every placeholder token from the template lines and
// replaces each with its value from the input or output bundle. It is
// all-or-nothing: a grammar problem or a missing token aborts with an
// aggregated error and zero substitution.
func Fill(lines []string, inputs, outputs Bundle) ([]string, error) {
	tokens, err := Extract(lines)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrNoVariables
	}

	var missing []Token
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		value, ok := lookup(tok, inputs, outputs)
		if !ok {
			missing = append(missing, tok)
			continue
		}
		values[i] = value
	}
	if len(missing) > 0 {
		fillLog.Printf("Aborting fill: %d of %d tokens missing", len(missing), len(tokens))
		return nil, &MissingError{Missing: missing}
	}

	filled := make([]string, len(lines))
	copy(filled, lines)

	// Tokens arrive in line order, left to right. Replace back-to-front so
	// earlier spans on the same line stay valid.
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		line := filled[tok.Line-1]
		filled[tok.Line-1] = line[:tok.Start] + values[i] + line[tok.End:]
	}

	fillLog.Printf("Filled %d tokens across %d lines", len(tokens), len(lines))
	return filled, nil
}

func lookup(tok Token, inputs, outputs Bundle) (string, bool) {
	var bundle Bundle
	switch tok.Scope {
	case ScopeInputs:
		bundle = inputs
	case ScopeOutputs:
		bundle = outputs
	default:
		// Workflow-scoped tokens are valid grammar but have no bundle to
		// resolve against in a literal template.
		return "", false
	}

	switch tok.Kind {
	case KindParameters:
		v, ok := bundle.Parameters[tok.Name]
		return v, ok
	case KindArtifacts:
		a, ok := bundle.Artifacts[tok.Name]
		if !ok || a == nil {
			return "", false
		}
		return a.PathString(), true
	}
	return "", false
}
