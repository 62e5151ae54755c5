// Package template implements the placeholder token grammar shared by the
// transpiler and the literal template filler, plus the filler itself.
//
// A token has the form {{ scope.kind.name }} where scope is one of inputs,
// outputs or workflow, kind is parameters or artifacts, and name is limited
// to letters, digits, underscores and hyphens. Whitespace around the inner
// segments is tolerated and stripped.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flowforge/flowc/pkg/logger"
)

var tokenLog = logger.New("template:token")

// Scope selects which transput a token refers to.
type Scope string

const (
	ScopeInputs   Scope = "inputs"
	ScopeOutputs  Scope = "outputs"
	ScopeWorkflow Scope = "workflow"
)

// Kind selects the parameter or artifact mapping within a transput.
type Kind string

const (
	KindParameters Kind = "parameters"
	KindArtifacts  Kind = "artifacts"
)

// Token is one validated placeholder occurrence. Line is 1-based; Start and
// End are byte offsets into that line and include the surrounding braces,
// so replacement can be done by slicing.
type Token struct {
	Scope Scope
	Kind  Kind
	Name  string
	Line  int
	Start int
	End   int
}

var (
	tokenRegexp = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	nameRegexp  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// GrammarError aggregates every malformed token found in a block of text.
// Validation never stops at the first problem: the user sees all of them in
// one pass.
type GrammarError struct {
	Problems []string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("found %d invalid template variables:\n%s",
		len(e.Problems), strings.Join(e.Problems, "\n"))
}

// Extract finds and validates every placeholder token in the given lines.
// On malformed tokens it returns a *GrammarError listing every offender
// with its line number.
func Extract(lines []string) ([]Token, error) {
	var tokens []Token
	var problems []string

	for i, line := range lines {
		for _, span := range tokenRegexp.FindAllStringIndex(line, -1) {
			raw := line[span[0]:span[1]]
			inner := strings.TrimSpace(raw[2 : len(raw)-2])

			tok, problem := parseToken(inner, i+1)
			if problem != "" {
				problems = append(problems, problem)
				continue
			}
			tok.Line = i + 1
			tok.Start = span[0]
			tok.End = span[1]
			tokens = append(tokens, tok)
		}
	}

	if len(problems) > 0 {
		tokenLog.Printf("Extracted %d tokens with %d grammar problems", len(tokens), len(problems))
		return nil, &GrammarError{Problems: problems}
	}

	tokenLog.Printf("Extracted %d tokens", len(tokens))
	return tokens, nil
}

func parseToken(inner string, line int) (Token, string) {
	parts := strings.Split(inner, ".")
	if len(parts) != 3 {
		return Token{}, fmt.Sprintf(
			"line %d: invalid variable format: expected something like inputs.artifacts.name, found '%s'",
			line, inner)
	}

	scope := Scope(strings.TrimSpace(parts[0]))
	kind := Kind(strings.TrimSpace(parts[1]))
	name := strings.TrimSpace(parts[2])

	switch scope {
	case ScopeInputs, ScopeOutputs, ScopeWorkflow:
	default:
		return Token{}, fmt.Sprintf(
			"line %d: invalid variable scope: expected 'inputs', 'outputs' or 'workflow', found '%s' in '%s'",
			line, scope, inner)
	}

	switch kind {
	case KindParameters, KindArtifacts:
	default:
		return Token{}, fmt.Sprintf(
			"line %d: invalid IO kind: expected 'parameters' or 'artifacts', found '%s' in '%s'",
			line, kind, inner)
	}

	if !nameRegexp.MatchString(name) {
		return Token{}, fmt.Sprintf(
			"line %d: invalid variable name '%s': names may only contain letters, digits, underscores and hyphens",
			line, name)
	}

	return Token{Scope: scope, Kind: kind, Name: name}, ""
}

// String renders the token in canonical form without surrounding braces.
func (t Token) String() string {
	return fmt.Sprintf("%s.%s.%s", t.Scope, t.Kind, t.Name)
}
