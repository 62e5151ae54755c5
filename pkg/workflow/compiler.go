package workflow

import (
	"fmt"
	"os"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/flowforge/flowc/pkg/console"
	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var compilerLog = logger.New("workflow:compiler")

// Compiler transpiles pipeline scripts into workflow manifests. A zero
// Compiler is usable; options adjust CLI-facing behavior only.
type Compiler struct {
	verbose bool
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithVerbose enables progress messages on stderr.
func WithVerbose(verbose bool) CompilerOption {
	return func(c *Compiler) {
		c.verbose = verbose
	}
}

// NewCompiler creates a Compiler with the given options applied.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileResult holds the outcome of one transpilation: the assembled
// document, the script's workflow parameters, and where both were
// written.
type CompileResult struct {
	Manifest       *Manifest
	Params         *pipeline.WorkflowParams
	ManifestPath   string
	ParametersPath string
}

// CompileScript transpiles the script at scriptPath and writes the
// manifest and parameters files next to it. The script is parsed, never
// executed. On any error nothing is written.
func (c *Compiler) CompileScript(scriptPath string) (*CompileResult, error) {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	manifest, model, err := c.compile(string(src), scriptPath)
	if err != nil {
		return nil, err
	}

	manifestData, err := MarshalManifest(manifest)
	if err != nil {
		return nil, err
	}
	paramsData, err := MarshalParameters(model.params)
	if err != nil {
		return nil, err
	}

	result := &CompileResult{
		Manifest:       manifest,
		Params:         model.params,
		ManifestPath:   ManifestPath(scriptPath),
		ParametersPath: ParametersPath(scriptPath),
	}
	if err := writeFile(result.ManifestPath, manifestData); err != nil {
		return nil, err
	}
	if err := writeFile(result.ParametersPath, paramsData); err != nil {
		return nil, err
	}

	if c.verbose {
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Transpiled %s to %s", scriptPath, result.ManifestPath)))
	}
	return result, nil
}

// compile runs the full pipeline over in-memory source: parse, build the
// script model, resolve the step graph, assemble the manifest.
func (c *Compiler) compile(src, scriptPath string) (*Manifest, *scriptModel, error) {
	program, err := parseSource(src, scriptPath)
	if err != nil {
		return nil, nil, err
	}

	model, err := parseScript(src, program)
	if err != nil {
		return nil, nil, err
	}

	r := &resolver{
		src: src,
		ctx: newContext(model.paramsName, model.mountsName, model.params, model.mounts),
	}
	groups, err := r.buildGraph(model)
	if err != nil {
		return nil, nil, err
	}
	if len(groups) == 0 {
		return nil, nil, &ConfigurationError{
			Message: fmt.Sprintf("entrypoint %q calls no steps", model.entryName),
			Hints:   []string{"call at least one declared step from the driver"},
		}
	}

	manifest, err := assembleManifest(src, scriptStem(scriptPath), model, groups)
	if err != nil {
		return nil, nil, err
	}

	compilerLog.Printf("Compiled %s: %d step groups", scriptPath, len(groups))
	return manifest, model, nil
}

func parseSource(src, scriptPath string) (*ast.Program, error) {
	program, err := parser.ParseFile(nil, scriptPath, src, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", scriptPath, err)
	}
	return program, nil
}
