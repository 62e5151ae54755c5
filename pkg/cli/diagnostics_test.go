package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/flowc/pkg/testutil"
	"github.com/flowforge/flowc/pkg/workflow"
)

func TestMain(m *testing.M) {
	// Colors are stripped so assertions see plain text.
	color.NoColor = true
	os.Exit(m.Run())
}

func compileError(t *testing.T, src string) (string, error) {
	t.Helper()
	dir := testutil.TempDir(t, "diag-*")
	scriptPath := filepath.Join(dir, "pipeline.js")
	require.NoError(t, os.WriteFile(scriptPath, []byte(src), 0o644))

	_, err := workflow.NewCompiler().CompileScript(scriptPath)
	require.Error(t, err)
	return scriptPath, err
}

func TestScriptDiagnosticPositioned(t *testing.T) {
	scriptPath, err := compileError(t, `const params = WorkflowParams({ "x": "1" });
const addAlpha = step("node:20-alpine", function (input, output) {
  output.artifacts["txt-out"].open("w");
});
function main(mounts, params) {
  addAlpha(
    Input({ parameters: { v: params["missing"] } }),
    Output({ artifacts: { "txt-out": TmpFile("a.txt") } })
  );
}
entrypoint(main);
`)

	diag := scriptDiagnostic(scriptPath, err)
	assert.Contains(t, diag, scriptPath+":7:1:")
	assert.Contains(t, diag, `error: cannot resolve params["missing"]`)
	assert.Contains(t, diag, `  7 |     Input({ parameters: { v: params["missing"] } }),`)
	assert.Contains(t, diag, "  hint: check the name against the script's declarations")
}

func TestScriptDiagnosticSuggestions(t *testing.T) {
	scriptPath, err := compileError(t, `function main(mounts, params) {}
entrypoint(main);
`)

	diag := scriptDiagnostic(scriptPath, err)
	assert.Contains(t, diag, "✗ no WorkflowParams declaration found")
	assert.Contains(t, diag, "Suggestions:")
	assert.Contains(t, diag, "  • declare const params = WorkflowParams(")
}

func TestScriptDiagnosticPlainError(t *testing.T) {
	scriptPath, err := compileError(t, `const params = WorkflowParams({ "x": "1" });
const first = step("node:20-alpine", function (input, output) {
  output.artifacts["f"].open("w");
});
const second = step("node:20-alpine", function (input, output) {
  output.artifacts["f"].open("w");
});
function main(mounts, params) {
  const shared = Output({ artifacts: { f: TmpFile("f.txt") } });
  first(Input({ parameters: { v: params["x"] } }), shared);
  second(Input({ parameters: { v: params["x"] } }), shared);
}
entrypoint(main);
`)

	// Lineage conflicts have no script position and no hints; the plain
	// message printed by the root command is all there is.
	assert.Empty(t, scriptDiagnostic(scriptPath, err))
}

func TestContextLinesWindow(t *testing.T) {
	dir := testutil.TempDir(t, "diag-*")
	scriptPath := filepath.Join(dir, "pipeline.js")
	require.NoError(t, os.WriteFile(scriptPath, []byte("one\ntwo\nthree\nfour\n"), 0o644))

	assert.Equal(t, []string{"one", "two", "three"}, contextLines(scriptPath, 2))
	assert.Equal(t, []string{"one", "two"}, contextLines(scriptPath, 1))
	assert.Nil(t, contextLines(filepath.Join(dir, "nope.js"), 2))
}
