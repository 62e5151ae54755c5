package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseModel(t *testing.T, src string) (*scriptModel, error) {
	t.Helper()
	program, err := parseSource(src, "pipeline.js")
	require.NoError(t, err)
	return parseScript(src, program)
}

func TestParseScriptMinimal(t *testing.T) {
	src := `
const params = WorkflowParams({ "s3-bucket": "pq-dataxfer-tmp", "input-val": "1" });

const addAlpha = step("node:20-alpine", function (input, output) {
  output.artifacts["txt-out"].open("w");
});

function main(mounts, params) {
  addAlpha(Input({ parameters: { value: params["input-val"] } }), Output({ artifacts: { "txt-out": TmpFile("t.txt") } }));
}

entrypoint(main);
`
	model, err := parseModel(t, src)
	require.NoError(t, err)

	assert.Equal(t, []string{"s3-bucket", "input-val"}, model.params.Names())
	assert.Equal(t, "params", model.paramsName)
	assert.Equal(t, "main", model.entryName)
	require.Contains(t, model.steps, "addAlpha")
	assert.Equal(t, "node:20-alpine", model.steps["addAlpha"].image)
	assert.Nil(t, model.mounts)
}

func TestParseScriptMountInterpolation(t *testing.T) {
	src := `
const params = WorkflowParams({ "s3-bucket": "pq-dataxfer-tmp", "input-path": "testing" });
const mounts = MountPoints({
  root: MountPoint("/local/data", ` + "`s3://${params[\"s3-bucket\"]}/${params[\"input-path\"]}`" + `),
});
function main(mounts, params) {}
entrypoint(main);
`
	model, err := parseModel(t, src)
	require.NoError(t, err)
	require.NotNil(t, model.mounts)

	point, ok := model.mounts.Get("root")
	require.True(t, ok)
	assert.Equal(t, "/local/data", point.Local)
	assert.Equal(t, "s3://pq-dataxfer-tmp/testing", point.Remote)
}

func TestParseScriptMountInterpolationUnknownParameter(t *testing.T) {
	src := `
const params = WorkflowParams({ "s3-bucket": "b" });
const mounts = MountPoints({ root: MountPoint("/local", ` + "`s3://${params[\"missing\"]}`" + `) });
function main(mounts, params) {}
entrypoint(main);
`
	_, err := parseModel(t, src)
	var refErr *UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "missing", refErr.Key)
}

func TestParseScriptMissingParams(t *testing.T) {
	src := `
function main(mounts, params) {}
entrypoint(main);
`
	_, err := parseModel(t, src)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "no WorkflowParams declaration")
}

func TestParseScriptDuplicateParams(t *testing.T) {
	src := `
const a = WorkflowParams({ "x": "1" });
const b = WorkflowParams({ "y": "2" });
function main(mounts, params) {}
entrypoint(main);
`
	_, err := parseModel(t, src)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "multiple WorkflowParams declarations")
}

func TestParseScriptMissingEntrypoint(t *testing.T) {
	src := `const params = WorkflowParams({ "x": "1" });`

	_, err := parseModel(t, src)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "no entrypoint declaration")
}

func TestParseScriptMultipleEntrypoints(t *testing.T) {
	src := `
const params = WorkflowParams({ "x": "1" });
function main(mounts, params) {}
function other(mounts, params) {}
entrypoint(main);
entrypoint(other);
`
	_, err := parseModel(t, src)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "multiple entrypoint declarations")
}

func TestParseScriptEntrypointNamesUnknownFunction(t *testing.T) {
	src := `
const params = WorkflowParams({ "x": "1" });
entrypoint(main);
`
	_, err := parseModel(t, src)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, `entrypoint names "main"`)
}

func TestParseScriptNonStringParameterValue(t *testing.T) {
	src := `
const params = WorkflowParams({ "x": 1 });
function main(mounts, params) {}
entrypoint(main);
`
	_, err := parseModel(t, src)
	var constructErr *UnsupportedConstructError
	require.ErrorAs(t, err, &constructErr)
	assert.Contains(t, constructErr.Error(), `parameter "x" must be a string literal`)
}

func TestParseScriptIgnoresUnrelatedDeclarations(t *testing.T) {
	src := `
const params = WorkflowParams({ "x": "1" });
const helper = "just a local constant";
const answer = compute(42);
function main(mounts, params) {}
entrypoint(main);
`
	model, err := parseModel(t, src)
	require.NoError(t, err)
	assert.Empty(t, model.steps)
}
