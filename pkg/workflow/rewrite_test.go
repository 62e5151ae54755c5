package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteFirstStep compiles the driver and rewrites the body of the first
// step in the graph.
func rewriteFirstStep(t *testing.T, src string) (string, error) {
	t.Helper()
	groups, err := buildGroups(t, src)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	return rewriteStepBody(src, groups[0][0])
}

func rewriteScript(body string) string {
	return `
const params = WorkflowParams({ "output-path": "out" });

const proc = step("node:20-alpine", function (input, output) {
` + body + `
});

function main(mounts, params) {
  proc(
    Input({
      parameters: { "word-index": "1" },
      artifacts: { "csv-file": FileInput("s3://bucket", "in", "f.csv") },
    }),
    Output({
      artifacts: {
        "word-file": TmpFile("w.txt"),
        "out-file": FileOutput("s3://bucket", "out"),
      },
    })
  );
}

entrypoint(main);
`
}

func TestRewriteSubscripts(t *testing.T) {
	src := rewriteScript(`
  const value = input.parameters["word-index"];
  const path = input.artifacts["csv-file"];
  log(value, path);
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)

	assert.Contains(t, body, `const value = "{{inputs.parameters.word-index}}";`)
	assert.Contains(t, body, `const path = "{{inputs.artifacts.csv-file.path}}";`)
	assert.NotContains(t, body, "input.parameters")
	assert.NotContains(t, body, "input.artifacts")
}

func TestRewriteDedentsBody(t *testing.T) {
	src := rewriteScript(`
  const value = input.parameters["word-index"];
  log(value);
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)

	assert.Equal(t, "const value = \"{{inputs.parameters.word-index}}\";\nlog(value);", body)
}

func TestRewriteOpenCalls(t *testing.T) {
	src := rewriteScript(`
  const line = input.artifacts["csv-file"].open("r").read();
  const tmp = output.artifacts["word-file"].open("w");
  tmp.write(line);
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)

	assert.Contains(t, body, `openFile("{{inputs.artifacts.csv-file.path}}", "r").read()`)
	assert.Contains(t, body, `openFile("{{outputs.artifacts.word-file.path}}", "w")`)
}

func TestRewriteOpenDefaultsMode(t *testing.T) {
	src := rewriteScript(`
  const line = input.artifacts["csv-file"].open().read();
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)
	assert.Contains(t, body, `openFile("{{inputs.artifacts.csv-file.path}}", "r")`)
}

func TestRewriteOpenOptionsObject(t *testing.T) {
	src := rewriteScript(`
  const tmp = output.artifacts["word-file"].open({ mode: "w" });
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)
	assert.Contains(t, body, `openFile("{{outputs.artifacts.word-file.path}}", "w")`)
}

func TestRewriteOpenWithStringFragment(t *testing.T) {
	src := rewriteScript(`
  const out = output.artifacts["out-file"].open("result.txt", "w");
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)
	assert.Contains(t, body, `openFile("{{outputs.artifacts.out-file.path}}/result.txt", "w")`)
}

func TestRewriteOpenWithTemplateFragment(t *testing.T) {
	src := rewriteScript(`
  const out = output.artifacts["out-file"].open(` + "`result_${input.parameters[\"word-index\"]}.txt`" + `, "w");
`)
	body, err := rewriteFirstStep(t, src)
	require.NoError(t, err)
	assert.Contains(t, body,
		"openFile(\"{{outputs.artifacts.out-file.path}}/\" + `result_${\"{{inputs.parameters.word-index}}\"}.txt`, \"w\")")
}

func TestRewriteOpenModeMismatch(t *testing.T) {
	src := rewriteScript(`
  input.artifacts["csv-file"].open("w");
`)
	_, err := rewriteFirstStep(t, src)
	var constructErr *UnsupportedConstructError
	require.ErrorAs(t, err, &constructErr)
	assert.Contains(t, constructErr.Error(), `always opened with mode "r"`)
}

func TestRewriteFragmentOnTemporaryArtifact(t *testing.T) {
	src := rewriteScript(`
  output.artifacts["word-file"].open("extra.txt", "w");
`)
	_, err := rewriteFirstStep(t, src)
	var constructErr *UnsupportedConstructError
	require.ErrorAs(t, err, &constructErr)
	assert.Contains(t, constructErr.Error(), "already names a single file")
}

func TestRewriteUnknownArtifact(t *testing.T) {
	src := rewriteScript(`
  input.artifacts["nope"].open("r");
`)
	_, err := rewriteFirstStep(t, src)
	var refErr *UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "nope", refErr.Key)
}

func TestRewriteUnknownParameter(t *testing.T) {
	src := rewriteScript(`
  const v = input.parameters["nope"];
`)
	_, err := rewriteFirstStep(t, src)
	var refErr *UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "nope", refErr.Key)
}

func TestRewriteRejectsPlainBundleUse(t *testing.T) {
	src := rewriteScript(`
  helper(input);
`)
	_, err := rewriteFirstStep(t, src)
	var constructErr *UnsupportedConstructError
	require.ErrorAs(t, err, &constructErr)
	assert.Contains(t, constructErr.Error(), "cannot be used as a plain value")
}

func TestRewriteRejectsNonConstantKey(t *testing.T) {
	src := rewriteScript(`
  const k = "word-index";
  const v = input.parameters[k];
`)
	_, err := rewriteFirstStep(t, src)
	var constructErr *UnsupportedConstructError
	require.ErrorAs(t, err, &constructErr)
	assert.Contains(t, constructErr.Error(), "keys must be constant strings")
}
