package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var emitLog = logger.New("workflow:emit")

// MarshalManifest serializes the workflow document. Key order follows the
// struct declarations and multi-line script sources are emitted as literal
// block scalars, so repeated runs over the same script are byte-identical.
func MarshalManifest(m *Manifest) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(m,
		yaml.Indent(2),
		yaml.UseLiteralStyleIfMultiline(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow manifest: %w", err)
	}
	return data, nil
}

// MarshalParameters serializes the workflow parameters in declaration
// order for the submission-time parameters file.
func MarshalParameters(params *pipeline.WorkflowParams) ([]byte, error) {
	doc := make(yaml.MapSlice, 0, params.Len())
	for _, name := range params.Names() {
		value, _ := params.Get(name)
		doc = append(doc, yaml.MapItem{Key: name, Value: value})
	}
	data, err := yaml.MarshalWithOptions(doc, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow parameters: %w", err)
	}
	return data, nil
}

// scriptStem derives the workflow name from the script file name:
// extension dropped, underscores hyphenated.
func scriptStem(scriptPath string) string {
	base := filepath.Base(scriptPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(stem, "_", "-")
}

// ManifestPath returns where the transpiled manifest is written: next to
// the script, named after it.
func ManifestPath(scriptPath string) string {
	return filepath.Join(filepath.Dir(scriptPath), scriptStem(scriptPath)+".yaml")
}

// ParametersPath returns where the parameters file is written.
func ParametersPath(scriptPath string) string {
	return filepath.Join(filepath.Dir(scriptPath), scriptStem(scriptPath)+"-parameters.yaml")
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	emitLog.Printf("Wrote %s (%d bytes)", path, len(data))
	return nil
}
