package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowc/pkg/console"
	"github.com/flowforge/flowc/pkg/constants"
	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/workflow"
)

var transpileLog = logger.New("cli:transpile")

// NewTranspileCommand creates the transpile command
func NewTranspileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transpile <script>",
		Short: "Transpile a pipeline script into a workflow manifest",
		Long: `Transpile a pipeline script into a workflow manifest.

The script is parsed, never executed. A workflow YAML file and a parameters
YAML file are written next to the script.

Examples:
  ` + constants.CLIExtensionPrefix + ` transpile examples/single_step.js
  ` + constants.CLIExtensionPrefix + ` transpile pipeline.js --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			_, err := RunTranspile(args[0], verbose)
			return err
		},
	}
	return cmd
}

// RunTranspile compiles the script and reports where the outputs landed.
// Compile errors that carry a script position are rendered as full
// diagnostics with a source excerpt before the error propagates.
func RunTranspile(scriptPath string, verbose bool) (*workflow.CompileResult, error) {
	transpileLog.Printf("Transpiling %s", scriptPath)

	for _, path := range []string{workflow.ManifestPath(scriptPath), workflow.ParametersPath(scriptPath)} {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Overwriting %s", path)))
		}
	}

	compiler := workflow.NewCompiler(workflow.WithVerbose(verbose))
	result, err := compiler.CompileScript(scriptPath)
	if err != nil {
		if diag := scriptDiagnostic(scriptPath, err); diag != "" {
			fmt.Fprint(os.Stderr, diag)
		}
		return nil, err
	}

	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Wrote %s", result.ManifestPath)))
	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Wrote %s", result.ParametersPath)))
	return result, nil
}
