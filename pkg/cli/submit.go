package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowc/pkg/console"
	"github.com/flowforge/flowc/pkg/constants"
	"github.com/flowforge/flowc/pkg/logger"
)

var submitLog = logger.New("cli:submit")

// NewSubmitCommand creates the submit command
func NewSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <script>",
		Short: "Transpile a pipeline script and submit it to the workflow engine",
		Long: `Transpile a pipeline script and submit the resulting manifest through the
argo CLI, passing the generated parameters file along.

Examples:
  ` + constants.CLIExtensionPrefix + ` submit examples/single_step.js
  ` + constants.CLIExtensionPrefix + ` submit examples/single_step.js --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			watch, _ := cmd.Flags().GetBool("watch")
			argoBin, _ := cmd.Flags().GetString("argo-bin")
			return RunSubmit(args[0], argoBin, watch, verbose)
		},
	}

	cmd.Flags().Bool("watch", false, "Watch the workflow until it completes")
	cmd.Flags().String("argo-bin", "argo", "Path to the argo CLI binary")
	return cmd
}

// RunSubmit transpiles the script and hands the manifest to the argo CLI.
// The argo process inherits stdout/stderr so its progress output reaches
// the terminal directly.
func RunSubmit(scriptPath, argoBin string, watch, verbose bool) error {
	result, err := RunTranspile(scriptPath, verbose)
	if err != nil {
		return err
	}

	args := []string{"submit", result.ManifestPath, "--parameter-file", result.ParametersPath}
	if watch {
		args = append(args, "--watch")
	}

	fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Submitting %s", result.ManifestPath)))
	submitLog.Printf("Running %s %v", argoBin, args)
	if verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Running: %s %v", argoBin, args)))
	}

	argo := exec.Command(argoBin, args...)
	argo.Stdout = os.Stdout
	argo.Stderr = os.Stderr
	if err := argo.Run(); err != nil {
		return fmt.Errorf("argo submit failed: %w", err)
	}

	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Submitted %s", result.ManifestPath)))
	return nil
}
