package cli

import (
	"github.com/spf13/cobra"

	"github.com/flowforge/flowc/pkg/constants"
	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/runner"
)

var runLog = logger.New("cli:run")

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a pipeline script locally",
		Long: `Run a pipeline script on the local machine instead of transpiling it.

Steps execute in order in an embedded JavaScript runtime; mount points
resolve to their local directories and temporary artifacts land in a
date-scoped scratch directory.

Examples:
  ` + constants.CLIExtensionPrefix + ` run examples/single_step.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return RunLocal(args[0], verbose)
		},
	}
	return cmd
}

// RunLocal executes the script in the local runner.
func RunLocal(scriptPath string, verbose bool) error {
	runLog.Printf("Running %s locally", scriptPath)
	r := runner.New(runner.WithVerbose(verbose))
	return r.RunScript(scriptPath)
}
