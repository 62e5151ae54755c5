package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowc/pkg/cli"
	"github.com/flowforge/flowc/pkg/console"
	"github.com/flowforge/flowc/pkg/constants"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     constants.CLIExtensionPrefix,
		Short:   "Transpile pipeline scripts into workflow manifests",
		Version: cli.Version(),
		Long: constants.CLIExtensionPrefix + ` turns pipeline scripts into declarative workflow manifests.

Scripts declare workflow parameters, mount points and container steps; the
transpiler statically parses them (never executing the script) and emits a
workflow YAML file plus a parameters YAML file. The same script can also
run locally for development.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(cli.NewTranspileCommand())
	rootCmd.AddCommand(cli.NewSubmitCommand())
	rootCmd.AddCommand(cli.NewRunCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
