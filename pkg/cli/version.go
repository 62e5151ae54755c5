package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowc/pkg/constants"
)

// version is set at build time via -ldflags.
var version = "dev"

// SetVersion overrides the build-time version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Version returns the current version string.
func Version() string {
	return version
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the " + constants.CLIExtensionPrefix + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(constants.CLIExtensionPrefix + " " + version)
		},
	}
}
