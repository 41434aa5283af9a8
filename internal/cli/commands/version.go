package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = ""
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version and build commit of haplog.",
		Run: func(cmd *cobra.Command, args []string) {
			if Commit != "" {
				fmt.Printf("haplog %s (%s)\n", Version, Commit)
				return
			}
			fmt.Printf("haplog %s\n", Version)
		},
	}
}
