package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/pkg/analytics"
)

// NewCommandsCommand creates the commands listing command.
func NewCommandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the available analytics commands",
		Long: `List every analytics command that 'haplog run' can execute.

Commands are independent, read-only queries over the ingested log; any
subset can be selected with 'haplog run --command <name>'.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			width := 0
			for _, command := range analytics.Registry() {
				if len(command.Name) > width {
					width = len(command.Name)
				}
			}
			for _, command := range analytics.Registry() {
				fmt.Printf("  %-*s  %s\n", width, command.Name, command.Description)
			}
		},
	}
}
