package commands

import "github.com/spf13/cobra"

// NewRootCmd builds the planner command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "planner",
		Short:         "Requirements planning and standard cost rollup",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newRollupCmd())
	return cmd
}
