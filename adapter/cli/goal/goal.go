package goal

import (
	"github.com/spf13/cobra"
)

// Cmd is the goal command group
var Cmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage rehabilitation plan goals",
	Long:  `Create, update, complete and archive the goals on a prisoner's plan.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(archiveCmd)
	Cmd.AddCommand(reactivateCmd)
}
