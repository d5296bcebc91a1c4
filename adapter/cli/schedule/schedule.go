package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage induction and review schedules",
	Long:  `Open, exempt, resume and complete the deadline schedules for inductions and reviews.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(exemptCmd)
	Cmd.AddCommand(resumeCmd)
	Cmd.AddCommand(completeCmd)
}
