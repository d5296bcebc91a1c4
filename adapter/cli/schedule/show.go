package schedule

import (
	"fmt"

	"pathway/adapter/cli"
	"pathway/internal/schedule/application/queries"

	"github.com/spf13/cobra"
)

var showHistory bool

var showCmd = &cobra.Command{
	Use:   "show <prison-number> <type>",
	Short: "Show a prisoner's in-flight schedule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		dto, history, err := app.GetScheduleHandler.Handle(cmd.Context(), queries.GetScheduleQuery{
			PrisonNumber:   args[0],
			Type:           args[1],
			IncludeHistory: showHistory,
		})
		if err != nil {
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		fmt.Printf("Schedule: %s %s\n", dto.Type, dto.PrisonNumber)
		fmt.Printf("  id: %s\n", dto.ID)
		fmt.Printf("  status: %s\n", dto.Status)
		fmt.Printf("  rule: %s\n", dto.Rule)
		fmt.Printf("  window: %s to %s\n", dto.DateFrom.Format("2006-01-02"), dto.DateTo.Format("2006-01-02"))
		if dto.ExemptionReason != nil {
			fmt.Printf("  exemption reason: %s\n", *dto.ExemptionReason)
		}
		if dto.ConductedBy != nil {
			fmt.Printf("  conducted by: %s\n", *dto.ConductedBy)
		}
		if dto.ConductedAt != nil {
			fmt.Printf("  conducted at: %s\n", dto.ConductedAt.Format("2006-01-02 15:04"))
		}

		if showHistory {
			fmt.Println("  history:")
			for _, h := range history {
				fmt.Printf("    v%d %s (%s to %s) by %s\n",
					h.Version, h.Status,
					h.DateFrom.Format("2006-01-02"), h.DateTo.Format("2006-01-02"),
					h.UpdatedBy)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showHistory, "history", false, "include the audit trail")
}
