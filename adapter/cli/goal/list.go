package goal

import (
	"fmt"

	"pathway/adapter/cli"
	"pathway/internal/plan/application/queries"

	"github.com/spf13/cobra"
)

var listIncludeArchived bool

var listCmd = &cobra.Command{
	Use:   "list <prison-number>",
	Short: "List the goals on a prisoner's plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListGoalsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		dtos, err := app.ListGoalsHandler.Handle(cmd.Context(), queries.ListGoalsQuery{
			PrisonNumber:    args[0],
			IncludeArchived: listIncludeArchived,
		})
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		if len(dtos) == 0 {
			fmt.Println("No goals found.")
			return nil
		}

		for _, dto := range dtos {
			fmt.Printf("%s  [%s]  %s\n", dto.ID, dto.Status, dto.Title)
			if dto.TargetDate != nil {
				fmt.Printf("  target: %s\n", dto.TargetDate.Format("2006-01-02"))
			}
			for _, step := range dto.Steps {
				fmt.Printf("  %d. [%s] %s\n", step.Sequence, step.Status, step.Title)
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listIncludeArchived, "all", false, "include archived goals")
}
