package goal

import (
	"fmt"

	"pathway/adapter/cli"
	"pathway/internal/plan/application/queries"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show one goal in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetGoalHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		goalID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal id: %w", err)
		}

		dto, err := app.GetGoalHandler.Handle(cmd.Context(), queries.GetGoalQuery{GoalID: goalID})
		if err != nil {
			return fmt.Errorf("failed to get goal: %w", err)
		}

		fmt.Printf("Goal: %s\n", dto.Title)
		fmt.Printf("  id: %s\n", dto.ID)
		fmt.Printf("  prisoner: %s\n", dto.PrisonNumber)
		fmt.Printf("  status: %s\n", dto.Status)
		if dto.Area != "" {
			fmt.Printf("  area: %s\n", dto.Area)
		}
		if dto.Notes != "" {
			fmt.Printf("  notes: %s\n", dto.Notes)
		}
		if dto.TargetDate != nil {
			fmt.Printf("  target: %s\n", dto.TargetDate.Format("2006-01-02"))
		}
		fmt.Println("  steps:")
		for _, step := range dto.Steps {
			fmt.Printf("    %d. [%s] %s\n", step.Sequence, step.Status, step.Title)
		}
		return nil
	},
}
