package goal

import (
	"fmt"

	"pathway/adapter/cli"
	"pathway/internal/plan/application/commands"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <goal-id>",
	Short: "Mark a goal as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteGoalHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		goalID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal id: %w", err)
		}

		g, err := app.CompleteGoalHandler.Handle(cmd.Context(), commands.CompleteGoalCommand{
			GoalID: goalID,
			Actor:  app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to complete goal: %w", err)
		}

		fmt.Printf("Goal completed: %s\n", g.Title())
		return nil
	},
}
