package goal

import (
	"fmt"

	"pathway/adapter/cli"
	"pathway/internal/plan/application/commands"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <goal-id>",
	Short: "Archive a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ArchiveGoalHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		goalID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal id: %w", err)
		}

		g, err := app.ArchiveGoalHandler.Handle(cmd.Context(), commands.ArchiveGoalCommand{
			GoalID: goalID,
			Actor:  app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to archive goal: %w", err)
		}

		fmt.Printf("Goal archived: %s\n", g.Title())
		return nil
	},
}

var reactivateCmd = &cobra.Command{
	Use:   "reactivate <goal-id>",
	Short: "Return an archived goal to the active plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ReactivateGoalHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		goalID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal id: %w", err)
		}

		g, err := app.ReactivateGoalHandler.Handle(cmd.Context(), commands.ReactivateGoalCommand{
			GoalID: goalID,
			Actor:  app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to reactivate goal: %w", err)
		}

		fmt.Printf("Goal reactivated: %s\n", g.Title())
		return nil
	},
}
