package goal

import (
	"fmt"
	"time"

	"pathway/adapter/cli"
	"pathway/internal/plan/application/commands"

	"github.com/spf13/cobra"
)

var (
	createArea       string
	createTargetDate string
	createSteps      []string
)

var createCmd = &cobra.Command{
	Use:   "create <prison-number> <title>",
	Short: "Add a goal to a prisoner's plan",
	Long: `Add a goal with its initial steps to a prisoner's plan.
A goal always carries at least one step.

Examples:
  pathway goal create A1234BC "Improve literacy" --step "Enrol in reading course"
  pathway goal create A1234BC "Stay drug free" --area HEALTH \
      --step "Attend substance misuse programme" --step "Weekly keyworker session" \
      --target 2026-03-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateGoalHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		steps := make([]commands.StepInput, 0, len(createSteps))
		for i, title := range createSteps {
			steps = append(steps, commands.StepInput{Title: title, Position: i + 1})
		}

		createGoal := commands.CreateGoalCommand{
			PrisonNumber: args[0],
			Title:        args[1],
			Area:         createArea,
			Steps:        steps,
			Actor:        app.Actor,
		}

		if createTargetDate != "" {
			parsed, err := time.Parse("2006-01-02", createTargetDate)
			if err != nil {
				return fmt.Errorf("invalid target date format (use YYYY-MM-DD): %w", err)
			}
			createGoal.TargetDate = &parsed
		}

		g, err := app.CreateGoalHandler.Handle(cmd.Context(), createGoal)
		if err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		fmt.Printf("Goal created: %s\n", g.ID())
		fmt.Printf("  title: %s\n", g.Title())
		for _, step := range g.Steps() {
			fmt.Printf("  step %d: %s\n", step.Sequence(), step.Title())
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createArea, "area", "", "goal area (e.g. EDUCATION, HEALTH, WORK)")
	createCmd.Flags().StringVar(&createTargetDate, "target", "", "target date (YYYY-MM-DD)")
	createCmd.Flags().StringArrayVar(&createSteps, "step", nil, "step title (repeat for each step, in order)")
}
