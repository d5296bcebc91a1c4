package goal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pathway/adapter/cli"
	"pathway/internal/plan/application/commands"
	"pathway/internal/plan/application/queries"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	updateTitle       string
	updateArea        string
	updateNotes       string
	updateTargetDate  string
	updateClearTarget bool
	updateStepStatus  []string
	updateAddSteps    []string
	updateRemoveSteps []int
)

var updateCmd = &cobra.Command{
	Use:   "update <goal-id>",
	Short: "Update a goal and its steps",
	Long: `Update a goal's content and reorganise its steps. Step edits are
addressed by the step's current sequence number.

Examples:
  pathway goal update 6b3f... --title "Achieve functional literacy"
  pathway goal update 6b3f... --step-status 1=STARTED
  pathway goal update 6b3f... --add-step "Sit mock exam" --remove-step 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateGoalHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		goalID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal id: %w", err)
		}

		updateGoal := commands.UpdateGoalCommand{
			GoalID: goalID,
			Actor:  app.Actor,
		}
		if cmd.Flags().Changed("title") {
			updateGoal.Title = &updateTitle
		}
		if cmd.Flags().Changed("area") {
			updateGoal.Area = &updateArea
		}
		if cmd.Flags().Changed("notes") {
			updateGoal.Notes = &updateNotes
		}
		if updateClearTarget {
			updateGoal.ClearDate = true
		} else if updateTargetDate != "" {
			parsed, err := time.Parse("2006-01-02", updateTargetDate)
			if err != nil {
				return fmt.Errorf("invalid target date format (use YYYY-MM-DD): %w", err)
			}
			updateGoal.TargetDate = &parsed
		}

		if len(updateStepStatus) > 0 || len(updateAddSteps) > 0 || len(updateRemoveSteps) > 0 {
			steps, err := desiredSteps(cmd, app, goalID)
			if err != nil {
				return err
			}
			updateGoal.Steps = steps
		}

		g, err := app.UpdateGoalHandler.Handle(cmd.Context(), updateGoal)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		fmt.Printf("Goal updated: %s\n", g.ID())
		for _, step := range g.Steps() {
			fmt.Printf("  %d. [%s] %s\n", step.Sequence(), step.Status(), step.Title())
		}
		return nil
	},
}

// desiredSteps rebuilds the full desired step list from the stored goal and
// the requested edits. The reconciler treats it as authoritative.
func desiredSteps(cmd *cobra.Command, app *cli.App, goalID uuid.UUID) ([]commands.StepInput, error) {
	current, err := app.GetGoalHandler.Handle(cmd.Context(), queries.GetGoalQuery{GoalID: goalID})
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	statusBySequence := make(map[int]string, len(updateStepStatus))
	for _, edit := range updateStepStatus {
		seqPart, status, ok := strings.Cut(edit, "=")
		if !ok {
			return nil, fmt.Errorf("invalid step status %q (use <sequence>=<STATUS>)", edit)
		}
		seq, err := strconv.Atoi(seqPart)
		if err != nil {
			return nil, fmt.Errorf("invalid step sequence %q", seqPart)
		}
		statusBySequence[seq] = status
	}

	removed := make(map[int]bool, len(updateRemoveSteps))
	for _, seq := range updateRemoveSteps {
		removed[seq] = true
	}

	var steps []commands.StepInput
	for _, step := range current.Steps {
		if removed[step.Sequence] {
			continue
		}
		id := step.ID
		status := step.Status
		if override, ok := statusBySequence[step.Sequence]; ok {
			status = override
		}
		steps = append(steps, commands.StepInput{
			ID:       &id,
			Title:    step.Title,
			Status:   status,
			Position: len(steps) + 1,
		})
	}
	for _, title := range updateAddSteps {
		steps = append(steps, commands.StepInput{Title: title, Position: len(steps) + 1})
	}
	return steps, nil
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new goal title")
	updateCmd.Flags().StringVar(&updateArea, "area", "", "new rehabilitation area")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new goal notes")
	updateCmd.Flags().StringVar(&updateTargetDate, "target", "", "new target date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updateClearTarget, "clear-target", false, "remove the target date")
	updateCmd.Flags().StringArrayVar(&updateStepStatus, "step-status", nil, "set a step status: <sequence>=<STATUS>")
	updateCmd.Flags().StringArrayVar(&updateAddSteps, "add-step", nil, "append a new step")
	updateCmd.Flags().IntSliceVar(&updateRemoveSteps, "remove-step", nil, "remove the step at this sequence")
}
