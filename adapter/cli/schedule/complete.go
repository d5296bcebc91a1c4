package schedule

import (
	"fmt"
	"time"

	"pathway/adapter/cli"
	"pathway/internal/schedule/application/commands"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	completeConductedBy string
	completeConductedAt string
)

var completeCmd = &cobra.Command{
	Use:   "complete <schedule-id>",
	Short: "Record that the induction or review took place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		scheduleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule id: %w", err)
		}

		conductedAt := time.Now().UTC()
		if completeConductedAt != "" {
			conductedAt, err = time.Parse("2006-01-02", completeConductedAt)
			if err != nil {
				return fmt.Errorf("invalid conducted date format (use YYYY-MM-DD): %w", err)
			}
		}

		s, err := app.CompleteScheduleHandler.Handle(cmd.Context(), commands.CompleteScheduleCommand{
			ScheduleID:  scheduleID,
			ConductedBy: completeConductedBy,
			ConductedAt: conductedAt,
			Actor:       app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to complete schedule: %w", err)
		}

		fmt.Printf("Schedule completed: %s %s\n", s.Type(), s.PrisonNumber())
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&completeConductedBy, "by", "", "who conducted the induction/review")
	completeCmd.Flags().StringVar(&completeConductedAt, "on", "", "date it was conducted (YYYY-MM-DD, default today)")
	_ = completeCmd.MarkFlagRequired("by")
}
