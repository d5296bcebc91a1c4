package schedule

import (
	"fmt"
	"time"

	"pathway/adapter/cli"
	"pathway/internal/schedule/application/commands"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var exemptReason string

var exemptCmd = &cobra.Command{
	Use:   "exempt <schedule-id> <status>",
	Short: "Exempt a schedule",
	Long: `Move a schedule into one of the EXEMPT_* statuses. The uncategorised
"other" exemptions require --reason.

Example:
  pathway schedule exempt 6b3f... EXEMPT_PRISON_OTHER --reason "induction wing flooded"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ExemptScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		scheduleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule id: %w", err)
		}

		exempt := commands.ExemptScheduleCommand{
			ScheduleID: scheduleID,
			Status:     args[1],
			Actor:      app.Actor,
		}
		if exemptReason != "" {
			exempt.Reason = &exemptReason
		}

		s, err := app.ExemptScheduleHandler.Handle(cmd.Context(), exempt)
		if err != nil {
			return fmt.Errorf("failed to exempt schedule: %w", err)
		}

		fmt.Printf("Schedule exempted: %s\n", s.Status())
		return nil
	},
}

var resumeReference string

var resumeCmd = &cobra.Command{
	Use:   "resume <schedule-id>",
	Short: "Lift an exemption and reschedule",
	Long: `Return an exempt schedule to SCHEDULED. The deadline window is
recomputed from the schedule's rule against the reference date.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ResumeScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		scheduleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule id: %w", err)
		}

		reference := time.Now().UTC()
		if resumeReference != "" {
			reference, err = time.Parse("2006-01-02", resumeReference)
			if err != nil {
				return fmt.Errorf("invalid reference date format (use YYYY-MM-DD): %w", err)
			}
		}

		s, err := app.ResumeScheduleHandler.Handle(cmd.Context(), commands.ResumeScheduleCommand{
			ScheduleID:    scheduleID,
			ReferenceDate: reference,
			Actor:         app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to resume schedule: %w", err)
		}

		fmt.Printf("Schedule resumed: window %s to %s\n",
			s.Window().DateFrom.Format("2006-01-02"),
			s.Window().DateTo.Format("2006-01-02"))
		return nil
	},
}

func init() {
	exemptCmd.Flags().StringVar(&exemptReason, "reason", "", "exemption reason (required for *_OTHER)")
	resumeCmd.Flags().StringVar(&resumeReference, "from", "", "reference date for the new window (YYYY-MM-DD, default today)")
}
