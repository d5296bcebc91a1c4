package schedule

import (
	"fmt"
	"time"

	"pathway/adapter/cli"
	"pathway/internal/schedule/application/commands"

	"github.com/spf13/cobra"
)

var (
	createPrisonID      string
	createAdmissionRule string
	createAdmissionDate string
	createReleaseDate   string
	createSentenceType  string
)

var createCmd = &cobra.Command{
	Use:   "create <prison-number> <type>",
	Short: "Open a deadline schedule for an induction or review",
	Long: `Open a deadline schedule. Type is INDUCTION or REVIEW.

Inductions take an admission rule; reviews derive their rule from the
prisoner's sentence type and release date.

Examples:
  pathway schedule create A1234BC INDUCTION --prison MDI \
      --rule NEW_PRISON_ADMISSION --admitted 2025-04-07
  pathway schedule create A1234BC REVIEW --prison MDI \
      --admitted 2025-04-07 --sentence SENTENCED --release 2027-01-15`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		admitted, err := time.Parse("2006-01-02", createAdmissionDate)
		if err != nil {
			return fmt.Errorf("invalid admission date format (use YYYY-MM-DD): %w", err)
		}

		createSchedule := commands.CreateScheduleCommand{
			Type:          args[1],
			PrisonNumber:  args[0],
			PrisonID:      createPrisonID,
			AdmissionRule: createAdmissionRule,
			AdmissionDate: admitted,
			SentenceType:  createSentenceType,
			Actor:         app.Actor,
		}
		if createReleaseDate != "" {
			release, err := time.Parse("2006-01-02", createReleaseDate)
			if err != nil {
				return fmt.Errorf("invalid release date format (use YYYY-MM-DD): %w", err)
			}
			createSchedule.ReleaseDate = &release
		}

		s, err := app.CreateScheduleHandler.Handle(cmd.Context(), createSchedule)
		if err != nil {
			return fmt.Errorf("failed to create schedule: %w", err)
		}

		fmt.Printf("Schedule created: %s\n", s.ID())
		fmt.Printf("  rule: %s\n", s.Rule())
		fmt.Printf("  window: %s to %s\n",
			s.Window().DateFrom.Format("2006-01-02"),
			s.Window().DateTo.Format("2006-01-02"))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createPrisonID, "prison", "", "prison identifier")
	createCmd.Flags().StringVar(&createAdmissionRule, "rule", "", "admission rule for inductions (NEW_PRISON_ADMISSION, PRISONER_READMISSION, PRISONER_TRANSFER)")
	createCmd.Flags().StringVar(&createAdmissionDate, "admitted", "", "admission date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&createSentenceType, "sentence", "", "sentence type for reviews (SENTENCED, RECALL, INDETERMINATE, ...)")
	createCmd.Flags().StringVar(&createReleaseDate, "release", "", "release date for reviews (YYYY-MM-DD)")
	_ = createCmd.MarkFlagRequired("admitted")
}
