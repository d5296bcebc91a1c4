package timeline

import (
	"fmt"

	"pathway/adapter/cli"
	"pathway/internal/timeline/application/queries"

	"github.com/spf13/cobra"
)

var (
	listEventType string
	listLimit     int
)

// Cmd is the timeline command group
var Cmd = &cobra.Command{
	Use:   "timeline <prison-number>",
	Short: "Show a prisoner's timeline, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTimelineHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		dtos, err := app.ListTimelineHandler.Handle(cmd.Context(), queries.ListTimelineQuery{
			PrisonNumber: args[0],
			EventType:    listEventType,
			Limit:        listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list timeline: %w", err)
		}

		if len(dtos) == 0 {
			fmt.Println("No timeline events found.")
			return nil
		}

		for _, dto := range dtos {
			fmt.Printf("%s  %-26s  by %s\n", dto.OccurredAt.Format("2006-01-02 15:04"), dto.EventType, dto.Actor)
			if title, ok := dto.Context["goal_title"]; ok {
				fmt.Printf("  goal: %s\n", title)
			}
			if title, ok := dto.Context["step_title"]; ok {
				fmt.Printf("  step: %s\n", title)
			}
			if from, ok := dto.Context["new_date_from"]; ok {
				fmt.Printf("  window: %s to %s\n", from, dto.Context["new_date_to"])
			}
		}
		return nil
	},
}

func init() {
	Cmd.Flags().StringVar(&listEventType, "type", "", "filter by event type")
	Cmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of events (0 = all)")
}
