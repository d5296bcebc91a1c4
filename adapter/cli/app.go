package cli

import (
	planCommands "pathway/internal/plan/application/commands"
	planQueries "pathway/internal/plan/application/queries"
	scheduleCommands "pathway/internal/schedule/application/commands"
	scheduleQueries "pathway/internal/schedule/application/queries"
	timelineQueries "pathway/internal/timeline/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
	// Goal handlers
	CreateGoalHandler     *planCommands.CreateGoalHandler
	UpdateGoalHandler     *planCommands.UpdateGoalHandler
	CompleteGoalHandler   *planCommands.CompleteGoalHandler
	ArchiveGoalHandler    *planCommands.ArchiveGoalHandler
	ReactivateGoalHandler *planCommands.ReactivateGoalHandler
	GetGoalHandler        *planQueries.GetGoalHandler
	ListGoalsHandler      *planQueries.ListGoalsHandler

	// Schedule handlers
	CreateScheduleHandler   *scheduleCommands.CreateScheduleHandler
	ExemptScheduleHandler   *scheduleCommands.ExemptScheduleHandler
	ResumeScheduleHandler   *scheduleCommands.ResumeScheduleHandler
	CompleteScheduleHandler *scheduleCommands.CompleteScheduleHandler
	GetScheduleHandler      *scheduleQueries.GetScheduleHandler

	// Timeline handlers
	ListTimelineHandler *timelineQueries.ListTimelineHandler

	// Actor recorded against every mutation made from this CLI session.
	Actor string
}

var appInstance *App

// SetApp sets the CLI application instance.
func SetApp(app *App) {
	appInstance = app
}

// GetApp returns the CLI application instance.
func GetApp() *App {
	return appInstance
}
