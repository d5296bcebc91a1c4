package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pathway/adapter/cli"
	cliGoal "pathway/adapter/cli/goal"
	cliSchedule "pathway/adapter/cli/schedule"
	cliTimeline "pathway/adapter/cli/timeline"
	"pathway/internal/app"
	"pathway/pkg/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Drain staged events in the background while the command runs. The
	// dedicated worker does this in server deployments; for the local
	// single-officer mode this is the only relay.
	if cfg.OutboxProcessorEnabled {
		processor := container.NewOutboxProcessor()
		processor.Start(ctx)
		defer processor.Stop()
	}

	cli.SetApp(&cli.App{
		CreateGoalHandler:     container.CreateGoal,
		UpdateGoalHandler:     container.UpdateGoal,
		CompleteGoalHandler:   container.CompleteGoal,
		ArchiveGoalHandler:    container.ArchiveGoal,
		ReactivateGoalHandler: container.ReactivateGoal,
		GetGoalHandler:        container.GetGoal,
		ListGoalsHandler:      container.ListGoals,

		CreateScheduleHandler:   container.CreateSchedule,
		ExemptScheduleHandler:   container.ExemptSchedule,
		ResumeScheduleHandler:   container.ResumeSchedule,
		CompleteScheduleHandler: container.CompleteSchedule,
		GetScheduleHandler:      container.GetSchedule,

		ListTimelineHandler: container.ListTimeline,

		Actor: cfg.Actor,
	})

	cli.AddCommand(cliGoal.Cmd)
	cli.AddCommand(cliSchedule.Cmd)
	cli.AddCommand(cliTimeline.Cmd)

	cli.Execute()
}
