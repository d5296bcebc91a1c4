// Package app wires configuration, storage, messaging and handlers into one
// runtime container shared by the CLI and the worker.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	planCommands "pathway/internal/plan/application/commands"
	planQueries "pathway/internal/plan/application/queries"
	"pathway/internal/plan/domain/goal"
	planPersistence "pathway/internal/plan/infrastructure/persistence"
	scheduleCommands "pathway/internal/schedule/application/commands"
	scheduleQueries "pathway/internal/schedule/application/queries"
	scheduleDomain "pathway/internal/schedule/domain"
	schedulePersistence "pathway/internal/schedule/infrastructure/persistence"
	sharedApplication "pathway/internal/shared/application"
	"pathway/internal/shared/infrastructure/database"
	"pathway/internal/shared/infrastructure/eventbus"
	"pathway/internal/shared/infrastructure/lock"
	"pathway/internal/shared/infrastructure/outbox"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
	timelineQueries "pathway/internal/timeline/application/queries"
	timelineDomain "pathway/internal/timeline/domain"
	timelinePersistence "pathway/internal/timeline/infrastructure/persistence"
	"pathway/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds the application's wired dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	pool        *pgxpool.Pool
	db          *sql.DB
	redisClient *redis.Client
	publisher   eventbus.Publisher

	GoalRepo     goal.Repository
	ScheduleRepo scheduleDomain.Repository
	TimelineRepo timelineDomain.Repository
	OutboxRepo   outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork
	Locker       lock.Locker

	CreateGoal     *planCommands.CreateGoalHandler
	UpdateGoal     *planCommands.UpdateGoalHandler
	CompleteGoal   *planCommands.CompleteGoalHandler
	ArchiveGoal    *planCommands.ArchiveGoalHandler
	ReactivateGoal *planCommands.ReactivateGoalHandler
	GetGoal        *planQueries.GetGoalHandler
	ListGoals      *planQueries.ListGoalsHandler

	CreateSchedule   *scheduleCommands.CreateScheduleHandler
	ExemptSchedule   *scheduleCommands.ExemptScheduleHandler
	ResumeSchedule   *scheduleCommands.ResumeScheduleHandler
	CompleteSchedule *scheduleCommands.CompleteScheduleHandler
	GetSchedule      *scheduleQueries.GetScheduleHandler

	ListTimeline *timelineQueries.ListTimelineHandler
}

// NewContainer builds the container for the configured driver. SQLite mode is
// fully local: in-memory lock, no broker connection required.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initStorage(ctx, cfg); err != nil {
		return nil, err
	}
	if err := c.initCoordination(cfg, logger); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers(cfg)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context, cfg *config.Config) error {
	if cfg.UseSQLite() {
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite database: %w", err)
		}
		c.db = db
		c.GoalRepo = planPersistence.NewSQLiteGoalRepository(db)
		c.ScheduleRepo = schedulePersistence.NewSQLiteScheduleRepository(db)
		c.TimelineRepo = timelinePersistence.NewSQLiteTimelineRepository(db)
		c.OutboxRepo = outbox.NewSQLiteRepository(db)
		c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
		return nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	c.pool = pool
	c.GoalRepo = planPersistence.NewPostgresGoalRepository(pool)
	c.ScheduleRepo = schedulePersistence.NewPostgresScheduleRepository(pool)
	c.TimelineRepo = timelinePersistence.NewPostgresTimelineRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
	return nil
}

func (c *Container) initCoordination(cfg *config.Config, logger *slog.Logger) error {
	if cfg.UseSQLite() {
		c.Locker = lock.NewMemoryLocker()
		c.publisher = eventbus.NewNoopPublisher(logger)
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	c.redisClient = redis.NewClient(opts)
	c.Locker = lock.NewRedisLocker(c.redisClient)

	rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	c.publisher = eventbus.NewBreakerPublisher(rabbit, eventbus.DefaultBreakerConfig(), logger)
	return nil
}

func (c *Container) initHandlers(cfg *config.Config) {
	c.CreateGoal = planCommands.NewCreateGoalHandler(c.GoalRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateGoal = planCommands.NewUpdateGoalHandler(c.GoalRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.CompleteGoal = planCommands.NewCompleteGoalHandler(c.GoalRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.ArchiveGoal = planCommands.NewArchiveGoalHandler(c.GoalRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.ReactivateGoal = planCommands.NewReactivateGoalHandler(c.GoalRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.GetGoal = planQueries.NewGetGoalHandler(c.GoalRepo)
	c.ListGoals = planQueries.NewListGoalsHandler(c.GoalRepo)

	c.CreateSchedule = scheduleCommands.NewCreateScheduleHandler(c.ScheduleRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.ExemptSchedule = scheduleCommands.NewExemptScheduleHandler(c.ScheduleRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.ResumeSchedule = scheduleCommands.NewResumeScheduleHandler(c.ScheduleRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.CompleteSchedule = scheduleCommands.NewCompleteScheduleHandler(c.ScheduleRepo, c.TimelineRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.LockTTL)
	c.GetSchedule = scheduleQueries.NewGetScheduleHandler(c.ScheduleRepo)

	c.ListTimeline = timelineQueries.NewListTimelineHandler(c.TimelineRepo)
}

// NewOutboxProcessor builds the relay that drains staged messages to the
// event bus. Unset config values keep the processor defaults; a zero batch
// size or poll interval would stall the relay.
func (c *Container) NewOutboxProcessor() *outbox.Processor {
	cfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		cfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		cfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		cfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	return outbox.NewProcessor(c.OutboxRepo, c.publisher, cfg, c.Logger)
}

// Close releases all connections held by the container.
func (c *Container) Close() error {
	var firstErr error
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			firstErr = err
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
