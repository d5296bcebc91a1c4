package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pathway/internal/plan/domain/goal"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
)

// ErrOptimisticLock is returned when a concurrent writer updated the goal
// between read and save.
var ErrOptimisticLock = errors.New("optimistic locking conflict")

// PostgresGoalRepository implements goal.Repository using PostgreSQL.
type PostgresGoalRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGoalRepository(pool *pgxpool.Pool) *PostgresGoalRepository {
	return &PostgresGoalRepository{pool: pool}
}

// Save upserts the goal and replaces its steps. The version check rejects
// writes racing a concurrent mutation.
func (r *PostgresGoalRepository) Save(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (
			id, prison_number, title, area, notes, target_date, status,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			area = EXCLUDED.area,
			notes = EXCLUDED.notes,
			target_date = EXCLUDED.target_date,
			status = EXCLUDED.status,
			version = goals.version + 1,
			updated_at = NOW()
		WHERE goals.version = $8
		RETURNING version
	`

	exec := sharedPersistence.Executor(ctx, r.pool)

	var newVersion int
	err := exec.QueryRow(ctx, query,
		g.ID(),
		g.PrisonNumber(),
		g.Title(),
		g.Area(),
		g.Notes(),
		g.TargetDate(),
		string(g.Status()),
		g.Version(),
		g.CreatedAt(),
		g.UpdatedAt(),
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOptimisticLock
		}
		return err
	}

	if _, err := exec.Exec(ctx, `DELETE FROM goal_steps WHERE goal_id = $1`, g.ID()); err != nil {
		return err
	}
	for _, step := range g.Steps() {
		_, err := exec.Exec(ctx, `
			INSERT INTO goal_steps (id, goal_id, title, status, sequence, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			step.ID(),
			g.ID(),
			step.Title(),
			string(step.Status()),
			step.Sequence(),
			step.CreatedAt(),
			step.UpdatedAt(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a goal with its steps in sequence order.
func (r *PostgresGoalRepository) FindByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	query := `
		SELECT id, prison_number, title, area, notes, target_date, status,
		       version, created_at, updated_at
		FROM goals
		WHERE id = $1
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	g, err := scanGoalRow(exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goal.ErrGoalNotFound
		}
		return nil, err
	}

	steps, err := r.loadSteps(ctx, exec, g.id)
	if err != nil {
		return nil, err
	}
	return rehydrateGoal(g, steps)
}

// FindByPrisonNumber retrieves all goals for a prisoner, newest first.
func (r *PostgresGoalRepository) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*goal.Goal, error) {
	query := `
		SELECT id, prison_number, title, area, notes, target_date, status,
		       version, created_at, updated_at
		FROM goals
		WHERE prison_number = $1
		ORDER BY created_at DESC
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, prisonNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goalRows []goalRow
	for rows.Next() {
		g, err := scanGoalRow(rows)
		if err != nil {
			return nil, err
		}
		goalRows = append(goalRows, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	goals := make([]*goal.Goal, 0, len(goalRows))
	for _, g := range goalRows {
		steps, err := r.loadSteps(ctx, exec, g.id)
		if err != nil {
			return nil, err
		}
		rehydrated, err := rehydrateGoal(g, steps)
		if err != nil {
			return nil, err
		}
		goals = append(goals, rehydrated)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) loadSteps(ctx context.Context, exec sharedPersistence.DBExecutor, goalID uuid.UUID) ([]*goal.Step, error) {
	query := `
		SELECT id, title, status, sequence, created_at, updated_at
		FROM goal_steps
		WHERE goal_id = $1
		ORDER BY sequence
	`

	rows, err := exec.Query(ctx, query, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*goal.Step
	for rows.Next() {
		var (
			id                   uuid.UUID
			title, status        string
			sequence             int
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &title, &status, &sequence, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		stepStatus, err := goal.ParseStepStatus(status)
		if err != nil {
			return nil, err
		}
		steps = append(steps, goal.RehydrateStep(id, title, stepStatus, sequence, createdAt, updatedAt))
	}
	return steps, rows.Err()
}

type goalRow struct {
	id                   uuid.UUID
	prisonNumber         string
	title, area, notes   string
	targetDate           *time.Time
	status               string
	version              int
	createdAt, updatedAt time.Time
}

func scanGoalRow(row pgx.Row) (goalRow, error) {
	var g goalRow
	err := row.Scan(
		&g.id,
		&g.prisonNumber,
		&g.title,
		&g.area,
		&g.notes,
		&g.targetDate,
		&g.status,
		&g.version,
		&g.createdAt,
		&g.updatedAt,
	)
	return g, err
}

func rehydrateGoal(g goalRow, steps []*goal.Step) (*goal.Goal, error) {
	status, err := goal.ParseStatus(g.status)
	if err != nil {
		return nil, err
	}
	return goal.RehydrateGoal(
		g.id,
		g.prisonNumber,
		g.title,
		g.area,
		g.notes,
		g.targetDate,
		status,
		steps,
		g.version,
		g.createdAt,
		g.updatedAt,
	), nil
}
