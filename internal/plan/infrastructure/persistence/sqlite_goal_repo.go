package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pathway/internal/plan/domain/goal"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
)

// SQLiteGoalRepository implements goal.Repository using SQLite. Timestamps
// are stored as RFC3339 text, target dates as date-only text.
type SQLiteGoalRepository struct {
	db *sql.DB
}

func NewSQLiteGoalRepository(db *sql.DB) *SQLiteGoalRepository {
	return &SQLiteGoalRepository{db: db}
}

// Save upserts the goal and replaces its steps.
func (r *SQLiteGoalRepository) Save(ctx context.Context, g *goal.Goal) error {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO goals (
			id, prison_number, title, area, notes, target_date, status,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			area = excluded.area,
			notes = excluded.notes,
			target_date = excluded.target_date,
			status = excluded.status,
			version = goals.version + 1,
			updated_at = excluded.updated_at
	`,
		g.ID().String(),
		g.PrisonNumber(),
		g.Title(),
		g.Area(),
		g.Notes(),
		formatDate(g.TargetDate()),
		string(g.Status()),
		g.Version(),
		g.CreatedAt().UTC().Format(time.RFC3339Nano),
		g.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM goal_steps WHERE goal_id = ?`, g.ID().String()); err != nil {
		return err
	}
	for _, step := range g.Steps() {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO goal_steps (id, goal_id, title, status, sequence, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			step.ID().String(),
			g.ID().String(),
			step.Title(),
			string(step.Status()),
			step.Sequence(),
			step.CreatedAt().UTC().Format(time.RFC3339Nano),
			step.UpdatedAt().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a goal with its steps in sequence order.
func (r *SQLiteGoalRepository) FindByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, prison_number, title, area, notes, target_date, status,
		       version, created_at, updated_at
		FROM goals
		WHERE id = ?
	`, id.String())

	g, err := scanSQLiteGoalRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
func (r *SQLiteGoalRepository) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*goal.Goal, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, prison_number, title, area, notes, target_date, status,
		       version, created_at, updated_at
		FROM goals
		WHERE prison_number = ?
		ORDER BY created_at DESC
	`, prisonNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goalRows []goalRow
	for rows.Next() {
		g, err := scanSQLiteGoalRow(rows.Scan)
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

func (r *SQLiteGoalRepository) loadSteps(ctx context.Context, exec sharedPersistence.SQLExecutor, goalID uuid.UUID) ([]*goal.Step, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, title, status, sequence, created_at, updated_at
		FROM goal_steps
		WHERE goal_id = ?
		ORDER BY sequence
	`, goalID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*goal.Step
	for rows.Next() {
		var (
			idStr, title, status string
			sequence             int
			createdAt, updatedAt string
		)
		if err := rows.Scan(&idStr, &title, &status, &sequence, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		stepStatus, err := goal.ParseStepStatus(status)
		if err != nil {
			return nil, err
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		updated, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, err
		}
		steps = append(steps, goal.RehydrateStep(id, title, stepStatus, sequence, created, updated))
	}
	return steps, rows.Err()
}

func scanSQLiteGoalRow(scan func(dest ...any) error) (goalRow, error) {
	var (
		g                    goalRow
		idStr, statusStr     string
		targetDate           sql.NullString
		createdAt, updatedAt string
	)
	err := scan(
		&idStr,
		&g.prisonNumber,
		&g.title,
		&g.area,
		&g.notes,
		&targetDate,
		&statusStr,
		&g.version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return goalRow{}, err
	}

	if g.id, err = uuid.Parse(idStr); err != nil {
		return goalRow{}, err
	}
	g.status = statusStr
	if targetDate.Valid {
		t, err := time.Parse("2006-01-02", targetDate.String)
		if err != nil {
			return goalRow{}, err
		}
		g.targetDate = &t
	}
	if g.createdAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return goalRow{}, err
	}
	if g.updatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return goalRow{}, err
	}
	return g, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}
