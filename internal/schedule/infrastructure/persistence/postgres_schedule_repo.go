package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pathway/internal/schedule/domain"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
)

// PostgresScheduleRepository implements domain.Repository using PostgreSQL.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{pool: pool}
}

// Save upserts the schedule.
func (r *PostgresScheduleRepository) Save(ctx context.Context, s *domain.Schedule) error {
	query := `
		INSERT INTO schedules (
			id, schedule_type, prison_number, prison_id, rule, date_from, date_to,
			status, exemption_reason, conducted_by, conducted_at, updated_by,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			rule = EXCLUDED.rule,
			date_from = EXCLUDED.date_from,
			date_to = EXCLUDED.date_to,
			status = EXCLUDED.status,
			exemption_reason = EXCLUDED.exemption_reason,
			conducted_by = EXCLUDED.conducted_by,
			conducted_at = EXCLUDED.conducted_at,
			updated_by = EXCLUDED.updated_by,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		s.ID(),
		string(s.Type()),
		s.PrisonNumber(),
		s.PrisonID(),
		string(s.Rule()),
		s.Window().DateFrom,
		s.Window().DateTo,
		string(s.Status()),
		s.ExemptionReason(),
		s.ConductedBy(),
		s.ConductedAt(),
		s.UpdatedBy(),
		s.Version(),
		s.CreatedAt(),
		s.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a schedule by its ID.
func (r *PostgresScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	query := scheduleSelect + ` WHERE id = $1`

	exec := sharedPersistence.Executor(ctx, r.pool)
	s, err := scanScheduleRow(exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

// FindActive retrieves the prisoner's non-completed schedule of the given
// type, if any.
func (r *PostgresScheduleRepository) FindActive(ctx context.Context, prisonNumber string, scheduleType domain.Type) (*domain.Schedule, error) {
	query := scheduleSelect + `
		WHERE prison_number = $1 AND schedule_type = $2 AND status != $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	s, err := scanScheduleRow(exec.QueryRow(ctx, query, prisonNumber, string(scheduleType), string(domain.StatusCompleted)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

// AppendHistory writes one history snapshot.
func (r *PostgresScheduleRepository) AppendHistory(ctx context.Context, h *domain.History) error {
	query := `
		INSERT INTO schedule_history (
			id, schedule_id, version, prison_number, status, rule, date_from, date_to,
			exemption_reason, conducted_by, conducted_at, updated_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		h.ID,
		h.ScheduleID,
		h.Version,
		h.PrisonNumber,
		string(h.Status),
		string(h.Rule),
		h.Window.DateFrom,
		h.Window.DateTo,
		h.ExemptionReason,
		h.ConductedBy,
		h.ConductedAt,
		h.UpdatedBy,
		h.UpdatedAt,
	)
	return err
}

// HistoryByScheduleID retrieves the full audit trail for a schedule, oldest
// version first.
func (r *PostgresScheduleRepository) HistoryByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*domain.History, error) {
	query := `
		SELECT id, schedule_id, version, prison_number, status, rule, date_from, date_to,
		       exemption_reason, conducted_by, conducted_at, updated_by, updated_at
		FROM schedule_history
		WHERE schedule_id = $1
		ORDER BY version
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*domain.History
	for rows.Next() {
		var (
			h                  domain.History
			statusStr, ruleStr string
		)
		err := rows.Scan(
			&h.ID,
			&h.ScheduleID,
			&h.Version,
			&h.PrisonNumber,
			&statusStr,
			&ruleStr,
			&h.Window.DateFrom,
			&h.Window.DateTo,
			&h.ExemptionReason,
			&h.ConductedBy,
			&h.ConductedAt,
			&h.UpdatedBy,
			&h.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		status, err := domain.ParseStatus(statusStr)
		if err != nil {
			return nil, err
		}
		h.Status = status
		h.Rule = domain.CalculationRule(ruleStr)
		history = append(history, &h)
	}
	return history, rows.Err()
}

const scheduleSelect = `
	SELECT id, schedule_type, prison_number, prison_id, rule, date_from, date_to,
	       status, exemption_reason, conducted_by, conducted_at, updated_by,
	       version, created_at, updated_at
	FROM schedules
`

func scanScheduleRow(row pgx.Row) (*domain.Schedule, error) {
	var (
		id                     uuid.UUID
		typeStr, statusStr     string
		prisonNumber, prisonID string
		ruleStr                string
		dateFrom, dateTo       time.Time
		exemptionReason        *string
		conductedBy            *string
		conductedAt            *time.Time
		updatedBy              string
		version                int
		createdAt, updatedAt   time.Time
	)
	err := row.Scan(
		&id,
		&typeStr,
		&prisonNumber,
		&prisonID,
		&ruleStr,
		&dateFrom,
		&dateTo,
		&statusStr,
		&exemptionReason,
		&conductedBy,
		&conductedAt,
		&updatedBy,
		&version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	scheduleType, err := domain.ParseType(typeStr)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSchedule(
		id,
		scheduleType,
		prisonNumber,
		prisonID,
		domain.CalculationRule(ruleStr),
		domain.Window{DateFrom: dateFrom, DateTo: dateTo},
		status,
		exemptionReason,
		conductedBy,
		conductedAt,
		updatedBy,
		version,
		createdAt,
		updatedAt,
	), nil
}
