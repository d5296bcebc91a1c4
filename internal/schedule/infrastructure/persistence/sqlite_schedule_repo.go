package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pathway/internal/schedule/domain"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
)

// SQLiteScheduleRepository implements domain.Repository using SQLite.
// Window dates are stored as date-only text, timestamps as RFC3339 text.
type SQLiteScheduleRepository struct {
	db *sql.DB
}

func NewSQLiteScheduleRepository(db *sql.DB) *SQLiteScheduleRepository {
	return &SQLiteScheduleRepository{db: db}
}

const sqliteScheduleSelect = `
	SELECT id, schedule_type, prison_number, prison_id, rule, date_from, date_to,
	       status, exemption_reason, conducted_by, conducted_at, updated_by,
	       version, created_at, updated_at
	FROM schedules
`

// Save upserts the schedule.
func (r *SQLiteScheduleRepository) Save(ctx context.Context, s *domain.Schedule) error {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO schedules (
			id, schedule_type, prison_number, prison_id, rule, date_from, date_to,
			status, exemption_reason, conducted_by, conducted_at, updated_by,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			rule = excluded.rule,
			date_from = excluded.date_from,
			date_to = excluded.date_to,
			status = excluded.status,
			exemption_reason = excluded.exemption_reason,
			conducted_by = excluded.conducted_by,
			conducted_at = excluded.conducted_at,
			updated_by = excluded.updated_by,
			version = excluded.version,
			updated_at = excluded.updated_at
	`,
		s.ID().String(),
		string(s.Type()),
		s.PrisonNumber(),
		s.PrisonID(),
		string(s.Rule()),
		s.Window().DateFrom.Format("2006-01-02"),
		s.Window().DateTo.Format("2006-01-02"),
		string(s.Status()),
		s.ExemptionReason(),
		s.ConductedBy(),
		formatTimePtr(s.ConductedAt()),
		s.UpdatedBy(),
		s.Version(),
		s.CreatedAt().UTC().Format(time.RFC3339Nano),
		s.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// FindByID retrieves a schedule by its ID.
func (r *SQLiteScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, sqliteScheduleSelect+` WHERE id = ?`, id.String())

	s, err := scanSQLiteSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

// FindActive retrieves the prisoner's non-completed schedule of the given
// type, if any.
func (r *SQLiteScheduleRepository) FindActive(ctx context.Context, prisonNumber string, scheduleType domain.Type) (*domain.Schedule, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, sqliteScheduleSelect+`
		WHERE prison_number = ? AND schedule_type = ? AND status != ?
		ORDER BY created_at DESC
		LIMIT 1
	`, prisonNumber, string(scheduleType), string(domain.StatusCompleted))

	s, err := scanSQLiteSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

// AppendHistory writes one history snapshot.
func (r *SQLiteScheduleRepository) AppendHistory(ctx context.Context, h *domain.History) error {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO schedule_history (
			id, schedule_id, version, prison_number, status, rule, date_from, date_to,
			exemption_reason, conducted_by, conducted_at, updated_by, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.ID.String(),
		h.ScheduleID.String(),
		h.Version,
		h.PrisonNumber,
		string(h.Status),
		string(h.Rule),
		h.Window.DateFrom.Format("2006-01-02"),
		h.Window.DateTo.Format("2006-01-02"),
		h.ExemptionReason,
		h.ConductedBy,
		formatTimePtr(h.ConductedAt),
		h.UpdatedBy,
		h.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// HistoryByScheduleID retrieves the full audit trail for a schedule, oldest
// version first.
func (r *SQLiteScheduleRepository) HistoryByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*domain.History, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, schedule_id, version, prison_number, status, rule, date_from, date_to,
		       exemption_reason, conducted_by, conducted_at, updated_by, updated_at
		FROM schedule_history
		WHERE schedule_id = ?
		ORDER BY version
	`, scheduleID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*domain.History
	for rows.Next() {
		var (
			h                      domain.History
			idStr, scheduleIDStr   string
			statusStr, ruleStr     string
			dateFromStr, dateToStr string
			conductedAt            sql.NullString
			updatedAtStr           string
		)
		err := rows.Scan(
			&idStr,
			&scheduleIDStr,
			&h.Version,
			&h.PrisonNumber,
			&statusStr,
			&ruleStr,
			&dateFromStr,
			&dateToStr,
			&h.ExemptionReason,
			&h.ConductedBy,
			&conductedAt,
			&h.UpdatedBy,
			&updatedAtStr,
		)
		if err != nil {
			return nil, err
		}

		if h.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		if h.ScheduleID, err = uuid.Parse(scheduleIDStr); err != nil {
			return nil, err
		}
		if h.Status, err = domain.ParseStatus(statusStr); err != nil {
			return nil, err
		}
		h.Rule = domain.CalculationRule(ruleStr)
		if h.Window.DateFrom, err = time.Parse("2006-01-02", dateFromStr); err != nil {
			return nil, err
		}
		if h.Window.DateTo, err = time.Parse("2006-01-02", dateToStr); err != nil {
			return nil, err
		}
		if h.ConductedAt, err = parseTimePtr(conductedAt); err != nil {
			return nil, err
		}
		if h.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
			return nil, err
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}

func scanSQLiteSchedule(scan func(dest ...any) error) (*domain.Schedule, error) {
	var (
		idStr, typeStr, statusStr  string
		prisonNumber, prisonID     string
		ruleStr                    string
		dateFromStr, dateToStr     string
		exemptionReason            *string
		conductedBy                *string
		conductedAt                sql.NullString
		updatedBy                  string
		version                    int
		createdAtStr, updatedAtStr string
	)
	err := scan(
		&idStr,
		&typeStr,
		&prisonNumber,
		&prisonID,
		&ruleStr,
		&dateFromStr,
		&dateToStr,
		&statusStr,
		&exemptionReason,
		&conductedBy,
		&conductedAt,
		&updatedBy,
		&version,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
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
	dateFrom, err := time.Parse("2006-01-02", dateFromStr)
	if err != nil {
		return nil, err
	}
	dateTo, err := time.Parse("2006-01-02", dateToStr)
	if err != nil {
		return nil, err
	}
	conducted, err := parseTimePtr(conductedAt)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updatedAtStr)
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
		conducted,
		updatedBy,
		version,
		createdAt,
		updatedAt,
	), nil
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
