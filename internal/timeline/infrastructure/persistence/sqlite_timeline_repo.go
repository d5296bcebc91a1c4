package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	sharedDomain "pathway/internal/shared/domain"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
	"pathway/internal/timeline/domain"
)

// SQLiteTimelineRepository implements domain.Repository using SQLite.
type SQLiteTimelineRepository struct {
	db *sql.DB
}

func NewSQLiteTimelineRepository(db *sql.DB) *SQLiteTimelineRepository {
	return &SQLiteTimelineRepository{db: db}
}

// Append writes timeline events. The table is append-only.
func (r *SQLiteTimelineRepository) Append(ctx context.Context, events ...*domain.Event) error {
	query := `
		INSERT INTO timeline_events (
			id, aggregate_id, aggregate_type, event_type, prison_number, prison_id,
			context, correlation_id, actor, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	for _, event := range events {
		contextJSON, err := json.Marshal(event.Context())
		if err != nil {
			return err
		}
		_, err = exec.ExecContext(ctx, query,
			event.EventID().String(),
			event.AggregateID().String(),
			event.AggregateType(),
			string(event.EventType()),
			event.PrisonNumber(),
			event.PrisonID(),
			string(contextJSON),
			event.Metadata().CorrelationID.String(),
			event.Metadata().Actor,
			event.OccurredAt().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByPrisonNumber retrieves the prisoner's timeline, newest first.
func (r *SQLiteTimelineRepository) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*domain.Event, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, prison_number, prison_id,
		       context, correlation_id, actor, occurred_at
		FROM timeline_events
		WHERE prison_number = ?
		ORDER BY occurred_at DESC
	`

	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, prisonNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var (
			idStr, aggregateIDStr string
			aggregateType         string
			eventTypeStr          string
			number, prisonID      string
			contextJSON           string
			correlationIDStr      string
			actor                 string
			occurredAtStr         string
		)
		err := rows.Scan(
			&idStr,
			&aggregateIDStr,
			&aggregateType,
			&eventTypeStr,
			&number,
			&prisonID,
			&contextJSON,
			&correlationIDStr,
			&actor,
			&occurredAtStr,
		)
		if err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		aggregateID, err := uuid.Parse(aggregateIDStr)
		if err != nil {
			return nil, err
		}
		correlationID, err := uuid.Parse(correlationIDStr)
		if err != nil {
			return nil, err
		}
		eventType, err := domain.ParseEventType(eventTypeStr)
		if err != nil {
			return nil, err
		}
		occurredAt, err := time.Parse(time.RFC3339Nano, occurredAtStr)
		if err != nil {
			return nil, err
		}
		var eventContext map[string]string
		if err := json.Unmarshal([]byte(contextJSON), &eventContext); err != nil {
			return nil, err
		}

		events = append(events, domain.RehydrateEvent(
			id, aggregateID, aggregateType, eventType, number, prisonID,
			eventContext, occurredAt,
			sharedDomain.EventMetadata{CorrelationID: correlationID, Actor: actor},
		))
	}
	return events, rows.Err()
}
