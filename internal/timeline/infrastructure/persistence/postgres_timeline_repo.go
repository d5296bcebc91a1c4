package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	sharedDomain "pathway/internal/shared/domain"
	sharedPersistence "pathway/internal/shared/infrastructure/persistence"
	"pathway/internal/timeline/domain"
)

// PostgresTimelineRepository implements domain.Repository using PostgreSQL.
type PostgresTimelineRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTimelineRepository(pool *pgxpool.Pool) *PostgresTimelineRepository {
	return &PostgresTimelineRepository{pool: pool}
}

// Append writes timeline events. The table is append-only.
func (r *PostgresTimelineRepository) Append(ctx context.Context, events ...*domain.Event) error {
	query := `
		INSERT INTO timeline_events (
			id, aggregate_id, aggregate_type, event_type, prison_number, prison_id,
			context, correlation_id, actor, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	for _, event := range events {
		contextJSON, err := json.Marshal(event.Context())
		if err != nil {
			return err
		}
		_, err = exec.Exec(ctx, query,
			event.EventID(),
			event.AggregateID(),
			event.AggregateType(),
			string(event.EventType()),
			event.PrisonNumber(),
			event.PrisonID(),
			contextJSON,
			event.Metadata().CorrelationID,
			event.Metadata().Actor,
			event.OccurredAt(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByPrisonNumber retrieves the prisoner's timeline, newest first.
func (r *PostgresTimelineRepository) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*domain.Event, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, prison_number, prison_id,
		       context, correlation_id, actor, occurred_at
		FROM timeline_events
		WHERE prison_number = $1
		ORDER BY occurred_at DESC
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, prisonNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var (
			id, aggregateID  uuid.UUID
			aggregateType    string
			eventTypeStr     string
			number, prisonID string
			contextJSON      []byte
			correlationID    uuid.UUID
			actor            string
			occurredAt       time.Time
		)
		err := rows.Scan(
			&id,
			&aggregateID,
			&aggregateType,
			&eventTypeStr,
			&number,
			&prisonID,
			&contextJSON,
			&correlationID,
			&actor,
			&occurredAt,
		)
		if err != nil {
			return nil, err
		}

		eventType, err := domain.ParseEventType(eventTypeStr)
		if err != nil {
			return nil, err
		}
		var eventContext map[string]string
		if err := json.Unmarshal(contextJSON, &eventContext); err != nil {
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
