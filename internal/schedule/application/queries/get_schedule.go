package queries

import (
	"context"
	"time"

	"pathway/internal/schedule/domain"

	"github.com/google/uuid"
)

// ScheduleDTO is a data transfer object for schedules.
type ScheduleDTO struct {
	ID              uuid.UUID
	Type            string
	PrisonNumber    string
	PrisonID        string
	Rule            string
	DateFrom        time.Time
	DateTo          time.Time
	Status          string
	ExemptionReason *string
	ConductedBy     *string
	ConductedAt     *time.Time
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HistoryDTO is a data transfer object for one history snapshot.
type HistoryDTO struct {
	Version         int
	Status          string
	Rule            string
	DateFrom        time.Time
	DateTo          time.Time
	ExemptionReason *string
	UpdatedBy       string
	UpdatedAt       time.Time
}

// GetScheduleQuery contains the parameters for fetching a prisoner's
// in-flight schedule together with its audit trail.
type GetScheduleQuery struct {
	PrisonNumber   string
	Type           string
	IncludeHistory bool
}

// GetScheduleHandler handles the GetScheduleQuery.
type GetScheduleHandler struct {
	scheduleRepo domain.Repository
}

// NewGetScheduleHandler creates a new GetScheduleHandler.
func NewGetScheduleHandler(scheduleRepo domain.Repository) *GetScheduleHandler {
	return &GetScheduleHandler{scheduleRepo: scheduleRepo}
}

// Handle executes the GetScheduleQuery.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) (*ScheduleDTO, []HistoryDTO, error) {
	scheduleType, err := domain.ParseType(query.Type)
	if err != nil {
		return nil, nil, err
	}

	s, err := h.scheduleRepo.FindActive(ctx, query.PrisonNumber, scheduleType)
	if err != nil {
		return nil, nil, err
	}

	dto := toScheduleDTO(s)
	if !query.IncludeHistory {
		return &dto, nil, nil
	}

	history, err := h.scheduleRepo.HistoryByScheduleID(ctx, s.ID())
	if err != nil {
		return nil, nil, err
	}
	historyDTOs := make([]HistoryDTO, 0, len(history))
	for _, row := range history {
		historyDTOs = append(historyDTOs, HistoryDTO{
			Version:         row.Version,
			Status:          string(row.Status),
			Rule:            string(row.Rule),
			DateFrom:        row.Window.DateFrom,
			DateTo:          row.Window.DateTo,
			ExemptionReason: row.ExemptionReason,
			UpdatedBy:       row.UpdatedBy,
			UpdatedAt:       row.UpdatedAt,
		})
	}
	return &dto, historyDTOs, nil
}

func toScheduleDTO(s *domain.Schedule) ScheduleDTO {
	return ScheduleDTO{
		ID:              s.ID(),
		Type:            string(s.Type()),
		PrisonNumber:    s.PrisonNumber(),
		PrisonID:        s.PrisonID(),
		Rule:            string(s.Rule()),
		DateFrom:        s.Window().DateFrom,
		DateTo:          s.Window().DateTo,
		Status:          string(s.Status()),
		ExemptionReason: s.ExemptionReason(),
		ConductedBy:     s.ConductedBy(),
		ConductedAt:     s.ConductedAt(),
		Version:         s.Version(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}
