package commands

import (
	"context"
	"testing"
	"time"

	"pathway/internal/schedule/domain"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStoredSchedule(t *testing.T) *domain.Schedule {
	t.Helper()
	admission := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	s, _, err := domain.NewSchedule(domain.TypeInduction, "A1234BC", "MDI", domain.RuleNewPrisonAdmission, admission, "officer-1")
	require.NoError(t, err)
	return s
}

func TestExemptScheduleHandler_Handle(t *testing.T) {
	t.Run("exempts and records status change with history", func(t *testing.T) {
		s := newStoredSchedule(t)
		scheduleRepo := new(mockScheduleRepo)
		timelineRepo := new(mockTimelineRepo)
		outboxRepo := new(mockOutboxRepo)
		locker := &fakeLocker{}

		scheduleRepo.On("FindByID", mock.Anything, s.ID()).Return(s, nil)
		scheduleRepo.On("Save", mock.Anything, s).Return(nil)
		scheduleRepo.On("AppendHistory", mock.Anything, mock.MatchedBy(func(h *domain.History) bool {
			return h.Version == 2 && h.Status == domain.StatusExemptPrisonerSafetyIssues
		})).Return(nil)
		timelineRepo.On("Append", mock.Anything, mock.MatchedBy(func(events []*timelineDomain.Event) bool {
			if len(events) != 1 || events[0].EventType() != timelineDomain.EventTypeScheduleStatusUpdated {
				return false
			}
			context := events[0].Context()
			return context["old_status"] == string(domain.StatusScheduled) &&
				context["new_status"] == string(domain.StatusExemptPrisonerSafetyIssues)
		})).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].EventType == "timeline.schedule.status_updated"
		})).Return(nil)

		handler := NewExemptScheduleHandler(scheduleRepo, timelineRepo, outboxRepo, &fakeUnitOfWork{}, locker, 30*time.Second)
		updated, err := handler.Handle(context.Background(), ExemptScheduleCommand{
			ScheduleID: s.ID(),
			Status:     string(domain.StatusExemptPrisonerSafetyIssues),
			Actor:      "officer-1",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusExemptPrisonerSafetyIssues, updated.Status())
		assert.Equal(t, []string{"A1234BC"}, locker.keys)
		assert.Equal(t, 1, locker.released)
		scheduleRepo.AssertExpectations(t)
		timelineRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("an uncategorised exemption without a reason is rejected", func(t *testing.T) {
		s := newStoredSchedule(t)
		scheduleRepo := new(mockScheduleRepo)
		uow := &fakeUnitOfWork{}
		scheduleRepo.On("FindByID", mock.Anything, s.ID()).Return(s, nil)

		handler := NewExemptScheduleHandler(scheduleRepo, new(mockTimelineRepo), new(mockOutboxRepo), uow, &fakeLocker{}, 30*time.Second)
		_, err := handler.Handle(context.Background(), ExemptScheduleCommand{
			ScheduleID: s.ID(),
			Status:     string(domain.StatusExemptPrisonOther),
			Actor:      "officer-1",
		})

		var missing *domain.MissingExemptionReasonError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, 1, uow.rollbacks)
		scheduleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a status outside the known set", func(t *testing.T) {
		s := newStoredSchedule(t)
		handler := NewExemptScheduleHandler(new(mockScheduleRepo), new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		_, err := handler.Handle(context.Background(), ExemptScheduleCommand{
			ScheduleID: s.ID(),
			Status:     "EXEMPT_WEATHER",
			Actor:      "officer-1",
		})
		require.Error(t, err)
	})
}

func TestResumeScheduleHandler_Handle(t *testing.T) {
	t.Run("lifts the exemption and recomputes the window", func(t *testing.T) {
		s := newStoredSchedule(t)
		_, err := s.Transition(domain.StatusExemptPrisonerFailedToEngage, nil, time.Time{}, "officer-1")
		require.NoError(t, err)

		scheduleRepo := new(mockScheduleRepo)
		timelineRepo := new(mockTimelineRepo)
		outboxRepo := new(mockOutboxRepo)

		scheduleRepo.On("FindByID", mock.Anything, s.ID()).Return(s, nil)
		scheduleRepo.On("Save", mock.Anything, s).Return(nil)
		scheduleRepo.On("AppendHistory", mock.Anything, mock.MatchedBy(func(h *domain.History) bool {
			return h.Version == 3 && h.Status == domain.StatusScheduled
		})).Return(nil)
		timelineRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		resumeFrom := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		handler := NewResumeScheduleHandler(scheduleRepo, timelineRepo, outboxRepo, &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		updated, err := handler.Handle(context.Background(), ResumeScheduleCommand{
			ScheduleID:    s.ID(),
			ReferenceDate: resumeFrom,
			Actor:         "officer-2",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusScheduled, updated.Status())
		assert.Nil(t, updated.ExemptionReason())
		assert.Equal(t, resumeFrom.AddDate(0, 0, 20), updated.Window().DateTo)
		scheduleRepo.AssertExpectations(t)
	})
}

func TestCompleteScheduleHandler_Handle(t *testing.T) {
	t.Run("completes and records who conducted it", func(t *testing.T) {
		s := newStoredSchedule(t)
		conductedAt := time.Date(2025, 4, 22, 14, 0, 0, 0, time.UTC)

		scheduleRepo := new(mockScheduleRepo)
		timelineRepo := new(mockTimelineRepo)
		outboxRepo := new(mockOutboxRepo)

		scheduleRepo.On("FindByID", mock.Anything, s.ID()).Return(s, nil)
		scheduleRepo.On("Save", mock.Anything, s).Return(nil)
		scheduleRepo.On("AppendHistory", mock.Anything, mock.MatchedBy(func(h *domain.History) bool {
			return h.Version == 2 && h.Status == domain.StatusCompleted && h.ConductedBy != nil && *h.ConductedBy == "officer-9"
		})).Return(nil)
		timelineRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewCompleteScheduleHandler(scheduleRepo, timelineRepo, outboxRepo, &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		updated, err := handler.Handle(context.Background(), CompleteScheduleCommand{
			ScheduleID:  s.ID(),
			ConductedBy: "officer-9",
			ConductedAt: conductedAt,
			Actor:       "officer-1",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, updated.Status())
		require.NotNil(t, updated.ConductedAt())
		assert.True(t, updated.ConductedAt().Equal(conductedAt))
		scheduleRepo.AssertExpectations(t)
	})

	t.Run("a completed schedule cannot be completed again", func(t *testing.T) {
		s := newStoredSchedule(t)
		_, err := s.Complete("officer-9", time.Now().UTC(), "officer-1")
		require.NoError(t, err)

		scheduleRepo := new(mockScheduleRepo)
		scheduleRepo.On("FindByID", mock.Anything, s.ID()).Return(s, nil)

		handler := NewCompleteScheduleHandler(scheduleRepo, new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		_, err = handler.Handle(context.Background(), CompleteScheduleCommand{
			ScheduleID:  s.ID(),
			ConductedBy: "officer-9",
			ConductedAt: time.Now().UTC(),
			Actor:       "officer-1",
		})

		var invalid *domain.InvalidStatusTransitionError
		require.ErrorAs(t, err, &invalid)
	})
}
