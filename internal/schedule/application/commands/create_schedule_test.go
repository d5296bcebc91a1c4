package commands

import (
	"context"
	"testing"
	"time"

	"pathway/internal/schedule/domain"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockScheduleRepo is a mock implementation of domain.Repository.
type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) Save(ctx context.Context, s *domain.Schedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *mockScheduleRepo) FindActive(ctx context.Context, prisonNumber string, scheduleType domain.Type) (*domain.Schedule, error) {
	args := m.Called(ctx, prisonNumber, scheduleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *mockScheduleRepo) AppendHistory(ctx context.Context, h *domain.History) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *mockScheduleRepo) HistoryByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*domain.History, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.History), args.Error(1)
}

// mockTimelineRepo is a mock implementation of the timeline repository.
type mockTimelineRepo struct {
	mock.Mock
}

func (m *mockTimelineRepo) Append(ctx context.Context, events ...*timelineDomain.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *mockTimelineRepo) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*timelineDomain.Event, error) {
	args := m.Called(ctx, prisonNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timelineDomain.Event), args.Error(1)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// fakeUnitOfWork passes the context straight through, counting outcomes.
type fakeUnitOfWork struct {
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *fakeUnitOfWork) Commit(ctx context.Context) error {
	u.commits++
	return nil
}
func (u *fakeUnitOfWork) Rollback(ctx context.Context) error {
	u.rollbacks++
	return nil
}

// fakeLocker records acquired keys and always grants the lease.
type fakeLocker struct {
	keys     []string
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestCreateScheduleHandler_Handle(t *testing.T) {
	admission := time.Date(2025, 4, 7, 9, 30, 0, 0, time.UTC)

	inductionCmd := CreateScheduleCommand{
		Type:          string(domain.TypeInduction),
		PrisonNumber:  "A1234BC",
		PrisonID:      "MDI",
		AdmissionRule: string(domain.RuleNewPrisonAdmission),
		AdmissionDate: admission,
		Actor:         "officer-1",
	}

	t.Run("creates an induction schedule with the admission window", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		locker := &fakeLocker{}

		scheduleRepo.On("FindActive", mock.Anything, "A1234BC", domain.TypeInduction).Return(nil, domain.ErrScheduleNotFound)
		scheduleRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Schedule")).Return(nil)
		scheduleRepo.On("AppendHistory", mock.Anything, mock.MatchedBy(func(h *domain.History) bool {
			return h.Version == 1 && h.Status == domain.StatusScheduled
		})).Return(nil)

		handler := NewCreateScheduleHandler(scheduleRepo, new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, locker, 30*time.Second)
		s, err := handler.Handle(context.Background(), inductionCmd)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusScheduled, s.Status())
		assert.Equal(t, admission.Truncate(24*time.Hour), s.Window().DateFrom)
		assert.Equal(t, admission.Truncate(24*time.Hour).AddDate(0, 0, 20), s.Window().DateTo)
		assert.Equal(t, []string{"A1234BC"}, locker.keys)
		scheduleRepo.AssertExpectations(t)
	})

	t.Run("selects the review rule from the sentence", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		scheduleRepo.On("FindActive", mock.Anything, "A1234BC", domain.TypeReview).Return(nil, domain.ErrScheduleNotFound)
		scheduleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		scheduleRepo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)

		release := time.Now().UTC().AddDate(0, 8, 0)
		handler := NewCreateScheduleHandler(scheduleRepo, new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		s, err := handler.Handle(context.Background(), CreateScheduleCommand{
			Type:          string(domain.TypeReview),
			PrisonNumber:  "A1234BC",
			PrisonID:      "MDI",
			AdmissionDate: admission,
			ReleaseDate:   &release,
			SentenceType:  string(domain.SentenceTypeSentenced),
			Actor:         "officer-1",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RuleBetween6And12MonthsToServe, s.Rule())
	})

	t.Run("rejects a second in-scope schedule of the same type", func(t *testing.T) {
		existing, _, err := domain.NewSchedule(domain.TypeInduction, "A1234BC", "MDI", domain.RuleNewPrisonAdmission, admission, "officer-1")
		require.NoError(t, err)

		scheduleRepo := new(mockScheduleRepo)
		scheduleRepo.On("FindActive", mock.Anything, "A1234BC", domain.TypeInduction).Return(existing, nil)

		handler := NewCreateScheduleHandler(scheduleRepo, new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		_, err = handler.Handle(context.Background(), inductionCmd)

		require.ErrorIs(t, err, ErrScheduleExists)
		scheduleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("allows a new schedule when the previous one left scope", func(t *testing.T) {
		previous, _, err := domain.NewSchedule(domain.TypeInduction, "A1234BC", "MDI", domain.RuleNewPrisonAdmission, admission.AddDate(0, -6, 0), "officer-1")
		require.NoError(t, err)
		_, err = previous.Transition(domain.StatusExemptPrisonerTransfer, nil, time.Time{}, "officer-1")
		require.NoError(t, err)

		scheduleRepo := new(mockScheduleRepo)
		scheduleRepo.On("FindActive", mock.Anything, "A1234BC", domain.TypeInduction).Return(previous, nil)
		scheduleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		scheduleRepo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)

		readmission := inductionCmd
		readmission.AdmissionRule = string(domain.RulePrisonerReadmission)

		handler := NewCreateScheduleHandler(scheduleRepo, new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		s, err := handler.Handle(context.Background(), readmission)

		require.NoError(t, err)
		assert.Equal(t, domain.RulePrisonerReadmission, s.Rule())
	})

	t.Run("rejects a remand sentence for review", func(t *testing.T) {
		handler := NewCreateScheduleHandler(new(mockScheduleRepo), new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)
		_, err := handler.Handle(context.Background(), CreateScheduleCommand{
			Type:          string(domain.TypeReview),
			PrisonNumber:  "A1234BC",
			PrisonID:      "MDI",
			AdmissionDate: admission,
			SentenceType:  string(domain.SentenceTypeRemand),
			Actor:         "officer-1",
		})

		var notSupported *domain.NotSupportedForSentenceTypeError
		require.ErrorAs(t, err, &notSupported)
	})

	t.Run("rejects an unknown admission rule", func(t *testing.T) {
		handler := NewCreateScheduleHandler(new(mockScheduleRepo), new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{}, &fakeLocker{}, 30*time.Second)

		bad := inductionCmd
		bad.AdmissionRule = "COURT_APPEARANCE"
		_, err := handler.Handle(context.Background(), bad)

		require.Error(t, err)
	})
}
