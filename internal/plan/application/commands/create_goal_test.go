package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"pathway/internal/plan/domain/goal"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockGoalRepo is a mock implementation of goal.Repository.
type mockGoalRepo struct {
	mock.Mock
}

func (m *mockGoalRepo) Save(ctx context.Context, g *goal.Goal) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *mockGoalRepo) FindByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.Goal), args.Error(1)
}

func (m *mockGoalRepo) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*goal.Goal, error) {
	args := m.Called(ctx, prisonNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*goal.Goal), args.Error(1)
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
	err      error
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestCreateGoalHandler_Handle(t *testing.T) {
	cmd := CreateGoalCommand{
		PrisonNumber: "A1234BC",
		Title:        "Improve literacy",
		Area:         "EDUCATION",
		Steps: []StepInput{
			{Title: "Enrol in reading course", Position: 1},
			{Title: "Complete first assessment", Position: 2},
		},
		Actor: "officer-1",
	}

	t.Run("creates goal and records creation event", func(t *testing.T) {
		goalRepo := new(mockGoalRepo)
		timelineRepo := new(mockTimelineRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := &fakeUnitOfWork{}

		goalRepo.On("Save", mock.Anything, mock.AnythingOfType("*goal.Goal")).Return(nil)
		timelineRepo.On("Append", mock.Anything, mock.MatchedBy(func(events []*timelineDomain.Event) bool {
			return len(events) == 1 && events[0].EventType() == timelineDomain.EventTypeGoalCreated
		})).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].EventType == "timeline.goal.created"
		})).Return(nil)

		handler := NewCreateGoalHandler(goalRepo, timelineRepo, outboxRepo, uow)
		g, err := handler.Handle(context.Background(), cmd)

		require.NoError(t, err)
		assert.Equal(t, "A1234BC", g.PrisonNumber())
		assert.Len(t, g.Steps(), 2)
		assert.Equal(t, 1, uow.commits)
		goalRepo.AssertExpectations(t)
		timelineRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("rejects a goal with no steps", func(t *testing.T) {
		handler := NewCreateGoalHandler(new(mockGoalRepo), new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{})

		empty := cmd
		empty.Steps = nil
		_, err := handler.Handle(context.Background(), empty)

		var violation *goal.InvariantViolationError
		require.ErrorAs(t, err, &violation)
	})

	t.Run("rejects an unknown step status", func(t *testing.T) {
		handler := NewCreateGoalHandler(new(mockGoalRepo), new(mockTimelineRepo), new(mockOutboxRepo), &fakeUnitOfWork{})

		bad := cmd
		bad.Steps = []StepInput{{Title: "Enrol", Status: "PAUSED", Position: 1}}
		_, err := handler.Handle(context.Background(), bad)

		require.Error(t, err)
	})

	t.Run("rolls back when the save fails", func(t *testing.T) {
		goalRepo := new(mockGoalRepo)
		uow := &fakeUnitOfWork{}
		goalRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

		handler := NewCreateGoalHandler(goalRepo, new(mockTimelineRepo), new(mockOutboxRepo), uow)
		_, err := handler.Handle(context.Background(), cmd)

		require.Error(t, err)
		assert.Equal(t, 1, uow.rollbacks)
		assert.Equal(t, 0, uow.commits)
	})
}
