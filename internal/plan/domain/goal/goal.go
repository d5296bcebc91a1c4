package goal

import (
	"errors"
	"strings"
	"time"

	"pathway/internal/shared/domain"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle          = errors.New("goal title cannot be empty")
	ErrEmptyPrisonNumber   = errors.New("goal prison number cannot be empty")
	ErrGoalArchived        = errors.New("goal is archived")
	ErrGoalAlreadyComplete = errors.New("goal is already completed")
	ErrGoalNotFound        = errors.New("goal not found")
)

// InvariantViolationError reports a mutation that would leave the goal in an
// invalid state, such as removing its last step.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "goal invariant violated: " + e.Reason
}

// Status represents the goal lifecycle state.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
)

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusCompleted, StatusArchived:
		return Status(s), nil
	default:
		return "", errors.New("unknown goal status: " + s)
	}
}

// Goal is one objective on a prisoner's rehabilitation plan. It owns an
// ordered list of steps; a goal always has at least one step.
type Goal struct {
	domain.BaseAggregateRoot
	prisonNumber string
	title        string
	area         string
	notes        string
	targetDate   *time.Time
	status       Status
	steps        []*Step
}

// NewGoal creates an active goal with its initial steps.
func NewGoal(prisonNumber, title, area string, targetDate *time.Time, steps []StepInput) (*Goal, error) {
	prisonNumber = strings.TrimSpace(prisonNumber)
	if prisonNumber == "" {
		return nil, ErrEmptyPrisonNumber
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(steps) == 0 {
		return nil, &InvariantViolationError{Reason: "a goal must have at least one step"}
	}

	g := &Goal{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		prisonNumber:      prisonNumber,
		title:             title,
		area:              strings.TrimSpace(area),
		targetDate:        targetDate,
		status:            StatusActive,
	}

	resolved, _, err := ReconcileSteps(nil, steps)
	if err != nil {
		return nil, err
	}
	g.steps = resolved

	return g, nil
}

// RehydrateGoal recreates a goal from persisted state.
func RehydrateGoal(
	id uuid.UUID,
	prisonNumber, title, area, notes string,
	targetDate *time.Time,
	status Status,
	steps []*Step,
	version int,
	createdAt, updatedAt time.Time,
) *Goal {
	entity := domain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Goal{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(entity, version),
		prisonNumber:      prisonNumber,
		title:             title,
		area:              area,
		notes:             notes,
		targetDate:        targetDate,
		status:            status,
		steps:             steps,
	}
}

func (g *Goal) PrisonNumber() string   { return g.prisonNumber }
func (g *Goal) Title() string          { return g.title }
func (g *Goal) Area() string           { return g.area }
func (g *Goal) Notes() string          { return g.notes }
func (g *Goal) TargetDate() *time.Time { return g.targetDate }
func (g *Goal) Status() Status         { return g.status }
func (g *Goal) Steps() []*Step         { return g.steps }
func (g *Goal) IsCompleted() bool      { return g.status == StatusCompleted }
func (g *Goal) IsArchived() bool       { return g.status == StatusArchived }

// SetTitle updates the goal title.
func (g *Goal) SetTitle(title string) error {
	if g.IsArchived() {
		return ErrGoalArchived
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	g.title = title
	g.Touch()
	return nil
}

// SetArea updates the rehabilitation area the goal belongs to.
func (g *Goal) SetArea(area string) error {
	if g.IsArchived() {
		return ErrGoalArchived
	}
	g.area = strings.TrimSpace(area)
	g.Touch()
	return nil
}

// SetNotes updates the goal notes.
func (g *Goal) SetNotes(notes string) error {
	if g.IsArchived() {
		return ErrGoalArchived
	}
	g.notes = strings.TrimSpace(notes)
	g.Touch()
	return nil
}

// SetTargetDate updates the target date.
func (g *Goal) SetTargetDate(targetDate *time.Time) error {
	if g.IsArchived() {
		return ErrGoalArchived
	}
	g.targetDate = targetDate
	g.Touch()
	return nil
}

// UpdateSteps reconciles the goal's steps against the desired state and
// returns the steps that were removed. A goal cannot end up with zero steps.
func (g *Goal) UpdateSteps(desired []StepInput) ([]*Step, error) {
	if g.IsArchived() {
		return nil, ErrGoalArchived
	}
	if len(desired) == 0 {
		return nil, &InvariantViolationError{Reason: "a goal must have at least one step"}
	}

	resolved, removed, err := ReconcileSteps(g.steps, desired)
	if err != nil {
		return nil, err
	}
	g.steps = resolved
	g.Touch()
	return removed, nil
}

// Complete marks the goal as completed.
func (g *Goal) Complete() error {
	if g.IsCompleted() {
		return ErrGoalAlreadyComplete
	}
	if g.IsArchived() {
		return ErrGoalArchived
	}
	g.status = StatusCompleted
	g.Touch()
	return nil
}

// Archive marks the goal as archived. Idempotent.
func (g *Goal) Archive() error {
	if g.IsArchived() {
		return nil
	}
	g.status = StatusArchived
	g.Touch()
	return nil
}

// Reactivate returns an archived goal to the active state.
func (g *Goal) Reactivate() error {
	if g.IsCompleted() {
		return ErrGoalAlreadyComplete
	}
	g.status = StatusActive
	g.Touch()
	return nil
}

// Snapshot captures the goal's observable state as plain values, for
// before/after comparison without aliasing the aggregate.
func (g *Goal) Snapshot() Snapshot {
	steps := make([]StepSnapshot, len(g.steps))
	for i, s := range g.steps {
		steps[i] = StepSnapshot{
			ID:       s.ID(),
			Title:    s.Title(),
			Status:   s.Status(),
			Sequence: s.Sequence(),
		}
	}
	var target *time.Time
	if g.targetDate != nil {
		t := *g.targetDate
		target = &t
	}
	return Snapshot{
		ID:           g.ID(),
		PrisonNumber: g.prisonNumber,
		Title:        g.title,
		Area:         g.area,
		Notes:        g.notes,
		TargetDate:   target,
		Status:       g.status,
		Steps:        steps,
	}
}

// Snapshot is an immutable view of a goal at one point in time.
type Snapshot struct {
	ID           uuid.UUID
	PrisonNumber string
	Title        string
	Area         string
	Notes        string
	TargetDate   *time.Time
	Status       Status
	Steps        []StepSnapshot
}

// StepSnapshot is an immutable view of a step.
type StepSnapshot struct {
	ID       uuid.UUID
	Title    string
	Status   StepStatus
	Sequence int
}

// Equal reports whether two snapshots describe identical goal state,
// including step order and content. It is stricter than the timeline
// resolver's notion of change: a step reorder or a step retitle makes
// snapshots unequal even though no event is derived from it.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.ID != other.ID ||
		s.PrisonNumber != other.PrisonNumber ||
		s.Title != other.Title ||
		s.Area != other.Area ||
		s.Notes != other.Notes ||
		s.Status != other.Status {
		return false
	}
	if (s.TargetDate == nil) != (other.TargetDate == nil) {
		return false
	}
	if s.TargetDate != nil && !s.TargetDate.Equal(*other.TargetDate) {
		return false
	}
	if len(s.Steps) != len(other.Steps) {
		return false
	}
	for i, step := range s.Steps {
		if step != other.Steps[i] {
			return false
		}
	}
	return true
}
