package goal

import (
	"errors"
	"strings"
	"time"

	"pathway/internal/shared/domain"

	"github.com/google/uuid"
)

var ErrEmptyStepTitle = errors.New("step title cannot be empty")

// StepStatus represents the lifecycle state of a single step.
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "NOT_STARTED"
	StepStatusStarted    StepStatus = "STARTED"
	StepStatusCompleted  StepStatus = "COMPLETED"
)

// ParseStepStatus converts a stored string into a StepStatus.
func ParseStepStatus(s string) (StepStatus, error) {
	switch StepStatus(s) {
	case StepStatusNotStarted, StepStatusStarted, StepStatusCompleted:
		return StepStatus(s), nil
	default:
		return "", errors.New("unknown step status: " + s)
	}
}

// Step is one ordered action within a goal. Its ID is the stable key;
// the sequence number is re-stamped on every reconciliation.
type Step struct {
	domain.BaseEntity
	title    string
	status   StepStatus
	sequence int
}

// NewStep creates a step with a fresh identity.
func NewStep(title string, status StepStatus, sequence int) (*Step, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyStepTitle
	}
	if status == "" {
		status = StepStatusNotStarted
	}
	return &Step{
		BaseEntity: domain.NewBaseEntity(),
		title:      title,
		status:     status,
		sequence:   sequence,
	}, nil
}

// RehydrateStep recreates a step from persisted state.
func RehydrateStep(id uuid.UUID, title string, status StepStatus, sequence int, createdAt, updatedAt time.Time) *Step {
	return &Step{
		BaseEntity: domain.RehydrateBaseEntity(id, createdAt, updatedAt),
		title:      title,
		status:     status,
		sequence:   sequence,
	}
}

func (s *Step) Title() string      { return s.title }
func (s *Step) Status() StepStatus { return s.status }
func (s *Step) Sequence() int      { return s.sequence }

// applyContent copies the mutable content of a desired step onto this one,
// preserving identity and creation metadata.
func (s *Step) applyContent(title string, status StepStatus) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyStepTitle
	}
	s.title = title
	if status != "" {
		s.status = status
	}
	s.Touch()
	return nil
}

func (s *Step) setSequence(sequence int) {
	s.sequence = sequence
}
