package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "pathway/internal/shared/domain"

	"github.com/google/uuid"
)

var (
	ErrEmptyPrisonNumber = errors.New("schedule prison number cannot be empty")
	ErrEmptyConductedBy  = errors.New("completion requires who conducted it")
)

// Type distinguishes induction schedules from review schedules. Both share
// the same status lifecycle.
type Type string

const (
	TypeInduction Type = "INDUCTION"
	TypeReview    Type = "REVIEW"
)

// ParseType converts a stored string into a Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeInduction, TypeReview:
		return Type(s), nil
	default:
		return "", errors.New("unknown schedule type: " + s)
	}
}

// Schedule tracks the deadline window within which a prisoner's induction or
// review must take place. It is mutated only through validated status
// transitions; every transition appends a history snapshot with an
// incremented, gapless version.
type Schedule struct {
	sharedDomain.BaseAggregateRoot
	scheduleType    Type
	prisonNumber    string
	prisonID        string
	rule            CalculationRule
	window          Window
	status          Status
	exemptionReason *string
	conductedBy     *string
	conductedAt     *time.Time
	updatedBy       string
}

// NewSchedule creates a SCHEDULED schedule with a window derived from the
// calculation rule and reference date. The initial history snapshot is at
// version 1.
func NewSchedule(scheduleType Type, prisonNumber, prisonID string, rule CalculationRule, referenceDate time.Time, createdBy string) (*Schedule, *History, error) {
	prisonNumber = strings.TrimSpace(prisonNumber)
	if prisonNumber == "" {
		return nil, nil, ErrEmptyPrisonNumber
	}

	window, err := rule.ComputeWindow(referenceDate)
	if err != nil {
		return nil, nil, err
	}

	s := &Schedule{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		scheduleType:      scheduleType,
		prisonNumber:      prisonNumber,
		prisonID:          prisonID,
		rule:              rule,
		window:            window,
		status:            StatusScheduled,
		updatedBy:         createdBy,
	}
	s.IncrementVersion()
	return s, s.history(), nil
}

// RehydrateSchedule recreates a schedule from persisted state.
func RehydrateSchedule(
	id uuid.UUID,
	scheduleType Type,
	prisonNumber, prisonID string,
	rule CalculationRule,
	window Window,
	status Status,
	exemptionReason *string,
	conductedBy *string,
	conductedAt *time.Time,
	updatedBy string,
	version int,
	createdAt, updatedAt time.Time,
) *Schedule {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Schedule{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version),
		scheduleType:      scheduleType,
		prisonNumber:      prisonNumber,
		prisonID:          prisonID,
		rule:              rule,
		window:            window,
		status:            status,
		exemptionReason:   exemptionReason,
		conductedBy:       conductedBy,
		conductedAt:       conductedAt,
		updatedBy:         updatedBy,
	}
}

func (s *Schedule) Type() Type               { return s.scheduleType }
func (s *Schedule) PrisonNumber() string     { return s.prisonNumber }
func (s *Schedule) PrisonID() string         { return s.prisonID }
func (s *Schedule) Rule() CalculationRule    { return s.rule }
func (s *Schedule) Window() Window           { return s.window }
func (s *Schedule) Status() Status           { return s.status }
func (s *Schedule) ExemptionReason() *string { return s.exemptionReason }
func (s *Schedule) ConductedBy() *string     { return s.conductedBy }
func (s *Schedule) ConductedAt() *time.Time  { return s.conductedAt }
func (s *Schedule) UpdatedBy() string        { return s.updatedBy }

// Transition moves the schedule to the target status, validating the change
// against the state machine:
//
//	SCHEDULED -> EXEMPT_*   exemption; reason required only for *_OTHER
//	EXEMPT_*  -> EXEMPT_*   change of exemption kind/reason
//	EXEMPT_*  -> SCHEDULED  un-exemption; window recomputed from the rule
//	SCHEDULED -> SCHEDULED  window recompute against a new reference date
//
// COMPLETED is never a valid target here (use Complete) and never a valid
// source. A call that changes nothing still appends a history snapshot so the
// audit trail records the attempt.
func (s *Schedule) Transition(target Status, reason *string, referenceDate time.Time, actor string) (*History, error) {
	if !target.IsValid() || target == StatusCompleted {
		return nil, &InvalidStatusTransitionError{PrisonNumber: s.prisonNumber, From: s.status, To: target}
	}
	if s.status.IsTerminal() {
		return nil, &InvalidStatusTransitionError{PrisonNumber: s.prisonNumber, From: s.status, To: target}
	}
	if target.RequiresReason() && (reason == nil || strings.TrimSpace(*reason) == "") {
		return nil, &MissingExemptionReasonError{Status: target}
	}

	if target == StatusScheduled {
		window, err := s.rule.ComputeWindow(referenceDate)
		if err != nil {
			return nil, err
		}
		s.window = window
		s.exemptionReason = nil
	} else {
		s.exemptionReason = reason
	}

	s.status = target
	s.updatedBy = actor
	s.Touch()
	s.IncrementVersion()
	return s.history(), nil
}

// Complete marks the schedule COMPLETED. This is the only path into the
// terminal state and requires the details of the induction/review that was
// actually conducted.
func (s *Schedule) Complete(conductedBy string, conductedAt time.Time, actor string) (*History, error) {
	if s.status.IsTerminal() {
		return nil, &InvalidStatusTransitionError{PrisonNumber: s.prisonNumber, From: s.status, To: StatusCompleted}
	}
	conductedBy = strings.TrimSpace(conductedBy)
	if conductedBy == "" {
		return nil, ErrEmptyConductedBy
	}

	s.status = StatusCompleted
	s.exemptionReason = nil
	s.conductedBy = &conductedBy
	at := conductedAt.UTC()
	s.conductedAt = &at
	s.updatedBy = actor
	s.Touch()
	s.IncrementVersion()
	return s.history(), nil
}

func (s *Schedule) history() *History {
	return &History{
		ID:              uuid.New(),
		ScheduleID:      s.ID(),
		Version:         s.Version(),
		PrisonNumber:    s.prisonNumber,
		Status:          s.status,
		Rule:            s.rule,
		Window:          s.window,
		ExemptionReason: s.exemptionReason,
		ConductedBy:     s.conductedBy,
		ConductedAt:     s.conductedAt,
		UpdatedBy:       s.updatedBy,
		UpdatedAt:       s.UpdatedAt(),
	}
}

// Snapshot captures the schedule's observable state as plain values, for
// before/after comparison without aliasing the aggregate.
func (s *Schedule) Snapshot() Snapshot {
	var reason *string
	if s.exemptionReason != nil {
		r := *s.exemptionReason
		reason = &r
	}
	return Snapshot{
		ID:              s.ID(),
		Type:            s.scheduleType,
		PrisonNumber:    s.prisonNumber,
		PrisonID:        s.prisonID,
		Rule:            s.rule,
		Window:          s.window,
		Status:          s.status,
		ExemptionReason: reason,
	}
}

// Snapshot is an immutable view of a schedule at one point in time.
type Snapshot struct {
	ID              uuid.UUID
	Type            Type
	PrisonNumber    string
	PrisonID        string
	Rule            CalculationRule
	Window          Window
	Status          Status
	ExemptionReason *string
}
