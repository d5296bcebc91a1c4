package commands

import (
	"context"
	"errors"
	"time"

	"pathway/internal/schedule/domain"
	sharedApplication "pathway/internal/shared/application"
	"pathway/internal/shared/infrastructure/lock"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"
)

// ErrScheduleExists is returned when the prisoner already has an in-scope
// schedule of the requested type.
var ErrScheduleExists = errors.New("an in-scope schedule of this type already exists")

var admissionRules = map[domain.CalculationRule]bool{
	domain.RuleNewPrisonAdmission:  true,
	domain.RulePrisonerReadmission: true,
	domain.RulePrisonerTransfer:    true,
}

// CreateScheduleCommand opens a deadline window for an induction or review.
// AdmissionRule applies to inductions only; SentenceType and ReleaseDate
// drive rule selection for reviews.
type CreateScheduleCommand struct {
	Type          string
	PrisonNumber  string
	PrisonID      string
	AdmissionRule string
	AdmissionDate time.Time
	ReleaseDate   *time.Time
	SentenceType  string
	Actor         string
}

// CreateScheduleHandler handles the CreateScheduleCommand.
type CreateScheduleHandler struct {
	scheduleRepo domain.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewCreateScheduleHandler creates a new CreateScheduleHandler.
func NewCreateScheduleHandler(
	scheduleRepo domain.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *CreateScheduleHandler {
	return &CreateScheduleHandler{
		scheduleRepo: scheduleRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the create schedule command. The per-prisoner lease also
// guards the uniqueness check: at most one in-scope schedule per prisoner
// and type.
func (h *CreateScheduleHandler) Handle(ctx context.Context, cmd CreateScheduleCommand) (*domain.Schedule, error) {
	scheduleType, err := domain.ParseType(cmd.Type)
	if err != nil {
		return nil, err
	}

	rule, err := h.selectRule(scheduleType, cmd)
	if err != nil {
		return nil, err
	}

	release, err := h.locker.Acquire(ctx, cmd.PrisonNumber, h.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release(ctx) }()

	var s *domain.Schedule
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.scheduleRepo.FindActive(txCtx, cmd.PrisonNumber, scheduleType)
		switch {
		case err == nil:
			if existing.Status().InScope() {
				return ErrScheduleExists
			}
		case !errors.Is(err, domain.ErrScheduleNotFound):
			return err
		}

		var history *domain.History
		s, history, err = domain.NewSchedule(scheduleType, cmd.PrisonNumber, cmd.PrisonID, rule, cmd.AdmissionDate, cmd.Actor)
		if err != nil {
			return err
		}

		if err := h.scheduleRepo.Save(txCtx, s); err != nil {
			return err
		}
		return h.scheduleRepo.AppendHistory(txCtx, history)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (h *CreateScheduleHandler) selectRule(scheduleType domain.Type, cmd CreateScheduleCommand) (domain.CalculationRule, error) {
	if scheduleType == domain.TypeInduction {
		rule := domain.CalculationRule(cmd.AdmissionRule)
		if !admissionRules[rule] {
			return "", errors.New("unknown admission rule: " + cmd.AdmissionRule)
		}
		return rule, nil
	}

	sentenceType, err := domain.ParseSentenceType(cmd.SentenceType)
	if err != nil {
		return "", err
	}
	ref := domain.ReferenceDates{
		AdmissionDate: cmd.AdmissionDate,
		ReleaseDate:   cmd.ReleaseDate,
		SentenceType:  sentenceType,
	}
	return domain.SelectReviewRule(ref, time.Now().UTC())
}
