package domain

import (
	"errors"
	"fmt"
)

// ErrScheduleNotFound is returned by repositories when no schedule matches.
var ErrScheduleNotFound = errors.New("schedule not found")

// InvalidStatusTransitionError reports an attempted transition the state
// machine forbids, such as leaving COMPLETED.
type InvalidStatusTransitionError struct {
	PrisonNumber string
	From         Status
	To           Status
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid schedule status transition for %s: %s -> %s", e.PrisonNumber, e.From, e.To)
}

// MissingExemptionReasonError reports an exemption that requires a recorded
// reason but was given none.
type MissingExemptionReasonError struct {
	Status Status
}

func (e *MissingExemptionReasonError) Error() string {
	return fmt.Sprintf("exemption %s requires a reason", e.Status)
}

// NotSupportedForSentenceTypeError reports that no deadline rule exists for
// the prisoner's sentence/release-date combination.
type NotSupportedForSentenceTypeError struct {
	SentenceType SentenceType
}

func (e *NotSupportedForSentenceTypeError) Error() string {
	return fmt.Sprintf("schedule not supported for sentence type %s", e.SentenceType)
}
