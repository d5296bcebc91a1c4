package domain

import (
	"errors"
	"strings"
)

// Status represents the lifecycle state of an induction or review schedule.
//
// SCHEDULED is the initial, active state. The EXEMPT_* statuses form a closed
// set: each is tagged with whether it requires a recorded reason and whether it
// removes the schedule from scope (e.g. the prisoner has left the prison).
// COMPLETED is terminal.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"

	StatusExemptPrisonerTransfer       Status = "EXEMPT_PRISONER_TRANSFER"
	StatusExemptPrisonerRelease        Status = "EXEMPT_PRISONER_RELEASE"
	StatusExemptPrisonerDeath          Status = "EXEMPT_PRISONER_DEATH"
	StatusExemptPrisonerFailedToEngage Status = "EXEMPT_PRISONER_FAILED_TO_ENGAGE"
	StatusExemptPrisonerSafetyIssues   Status = "EXEMPT_PRISONER_SAFETY_ISSUES"
	StatusExemptPrisonerOther          Status = "EXEMPT_PRISONER_OTHER"

	StatusExemptPrisonRegimeCircumstances      Status = "EXEMPT_PRISON_REGIME_CIRCUMSTANCES"
	StatusExemptPrisonStaffRedeployment        Status = "EXEMPT_PRISON_STAFF_REDEPLOYMENT"
	StatusExemptPrisonOperationOrSecurityIssue Status = "EXEMPT_PRISON_OPERATION_OR_SECURITY_ISSUE"
	StatusExemptSystemTechnicalIssue           Status = "EXEMPT_SYSTEM_TECHNICAL_ISSUE"
	StatusExemptPrisonOther                    Status = "EXEMPT_PRISON_OTHER"
)

// AllStatuses lists every valid schedule status.
var AllStatuses = []Status{
	StatusScheduled,
	StatusCompleted,
	StatusExemptPrisonerTransfer,
	StatusExemptPrisonerRelease,
	StatusExemptPrisonerDeath,
	StatusExemptPrisonerFailedToEngage,
	StatusExemptPrisonerSafetyIssues,
	StatusExemptPrisonerOther,
	StatusExemptPrisonRegimeCircumstances,
	StatusExemptPrisonStaffRedeployment,
	StatusExemptPrisonOperationOrSecurityIssue,
	StatusExemptSystemTechnicalIssue,
	StatusExemptPrisonOther,
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", errors.New("unknown schedule status: " + s)
	}
	return status, nil
}

// IsValid reports whether the status is a member of the closed set.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsExemption reports whether the status is one of the EXEMPT_* states.
func (s Status) IsExemption() bool {
	return strings.HasPrefix(string(s), "EXEMPT_")
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// RequiresReason reports whether an exemption to this status must record a
// free-text reason. Only the uncategorised "other" exemptions do.
func (s Status) RequiresReason() bool {
	return s == StatusExemptPrisonerOther || s == StatusExemptPrisonOther
}

// ExcludesFromScope reports whether the status removes the schedule from the
// prisoner's in-scope workload (the prisoner is no longer at the prison).
func (s Status) ExcludesFromScope() bool {
	switch s {
	case StatusExemptPrisonerTransfer, StatusExemptPrisonerRelease, StatusExemptPrisonerDeath:
		return true
	default:
		return false
	}
}

// InScope reports whether the schedule still counts towards the prison's
// outstanding inductions/reviews.
func (s Status) InScope() bool {
	return !s.IsTerminal() && !s.ExcludesFromScope()
}
