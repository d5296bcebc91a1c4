package domain

import (
	"errors"
	"time"
)

// SentenceType categorises the prisoner's sentence for deadline-rule selection.
type SentenceType string

const (
	SentenceTypeSentenced            SentenceType = "SENTENCED"
	SentenceTypeRecall               SentenceType = "RECALL"
	SentenceTypeIndeterminate        SentenceType = "INDETERMINATE"
	SentenceTypeRemand               SentenceType = "REMAND"
	SentenceTypeConvictedUnsentenced SentenceType = "CONVICTED_UNSENTENCED"
)

// ParseSentenceType converts a stored string into a SentenceType.
func ParseSentenceType(s string) (SentenceType, error) {
	switch SentenceType(s) {
	case SentenceTypeSentenced, SentenceTypeRecall, SentenceTypeIndeterminate,
		SentenceTypeRemand, SentenceTypeConvictedUnsentenced:
		return SentenceType(s), nil
	default:
		return "", errors.New("unknown sentence type: " + s)
	}
}

// CalculationRule tags how a schedule's deadline window was derived. The
// rule→window mapping is a fixed lookup of offsets from a reference date.
type CalculationRule string

const (
	RuleNewPrisonAdmission  CalculationRule = "NEW_PRISON_ADMISSION"
	RulePrisonerReadmission CalculationRule = "PRISONER_READMISSION"
	RulePrisonerTransfer    CalculationRule = "PRISONER_TRANSFER"

	RuleLessThan6MonthsToServe     CalculationRule = "LESS_THAN_6_MONTHS_TO_SERVE"
	RuleBetween6And12MonthsToServe CalculationRule = "BETWEEN_6_AND_12_MONTHS_TO_SERVE"
	RuleBetween1And5YearsToServe   CalculationRule = "BETWEEN_1_AND_5_YEARS_TO_SERVE"
	RuleMoreThan5YearsToServe      CalculationRule = "MORE_THAN_5_YEARS_TO_SERVE"
	RuleIndeterminateSentence      CalculationRule = "INDETERMINATE_SENTENCE"
)

// Window is the date range within which the induction or review is due.
type Window struct {
	DateFrom time.Time
	DateTo   time.Time
}

// Equal reports whether two windows cover the same range.
func (w Window) Equal(other Window) bool {
	return w.DateFrom.Equal(other.DateFrom) && w.DateTo.Equal(other.DateTo)
}

type windowOffset struct {
	fromDays   int
	fromMonths int
	toDays     int
	toMonths   int
}

var ruleOffsets = map[CalculationRule]windowOffset{
	RuleNewPrisonAdmission:         {toDays: 20},
	RulePrisonerReadmission:        {toDays: 10},
	RulePrisonerTransfer:           {toDays: 10},
	RuleLessThan6MonthsToServe:     {fromMonths: 1, toMonths: 2},
	RuleBetween6And12MonthsToServe: {fromMonths: 1, toMonths: 3},
	RuleBetween1And5YearsToServe:   {fromMonths: 4, toMonths: 6},
	RuleMoreThan5YearsToServe:      {fromMonths: 10, toMonths: 12},
	RuleIndeterminateSentence:      {fromMonths: 10, toMonths: 12},
}

// ComputeWindow derives the deadline window for a rule from its reference
// date. Unknown rules have no window.
func (r CalculationRule) ComputeWindow(reference time.Time) (Window, error) {
	off, ok := ruleOffsets[r]
	if !ok {
		return Window{}, errors.New("no deadline rule configured for " + string(r))
	}
	reference = reference.UTC().Truncate(24 * time.Hour)
	return Window{
		DateFrom: reference.AddDate(0, off.fromMonths, off.fromDays),
		DateTo:   reference.AddDate(0, off.toMonths, off.toDays),
	}, nil
}

// ReferenceDates carries the prisoner dates from which deadline rules are
// derived. Supplied by the caller; the prison API lookup is outside this
// service.
type ReferenceDates struct {
	AdmissionDate time.Time
	ReleaseDate   *time.Time
	SentenceType  SentenceType
}

// SelectReviewRule picks the deadline rule for a review schedule from the
// prisoner's sentence. Sentence types without a release date cannot be
// scheduled for review.
func SelectReviewRule(ref ReferenceDates, now time.Time) (CalculationRule, error) {
	switch ref.SentenceType {
	case SentenceTypeIndeterminate:
		return RuleIndeterminateSentence, nil
	case SentenceTypeRemand, SentenceTypeConvictedUnsentenced:
		return "", &NotSupportedForSentenceTypeError{SentenceType: ref.SentenceType}
	}

	if ref.ReleaseDate == nil {
		return "", &NotSupportedForSentenceTypeError{SentenceType: ref.SentenceType}
	}

	// Bands use calendar months, not fixed-length approximations, so a
	// release date exactly six months out lands in the six-to-twelve band.
	release := *ref.ReleaseDate
	switch {
	case release.Before(now.AddDate(0, 6, 0)):
		return RuleLessThan6MonthsToServe, nil
	case release.Before(now.AddDate(1, 0, 0)):
		return RuleBetween6And12MonthsToServe, nil
	case release.Before(now.AddDate(5, 0, 0)):
		return RuleBetween1And5YearsToServe, nil
	default:
		return RuleMoreThan5YearsToServe, nil
	}
}
