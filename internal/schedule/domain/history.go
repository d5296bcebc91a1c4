package domain

import (
	"time"

	"github.com/google/uuid"
)

// History is an immutable snapshot of a schedule taken on every transition.
// Versions are strictly increasing and gapless per schedule reference; rows
// are never updated or deleted.
type History struct {
	ID              uuid.UUID
	ScheduleID      uuid.UUID
	Version         int
	PrisonNumber    string
	Status          Status
	Rule            CalculationRule
	Window          Window
	ExemptionReason *string
	ConductedBy     *string
	ConductedAt     *time.Time
	UpdatedBy       string
	UpdatedAt       time.Time
}
