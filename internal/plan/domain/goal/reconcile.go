package goal

import (
	"sort"

	"github.com/google/uuid"
)

// StepInput describes the desired state of one step. A nil ID signals a new
// step; a populated ID matches an existing step to update.
type StepInput struct {
	ID       *uuid.UUID
	Title    string
	Status   StepStatus
	Position int
}

// ReconcileSteps matches a desired list of steps against the existing list and
// computes the authoritative result. Desired items are matched by stable ID;
// unmatched existing steps are removed, unmatched desired items become fresh
// steps. Requested positions act as a sort key only: the result is ordered by
// requested position (stable on desired order for duplicates) and re-stamped
// with contiguous sequence numbers 1..N.
func ReconcileSteps(existing []*Step, desired []StepInput) (resolved, removed []*Step, err error) {
	byID := make(map[uuid.UUID]*Step, len(existing))
	for _, s := range existing {
		byID[s.ID()] = s
	}

	matched := make(map[uuid.UUID]bool, len(desired))
	resolved = make([]*Step, 0, len(desired))
	positions := make(map[*Step]int, len(desired))

	for _, in := range desired {
		var step *Step
		if in.ID != nil {
			if found, ok := byID[*in.ID]; ok && !matched[*in.ID] {
				if err := found.applyContent(in.Title, in.Status); err != nil {
					return nil, nil, err
				}
				matched[*in.ID] = true
				step = found
			}
		}
		if step == nil {
			step, err = NewStep(in.Title, in.Status, 0)
			if err != nil {
				return nil, nil, err
			}
		}
		resolved = append(resolved, step)
		positions[step] = clampPosition(in.Position, len(desired))
	}

	for _, s := range existing {
		if !matched[s.ID()] {
			removed = append(removed, s)
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return positions[resolved[i]] < positions[resolved[j]]
	})
	for i, s := range resolved {
		s.setSequence(i + 1)
	}

	return resolved, removed, nil
}

// clampPosition bounds a requested position to the valid range for a list of
// the given size: below 1 sorts first, beyond the end sorts last.
func clampPosition(requested, size int) int {
	if requested < 1 {
		return 1
	}
	if requested > size {
		return size + 1
	}
	return requested
}
