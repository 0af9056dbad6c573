package instance

import (
	"fmt"
	"sort"
)

// Stage is one phase of an allocation instance's lifecycle. Every gated
// operation reads it; only an explicit admin transition mutates it.
type Stage string

const (
	StageSetup                 Stage = "SETUP"
	StageProjectSubmission     Stage = "PROJECT_SUBMISSION"
	StageStudentBidding        Stage = "STUDENT_BIDDING"
	StageProjectAllocation     Stage = "PROJECT_ALLOCATION"
	StageAllocationAdjustment  Stage = "ALLOCATION_ADJUSTMENT"
	StageAllocationPublication Stage = "ALLOCATION_PUBLICATION"
	StageReaderBidding         Stage = "READER_BIDDING"
	StageReaderAllocation      Stage = "READER_ALLOCATION"
	StageMarkSubmission        Stage = "MARK_SUBMISSION"
	StageGradePublication      Stage = "GRADE_PUBLICATION"
)

// stageRank is the single source of truth for stage ordering.
// Never compare stages lexically or by declaration order.
var stageRank = map[Stage]int{
	StageSetup:                 1,
	StageProjectSubmission:     2,
	StageStudentBidding:        3,
	StageProjectAllocation:     4,
	StageAllocationAdjustment:  5,
	StageAllocationPublication: 6,
	StageReaderBidding:         7,
	StageReaderAllocation:      8,
	StageMarkSubmission:        9,
	StageGradePublication:      10,
}

// rank panics on a stage outside the enum: that is a programming error,
// not a recoverable condition.
func (s Stage) rank() int {
	r, ok := stageRank[s]
	if !ok {
		panic(fmt.Sprintf("instance: unknown stage %q", string(s)))
	}
	return r
}

func (s Stage) Valid() bool {
	_, ok := stageRank[s]
	return ok
}

// After reports whether s comes strictly after other in the lifecycle.
func (s Stage) After(other Stage) bool { return s.rank() > other.rank() }

// AfterOrEq reports whether s is other or comes after it.
func (s Stage) AfterOrEq(other Stage) bool { return s.rank() >= other.rank() }

// Before reports whether s comes strictly before other in the lifecycle.
func (s Stage) Before(other Stage) bool { return s.rank() < other.rank() }

// BeforeOrEq reports whether s is other or comes before it.
func (s Stage) BeforeOrEq(other Stage) bool { return s.rank() <= other.rank() }

// AllStages returns every stage in lifecycle order.
func AllStages() []Stage {
	all := make([]Stage, 0, len(stageRank))
	for s := range stageRank {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].rank() < all[j].rank() })
	return all
}

// StagesBetween returns all stages from min to max in lifecycle order,
// both bounds inclusive.
func StagesBetween(min, max Stage) []Stage {
	stages := make([]Stage, 0, max.rank()-min.rank()+1)
	for _, s := range AllStages() {
		if s.AfterOrEq(min) && s.BeforeOrEq(max) {
			stages = append(stages, s)
		}
	}
	return stages
}

// PreviousStages returns every stage up to and including max.
func PreviousStages(max Stage) []Stage {
	return StagesBetween(StageSetup, max)
}

// SubsequentStages returns every stage from min on, min included.
func SubsequentStages(min Stage) []Stage {
	return StagesBetween(min, StageGradePublication)
}

// StageIn reports whether current lies in the half-open range [min, max):
// min is inclusive, max is EXCLUSIVE. Callers rely on this asymmetry with
// the inclusive bounds of PreviousStages/SubsequentStages; do not unify them.
func StageIn(current, min, max Stage) bool {
	return current.AfterOrEq(min) && current.Before(max)
}
