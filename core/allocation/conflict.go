package allocation

// The conflict detector runs over the admin-editable snapshot of a
// post-match assignment, before it is committed. Violations are advisory:
// they block publication but never block further edits, so nothing in
// here returns an error.
//
// Everything is recomputed from the snapshot on every call. The snapshot
// changes between reads while an admin is mid-edit; cached counters would
// go stale without an invalidation design.

// WithinBounds reports whether the project's assigned students fit its
// capacity bounds: lower <= len(allocatedTo) <= upper.
func WithinBounds(p Project) bool {
	n := len(p.AllocatedTo)
	return p.CapacityLowerBound <= n && n <= p.CapacityUpperBound
}

// WithinCapacity reports whether the supervisor's total assigned students,
// summed across ALL of their projects in the snapshot, fit their
// allocation bounds.
func WithinCapacity(projects []Project, sup Supervisor) bool {
	n := supervisorLoad(projects, sup.UserID)
	return sup.ProjectAllocationLowerBound <= n && n <= sup.ProjectAllocationUpperBound
}

func supervisorLoad(projects []Project, supervisorID string) int {
	var n int
	for _, p := range projects {
		if p.SupervisorID == supervisorID {
			n += len(p.AllocatedTo)
		}
	}
	return n
}

type ViolationKind string

const (
	ViolationProjectBounds      ViolationKind = "PROJECT_BOUNDS"
	ViolationSupervisorCapacity ViolationKind = "SUPERVISOR_CAPACITY"
)

// Violation is one out-of-bounds finding, surfaced for operator review.
type Violation struct {
	Kind         ViolationKind `json:"kind"`
	ProjectID    string        `json:"project_id,omitempty"`
	SupervisorID string        `json:"supervisor_id,omitempty"`
	Assigned     int           `json:"assigned"`
	LowerBound   int           `json:"lower_bound"`
	UpperBound   int           `json:"upper_bound"`
}

// Violations lists every bounds/capacity violation in the snapshot,
// projects first, then supervisors.
func Violations(projects []Project, supervisors []Supervisor) []Violation {
	var out []Violation
	for _, p := range projects {
		if !WithinBounds(p) {
			out = append(out, Violation{
				Kind:       ViolationProjectBounds,
				ProjectID:  p.ID,
				Assigned:   len(p.AllocatedTo),
				LowerBound: p.CapacityLowerBound,
				UpperBound: p.CapacityUpperBound,
			})
		}
	}
	for _, sup := range supervisors {
		if !WithinCapacity(projects, sup) {
			out = append(out, Violation{
				Kind:         ViolationSupervisorCapacity,
				SupervisorID: sup.UserID,
				Assigned:     supervisorLoad(projects, sup.UserID),
				LowerBound:   sup.ProjectAllocationLowerBound,
				UpperBound:   sup.ProjectAllocationUpperBound,
			})
		}
	}
	return out
}
