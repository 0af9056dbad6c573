package allocation

type (
	// MatchingStudent is one student row of the matching input.
	// ProjectPreferences lists project IDs ascending by rank (rank 1 first).
	MatchingStudent struct {
		ID                 string   `json:"id"`
		ProjectPreferences []string `json:"projectPreferences"`
	}

	// MatchingProject is one project row of the matching input.
	MatchingProject struct {
		ID           string `json:"id"`
		LowerBound   int    `json:"lowerBound"`
		UpperBound   int    `json:"upperBound"`
		SupervisorID string `json:"supervisorId"`
	}

	// MatchingSupervisor carries a supervisor's allocation bounds.
	MatchingSupervisor struct {
		ID         string `json:"id"`
		LowerBound int    `json:"lowerBound"`
		Target     int    `json:"target"`
		UpperBound int    `json:"upperBound"`
	}

	// MatchingInput is the constraint-satisfaction input consumed by the
	// external matching algorithm. It is rebuilt fresh per run, never persisted.
	MatchingInput struct {
		Students    []MatchingStudent    `json:"students"`
		Projects    []MatchingProject    `json:"projects"`
		Supervisors []MatchingSupervisor `json:"supervisors"`
	}
)

// BuildMatchingInput joins the reconciled supervisor/project view with the
// unallocated students and their ranked preferences.
//
// Students with zero preferences are included unconditionally; what to do
// with them is the allocator's policy, not ours.
func BuildMatchingInput(students []Student, view MatchingView) MatchingInput {
	in := MatchingInput{
		Students:    make([]MatchingStudent, 0, len(students)),
		Projects:    make([]MatchingProject, 0, len(view.Projects)),
		Supervisors: make([]MatchingSupervisor, 0, len(view.Supervisors)),
	}

	for _, s := range students {
		prefs := append([]Preference(nil), s.Preferences...)
		SortPreferences(prefs)

		ms := MatchingStudent{ID: s.ID, ProjectPreferences: make([]string, 0, len(prefs))}
		for _, p := range prefs {
			ms.ProjectPreferences = append(ms.ProjectPreferences, p.ProjectID)
		}
		in.Students = append(in.Students, ms)
	}

	for _, p := range view.Projects {
		in.Projects = append(in.Projects, MatchingProject{
			ID:           p.ID,
			LowerBound:   p.CapacityLowerBound,
			UpperBound:   p.CapacityUpperBound,
			SupervisorID: p.SupervisorID,
		})
	}

	for _, sup := range view.Supervisors {
		in.Supervisors = append(in.Supervisors, MatchingSupervisor{
			ID:         sup.UserID,
			LowerBound: sup.ProjectAllocationLowerBound,
			Target:     sup.ProjectAllocationTarget,
			UpperBound: sup.ProjectAllocationUpperBound,
		})
	}
	return in
}
