package allocation

// MatchingView is the "still has slack" subset of an instance's supervisors
// and projects, ready to be fed to matching.
type MatchingView struct {
	Supervisors []Supervisor
	Projects    []Project
}

// AvailableForMatching filters out supervisors and projects whose upper bound
// is already reached. Counts are supplied by the caller (already-allocated
// students per id); a missing entry counts as zero.
//
// Filtering is two-stage on purpose: supervisors first, then each retained
// supervisor's projects. A project whose supervisor is exhausted is dropped
// even if the project itself still has slack.
func AvailableForMatching(supervisors []Supervisor, supervisorCounts, projectCounts map[string]int) MatchingView {
	view := MatchingView{
		Supervisors: make([]Supervisor, 0, len(supervisors)),
		Projects:    make([]Project, 0),
	}

	for _, sup := range supervisors {
		// strict inequality: a supervisor exactly at bound has no slack
		if sup.ProjectAllocationUpperBound <= supervisorCounts[sup.UserID] {
			continue
		}

		retained := sup
		retained.Projects = make([]Project, 0, len(sup.Projects))
		for _, p := range sup.Projects {
			if p.CapacityUpperBound > projectCounts[p.ID] {
				retained.Projects = append(retained.Projects, p)
			}
		}

		view.Supervisors = append(view.Supervisors, retained)
		view.Projects = append(view.Projects, retained.Projects...)
	}
	return view
}
