package allocation

import "testing"

func TestAvailableForMatching(t *testing.T) {
	p1 := Project{ID: "P1", SupervisorID: "S1", CapacityUpperBound: 2}
	p2 := Project{ID: "P2", SupervisorID: "S1", CapacityUpperBound: 1}
	p3 := Project{ID: "P3", SupervisorID: "S2", CapacityUpperBound: 5}

	s1 := Supervisor{UserID: "S1", ProjectAllocationUpperBound: 2, Projects: []Project{p1, p2}}
	s2 := Supervisor{UserID: "S2", ProjectAllocationUpperBound: 3, Projects: []Project{p3}}

	tests := []struct {
		name             string
		supervisors      []Supervisor
		supervisorCounts map[string]int
		projectCounts    map[string]int
		wantSupervisors  []string
		wantProjects     []string
	}{
		{
			name:        "empty input yields empty output",
			supervisors: nil, supervisorCounts: nil, projectCounts: nil,
			wantSupervisors: []string{}, wantProjects: []string{},
		},
		{
			name:        "supervisor exactly at bound is excluded",
			supervisors: []Supervisor{s1, s2},
			supervisorCounts: map[string]int{"S1": 2},
			wantSupervisors:  []string{"S2"},
			wantProjects:     []string{"P3"},
		},
		{
			name:        "one unit of slack includes the supervisor",
			supervisors: []Supervisor{s1, s2},
			supervisorCounts: map[string]int{"S1": 1},
			wantSupervisors:  []string{"S1", "S2"},
			wantProjects:     []string{"P1", "P2", "P3"},
		},
		{
			name:        "full project dropped while supervisor kept",
			supervisors: []Supervisor{s1, s2},
			projectCounts:   map[string]int{"P2": 1},
			wantSupervisors: []string{"S1", "S2"},
			wantProjects:    []string{"P1", "P3"},
		},
		{
			name:        "project of excluded supervisor dropped despite its own slack",
			supervisors: []Supervisor{s1, s2},
			supervisorCounts: map[string]int{"S1": 2},
			projectCounts:    map[string]int{"P1": 0, "P2": 0},
			wantSupervisors:  []string{"S2"},
			wantProjects:     []string{"P3"},
		},
		{
			name:        "missing counts default to zero",
			supervisors: []Supervisor{s1},
			wantSupervisors: []string{"S1"},
			wantProjects:    []string{"P1", "P2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := AvailableForMatching(tt.supervisors, tt.supervisorCounts, tt.projectCounts)

			gotSups := make([]string, 0, len(view.Supervisors))
			for _, s := range view.Supervisors {
				gotSups = append(gotSups, s.UserID)
			}
			gotProjs := make([]string, 0, len(view.Projects))
			for _, p := range view.Projects {
				gotProjs = append(gotProjs, p.ID)
			}

			assertIDs(t, "supervisors", gotSups, tt.wantSupervisors)
			assertIDs(t, "projects", gotProjs, tt.wantProjects)
		})
	}
}

func assertIDs(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", what, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %s, want %s", what, i, got[i], want[i])
		}
	}
}
