package allocation

import "testing"

func TestWithinBounds(t *testing.T) {
	tests := []struct {
		name string
		p    Project
		want bool
	}{
		{"oversubscribed", Project{CapacityLowerBound: 1, CapacityUpperBound: 3, AllocatedTo: []string{"a", "b", "c", "d"}}, false},
		{"within", Project{CapacityLowerBound: 1, CapacityUpperBound: 3, AllocatedTo: []string{"a"}}, true},
		{"at upper bound", Project{CapacityLowerBound: 1, CapacityUpperBound: 3, AllocatedTo: []string{"a", "b", "c"}}, true},
		{"under lower bound", Project{CapacityLowerBound: 1, CapacityUpperBound: 3}, false},
		{"zero lower bound, empty", Project{CapacityLowerBound: 0, CapacityUpperBound: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinBounds(tt.p); got != tt.want {
				t.Errorf("WithinBounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinCapacitySumsAcrossAllProjects(t *testing.T) {
	projects := []Project{
		{ID: "P1", SupervisorID: "S1", AllocatedTo: []string{"a", "b"}},
		{ID: "P2", SupervisorID: "S1", AllocatedTo: []string{"c"}},
		{ID: "P3", SupervisorID: "S2", AllocatedTo: []string{"d"}},
	}

	over := Supervisor{UserID: "S1", ProjectAllocationUpperBound: 2}
	if WithinCapacity(projects, over) {
		t.Error("WithinCapacity() = true for supervisor with 3 assigned across projects and bound 2")
	}

	ok := Supervisor{UserID: "S1", ProjectAllocationUpperBound: 3}
	if !WithinCapacity(projects, ok) {
		t.Error("WithinCapacity() = false for supervisor exactly at bound 3")
	}

	other := Supervisor{UserID: "S2", ProjectAllocationUpperBound: 1}
	if !WithinCapacity(projects, other) {
		t.Error("WithinCapacity() must only count the supervisor's own projects")
	}
}

func TestViolations(t *testing.T) {
	projects := []Project{
		{ID: "P1", SupervisorID: "S1", CapacityLowerBound: 0, CapacityUpperBound: 1, AllocatedTo: []string{"a", "b"}},
		{ID: "P2", SupervisorID: "S1", CapacityLowerBound: 0, CapacityUpperBound: 5, AllocatedTo: []string{"c"}},
	}
	supervisors := []Supervisor{
		{UserID: "S1", ProjectAllocationLowerBound: 0, ProjectAllocationUpperBound: 2},
	}

	got := Violations(projects, supervisors)
	if len(got) != 2 {
		t.Fatalf("violations = %+v, want project P1 bounds + supervisor S1 capacity", got)
	}
	if got[0].Kind != ViolationProjectBounds || got[0].ProjectID != "P1" || got[0].Assigned != 2 {
		t.Errorf("violations[0] = %+v, want P1 bounds violation with 2 assigned", got[0])
	}
	if got[1].Kind != ViolationSupervisorCapacity || got[1].SupervisorID != "S1" || got[1].Assigned != 3 {
		t.Errorf("violations[1] = %+v, want S1 capacity violation with 3 assigned", got[1])
	}
}
