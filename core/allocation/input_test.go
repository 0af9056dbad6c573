package allocation

import (
	"reflect"
	"testing"
)

func TestBuildMatchingInput(t *testing.T) {
	view := MatchingView{
		Supervisors: []Supervisor{
			{UserID: "S1", ProjectAllocationLowerBound: 1, ProjectAllocationTarget: 2, ProjectAllocationUpperBound: 3},
		},
		Projects: []Project{
			{ID: "P1", SupervisorID: "S1", CapacityLowerBound: 0, CapacityUpperBound: 2},
			{ID: "P2", SupervisorID: "S1", CapacityLowerBound: 1, CapacityUpperBound: 1},
		},
	}
	students := []Student{
		{ID: "stu1", Preferences: []Preference{
			// deliberately out of order; the builder must re-sort by rank
			{StudentID: "stu1", ProjectID: "P2", Rank: 2},
			{StudentID: "stu1", ProjectID: "P1", Rank: 1},
		}},
		{ID: "stu2"}, // zero preferences; still included
	}

	in := BuildMatchingInput(students, view)

	if len(in.Students) != 2 {
		t.Fatalf("students = %d, want 2 (zero-preference students are included)", len(in.Students))
	}
	if want := []string{"P1", "P2"}; !reflect.DeepEqual(in.Students[0].ProjectPreferences, want) {
		t.Errorf("preferences = %v, want %v (ascending by rank)", in.Students[0].ProjectPreferences, want)
	}
	if got := in.Students[1].ProjectPreferences; len(got) != 0 {
		t.Errorf("zero-preference student preferences = %v, want empty", got)
	}

	if len(in.Projects) != 2 || in.Projects[0].ID != "P1" || in.Projects[1].ID != "P2" {
		t.Errorf("projects = %+v, want P1, P2", in.Projects)
	}
	if len(in.Supervisors) != 1 || in.Supervisors[0].ID != "S1" || in.Supervisors[0].Target != 2 {
		t.Errorf("supervisors = %+v, want S1 with target 2", in.Supervisors)
	}
}
