package allocation

import (
	"sort"

	"github.com/trezcool/mgawo/core"
)

type (
	// Project is a supervisor-owned project students can be allocated to.
	Project struct {
		ID                 string   `json:"id"`
		InstanceID         string   `json:"instance_id"`
		SupervisorID       string   `json:"supervisor_id"`
		Title              string   `json:"title"`
		CapacityLowerBound int      `json:"capacity_lower_bound"`
		CapacityUpperBound int      `json:"capacity_upper_bound"`
		AllocatedTo        []string `json:"allocated_to"` // student user IDs
	}

	// Supervisor is a supervisor's capacity record within one instance,
	// with the projects they own.
	Supervisor struct {
		UserID                      string    `json:"user_id"`
		InstanceID                  string    `json:"instance_id"`
		ProjectAllocationLowerBound int       `json:"project_allocation_lower_bound"`
		ProjectAllocationTarget     int       `json:"project_allocation_target"`
		ProjectAllocationUpperBound int       `json:"project_allocation_upper_bound"`
		Projects                    []Project `json:"projects"`
	}

	// Preference is a student's 1-based ranking of a project;
	// rank 1 is most preferred. Ranks are unique per student.
	Preference struct {
		StudentID string `json:"student_id"`
		ProjectID string `json:"project_id"`
		Rank      int    `json:"rank"`
	}

	// Student is a student row with their submitted preferences,
	// ordered ascending by rank.
	Student struct {
		ID          string       `json:"id"`
		InstanceID  string       `json:"instance_id"`
		Preferences []Preference `json:"preferences"`
	}
)

// SortPreferences orders prefs ascending by rank, in place.
// Downstream rank-based scoring is positional, so this ordering is a hard contract.
func SortPreferences(prefs []Preference) {
	sort.SliceStable(prefs, func(i, j int) bool { return prefs[i].Rank < prefs[j].Rank })
}

// NewPreferences is a student's preference submission payload.
type NewPreferences struct {
	ProjectIDs []string `json:"project_ids" validate:"required,unique,dive,required"`
}

// Validate checks the submission against the instance's preference count bounds
// and the per-supervisor cap.
func (np *NewPreferences) Validate(minCount, maxCount, maxPerSupervisor int, supervisorOf map[string]string) error {
	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	if n := len(np.ProjectIDs); n < minCount || n > maxCount {
		return core.NewValidationError(nil, core.FieldError{
			Field: "project_ids",
			Error: "preference count out of the instance's bounds",
		})
	}

	perSupervisor := make(map[string]int, len(np.ProjectIDs))
	for _, pid := range np.ProjectIDs {
		supID, ok := supervisorOf[pid]
		if !ok {
			return core.NewValidationError(nil, core.FieldError{
				Field: "project_ids",
				Error: "unknown project: " + pid,
			})
		}
		perSupervisor[supID]++
		if perSupervisor[supID] > maxPerSupervisor {
			return core.NewValidationError(nil, core.FieldError{
				Field: "project_ids",
				Error: "too many preferences for one supervisor",
			})
		}
	}
	return nil
}
