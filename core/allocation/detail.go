package allocation

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// UnassignedProjectID is the sentinel the matching service uses for a student
// it deliberately left without a project. It is not an error.
const UnassignedProjectID = "0"

// unassignedDisplayID is what a deliberately unassigned row shows as project.
const unassignedDisplayID = "-"

type (
	// Assignment is one (student, project, rank) triple of the matching result.
	Assignment struct {
		StudentID string `json:"studentId"`
		ProjectID string `json:"projectId"`
		Rank      int    `json:"rank"`
	}

	// DetailRow is one row of the adjustment/review table. StudentRank is NaN
	// for deliberately unassigned students; NaN is the downstream "no rank"
	// display marker.
	DetailRow struct {
		StudentID   string  `json:"student_id"`
		ProjectID   string  `json:"project_id"`
		StudentRank float64 `json:"student_rank"`
	}
)

// MarshalJSON renders a NaN rank as null; NaN itself is not representable in JSON.
func (r DetailRow) MarshalJSON() ([]byte, error) {
	var rank interface{}
	if !math.IsNaN(r.StudentRank) {
		rank = r.StudentRank
	}
	return json.Marshal(struct {
		StudentID   string      `json:"student_id"`
		ProjectID   string      `json:"project_id"`
		StudentRank interface{} `json:"student_rank"`
	}{r.StudentID, r.ProjectID, rank})
}

// DetailRows resolves matching assignments against the instance's live student
// and project rows. A referenced id that cannot be found is a hard error: it
// means the matching service and our dataset have drifted apart, and silently
// skipping the row would hide that.
func DetailRows(assignments []Assignment, students []Student, projects []Project) ([]DetailRow, error) {
	studentIDs := make(map[string]struct{}, len(students))
	for _, s := range students {
		studentIDs[s.ID] = struct{}{}
	}
	projectIDs := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		projectIDs[p.ID] = struct{}{}
	}

	rows := make([]DetailRow, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := studentIDs[a.StudentID]; !ok {
			return nil, errors.New("student not found")
		}

		if a.ProjectID == UnassignedProjectID {
			rows = append(rows, DetailRow{
				StudentID:   a.StudentID,
				ProjectID:   unassignedDisplayID,
				StudentRank: math.NaN(),
			})
			continue
		}

		if _, ok := projectIDs[a.ProjectID]; !ok {
			return nil, errors.Errorf("project not found: %s", a.ProjectID)
		}
		rows = append(rows, DetailRow{
			StudentID:   a.StudentID,
			ProjectID:   a.ProjectID,
			StudentRank: float64(a.Rank),
		})
	}
	return rows, nil
}
