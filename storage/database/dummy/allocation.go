package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
)

type allocationRepository struct {
	db   *allocationTable
	inst *instanceTable
}

var _ allocation.Repository = (*allocationRepository)(nil) // interface compliance check

func NewAllocationRepository(db *DB) allocation.Repository {
	return &allocationRepository{db: db.allocation, inst: db.instance}
}

func (repo *allocationRepository) QuerySupervisors(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]allocation.Supervisor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sups := make([]allocation.Supervisor, 0, len(repo.db.supervisors[instanceID]))
	for _, sup := range repo.db.supervisors[instanceID] {
		sup.Projects = nil
		for _, p := range repo.db.projects[instanceID] {
			if p.SupervisorID == sup.UserID {
				sup.Projects = append(sup.Projects, *p)
			}
		}
		sups = append(sups, sup)
	}
	return sups, nil
}

func (repo *allocationRepository) QueryProjects(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]allocation.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	projects := make([]allocation.Project, 0, len(repo.db.projects[instanceID]))
	for _, p := range repo.db.projects[instanceID] {
		projects = append(projects, *p)
	}
	return projects, nil
}

func (repo *allocationRepository) QueryStudents(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]allocation.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]allocation.Student, 0, len(repo.db.students[instanceID]))
	for _, s := range repo.db.students[instanceID] {
		students = append(students, *s)
	}
	return students, nil
}

func (repo *allocationRepository) QueryUnallocatedStudents(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]allocation.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	allocated := make(map[string]struct{})
	for _, p := range repo.db.projects[instanceID] {
		for _, sid := range p.AllocatedTo {
			allocated[sid] = struct{}{}
		}
	}

	var students []allocation.Student
	for _, s := range repo.db.students[instanceID] {
		if _, ok := allocated[s.ID]; !ok {
			students = append(students, *s)
		}
	}
	return students, nil
}

func (repo *allocationRepository) QueryStudentEmails(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]string(nil), repo.db.emails[instanceID]...), nil
}

func (repo *allocationRepository) SaveStudentPreferences(_ context.Context, instanceID, studentID string, projectIDs []string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	prefs := make([]allocation.Preference, 0, len(projectIDs))
	for i, pid := range projectIDs {
		prefs = append(prefs, allocation.Preference{StudentID: studentID, ProjectID: pid, Rank: i + 1})
	}

	for _, s := range repo.db.students[instanceID] {
		if s.ID == studentID {
			s.Preferences = prefs
			return nil
		}
	}
	repo.db.students[instanceID] = append(repo.db.students[instanceID], &allocation.Student{
		ID:          studentID,
		InstanceID:  instanceID,
		Preferences: prefs,
	})
	return nil
}

func (repo *allocationRepository) SaveAssignments(_ context.Context, instanceID string, assignments []allocation.Assignment, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.assignments[instanceID] = append([]allocation.Assignment(nil), assignments...)
	return nil
}

func (repo *allocationRepository) UpdateProjectAllocation(_ context.Context, projectID string, studentIDs []string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, projects := range repo.db.projects {
		for _, p := range projects {
			if p.ID == projectID {
				p.AllocatedTo = append([]string(nil), studentIDs...)
				return nil
			}
		}
	}
	return allocation.ErrNotFound
}

func (repo *allocationRepository) MarkPublished(_ context.Context, instanceID string, at time.Time, _ ...core.DBExecutor) error {
	repo.inst.Lock()
	defer repo.inst.Unlock()
	repo.inst.published[instanceID] = at
	return nil
}
