package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
)

type (
	projectRow struct {
		ID                 string         `db:"id"`
		InstanceID         string         `db:"instance_id"`
		SupervisorID       string         `db:"supervisor_id"`
		Title              string         `db:"title"`
		CapacityLowerBound int            `db:"capacity_lower_bound"`
		CapacityUpperBound int            `db:"capacity_upper_bound"`
		AllocatedTo        pq.StringArray `db:"allocated_to"`
	}

	supervisorRow struct {
		UserID                      string `db:"user_id"`
		InstanceID                  string `db:"instance_id"`
		ProjectAllocationLowerBound int    `db:"project_allocation_lower_bound"`
		ProjectAllocationTarget     int    `db:"project_allocation_target"`
		ProjectAllocationUpperBound int    `db:"project_allocation_upper_bound"`
	}

	preferenceRow struct {
		InstanceID string `db:"instance_id"`
		StudentID  string `db:"student_id"`
		ProjectID  string `db:"project_id"`
		Rank       int    `db:"rank"`
	}
)

func (r projectRow) toProject() allocation.Project {
	return allocation.Project{
		ID:                 r.ID,
		InstanceID:         r.InstanceID,
		SupervisorID:       r.SupervisorID,
		Title:              r.Title,
		CapacityLowerBound: r.CapacityLowerBound,
		CapacityUpperBound: r.CapacityUpperBound,
		AllocatedTo:        r.AllocatedTo,
	}
}

type allocationRepository struct {
	db *sqlx.DB
}

var _ allocation.Repository = (*allocationRepository)(nil) // interface compliance check

func NewAllocationRepository(db *sql.DB, conf *core.Config) *allocationRepository {
	return &allocationRepository{db: sqlx.NewDb(db, conf.Database.Engine)}
}

func (repo allocationRepository) queryProjects(ctx context.Context, exe sqlx.ExtContext, instanceID string) ([]allocation.Project, error) {
	var rows []projectRow
	query := exe.Rebind(`SELECT * FROM project WHERE instance_id = ? ORDER BY title`)
	if err := sqlx.SelectContext(ctx, exe, &rows, query, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]allocation.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.toProject())
	}
	return projects, nil
}

func (repo allocationRepository) QuerySupervisors(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]allocation.Supervisor, error) {
	exe := getExec(repo.db, exec)

	var rows []supervisorRow
	query := exe.Rebind(`SELECT * FROM supervisor WHERE instance_id = ?`)
	if err := sqlx.SelectContext(ctx, exe, &rows, query, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying supervisors")
	}

	projects, err := repo.queryProjects(ctx, exe, instanceID)
	if err != nil {
		return nil, err
	}
	bySupervisor := make(map[string][]allocation.Project, len(rows))
	for _, p := range projects {
		bySupervisor[p.SupervisorID] = append(bySupervisor[p.SupervisorID], p)
	}

	supervisors := make([]allocation.Supervisor, 0, len(rows))
	for _, r := range rows {
		supervisors = append(supervisors, allocation.Supervisor{
			UserID:                      r.UserID,
			InstanceID:                  r.InstanceID,
			ProjectAllocationLowerBound: r.ProjectAllocationLowerBound,
			ProjectAllocationTarget:     r.ProjectAllocationTarget,
			ProjectAllocationUpperBound: r.ProjectAllocationUpperBound,
			Projects:                    bySupervisor[r.UserID],
		})
	}
	return supervisors, nil
}

func (repo allocationRepository) QueryProjects(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]allocation.Project, error) {
	return repo.queryProjects(ctx, getExec(repo.db, exec), instanceID)
}

func (repo allocationRepository) queryStudents(ctx context.Context, exe sqlx.ExtContext, instanceID string, unallocatedOnly bool) ([]allocation.Student, error) {
	query := `SELECT instance_id, student_id FROM enrollment WHERE instance_id = ?`
	if unallocatedOnly {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM project p WHERE p.instance_id = enrollment.instance_id AND student_id = ANY (p.allocated_to))`
	}
	var enrolled []struct {
		InstanceID string `db:"instance_id"`
		StudentID  string `db:"student_id"`
	}
	if err := sqlx.SelectContext(ctx, exe, &enrolled, exe.Rebind(query), instanceID); err != nil {
		return nil, errors.Wrap(err, "querying enrolled students")
	}

	var prefs []preferenceRow
	prefQuery := exe.Rebind(`SELECT * FROM student_preference WHERE instance_id = ? ORDER BY student_id, rank`)
	if err := sqlx.SelectContext(ctx, exe, &prefs, prefQuery, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying student preferences")
	}
	byStudent := make(map[string][]allocation.Preference)
	for _, p := range prefs {
		byStudent[p.StudentID] = append(byStudent[p.StudentID], allocation.Preference{
			StudentID: p.StudentID,
			ProjectID: p.ProjectID,
			Rank:      p.Rank,
		})
	}

	students := make([]allocation.Student, 0, len(enrolled))
	for _, e := range enrolled {
		students = append(students, allocation.Student{
			ID:          e.StudentID,
			InstanceID:  e.InstanceID,
			Preferences: byStudent[e.StudentID],
		})
	}
	return students, nil
}

func (repo allocationRepository) QueryStudents(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]allocation.Student, error) {
	return repo.queryStudents(ctx, getExec(repo.db, exec), instanceID, false)
}

func (repo allocationRepository) QueryUnallocatedStudents(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]allocation.Student, error) {
	return repo.queryStudents(ctx, getExec(repo.db, exec), instanceID, true)
}

func (repo allocationRepository) QueryStudentEmails(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]string, error) {
	exe := getExec(repo.db, exec)

	var emails []string
	query := exe.Rebind(`
		SELECT u.email FROM "user" u
		JOIN enrollment e ON e.student_id = u.id
		WHERE e.instance_id = ? AND u.email IS NOT NULL`)
	if err := sqlx.SelectContext(ctx, exe, &emails, query, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying student emails")
	}
	return emails, nil
}

func (repo allocationRepository) SaveStudentPreferences(ctx context.Context, instanceID, studentID string, projectIDs []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	del := exe.Rebind(`DELETE FROM student_preference WHERE instance_id = ? AND student_id = ?`)
	if _, err := exe.ExecContext(ctx, del, instanceID, studentID); err != nil {
		return errors.Wrap(err, "clearing student preferences")
	}

	ins := exe.Rebind(`INSERT INTO student_preference (instance_id, student_id, project_id, rank) VALUES (?, ?, ?, ?)`)
	for i, pid := range projectIDs {
		if _, err := exe.ExecContext(ctx, ins, instanceID, studentID, pid, i+1); err != nil {
			return errors.Wrap(err, "inserting student preference")
		}
	}
	return nil
}

func (repo allocationRepository) SaveAssignments(ctx context.Context, instanceID string, assignments []allocation.Assignment, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	del := exe.Rebind(`DELETE FROM assignment WHERE instance_id = ?`)
	if _, err := exe.ExecContext(ctx, del, instanceID); err != nil {
		return errors.Wrap(err, "clearing assignments")
	}

	ins := exe.Rebind(`INSERT INTO assignment (instance_id, student_id, project_id, rank) VALUES (?, ?, ?, ?)`)
	for _, a := range assignments {
		if _, err := exe.ExecContext(ctx, ins, instanceID, a.StudentID, a.ProjectID, a.Rank); err != nil {
			return errors.Wrap(err, "inserting assignment")
		}
	}
	return nil
}

func (repo allocationRepository) UpdateProjectAllocation(ctx context.Context, projectID string, studentIDs []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query := exe.Rebind(`UPDATE project SET allocated_to = ? WHERE id = ?`)
	if _, err := exe.ExecContext(ctx, query, pq.StringArray(studentIDs), projectID); err != nil {
		return errors.Wrap(err, "updating project allocation")
	}
	return nil
}

func (repo allocationRepository) MarkPublished(ctx context.Context, instanceID string, at time.Time, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query := exe.Rebind(`UPDATE instance SET published_at = ? WHERE id = ?`)
	if _, err := exe.ExecContext(ctx, query, at.UTC(), instanceID); err != nil {
		return errors.Wrap(err, "marking allocation published")
	}
	return nil
}
