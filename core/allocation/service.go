package allocation

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
)

var (
	// errors
	ErrNotFound             = errors.New("allocation not found")
	ErrUnresolvedViolations = errors.New("allocation has unresolved capacity violations")
)

type (
	// MatchingOutput is the external allocator's answer for a student run.
	MatchingOutput struct {
		Assignments []Assignment `json:"assignments"`
	}

	// Matcher runs the external constraint-satisfaction step.
	// One outbound call per run; the result is schema-validated by the
	// implementation and returned whole or not at all.
	Matcher interface {
		MatchStudents(ctx context.Context, in MatchingInput) (MatchingOutput, error)
	}

	Repository interface {
		QuerySupervisors(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]Supervisor, error)
		QueryProjects(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]Project, error)
		QueryStudents(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]Student, error)
		QueryUnallocatedStudents(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]Student, error)
		QueryStudentEmails(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]string, error)
		SaveStudentPreferences(ctx context.Context, instanceID, studentID string, projectIDs []string, exec ...core.DBExecutor) error
		SaveAssignments(ctx context.Context, instanceID string, assignments []Assignment, exec ...core.DBExecutor) error
		UpdateProjectAllocation(ctx context.Context, projectID string, studentIDs []string, exec ...core.DBExecutor) error
		MarkPublished(ctx context.Context, instanceID string, at time.Time, exec ...core.DBExecutor) error
	}

	// Snapshot is the live, admin-editable view of a post-match assignment.
	Snapshot struct {
		Projects    []Project    `json:"projects"`
		Supervisors []Supervisor `json:"supervisors"`
		Violations  []Violation  `json:"violations"`
	}

	ServiceInterface interface {
		SubmitPreferences(ctx context.Context, instanceID, studentID string, np NewPreferences, minCount, maxCount, maxPerSupervisor int) error
		RunMatching(ctx context.Context, instanceID string) ([]DetailRow, error)
		AdjustmentSnapshot(ctx context.Context, instanceID string) (Snapshot, error)
		MoveStudent(ctx context.Context, instanceID, studentID, toProjectID string) (Snapshot, error)
		Publish(ctx context.Context, instanceID string) error
		SubmissionTarget(sup Supervisor) int
	}

	service struct {
		repo    Repository
		matcher Matcher
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, matcher Matcher, mailSvc core.EmailService, logger core.Logger) *service {
	return &service{
		repo:    repo,
		matcher: matcher,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// SubmitPreferences validates and stores a student's ranked project choices.
// The order of np.ProjectIDs is the ranking: first entry is rank 1.
func (svc *service) SubmitPreferences(ctx context.Context, instanceID, studentID string, np NewPreferences, minCount, maxCount, maxPerSupervisor int) error {
	projects, err := svc.repo.QueryProjects(ctx, instanceID)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	supervisorOf := make(map[string]string, len(projects))
	for _, p := range projects {
		supervisorOf[p.ID] = p.SupervisorID
	}

	if err := np.Validate(minCount, maxCount, maxPerSupervisor, supervisorOf); err != nil {
		return err
	}
	return svc.repo.SaveStudentPreferences(ctx, instanceID, studentID, np.ProjectIDs)
}

// RunMatching assembles the matching input from whatever still has slack,
// hands it to the external matcher and stores the resolved assignment.
func (svc *service) RunMatching(ctx context.Context, instanceID string) ([]DetailRow, error) {
	supervisors, err := svc.repo.QuerySupervisors(ctx, instanceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying supervisors")
	}
	projects, err := svc.repo.QueryProjects(ctx, instanceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	students, err := svc.repo.QueryUnallocatedStudents(ctx, instanceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying unallocated students")
	}

	supervisorCounts := make(map[string]int, len(supervisors))
	projectCounts := make(map[string]int, len(projects))
	for _, p := range projects {
		projectCounts[p.ID] = len(p.AllocatedTo)
		supervisorCounts[p.SupervisorID] += len(p.AllocatedTo)
	}

	view := AvailableForMatching(supervisors, supervisorCounts, projectCounts)
	in := BuildMatchingInput(students, view)

	out, err := svc.matcher.MatchStudents(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "matching students")
	}

	rows, err := DetailRows(out.Assignments, students, projects)
	if err != nil {
		return nil, errors.Wrap(err, "resolving matching result")
	}

	if err := svc.repo.SaveAssignments(ctx, instanceID, out.Assignments); err != nil {
		return nil, errors.Wrap(err, "saving assignments")
	}
	svc.logger.Info("matching run complete", map[string]interface{}{
		"instance": instanceID, "students": len(students), "assigned": len(rows),
	})
	return rows, nil
}

func (svc *service) AdjustmentSnapshot(ctx context.Context, instanceID string) (Snapshot, error) {
	supervisors, err := svc.repo.QuerySupervisors(ctx, instanceID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying supervisors")
	}
	projects, err := svc.repo.QueryProjects(ctx, instanceID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying projects")
	}
	return Snapshot{
		Projects:    projects,
		Supervisors: supervisors,
		Violations:  Violations(projects, supervisors),
	}, nil
}

// MoveStudent reassigns a student to another project (or off any project when
// toProjectID is empty). Resulting violations are reported, never rejected:
// the admin must be able to walk through an out-of-bounds state.
func (svc *service) MoveStudent(ctx context.Context, instanceID, studentID, toProjectID string) (Snapshot, error) {
	projects, err := svc.repo.QueryProjects(ctx, instanceID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying projects")
	}

	var target *Project
	for i := range projects {
		if projects[i].ID == toProjectID {
			target = &projects[i]
			break
		}
	}
	if toProjectID != "" && target == nil {
		return Snapshot{}, errors.Errorf("project not found: %s", toProjectID)
	}

	for i := range projects {
		p := &projects[i]
		removed := removeID(p.AllocatedTo, studentID)
		if len(removed) != len(p.AllocatedTo) {
			p.AllocatedTo = removed
			if err := svc.repo.UpdateProjectAllocation(ctx, p.ID, p.AllocatedTo); err != nil {
				return Snapshot{}, errors.Wrap(err, "removing student from project")
			}
		}
	}
	if target != nil {
		target.AllocatedTo = append(target.AllocatedTo, studentID)
		if err := svc.repo.UpdateProjectAllocation(ctx, target.ID, target.AllocatedTo); err != nil {
			return Snapshot{}, errors.Wrap(err, "adding student to project")
		}
	}

	return svc.AdjustmentSnapshot(ctx, instanceID)
}

// Publish commits the adjusted allocation and notifies students.
// It refuses to run while capacity violations remain.
func (svc *service) Publish(ctx context.Context, instanceID string) error {
	snap, err := svc.AdjustmentSnapshot(ctx, instanceID)
	if err != nil {
		return err
	}
	if len(snap.Violations) > 0 {
		return ErrUnresolvedViolations
	}

	if err := svc.repo.MarkPublished(ctx, instanceID, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "marking allocation published")
	}

	emails, err := svc.repo.QueryStudentEmails(ctx, instanceID)
	if err != nil {
		// publication already happened; notification failure is logged, not fatal
		svc.logger.Error(fmt.Sprintf("querying student emails: %v", err), err)
		return nil
	}
	msgs := make([]*core.EmailMessage, 0, len(emails))
	for _, addr := range emails {
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Address: addr}},
			Subject: "Your project allocation is available",
			BodyStr: "Your project allocation has been published. Log in to view your assigned project.",
		})
	}
	svc.mailSvc.SendMessages(msgs...)
	return nil
}

// SubmissionTarget is the number of projects this supervisor is asked to submit.
func (svc *service) SubmissionTarget(sup Supervisor) int {
	var allocated int
	for _, p := range sup.Projects {
		allocated += len(p.AllocatedTo)
	}
	return ComputeProjectSubmissionTarget(sup.ProjectAllocationTarget, allocated)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
