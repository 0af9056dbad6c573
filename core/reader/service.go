package reader

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
)

var ErrNotFound = errors.New("reader not found")

type (
	// MatchingReader is one reader row of the allocator request.
	// The "acceptable" set is never sent: it is the complement of the three
	// explicit sets and the allocator infers it.
	MatchingReader struct {
		ID           string   `json:"id"`
		Preferable   []string `json:"preferable"`
		Unacceptable []string `json:"unacceptable"`
		Conflict     []string `json:"conflict"`
		Capacity     int      `json:"capacity"`
	}

	// MatchingInput is the reader-allocation request body.
	MatchingInput struct {
		AllProjects []string         `json:"allProjects"`
		AllReaders  []MatchingReader `json:"allReaders"`
	}

	MatchingAssignment struct {
		ReaderID  string `json:"readerId"`
		ProjectID string `json:"projectId"`
	}

	// MatchingOutput is the allocator's validated response.
	MatchingOutput struct {
		Assignments        []MatchingAssignment `json:"assignments"`
		UnassignedProjects []string             `json:"unassignedProjects"`
		Load               map[string]int       `json:"load"` // readerID -> assigned count
	}

	// Allocator crosses the trust boundary to the external matching server.
	// Implementations must validate the raw response and fail loudly on any
	// shape mismatch; callers never see partial results.
	Allocator interface {
		AllocateReaders(ctx context.Context, in MatchingInput) (MatchingOutput, error)
	}

	Repository interface {
		QueryReaders(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]Reader, error)
		GetReaderByID(ctx context.Context, instanceID, readerID string, exec ...core.DBExecutor) (Reader, error)
		QueryProjectIDs(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]string, error)
		SaveReaderPreferences(ctx context.Context, instanceID, readerID string, np NewPreferences, exec ...core.DBExecutor) error
		SaveReaderAssignments(ctx context.Context, instanceID string, assignments []MatchingAssignment, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		QueryAll(ctx context.Context, instanceID string) ([]Reader, error)
		SavePreferences(ctx context.Context, instanceID, readerID string, np NewPreferences) error
		RunAllocation(ctx context.Context, instanceID string) (MatchingOutput, error)
	}

	service struct {
		repo      Repository
		allocator Allocator
		logger    core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, allocator Allocator, logger core.Logger) *service {
	return &service{
		repo:      repo,
		allocator: allocator,
		logger:    logger,
	}
}

func (svc *service) QueryAll(ctx context.Context, instanceID string) ([]Reader, error) {
	return svc.repo.QueryReaders(ctx, instanceID)
}

func (svc *service) SavePreferences(ctx context.Context, instanceID, readerID string, np NewPreferences) error {
	if err := np.Validate(); err != nil {
		return err
	}
	return svc.repo.SaveReaderPreferences(ctx, instanceID, readerID, np)
}

// BuildMatchingInput maps every reader's raw preference sets into the
// allocator request shape.
func BuildMatchingInput(projectIDs []string, readers []Reader) MatchingInput {
	in := MatchingInput{
		AllProjects: projectIDs,
		AllReaders:  make([]MatchingReader, 0, len(readers)),
	}
	for _, r := range readers {
		in.AllReaders = append(in.AllReaders, MatchingReader{
			ID:           r.ID,
			Preferable:   r.Preferable,
			Unacceptable: r.Unacceptable,
			Conflict:     r.Conflict,
			Capacity:     r.Capacity,
		})
	}
	return in
}

// RunAllocation performs one reader-allocation run: build the request,
// call the external allocator, persist the validated result.
func (svc *service) RunAllocation(ctx context.Context, instanceID string) (MatchingOutput, error) {
	projectIDs, err := svc.repo.QueryProjectIDs(ctx, instanceID)
	if err != nil {
		return MatchingOutput{}, errors.Wrap(err, "querying project ids")
	}
	readers, err := svc.repo.QueryReaders(ctx, instanceID)
	if err != nil {
		return MatchingOutput{}, errors.Wrap(err, "querying readers")
	}

	out, err := svc.allocator.AllocateReaders(ctx, BuildMatchingInput(projectIDs, readers))
	if err != nil {
		return MatchingOutput{}, errors.Wrap(err, "allocating readers")
	}

	if err := svc.repo.SaveReaderAssignments(ctx, instanceID, out.Assignments); err != nil {
		return MatchingOutput{}, errors.Wrap(err, "saving reader assignments")
	}
	svc.logger.Info("reader allocation complete", map[string]interface{}{
		"instance": instanceID, "assigned": len(out.Assignments), "unassigned": len(out.UnassignedProjects),
	})
	return out, nil
}
