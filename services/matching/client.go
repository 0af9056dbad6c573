package matchingsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/reader"
)

const (
	studentMatchingPath = "/spa"
	readerMatchingPath  = "/rpa"
)

var errBadResponse = errors.New("matching server did not return a valid response")

// client talks to the external constraint-solver service.
//
// The solver sits outside our trust boundary: its responses are decoded into
// pointer-field shadow structs so that an absent field is distinguishable from
// a zero value, and any absent field fails the whole call. Callers never see
// a partially valid result.
type client struct {
	http    *http.Client
	baseURL string
}

var (
	_ allocation.Matcher = (*client)(nil)
	_ reader.Allocator   = (*client)(nil)
)

func NewClient(conf *core.Config) *client {
	return &client{
		http:    &http.Client{Timeout: conf.Matching.Timeout},
		baseURL: strings.TrimRight(conf.Matching.ServerURL, "/"),
	}
}

func (c *client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encoding matching request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building matching request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling matching server")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("matching server returned status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errBadResponse
	}
	return nil
}

// shadow structs; a nil field means the solver omitted it

type (
	rawStudentAssignment struct {
		StudentID *string `json:"studentId"`
		ProjectID *string `json:"projectId"`
		Rank      *int    `json:"rank"`
	}

	rawStudentOutput struct {
		Assignments *[]rawStudentAssignment `json:"assignments"`
	}

	rawReaderAssignment struct {
		ReaderID  *string `json:"readerId"`
		ProjectID *string `json:"projectId"`
	}

	rawReaderOutput struct {
		Assignments        *[]rawReaderAssignment `json:"assignments"`
		UnassignedProjects *[]string              `json:"unassignedProjects"`
		Load               *map[string]int        `json:"load"`
	}
)

func (c *client) MatchStudents(ctx context.Context, in allocation.MatchingInput) (allocation.MatchingOutput, error) {
	var raw rawStudentOutput
	if err := c.post(ctx, studentMatchingPath, in, &raw); err != nil {
		return allocation.MatchingOutput{}, err
	}
	if raw.Assignments == nil {
		return allocation.MatchingOutput{}, errBadResponse
	}

	out := allocation.MatchingOutput{Assignments: make([]allocation.Assignment, 0, len(*raw.Assignments))}
	for _, a := range *raw.Assignments {
		if a.StudentID == nil || a.ProjectID == nil || a.Rank == nil {
			return allocation.MatchingOutput{}, errBadResponse
		}
		out.Assignments = append(out.Assignments, allocation.Assignment{
			StudentID: *a.StudentID,
			ProjectID: *a.ProjectID,
			Rank:      *a.Rank,
		})
	}
	return out, nil
}

func (c *client) AllocateReaders(ctx context.Context, in reader.MatchingInput) (reader.MatchingOutput, error) {
	var raw rawReaderOutput
	if err := c.post(ctx, readerMatchingPath, in, &raw); err != nil {
		return reader.MatchingOutput{}, err
	}
	if raw.Assignments == nil || raw.UnassignedProjects == nil || raw.Load == nil {
		return reader.MatchingOutput{}, errBadResponse
	}

	out := reader.MatchingOutput{
		Assignments:        make([]reader.MatchingAssignment, 0, len(*raw.Assignments)),
		UnassignedProjects: *raw.UnassignedProjects,
		Load:               *raw.Load,
	}
	for _, a := range *raw.Assignments {
		if a.ReaderID == nil || a.ProjectID == nil {
			return reader.MatchingOutput{}, errBadResponse
		}
		out.Assignments = append(out.Assignments, reader.MatchingAssignment{
			ReaderID:  *a.ReaderID,
			ProjectID: *a.ProjectID,
		})
	}
	return out, nil
}
