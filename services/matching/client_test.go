package matchingsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/reader"
)

func newTestClient(url string) *client {
	return NewClient(&core.Config{
		Matching: core.MatchingConfig{ServerURL: url, Timeout: 2 * time.Second},
	})
}

func serve(t *testing.T, path, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			t.Errorf("path = %s, want %s", r.URL.Path, path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMatchStudents(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		srv := serve(t, "/spa", `{"assignments":[{"studentId":"S1","projectId":"P1","rank":2},{"studentId":"S2","projectId":"0","rank":1}]}`, http.StatusOK)

		out, err := newTestClient(srv.URL).MatchStudents(context.Background(), allocation.MatchingInput{})
		if err != nil {
			t.Fatalf("MatchStudents() error = %v", err)
		}
		if len(out.Assignments) != 2 {
			t.Fatalf("assignments = %+v, want 2", out.Assignments)
		}
		if a := out.Assignments[0]; a.StudentID != "S1" || a.ProjectID != "P1" || a.Rank != 2 {
			t.Errorf("assignments[0] = %+v", a)
		}
	})

	t.Run("missing assignments", func(t *testing.T) {
		srv := serve(t, "/spa", `{}`, http.StatusOK)

		if _, err := newTestClient(srv.URL).MatchStudents(context.Background(), allocation.MatchingInput{}); err != errBadResponse {
			t.Errorf("error = %v, want %v", err, errBadResponse)
		}
	})

	t.Run("missing rank on one assignment", func(t *testing.T) {
		srv := serve(t, "/spa", `{"assignments":[{"studentId":"S1","projectId":"P1"}]}`, http.StatusOK)

		if _, err := newTestClient(srv.URL).MatchStudents(context.Background(), allocation.MatchingInput{}); err != errBadResponse {
			t.Errorf("error = %v, want %v", err, errBadResponse)
		}
	})

	t.Run("server error status", func(t *testing.T) {
		srv := serve(t, "/spa", `oops`, http.StatusInternalServerError)

		if _, err := newTestClient(srv.URL).MatchStudents(context.Background(), allocation.MatchingInput{}); err == nil {
			t.Error("expected error on non-200 status")
		}
	})
}

func TestAllocateReaders(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		srv := serve(t, "/rpa", `{"assignments":[{"readerId":"R1","projectId":"P1"}],"unassignedProjects":["P2"],"load":{"R1":1}}`, http.StatusOK)

		out, err := newTestClient(srv.URL).AllocateReaders(context.Background(), reader.MatchingInput{})
		if err != nil {
			t.Fatalf("AllocateReaders() error = %v", err)
		}
		if len(out.Assignments) != 1 || out.Assignments[0].ReaderID != "R1" {
			t.Errorf("assignments = %+v", out.Assignments)
		}
		if len(out.UnassignedProjects) != 1 || out.UnassignedProjects[0] != "P2" {
			t.Errorf("unassignedProjects = %+v", out.UnassignedProjects)
		}
		if out.Load["R1"] != 1 {
			t.Errorf("load = %+v", out.Load)
		}
	})

	t.Run("missing load", func(t *testing.T) {
		srv := serve(t, "/rpa", `{"assignments":[],"unassignedProjects":[]}`, http.StatusOK)

		if _, err := newTestClient(srv.URL).AllocateReaders(context.Background(), reader.MatchingInput{}); err != errBadResponse {
			t.Errorf("error = %v, want %v", err, errBadResponse)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := serve(t, "/rpa", `not json`, http.StatusOK)

		if _, err := newTestClient(srv.URL).AllocateReaders(context.Background(), reader.MatchingInput{}); err != errBadResponse {
			t.Errorf("error = %v, want %v", err, errBadResponse)
		}
	})
}
