package tests

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/mgawo/apps/api/echo"
	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/reader"
	"github.com/trezcool/mgawo/core/user"
)

func Test_readerApi_submitPreferences(t *testing.T) {
	env := setup(t)

	rdr := env.createUser(t, "Reader", "reader1", "reader@test.cd", []string{user.RoleReader}, true)
	student := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	inst := env.createInstance(t, instance.StageReaderBidding)
	closed := env.createInstance(t, instance.StageReaderAllocation)

	ok := marchallObj(t, reader.NewPreferences{
		Preferable:   []string{"P1"},
		Unacceptable: []string{"P2"},
		Conflict:     []string{"P3"},
	})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/instances/" + inst.ID + "/reader-preferences", body: ok, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Reader required", path: "/v1/instances/" + inst.ID + "/reader-preferences", body: ok,
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			// the half-open gate excludes READER_ALLOCATION itself
			name: "Stage gated", path: "/v1/instances/" + closed.ID + "/reader-preferences", body: ok,
			token: getToken(t, rdr), wantCode: http.StatusForbidden, wantData: marchallObj(t, errStageClosed),
		},
		{
			name: "Overlapping sets rejected", path: "/v1/instances/" + inst.ID + "/reader-preferences",
			body:  marchallObj(t, reader.NewPreferences{Preferable: []string{"P1"}, Conflict: []string{"P1"}}),
			token: getToken(t, rdr), wantCode: http.StatusBadRequest,
		},
		{
			name: "Saved", path: "/v1/instances/" + inst.ID + "/reader-preferences", body: ok,
			token: getToken(t, rdr), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Preferences saved."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_readerApi_exportPreferences(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	inst := env.createInstance(t, instance.StageReaderBidding)

	env.db.SeedReaders(inst.ID,
		reader.Reader{ID: "R1", InstanceID: inst.ID, Capacity: 2, Preferable: []string{"P1"}, Conflict: []string{"P2"}},
		reader.Reader{ID: "R2", InstanceID: inst.ID, Capacity: 1, Unacceptable: []string{"P1"}},
	)

	req, rec := newAuthRequest(http.MethodGet, "/v1/instances/"+inst.ID+"/reader-preferences/export", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("failed! content type = %v; want text/csv", ct)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll(): %v", err)
	}
	want := [][]string{
		{"reader_id", "project_id", "type"},
		{"R1", "P2", "CONFLICT"},
		{"R1", "P1", "PREFERABLE"},
		{"R2", "P1", "UNACCEPTABLE"},
	}
	assert.Equal(t, want, records)
}

func Test_readerApi_runAllocation(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	rdr := env.createUser(t, "Reader", "reader1", "reader@test.cd", []string{user.RoleReader}, true)
	inst := env.createInstance(t, instance.StageReaderAllocation)
	adminToken := getToken(t, admin)

	env.db.SeedProjectIDs(inst.ID, "P1", "P2", "P3")
	env.db.SeedReaders(inst.ID, reader.Reader{ID: "R1", InstanceID: inst.ID, Capacity: 2, Preferable: []string{"P1"}})

	out := reader.MatchingOutput{
		Assignments: []reader.MatchingAssignment{
			{ReaderID: "R1", ProjectID: "P1"},
			{ReaderID: "R1", ProjectID: "P2"},
		},
		UnassignedProjects: []string{"P3"},
		Load:               map[string]int{"R1": 2},
	}
	env.stub.allocFn = func(in reader.MatchingInput) (reader.MatchingOutput, error) {
		if len(in.AllProjects) != 3 || len(in.AllReaders) != 1 {
			t.Errorf("unexpected allocator input: %+v", in)
		}
		return out, nil
	}

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/reader-allocation", getToken(t, rdr))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("Allocation run", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/reader-allocation", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, out)}, rec)
	})

	t.Run("Allocation run as CSV", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/reader-allocation?format=csv", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
		}

		records, err := csv.NewReader(rec.Body).ReadAll()
		if err != nil {
			t.Fatalf("csv.ReadAll(): %v", err)
		}
		want := [][]string{
			{"reader_id", "project_id"},
			{"R1", "P1"},
			{"R1", "P2"},
		}
		assert.Equal(t, want, records)
	})
}
