package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/mgawo/apps/api/echo"
	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/user"
)

func Test_allocationApi_submitPreferences(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	supervisor := env.createUser(t, "Prof", "prof01", "prof@test.cd", []string{user.RoleSupervisor}, true)
	inst := env.createInstance(t, instance.StageStudentBidding)
	closed := env.createInstance(t, instance.StageSetup)

	env.db.SeedProjects(inst.ID,
		allocation.Project{ID: "P1", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 1},
		allocation.Project{ID: "P2", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 1},
		allocation.Project{ID: "P3", InstanceID: inst.ID, SupervisorID: "S2", CapacityUpperBound: 1},
		allocation.Project{ID: "P4", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 1},
	)

	ok := marchallObj(t, allocation.NewPreferences{ProjectIDs: []string{"P1", "P3"}})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/instances/" + inst.ID + "/preferences", body: ok, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Student required", path: "/v1/instances/" + inst.ID + "/preferences", body: ok,
			token: getToken(t, supervisor), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Stage gated", path: "/v1/instances/" + closed.ID + "/preferences", body: ok,
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errStageClosed),
		},
		{
			name: "Unknown project rejected", path: "/v1/instances/" + inst.ID + "/preferences",
			body:  marchallObj(t, allocation.NewPreferences{ProjectIDs: []string{"P1", "NOPE"}}),
			token: getToken(t, student), wantCode: http.StatusBadRequest,
		},
		{
			name: "Per-supervisor cap enforced", path: "/v1/instances/" + inst.ID + "/preferences",
			body:  marchallObj(t, allocation.NewPreferences{ProjectIDs: []string{"P1", "P2", "P4"}}),
			token: getToken(t, student), wantCode: http.StatusBadRequest,
		},
		{
			name: "Saved", path: "/v1/instances/" + inst.ID + "/preferences", body: ok,
			token: getToken(t, student), wantCode: http.StatusOK,
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

func Test_allocationApi_runMatching(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	student := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	inst := env.createInstance(t, instance.StageProjectAllocation)

	env.db.SeedSupervisors(inst.ID, allocation.Supervisor{UserID: "S1", InstanceID: inst.ID, ProjectAllocationUpperBound: 2})
	env.db.SeedProjects(inst.ID, allocation.Project{ID: "P1", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 2})
	env.db.SeedStudents(inst.ID,
		allocation.Student{ID: "ST1", InstanceID: inst.ID, Preferences: []allocation.Preference{{StudentID: "ST1", ProjectID: "P1", Rank: 1}}},
		allocation.Student{ID: "ST2", InstanceID: inst.ID},
	)

	env.stub.matchFn = func(in allocation.MatchingInput) (allocation.MatchingOutput, error) {
		return allocation.MatchingOutput{Assignments: []allocation.Assignment{
			{StudentID: "ST1", ProjectID: "P1", Rank: 1},
			{StudentID: "ST2", ProjectID: allocation.UnassignedProjectID},
		}}, nil
	}

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/matching", getToken(t, student))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("Matching run and rows returned", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/matching", getToken(t, admin))
		env.app.ServeHTTP(rec, req)

		// the deliberately unassigned student has no rank
		want := []byte(`[
			{"student_id": "ST1", "project_id": "P1", "student_rank": 1},
			{"student_id": "ST2", "project_id": "-", "student_rank": null}
		]`)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: want}, rec)
	})
}

func Test_allocationApi_moveStudent(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	inst := env.createInstance(t, instance.StageAllocationAdjustment)

	env.db.SeedSupervisors(inst.ID, allocation.Supervisor{UserID: "S1", InstanceID: inst.ID, ProjectAllocationUpperBound: 2})
	env.db.SeedProjects(inst.ID,
		allocation.Project{ID: "P1", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 1, AllocatedTo: []string{"ST1"}},
		allocation.Project{ID: "P2", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 1},
	)

	t.Run("Missing student rejected", func(t *testing.T) {
		body := marchallObj(t, echoapi.MoveStudentRequest{ProjectID: "P2"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/instances/"+inst.ID+"/allocation/move", getToken(t, admin), body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("Student moved", func(t *testing.T) {
		body := marchallObj(t, echoapi.MoveStudentRequest{StudentID: "ST1", ProjectID: "P2"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/instances/"+inst.ID+"/allocation/move", getToken(t, admin), body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var snap allocation.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		for _, p := range snap.Projects {
			switch p.ID {
			case "P1":
				if len(p.AllocatedTo) != 0 {
					t.Errorf("failed! P1 still has %v", p.AllocatedTo)
				}
			case "P2":
				if len(p.AllocatedTo) != 1 || p.AllocatedTo[0] != "ST1" {
					t.Errorf("failed! P2 has %v; want [ST1]", p.AllocatedTo)
				}
			}
		}
	})

	t.Run("Student taken off any project", func(t *testing.T) {
		body := marchallObj(t, echoapi.MoveStudentRequest{StudentID: "ST1"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/instances/"+inst.ID+"/allocation/move", getToken(t, admin), body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var snap allocation.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		for _, p := range snap.Projects {
			if len(p.AllocatedTo) != 0 {
				t.Errorf("failed! %v still has %v", p.ID, p.AllocatedTo)
			}
		}
	})
}

func Test_allocationApi_publish(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	inst := env.createInstance(t, instance.StageAllocationPublication)
	adminToken := getToken(t, admin)

	env.db.SeedSupervisors(inst.ID, allocation.Supervisor{UserID: "S1", InstanceID: inst.ID, ProjectAllocationUpperBound: 1})
	env.db.SeedProjects(inst.ID,
		allocation.Project{ID: "P1", InstanceID: inst.ID, SupervisorID: "S1", CapacityUpperBound: 1, AllocatedTo: []string{"ST1", "ST2"}},
	)
	env.db.SeedStudentEmails(inst.ID, "hero@test.cd")

	t.Run("Violations block publication", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/allocation/publish", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "allocation has unresolved capacity violations"}),
		}, rec)
	})

	t.Run("Published once resolved", func(t *testing.T) {
		// resolve: take ST2 off P1
		body := marchallObj(t, echoapi.MoveStudentRequest{StudentID: "ST2"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/instances/"+inst.ID+"/allocation/move", adminToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("move failed! code = %v; body %v", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/allocation/publish", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Allocation published."}),
		}, rec)

		if _, ok := env.db.PublishedAt(inst.ID); !ok {
			t.Error("failed! publication timestamp not recorded")
		}
	})
}

func Test_allocationApi_submissionTarget(t *testing.T) {
	env := setup(t)

	supervisor := env.createUser(t, "Prof", "prof01", "prof@test.cd", []string{user.RoleSupervisor}, true)
	student := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	stranger := env.createUser(t, "Other", "prof02", "prof2@test.cd", []string{user.RoleSupervisor}, true)
	inst := env.createInstance(t, instance.StageProjectSubmission)

	env.db.SeedSupervisors(inst.ID, allocation.Supervisor{
		UserID:                      supervisor.ID,
		InstanceID:                  inst.ID,
		ProjectAllocationTarget:     3,
		ProjectAllocationUpperBound: 4,
	})

	path := "/v1/instances/" + inst.ID + "/submission-target"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Supervisor required", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Unknown supervisor", token: getToken(t, stranger), wantCode: http.StatusNotFound},
		{
			// target = 2 * (3 - 0), nothing allocated yet
			name: "Target returned", token: getToken(t, supervisor), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.SubmissionTargetResponse{Target: 6}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = path

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
