package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/user"
)

func Test_instanceApi_instanceCreate(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	student := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)

	body := marchallObj(t, instance.NewInstance{
		Group:                       "socs",
		SubGroup:                    "ug4",
		DisplayName:                 "UG4 Honours Projects",
		MinStudentPreferences:       1,
		MaxStudentPreferences:       3,
		MaxPreferencesPerSupervisor: 2,
	})

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Created", token: getToken(t, admin), body: body, wantCode: http.StatusCreated},
		{name: "Duplicate group/sub-group rejected", token: getToken(t, admin), body: body, wantCode: http.StatusBadRequest},
		{
			name: "Bounds validated", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body: marchallObj(t, instance.NewInstance{
				Group: "socs", SubGroup: "ug3", DisplayName: "UG3",
				MinStudentPreferences: 5, MaxStudentPreferences: 3, MaxPreferencesPerSupervisor: 1,
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/instances"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var inst instance.Instance
				if err := json.Unmarshal(rec.Body.Bytes(), &inst); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if inst.ID == "" {
					t.Error("failed! empty instance ID")
				}
				if inst.Stage != instance.StageSetup {
					t.Errorf("failed! stage = %v; want %v", inst.Stage, instance.StageSetup)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_instanceApi_instanceQuery(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	inst := env.createInstance(t, instance.StageSetup)

	req, rec := newAuthRequest(http.MethodGet, "/v1/instances", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, inst)}, rec)
}

func Test_instanceApi_instanceStages(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/instances/stages", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, instance.AllStages()),
	}, rec)
}

func Test_instanceApi_instanceSetStage(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	student := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	inst := env.createInstance(t, instance.StageSetup)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "Unknown stage rejected", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body: marchallObj(t, instance.SetStageRequest{Stage: "LIMBO"}),
		},
		{
			name: "Stage moved forward", token: getToken(t, admin), wantCode: http.StatusOK,
			body:  marchallObj(t, instance.SetStageRequest{Stage: instance.StageStudentBidding}),
			extra: instance.StageStudentBidding,
		},
		{
			name: "Stage moved backward", token: getToken(t, admin), wantCode: http.StatusOK,
			body:  marchallObj(t, instance.SetStageRequest{Stage: instance.StageProjectSubmission}),
			extra: instance.StageProjectSubmission,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = "/v1/instances/" + inst.ID + "/stage"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var got instance.Instance
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if want := tt.extra.(instance.Stage); got.Stage != want {
					t.Errorf("failed! stage = %v; want %v", got.Stage, want)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
