package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/mgawo/apps/api/echo"
	"github.com/trezcool/mgawo/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	env.createUser(t, "N Dog", "ndog01", "ndog@test.cd", []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name: "Unknown user", wantCode: http.StatusBadRequest,
			body: marchallObj(t, echoapi.LoginRequest{Username: "ghost1", Password: "whatever"}),
		},
		{
			name: "Wrong password", wantCode: http.StatusBadRequest,
			body: marchallObj(t, echoapi.LoginRequest{Username: "hero01", Password: "wrong"}),
		},
		{
			name: "Deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "ndog01", Password: "[Jon Snow]KnowsNothing!"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Login by username", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: "hero01", Password: "[Jon Snow]KnowsNothing!"}),
		},
		{
			name: "Login by email", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: "hero@test.cd", Password: "[Jon Snow]KnowsNothing!"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin}, true)
	hero := env.createUser(t, "Hero", "hero01", "hero@test.cd", []string{user.RoleStudent}, true)
	other := env.createUser(t, "Other", "other1", "other@test.cd", []string{user.RoleStudent}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + hero.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Own account", path: "/v1/users/" + hero.ID, token: getToken(t, hero),
			wantCode: http.StatusOK, wantData: marchallObj(t, hero),
		},
		{
			name: "Someone else's account hidden", path: "/v1/users/" + other.ID, token: getToken(t, hero),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Admin sees all", path: "/v1/users/" + other.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, other),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
