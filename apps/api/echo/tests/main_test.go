package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mgawo/apps/api/echo"
	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/reader"
	"github.com/trezcool/mgawo/core/user"
	emailsvc "github.com/trezcool/mgawo/services/email"
	logsvc "github.com/trezcool/mgawo/services/logger"
	dummydb "github.com/trezcool/mgawo/storage/database/dummy"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errStageClosed  = httpErr{Error: "operation not available at the current stage"}
)

// matcherStub stands in for the external matching server. Each test sets the
// function it needs; unset functions return empty results.
type matcherStub struct {
	matchFn func(in allocation.MatchingInput) (allocation.MatchingOutput, error)
	allocFn func(in reader.MatchingInput) (reader.MatchingOutput, error)
}

func (m *matcherStub) MatchStudents(_ context.Context, in allocation.MatchingInput) (allocation.MatchingOutput, error) {
	if m.matchFn == nil {
		return allocation.MatchingOutput{}, nil
	}
	return m.matchFn(in)
}

func (m *matcherStub) AllocateReaders(_ context.Context, in reader.MatchingInput) (reader.MatchingOutput, error) {
	if m.allocFn == nil {
		return reader.MatchingOutput{}, nil
	}
	return m.allocFn(in)
}

type testEnv struct {
	db       *dummydb.DB
	app      Server
	usrRepo  user.Repository
	instRepo instance.Repository
	mailSvc  core.EmailService
	stub     *matcherStub
}

func setup(t *testing.T) *testEnv {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}

	logger := logsvc.NewTestLogger()
	mailSvc := emailsvc.NewConsoleServiceMock()
	stub := new(matcherStub)

	usrRepo := dummydb.NewUserRepository(db)
	instRepo := dummydb.NewInstanceRepository(db)

	usrSvc := user.NewServiceMock(usrRepo, mailSvc, logger)
	instSvc := instance.NewService(instRepo, logger)
	allocSvc := allocation.NewService(dummydb.NewAllocationRepository(db), stub, mailSvc, logger)
	readerSvc := reader.NewService(dummydb.NewReaderRepository(db), stub, logger)

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			UserSvc:        usrSvc,
			InstanceSvc:    instSvc,
			AllocSvc:       allocSvc,
			ReaderSvc:      readerSvc,
		},
	)
	return &testEnv{
		db:       db,
		app:      app,
		usrRepo:  usrRepo,
		instRepo: instRepo,
		mailSvc:  mailSvc,
		stub:     stub,
	}
}

func (env *testEnv) createUser(t *testing.T, name, uname, email string, roles []string, isActive bool) user.User {
	usr := user.User{
		Name:     name,
		Username: uname,
		Email:    email,
		Roles:    roles,
		IsActive: &isActive,
	}
	if err := usr.SetPassword("[Jon Snow]KnowsNothing!"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (env *testEnv) createInstance(t *testing.T, stage instance.Stage) instance.Instance {
	inst, err := env.instRepo.CreateInstance(context.Background(), instance.Instance{
		Group:                       "socs",
		SubGroup:                    "ug4",
		DisplayName:                 "UG4 Honours Projects",
		Stage:                       stage,
		MinStudentPreferences:       1,
		MaxStudentPreferences:       3,
		MaxPreferencesPerSupervisor: 2,
	})
	if err != nil {
		t.Fatalf("CreateInstance(): %v", err)
	}
	return inst
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
