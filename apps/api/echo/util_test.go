package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/fee"
	"github.com/shulehub/shule/core/marks"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/school"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
	"github.com/shulehub/shule/storage/document/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server      *Server
	conf        *core.Config
	provider    auth.Provider
	usrSvc      user.ServiceInterface
	studentSvc  student.ServiceInterface
	teacherSvc  teacher.ServiceInterface
	marksSvc    marks.ServiceInterface
	feeSvc      fee.ServiceInterface
	schoolSvc   school.ServiceInterface
	provisioner *provision.Provisioner
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := nopLogger{}

	db := inmem.NewDB()
	provider := auth.NewLocalProvider(inmem.NewCredentialRepository(db), logger)
	usrSvc := user.NewService(inmem.NewUserRepository(db), logger)
	studentSvc := student.NewService(inmem.NewStudentRepository(db))
	teacherSvc := teacher.NewService(inmem.NewTeacherRepository(db))
	marksSvc := marks.NewService(inmem.NewMarksRepository(db))
	feeSvc := fee.NewService(inmem.NewFeeRepository(db))
	schoolSvc := school.NewService(inmem.NewSchoolRepository(db))
	provisioner := provision.NewProvisioner(
		usrSvc, provider, inmem.NewStudentRepository(db), inmem.NewTeacherRepository(db),
		inmem.NewCounterRepository(db), nil, conf, logger,
	)

	validate := validator.New()
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Provider:    provider,
		UserSvc:     usrSvc,
		StudentSvc:  studentSvc,
		TeacherSvc:  teacherSvc,
		MarksSvc:    marksSvc,
		FeeSvc:      feeSvc,
		SchoolSvc:   schoolSvc,
		Provisioner: provisioner,
		Validate:    validate,
		Translator:  translator,
	})

	return &testApp{
		server:      server,
		conf:        conf,
		provider:    provider,
		usrSvc:      usrSvc,
		studentSvc:  studentSvc,
		teacherSvc:  teacherSvc,
		marksSvc:    marksSvc,
		feeSvc:      feeSvc,
		schoolSvc:   schoolSvc,
		provisioner: provisioner,
	}
}

// provisionAdmin creates an admin role record plus credential directly.
func (app *testApp) provisionAdmin(t *testing.T, email, pwd string) user.User {
	t.Helper()
	ctx := context.Background()
	usr, err := app.usrSvc.Create(ctx, user.NewUser{
		ID: "admin_1", Name: "Head", Email: email, Role: user.RoleAdmin.String(),
	})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	if _, err = app.provider.CreateAccount(ctx, email, pwd); err != nil {
		t.Fatalf("creating admin credential: %v", err)
	}
	return usr
}

func (app *testApp) provisionTeacher(t *testing.T, name, class string) (provision.Result, user.User) {
	t.Helper()
	res, err := app.provisioner.ProvisionTeacher(context.Background(), teacher.NewTeacher{Name: name, Class: class})
	if err != nil {
		t.Fatalf("provisioning teacher: %v", err)
	}
	return res, res.User
}

func (app *testApp) provisionStudent(t *testing.T, name, class string) (provision.Result, user.User) {
	t.Helper()
	res, err := app.provisioner.ProvisionStudent(context.Background(), student.NewStudent{
		AdmissionDate: "2026-04-01", Name: name, DOB: "2016-09-13", Gender: "F",
		FatherName: "x", Cast: "x", Occupation: "x", Residence: "x", Class: class,
	})
	if err != nil {
		t.Fatalf("provisioning student: %v", err)
	}
	return res, res.User
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
}

func (app *testApp) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.server.ServeHTTP(rec, req)
	return rec
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

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
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
