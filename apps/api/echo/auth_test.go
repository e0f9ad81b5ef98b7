package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core/nav"
	"github.com/shulehub/shule/core/user"
)

func Test_authApi_login(t *testing.T) {
	app := setup(t)

	res, teacherUsr := app.provisionTeacher(t, "Asha Odhiambo", "5th")

	// a credential with no role record behind it
	if _, err := app.provider.CreateAccount(context.Background(), "ghost@shule.test", "s3cret"); err != nil {
		t.Fatalf("creating orphan credential: %v", err)
	}

	// a deactivated account
	dRes, dUsr := app.provisionTeacher(t, "Moody Mwangi", "3rd")
	if _, err := app.usrSvc.SetActive(context.Background(), dUsr, false); err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	loginBody := func(role, email, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Role: role, Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "Required fields", body: loginBody("", "", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"role": "this field is required", "email": "this field is required", "password": "this field is required",
			}),
		},
		{
			name: "Unknown role", body: loginBody("janitor", res.LoginEmail, res.InitialPassword), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "must be one of: admin, teacher, student"}),
		},
		{
			name: "Wrong password", body: loginBody("teacher", res.LoginEmail, "nope"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "No role record", body: loginBody("teacher", "ghost@shule.test", "s3cret"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "user data not found"}),
		},
		{
			name: "Deactivated account", body: loginBody("teacher", dRes.LoginEmail, dRes.InitialPassword), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Wrong portal", body: loginBody("student", res.LoginEmail, res.InitialPassword), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "role mismatch: expected student, but found teacher"}),
		},
		{name: "Login OK", body: loginBody("teacher", res.LoginEmail, res.InitialPassword), wantCode: http.StatusOK},
		{
			// submitted email is normalized before any lookup
			name: "Login OK (messy email)", body: loginBody("teacher", "  Teacher_1@Shule.Test ", res.InitialPassword),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt)
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				if respData.Destination != nav.TeacherHome {
					t.Errorf("destination = %v; want %v", respData.Destination, nav.TeacherHome)
				}
				if respData.User.ID != teacherUsr.ID {
					t.Errorf("user.ID = %v; want %v", respData.User.ID, teacherUsr.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

}

// A wrong-portal attempt signs the account back out: no live session survives.
func Test_authApi_login_mismatchLeavesNoSession(t *testing.T) {
	app := setup(t)
	res, _ := app.provisionTeacher(t, "Asha Odhiambo", "5th")

	tt := httpTest{
		method: http.MethodPost, path: "/v1/auth/login",
		body:     marchallObj(t, echoapi.LoginRequest{Role: "student", Email: res.LoginEmail, Password: res.InitialPassword}),
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "role mismatch: expected student, but found teacher"}),
	}
	checkCodeAndData(t, tt, app.do(t, tt))

	if id, ok := app.provider.CurrentIdentity(); ok {
		t.Errorf("a session survived the mismatch: %v", id)
	}
}

func Test_authApi_session(t *testing.T) {
	app := setup(t)

	_, teacherUsr := app.provisionTeacher(t, "Asha Odhiambo", "5th")

	orphan := user.User{ID: "teacher_99", Name: "Gone", Email: "teacher_99@shule.test", Role: user.RoleTeacher}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "No role record", token: getToken(t, app.conf, orphan), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "user data not found"}),
		},
		{
			name: "Session resolved", token: getToken(t, app.conf, teacherUsr), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.SessionResponse{User: teacherUsr, Destination: nav.TeacherHome}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/auth/session"

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	app := setup(t)

	_, teacherUsr := app.provisionTeacher(t, "Asha Odhiambo", "5th")
	_, naughty := app.provisionTeacher(t, "Moody Mwangi", "3rd")
	if _, err := app.usrSvc.SetActive(context.Background(), naughty, false); err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    app.conf.AppName,
			Subject:   teacherUsr.ID,
			Audience:  "Shule",
			ExpiresAt: now.Add(app.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * app.conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Role:         teacherUsr.Role.String(),
		IsTeacher:    true,
	}
	unrefreshableToken, err := echoapi.GenerateToken(app.conf, unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, app.conf, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, app.conf, teacherUsr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData["token"] == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
