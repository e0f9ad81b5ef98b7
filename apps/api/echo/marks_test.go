package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core/marks"
)

func Test_marksApi_submitTerm(t *testing.T) {
	app := setup(t)

	admin := app.provisionAdmin(t, "head@shule.test", "s3cret")
	_, fifthTeacher := app.provisionTeacher(t, "Asha Odhiambo", "5th")
	_, thirdTeacher := app.provisionTeacher(t, "Moody Mwangi", "3rd")
	_, studentUsr := app.provisionStudent(t, "Neema Njoroge", "5th")

	body := marchallObj(t, echoapi.SubmitTermRequest{
		Term:  "First Term",
		Marks: marks.TermMarks{"English": {40, 35}, "Math": {50}},
	})
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "Auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student cannot write", body: body, token: getToken(t, app.conf, studentUsr), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "Other-class teacher cannot write", body: body, token: getToken(t, app.conf, thirdTeacher), wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "Unknown subject rejected", token: getToken(t, app.conf, fifthTeacher), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.SubmitTermRequest{Term: "First Term", Marks: marks.TermMarks{"Alchemy": {10}}}),
			wantData: marchallObj(t, map[string]string{"Alchemy": "subject not in class curriculum"}),
		},
		{
			name: "Negative score rejected", token: getToken(t, app.conf, fifthTeacher), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.SubmitTermRequest{Term: "First Term", Marks: marks.TermMarks{"Math": {-1}}}),
			wantData: marchallObj(t, map[string]string{"Math": "score must be a non-negative number"}),
		},
		{name: "Class teacher writes", body: body, token: getToken(t, app.conf, fifthTeacher), wantCode: http.StatusOK},
		{name: "Admin writes", body: body, token: getToken(t, app.conf, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/marks/1"

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt)
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var sheet marks.Sheet
				if err := json.Unmarshal(rec.Body.Bytes(), &sheet); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if len(sheet.Terms["First Term"]["English"]) != 2 {
					t.Errorf("unexpected sheet: %+v", sheet)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_marksApi_readScopes(t *testing.T) {
	app := setup(t)

	admin := app.provisionAdmin(t, "head@shule.test", "s3cret")
	_, fifthTeacher := app.provisionTeacher(t, "Asha Odhiambo", "5th")
	_, studentUsr := app.provisionStudent(t, "Neema Njoroge", "5th")
	_, otherStudent := app.provisionStudent(t, "Zawadi Kamau", "5th")

	submit := httpTest{
		method: http.MethodPost, path: "/v1/marks/1", token: getToken(t, app.conf, admin),
		body: marchallObj(t, echoapi.SubmitTermRequest{
			Term:  "First Term",
			Marks: marks.TermMarks{"English": {40, 35}, "Math": {50}},
		}),
		wantCode: http.StatusOK,
	}
	if rec := app.do(t, submit); rec.Code != http.StatusOK {
		t.Fatalf("seeding sheet failed: %v %v", rec.Code, rec.Body.String())
	}

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})
	wantSummary := marchallObj(t, marks.Summary{Term: "First Term", Subjects: 2, Total: 125, Average: 62.5, Min: 50, Max: 75})

	tests := []httpTest{
		{name: "Student reads own sheet", path: "/v1/marks/1", token: getToken(t, app.conf, studentUsr), wantCode: http.StatusOK},
		{name: "Classmate cannot read", path: "/v1/marks/1", token: getToken(t, app.conf, otherStudent), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "Class teacher reads", path: "/v1/marks/1", token: getToken(t, app.conf, fifthTeacher), wantCode: http.StatusOK},
		{name: "Summary", path: "/v1/marks/1/summary?term=First+Term", token: getToken(t, app.conf, admin), wantCode: http.StatusOK, wantData: wantSummary},
		{
			name: "Summary needs term", path: "/v1/marks/1/summary", token: getToken(t, app.conf, admin),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"term": "this field is required"}),
		},
		{name: "History", path: "/v1/marks/1/history", token: getToken(t, app.conf, admin), wantCode: http.StatusOK},
		{name: "Class sheets, teacher", path: "/v1/marks/class/5th", token: getToken(t, app.conf, fifthTeacher), wantCode: http.StatusOK},
		{name: "Class sheets, student denied", path: "/v1/marks/class/5th", token: getToken(t, app.conf, studentUsr), wantCode: http.StatusForbidden, wantData: forbidden},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}
}
