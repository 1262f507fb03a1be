package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	echoapi "github.com/trezcool/rollcall/apps/api/echo"
	"github.com/trezcool/rollcall/apps/container"
	emailsvc "github.com/trezcool/rollcall/services/email"
	testutil "github.com/trezcool/rollcall/tests"
)

// now is a Wednesday.
var now = time.Date(2024, time.January, 17, 10, 0, 0, 0, time.UTC)

type testApp struct {
	*echoapi.Server
	c      *container.Container
	mailer *emailsvc.ConsoleService
}

func setup(t *testing.T) testApp {
	c, mailer := testutil.NewContainer(t)
	testutil.SeedSchool(c.MemDB)
	c.AttendanceSvc.WithClock(testutil.Clock(now))
	c.PaymentSvc.WithClock(testutil.Clock(now))
	c.ReportBuilder.WithClock(testutil.Clock(now))

	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           c.Conf,
		Logger:         c.Logger,
		SchoolSvc:      c.SchoolSvc,
		AttendanceSvc:  c.AttendanceSvc,
		ReportBuilder:  c.ReportBuilder,
		Validate:       c.Validate,
		Translator:     c.Translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return testApp{Server: srv, c: c, mailer: mailer}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
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

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
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
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestServer_home(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	if got, want := rec.Body.String(), "Welcome to Rollcall API!"; got != want {
		t.Errorf("failed! body = %q; want %q", got, want)
	}
}

func TestServer_notFound(t *testing.T) {
	app := setup(t)

	runTests(t, app, []httpTest{
		{name: "unknown route", method: http.MethodGet, path: "/api/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Not Found"})},
	})
}
