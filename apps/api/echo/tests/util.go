package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/classpig/backend/apps/api/echo"
	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/geo"
	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
	"github.com/classpig/backend/storage/database/inmem"
	"github.com/classpig/backend/testutil"
)

var (
	conf    = testutil.Config()
	gates   = geo.CampusBuildings()["Gates"]
	usrRepo user.Repository
	clsRepo schedule.Repository
	ledger  attendance.Ledger

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// setup returns a server backed by a fresh in-memory database.
func setup(t *testing.T) *Server {
	t.Helper()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	clsRepo = inmemdb.NewClassRepository(db)
	ledger = inmemdb.NewAttendanceLedger(db)

	// set up services
	usrSvc := user.NewService(usrRepo)
	clsSvc := schedule.NewService(clsRepo)
	attSvc := attendance.NewService(clsSvc, ledger, geo.NewBuildingTable(geo.CampusBuildings()), conf.CheckIn)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	return NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NewLogger(conf),
		UserSvc:        usrSvc,
		ClassSvc:       clsSvc,
		AttendanceSvc:  attSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
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
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
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
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
