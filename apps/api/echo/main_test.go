package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
	"github.com/revelohq/revelo/core/user"
	dummydenylist "github.com/revelohq/revelo/services/denylist/dummy"
	dummymail "github.com/revelohq/revelo/services/email/dummy"
	logsvc "github.com/revelohq/revelo/services/logger"
	dummygw "github.com/revelohq/revelo/services/payment/dummy"
	dummystorage "github.com/revelohq/revelo/services/storage/dummy"
	inmemdb "github.com/revelohq/revelo/storage/database/inmem"
)

type testApp struct {
	server Server

	instituteSvc *institute.Service
	eventSvc     *event.Service
	userSvc      *user.Service
	paymentSvc   *payment.Service

	gateway  *dummygw.Gateway
	denylist core.TokenDenylist
	mailSvc  interface {
		SentMessages() []core.EmailMessage
		Reset()
	}
}

func testConfig() *core.Config {
	return &core.Config{
		TestMode:       true,
		AppName:        "Revelo",
		SecretKey:      []byte("test-secret"),
		AdminSecretKey: []byte("test-admin-secret"),
		AdminEmail:     "admin@test.local",
		AdminSecret:    "adm1n-s3cret",
		PlatformFee:    500,
		VerifyCodeTTL:  15 * time.Minute,
		Server: core.ServerConfig{
			AdminTokenTTL:     12 * time.Hour,
			InstituteTokenTTL: 12 * 24 * time.Hour,
			UserTokenTTL:      12 * time.Hour,
		},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("newTestApp() failed: %v", err)
	}

	conf := testConfig()
	gw := dummygw.NewGateway()
	mailSvc := dummymail.NewService()
	dl := dummydenylist.NewService()

	instRepo := inmemdb.NewInstituteRepository(db)
	paymentSvc := payment.NewService(inmemdb.NewPaymentRepository(db), gw, conf)
	instituteSvc := institute.NewService(instRepo)
	eventSvc := event.NewService(inmemdb.NewEventRepository(db), instRepo, paymentSvc)
	userSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc, logsvc.NewTestLogger(), conf)

	app := &testApp{
		server: NewServer(ServerDeps{
			Conf:           conf,
			Logger:         logsvc.NewTestLogger(),
			InstituteSvc:   instituteSvc,
			EventSvc:       eventSvc,
			UserSvc:        userSvc,
			PaymentSvc:     paymentSvc,
			FileStorage:    dummystorage.NewService(),
			Denylist:       dl,
			DisableReqLogs: true,
		}),
		instituteSvc: instituteSvc,
		eventSvc:     eventSvc,
		userSvc:      userSvc,
		paymentSvc:   paymentSvc,
		gateway:      gw,
		denylist:     dl,
		mailSvc:      mailSvc,
	}
	return app
}

// registerInstitute creates an institute through the service layer,
// optionally approving it, and returns it with a bearer token.
func (app *testApp) registerInstitute(t *testing.T, name, email string, approve bool) (institute.Institute, string) {
	t.Helper()

	inst, err := app.instituteSvc.Register(context.Background(), institute.NewInstitute{
		Name:                  name,
		Address:               "124 Paud Road",
		State:                 "Maharashtra",
		Country:               "India",
		ContactNumber:         "+91 20 1234 5678",
		OfficeEmail:           email,
		Password:              "sup3rs3cret",
		Type:                  institute.TypeUniversity,
		LogoURL:               "https://files.local/institutes/logo.png",
		VerificationLetterURL: "https://files.local/institutes/letter.pdf",
	})
	if err != nil {
		t.Fatalf("registerInstitute() failed: %v", err)
	}
	if approve {
		if inst, err = app.instituteSvc.Approve(context.Background(), inst.ID, core.RoleAdmin); err != nil {
			t.Fatalf("registerInstitute() approve failed: %v", err)
		}
	}
	return inst, app.instituteToken(t, inst)
}

func (app *testApp) instituteToken(t *testing.T, inst institute.Institute) string {
	t.Helper()
	token, err := helpers.GenerateToken(helpers.NewInstituteClaims(inst))
	if err != nil {
		t.Fatalf("instituteToken() failed: %v", err)
	}
	return token
}

func (app *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, err := helpers.GenerateToken(helpers.NewAdminClaims())
	if err != nil {
		t.Fatalf("adminToken() failed: %v", err)
	}
	return token
}

func (app *testApp) userToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := helpers.GenerateToken(helpers.NewUserClaims(usr))
	if err != nil {
		t.Fatalf("userToken() failed: %v", err)
	}
	return token
}

// createEvent pushes a paid event through the API for the given
// institute token.
func (app *testApp) createEvent(t *testing.T, token string) event.Event {
	t.Helper()

	req, rec := newAuthRequest(http.MethodPost, "/events/create", token, marchallObj(t, newEventBody(app.gateway.ValidSignature)))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createEvent() failed: code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var ev event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("createEvent() failed: %v", err)
	}
	return ev
}

func newEventBody(signature string) echo.Map {
	from := time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)
	return echo.Map{
		"title":              "TechFest",
		"description":        "Annual tech fest",
		"category":           "technical",
		"thumbnail":          "https://cdn.local/thumb.png",
		"venue":              "Main Auditorium",
		"city":               "Pune",
		"state":              "MH",
		"country":            "India",
		"pinCode":            "411001",
		"from":               from,
		"to":                 from.Add(48 * time.Hour),
		"registrationStarts": from.Add(-10 * 24 * time.Hour),
		"registrationEnds":   from.Add(-24 * time.Hour),
		"paymentData": echo.Map{
			"order_id":   "order_1",
			"payment_id": "pay_1",
			"signature":  signature,
		},
	}
}

func newSubEventBody(eventID string) echo.Map {
	return echo.Map{
		"eventId":        eventID,
		"title":          "Code Golf",
		"scheduledAt":    time.Date(2026, 10, 10, 14, 0, 0, 0, time.UTC),
		"venue":          "Lab 3",
		"price":          "100",
		"category":       "coding",
		"banner":         "https://cdn.local/banner.png",
		"contactDetails": "golf@techfest.local",
		"rules":          []string{"solo only"},
	}
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

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest builds a multipart form request with text fields
// and in-memory files.
func newMultipartRequest(t *testing.T, method, path string, fields, files map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, val := range fields {
		if err := w.WriteField(name, val); err != nil {
			t.Fatalf("newMultipartRequest() failed: %v", err)
		}
	}
	for name, filename := range files {
		fw, err := w.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("newMultipartRequest() failed: %v", err)
		}
		if _, err = io.WriteString(fw, "file-content"); err != nil {
			t.Fatalf("newMultipartRequest() failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newMultipartRequest() failed: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
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

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func authCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	res := http.Response{Header: rec.Header()}
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
