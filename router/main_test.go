package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/services/export"
	"github.com/sahilchouksey/partner-hub/services/upstream"
	"github.com/sahilchouksey/partner-hub/utils/auth"
	"github.com/sahilchouksey/partner-hub/utils/middleware"
)

var testNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

const storedRecord = `{
  "_id": "p1",
  "name": "Nairobi Exchange",
  "type": "MOU",
  "status": "Active",
  "region": "East Africa",
  "createdAt": "2026-10-10T08:00:00.000Z",
  "expirationDate": "2027-06-01",
  "partnerInstitution": {"name": "University of Nairobi", "country": "kenya"},
  "aauContact": {"name": "Abebe", "email": "abebe@aau.edu.et", "interestedCollegeOrDepartment": "College of Health Sciences"}
}`

type fakeBackend struct {
	mu        sync.Mutex
	records   []model.Partnership
	listErr   error
	colleges  []string
	updates   []map[string]interface{}
	resets    []model.ResetPassword
	tokens    []string
	users     []model.User
	createdBy []model.NewUser
}

func (f *fakeBackend) ListPartnerships(ctx context.Context, college string) ([]model.Partnership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colleges = append(f.colleges, college)
	f.tokens = append(f.tokens, auth.TokenFromContext(ctx))
	return f.records, f.listErr
}

func (f *fakeBackend) GetPartnershipRaw(_ context.Context, id string) (json.RawMessage, error) {
	if id != "p1" {
		return nil, &upstream.APIError{StatusCode: http.StatusNotFound, Message: "Partnership not found"}
	}
	return json.RawMessage(storedRecord), nil
}

func (f *fakeBackend) GetPartnership(ctx context.Context, id string) (model.Partnership, error) {
	raw, err := f.GetPartnershipRaw(ctx, id)
	if err != nil {
		return model.Partnership{}, err
	}
	var p model.Partnership
	err = json.Unmarshal(raw, &p)
	return p, err
}

func (f *fakeBackend) UpdatePartnership(ctx context.Context, id string, changes map[string]interface{}) (model.Partnership, error) {
	f.mu.Lock()
	f.updates = append(f.updates, changes)
	f.mu.Unlock()
	p, err := f.GetPartnership(ctx, id)
	if region, ok := changes["region"].(string); ok {
		p.Region = region
	}
	return p, err
}

func (f *fakeBackend) ResetPassword(_ context.Context, req model.ResetPassword) error {
	f.resets = append(f.resets, req)
	if req.Email == "unknown@aau.edu.et" {
		return &upstream.APIError{StatusCode: http.StatusNotFound, Message: "User not found"}
	}
	return nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.User, error) { return f.users, nil }

func (f *fakeBackend) GetUser(_ context.Context, id string) (model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, &upstream.APIError{StatusCode: http.StatusNotFound, Message: "User not found"}
}

func (f *fakeBackend) CreateUser(_ context.Context, nu model.NewUser) (model.User, error) {
	f.createdBy = append(f.createdBy, nu)
	return model.User{ID: "u9", Name: nu.Name, Email: nu.Email, Roles: nu.Roles, IsActive: true}, nil
}

func (f *fakeBackend) UpdateUser(_ context.Context, id string, uu model.UpdateUser) (model.User, error) {
	u, err := f.GetUser(context.Background(), id)
	if uu.Roles != nil {
		u.Roles = uu.Roles
	}
	return u, err
}

func newTestApp(t *testing.T, backend *fakeBackend) *fiber.App {
	t.Helper()
	app := fiber.New()
	SetupRoutes(app, Dependencies{
		Backend:  backend,
		Security: middleware.SecurityConfig{AllowedOrigins: "http://localhost:3000"},
		Now:      func() time.Time { return testNow },
	})
	return app
}

func signedToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := auth.Claims{
		UserID:           "u1",
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-verified-here"))
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(body, &env), string(body))
	}
	return resp, env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestPing(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestDashboard(t *testing.T) {
	var p model.Partnership
	require.NoError(t, json.Unmarshal([]byte(storedRecord), &p))
	backend := &fakeBackend{records: []model.Partnership{p}}
	app := newTestApp(t, backend)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?timeFilter=Weekly&college="+url.QueryEscape("College of Health Sciences"), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer caller-token")
	resp, env := do(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap struct {
		State     string `json:"state"`
		Dashboard struct {
			Summary struct {
				Total map[string]int `json:"total"`
			} `json:"summary"`
			Countries struct {
				Counts map[string]int `json:"counts"`
			} `json:"countries"`
			Map struct {
				Available bool `json:"available"`
			} `json:"map"`
		} `json:"dashboard"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))

	assert.Equal(t, "ready", snap.State)
	assert.Equal(t, 1, snap.Dashboard.Summary.Total["active"])
	assert.Equal(t, map[string]int{"Kenya": 1}, snap.Dashboard.Countries.Counts)
	assert.False(t, snap.Dashboard.Map.Available)
	assert.Equal(t, []string{"College of Health Sciences"}, backend.colleges)
	assert.Equal(t, []string{"caller-token"}, backend.tokens, "caller token is forwarded")
}

func TestDashboardFetchFailure(t *testing.T) {
	app := newTestApp(t, &fakeBackend{listErr: upstream.ErrTransport})

	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Partnerships could not be loaded", env.Message)
	assert.Contains(t, string(env.Data), `"state":"ready"`)
	assert.Contains(t, string(env.Data), `"recordCount":0`)
}

func TestDashboardUnknownCollege(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?college=Nope", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardExport(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/export?timeFilter=Yearly", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "partnerships_20261014_120000.xlsx")
}

func TestDashboardExportFetchFailure(t *testing.T) {
	app := newTestApp(t, &fakeBackend{listErr: upstream.ErrTransport})

	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/export", nil))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", env.Error.Code)
}

func TestGetPartnership(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})

	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/partnerships/p1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"derivedStatus":"active"`)

	resp, env = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/partnerships/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Partnership not found", env.Error.Message)
}

func TestUpdatePartnershipSendsOnlyChangedFields(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)

	edited := strings.Replace(storedRecord, `"region": "East Africa"`, `"region": "Horn of Africa"`, 1)
	resp, env := do(t, app, jsonRequest(http.MethodPut, "/api/v1/partnerships/p1", edited))

	require.Equal(t, http.StatusOK, resp.StatusCode, string(env.Data))
	require.Len(t, backend.updates, 1)
	assert.Equal(t, map[string]interface{}{"region": "Horn of Africa"}, backend.updates[0])
	assert.Contains(t, string(env.Data), `"changed":true`)
}

func TestUpdatePartnershipNestedChange(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)

	edited := strings.Replace(storedRecord, `"abebe@aau.edu.et"`, `"abebe.k@aau.edu.et"`, 1)
	resp, _ := do(t, app, jsonRequest(http.MethodPut, "/api/v1/partnerships/p1", edited))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, backend.updates, 1)
	assert.Equal(t, map[string]interface{}{
		"aauContact": map[string]interface{}{"email": "abebe.k@aau.edu.et"},
	}, backend.updates[0])
}

func TestUpdatePartnershipNoChangesIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)

	resp, env := do(t, app, jsonRequest(http.MethodPut, "/api/v1/partnerships/p1", storedRecord))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No changes detected", env.Message)
	assert.Empty(t, backend.updates, "no upstream call without changes")
}

func TestUpdatePartnershipValidation(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)

	resp, env := do(t, app, jsonRequest(http.MethodPut, "/api/v1/partnerships/p1", `{"status":"Maybe","aauContact":{"email":"nope"}}`))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error.Fields, "status")
	assert.Contains(t, env.Error.Fields, "aauContact.email")
	assert.Empty(t, backend.updates)
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
		forwarded  bool
	}{
		{"valid", `{"email":"a@aau.edu.et","newPassword":"longenough","confirmPassword":"longenough"}`, http.StatusOK, "", true},
		{"too short", `{"email":"a@aau.edu.et","newPassword":"short","confirmPassword":"short"}`, http.StatusUnprocessableEntity, "newPassword", false},
		{"mismatch", `{"email":"a@aau.edu.et","newPassword":"longenough","confirmPassword":"different1"}`, http.StatusUnprocessableEntity, "confirmPassword", false},
		{"missing email", `{"newPassword":"longenough","confirmPassword":"longenough"}`, http.StatusUnprocessableEntity, "email", false},
		{"upstream rejects", `{"email":"unknown@aau.edu.et","newPassword":"longenough","confirmPassword":"longenough"}`, http.StatusNotFound, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			app := newTestApp(t, backend)

			resp, env := do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/reset-password", tt.body))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantField != "" {
				assert.Contains(t, env.Error.Fields, tt.wantField)
			}
			assert.Equal(t, tt.forwarded, len(backend.resets) == 1)
		})
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	backend := &fakeBackend{users: []model.User{
		{ID: "u2", Name: "Selam", Email: "selam@aau.edu.et", Roles: []string{"editor"}},
		{ID: "u1", Name: "Abebe", Email: "abebe@aau.edu.et", Roles: []string{"admin"}},
	}}
	app := newTestApp(t, backend)

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signedToken(t, "viewer", testNow.Add(time.Hour)))
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?role=editor", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signedToken(t, "admin", time.Now().Add(time.Hour)))
	resp, env := do(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"total":1`)
	assert.Contains(t, string(env.Data), "Selam")
}

func TestCreateUser(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)
	token := "Bearer " + signedToken(t, "admin", time.Now().Add(time.Hour))

	req := jsonRequest(http.MethodPost, "/api/v1/admin/users", `{"name":"Hana","email":"hana@aau.edu.et","password":"longenough","confirmPassword":"longenough"}`)
	req.Header.Set(fiber.HeaderAuthorization, token)
	resp, _ := do(t, app, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, backend.createdBy, 1)
	assert.Equal(t, []string{model.RoleViewer}, backend.createdBy[0].Roles)

	req = jsonRequest(http.MethodPost, "/api/v1/admin/users", `{"name":"Hana","email":"hana@aau.edu.et","password":"longenough","confirmPassword":"longenough","roles":["owner"]}`)
	req.Header.Set(fiber.HeaderAuthorization, token)
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
