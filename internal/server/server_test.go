package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grimoire/internal/config"
	"grimoire/internal/models"
	"grimoire/internal/seed"
	"grimoire/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestApp(t *testing.T, mutate func(*config.Config)) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		Port:           "8000",
		Env:            "test",
		AllowedOrigins: "*",
		JWTSecret:      "test-secret-key-12345678901234567890123456789012",
		RandomSeed:     42,
	}
	if mutate != nil {
		mutate(cfg)
	}

	s, err := NewServerWithDeps(cfg, testutil.NewDB(t), nil, seed.DefaultCatalog())
	require.NoError(t, err)

	app := fiber.New()
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func createRequest(t *testing.T, app *fiber.App, body string) models.Request {
	t.Helper()
	resp, raw := doRequest(t, app, http.MethodPost, "/solicitud", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "Request created successfully", env.Message)

	var req models.Request
	require.NoError(t, json.Unmarshal(env.Data, &req))
	return req
}

func getRequest(t *testing.T, app *fiber.App, id string) models.Request {
	t.Helper()
	resp, raw := doRequest(t, app, http.MethodGet, "/solicitud/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	var req models.Request
	require.NoError(t, json.Unmarshal(env.Data, &req))
	return req
}

func decodeError(t *testing.T, raw []byte) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

const juanPerez = `{"name":"Juan","last_name":"Perez","identification":"ID12345","age":20,"affinity":"Agua"}`

func TestApproveAssignsGrimorio(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, raw := doRequest(t, app, http.MethodGet, "/create-grimorios-fixtures", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Grimorios fixtures created successfully")

	created := createRequest(t, app, juanPerez)
	assert.Equal(t, models.RequestStatusPending, created.Status)
	assert.Nil(t, created.GrimorioID)

	resp, raw = doRequest(t, app, http.MethodPatch, "/solicitud/"+created.ID+"/estatus", `{"status":"Aprobado"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"message":"Request status updated successfully"}`, string(raw))

	got := getRequest(t, app, created.ID)
	assert.Equal(t, models.RequestStatusApproved, got.Status)
	require.NotNil(t, got.GrimorioID)
	require.NotNil(t, got.Grimorio)
	assert.Equal(t, *got.GrimorioID, got.Grimorio.ID)

	resp, raw = doRequest(t, app, http.MethodGet, "/asignaciones", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "Assignments retrieved successfully", env.Message)

	var grimorios []models.Grimorio
	require.NoError(t, json.Unmarshal(env.Data, &grimorios))
	require.Len(t, grimorios, 5)
	bound := 0
	for _, g := range grimorios {
		for _, r := range g.Requests {
			assert.Equal(t, created.ID, r.ID)
			assert.Equal(t, *got.GrimorioID, g.ID)
			bound++
		}
	}
	assert.Equal(t, 1, bound)
}

func TestCreateLongNameIsRejected(t *testing.T) {
	app := setupTestApp(t, nil)

	created := createRequest(t, app,
		`{"name":"Juanjuanjuanjuanjuanjuanjuanjuanjuan","last_name":"Perez","identification":"ID12345","age":20,"affinity":"Agua"}`)
	assert.Equal(t, models.RequestStatusRejected, created.Status)

	resp, raw := doRequest(t, app, http.MethodGet, "/solicitudes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "Requests retrieved successfully", env.Message)

	var all []models.Request
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 1)
	assert.Equal(t, models.RequestStatusRejected, all[0].Status)
}

func TestCreateRequest_Errors(t *testing.T) {
	app := setupTestApp(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "unknown affinity",
			body:       `{"name":"Juan","last_name":"Perez","identification":"ID1","age":20,"affinity":"Hielo"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeInvalidAffinity,
			wantError:  "Invalid affinity: Hielo",
		},
		{
			name:       "age out of range",
			body:       `{"name":"Juan","last_name":"Perez","identification":"ID1","age":100,"affinity":"Agua"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeSchema,
		},
		{
			name:       "missing name",
			body:       `{"last_name":"Perez","identification":"ID1","age":20,"affinity":"Agua"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeSchema,
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeSchema,
		},
		{
			name:       "age not a number",
			body:       `{"name":"Juan","last_name":"Perez","identification":"ID1","age":"veinte","affinity":"Agua"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := doRequest(t, app, http.MethodPost, "/solicitud", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(raw))
			body := decodeError(t, raw)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}

	resp, raw := doRequest(t, app, http.MethodGet, "/solicitudes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	var all []models.Request
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Empty(t, all, "failed creates persist nothing")
}

func TestUpdateRequest(t *testing.T) {
	app := setupTestApp(t, nil)
	created := createRequest(t, app, juanPerez)

	resp, raw := doRequest(t, app, http.MethodPut, "/solicitud/"+created.ID, `{"age":31,"affinity":"Fuego"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(raw))
	assert.Empty(t, raw)

	got := getRequest(t, app, created.ID)
	assert.Equal(t, 31, got.Age)
	assert.Equal(t, models.AffinityFire, got.Affinity)
	assert.Equal(t, "Juan", got.Name)

	resp, raw = doRequest(t, app, http.MethodPut, "/solicitud/"+created.ID, `{"name":"J0hn"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, raw)
	assert.Equal(t, models.CodeInvalidRequest, body.Code)
	assert.Equal(t, "Invalid request data", body.Error)

	resp, raw = doRequest(t, app, http.MethodPut, "/solicitud/"+created.ID, `{"affinity":"Hielo"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeInvalidAffinity, decodeError(t, raw).Code)

	resp, _ = doRequest(t, app, http.MethodPut, "/solicitud/missing", `{"age":31}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPut, "/solicitud/"+created.ID, `{"age":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	got = getRequest(t, app, created.ID)
	assert.Equal(t, 31, got.Age, "failed updates leave the request unchanged")
	assert.Equal(t, "Juan", got.Name)
}

func TestUpdateRequestStatus_Errors(t *testing.T) {
	app := setupTestApp(t, nil)
	created := createRequest(t, app, juanPerez)

	resp, raw := doRequest(t, app, http.MethodPatch, "/solicitud/"+created.ID+"/estatus", `{"status":"Approved"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, raw)
	assert.Equal(t, models.CodeInvalidStatus, body.Code)
	assert.Equal(t, "Invalid status", body.Error)

	resp, _ = doRequest(t, app, http.MethodPatch, "/solicitud/"+created.ID+"/estatus", `{"status":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPatch, "/solicitud/"+created.ID+"/estatus",
		`{"status":"`+strings.Repeat("x", 51)+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPatch, "/solicitud/missing/estatus", `{"status":"Rechazado"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No fixtures were loaded, so approval cannot draw a grimorio.
	resp, raw = doRequest(t, app, http.MethodPatch, "/solicitud/"+created.ID+"/estatus", `{"status":"Aprobado"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, models.CodeAssignmentImpossible, decodeError(t, raw).Code)

	got := getRequest(t, app, created.ID)
	assert.Equal(t, models.RequestStatusPending, got.Status)
	assert.Nil(t, got.GrimorioID)

	resp, _ = doRequest(t, app, http.MethodPatch, "/solicitud/"+created.ID+"/estatus", `{"status":"Rechazado"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got = getRequest(t, app, created.ID)
	assert.Equal(t, models.RequestStatusRejected, got.Status)
	assert.Nil(t, got.GrimorioID)
}

func TestDeleteRequest(t *testing.T) {
	app := setupTestApp(t, nil)
	created := createRequest(t, app, juanPerez)

	resp, raw := doRequest(t, app, http.MethodDelete, "/solicitud/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, raw)

	resp, _ = doRequest(t, app, http.MethodGet, "/solicitud/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = doRequest(t, app, http.MethodDelete, "/solicitud/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decodeError(t, raw).Code)
}

func TestCreateGrimoriosFixtures_Idempotent(t *testing.T) {
	app := setupTestApp(t, nil)

	for i := 0; i < 2; i++ {
		resp, _ := doRequest(t, app, http.MethodGet, "/create-grimorios-fixtures", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, raw := doRequest(t, app, http.MethodGet, "/asignaciones", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	var grimorios []models.Grimorio
	require.NoError(t, json.Unmarshal(env.Data, &grimorios))
	assert.Len(t, grimorios, 5)
}

func TestUpdateRequestStatus_ReviewerAuth(t *testing.T) {
	secret := "reviewer-secret-12345678901234567890123456789012"
	app := setupTestApp(t, func(cfg *config.Config) {
		cfg.ReviewerAuth = true
		cfg.JWTSecret = secret
	})
	created := createRequest(t, app, juanPerez)
	path := "/solicitud/" + created.ID + "/estatus"

	resp, _ := doRequest(t, app, http.MethodPatch, path, `{"status":"Rechazado"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "reviewer-1",
		"role": "reviewer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	resp, raw := doRequest(t, app, http.MethodPatch, path, `{"status":"Rechazado"}`, "Authorization", "Bearer "+signed)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
}

func TestHealthChecks(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, raw := doRequest(t, app, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"up"`)

	resp, raw = doRequest(t, app, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"redis":"disabled"`)
	assert.Contains(t, string(raw), `"database":"healthy"`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewNotFoundError("Request", "x"), http.StatusNotFound},
		{models.NewInvalidAffinityError("x"), http.StatusBadRequest},
		{models.NewInvalidStatusError("x"), http.StatusBadRequest},
		{models.NewInvalidRequestError(), http.StatusBadRequest},
		{models.NewSchemaError("x"), http.StatusUnprocessableEntity},
		{models.NewAssignmentImpossibleError(nil), http.StatusInternalServerError},
		{models.NewUnauthorizedError("x"), http.StatusUnauthorized},
		{models.NewInternalError(nil), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
