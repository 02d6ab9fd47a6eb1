package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/databases/dbtest"
	notifService "thesis_backend/internals/features/notifications/service"
	councilService "thesis_backend/internals/features/thesis/councils/service"
	dashboardService "thesis_backend/internals/features/thesis/dashboards/service"
	discussionService "thesis_backend/internals/features/thesis/discussions/service"
	reportService "thesis_backend/internals/features/thesis/reports/service"
	topicService "thesis_backend/internals/features/thesis/topics/service"
	authService "thesis_backend/internals/features/users/auth/service"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/oss"
)

func newApp(t *testing.T) (*fiber.App, *authService.AuthService) {
	t.Helper()
	db := dbtest.Open(t)
	auth := authService.NewAuthService(db, "test-secret", time.Hour, "")
	notifier := notifService.NewDispatcher(db, notifService.WithRetry(1, 0))
	files := oss.NewMemoryFileStore()
	discussions := discussionService.New(db)

	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	SetupRoutes(app, Deps{
		DB:          db,
		Auth:        auth,
		Topics:      topicService.New(db, notifier, discussions.EnsureForTopic),
		Reports:     reportService.New(db, notifier, files),
		Councils:    councilService.New(db, notifier, files),
		Discussions: discussions,
		Dashboards:  dashboardService.New(db),
	})
	return app, auth
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, userName, role string) string {
	t.Helper()
	status, _ := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "User " + userName, "user_name": userName, "password": "secret123", "role": role,
	})
	require.Equal(t, fiber.StatusCreated, status)
	return token(t, app, userName)
}

func token(t *testing.T, app *fiber.App, userName string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"user_name": userName, "password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, status)
	return body["data"].(map[string]any)["access_token"].(string)
}

func TestHealthAndAuthGate(t *testing.T) {
	app, _ := newApp(t)

	status, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])

	status, body = call(t, app, http.MethodGet, "/api/topics", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestCapabilityGatesAndDashboards(t *testing.T) {
	app, _ := newApp(t)
	student := login(t, app, "student1", "student")
	teacher := login(t, app, "teacher1", "teacher")

	status, _ := call(t, app, http.MethodGet, "/api/dashboard/admin", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := call(t, app, http.MethodGet, "/api/dashboard/teacher", teacher, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["data"].(map[string]any)["approved_topics"])

	status, _ = call(t, app, http.MethodGet, "/api/notifications", student, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/discussions", student, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/councils/pending", teacher, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestPrivilegedAccountsOnlyViaAdmin(t *testing.T) {
	app, auth := newApp(t)

	for _, role := range []string{"admin", "uniadmin"} {
		status, _ := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Anon", "user_name": "anon-" + role, "password": "secret123", "role": role,
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status, role)
	}

	uni := map[string]string{"name": "Rektorat", "user_name": "rektorat", "password": "secret123", "role": "uniadmin"}
	status, _ := call(t, app, http.MethodPost, "/api/auth/users", "", uni)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	teacher := login(t, app, "teacher1", "teacher")
	status, _ = call(t, app, http.MethodPost, "/api/auth/users", teacher, uni)
	assert.Equal(t, fiber.StatusForbidden, status)

	_, err := auth.BootstrapAdmin(context.Background(), "root", "secret123")
	require.NoError(t, err)
	admin := token(t, app, "root")
	status, body := call(t, app, http.MethodPost, "/api/auth/users", admin, uni)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "uniadmin", body["data"].(map[string]any)["role"])

	status, _ = call(t, app, http.MethodGet, "/api/councils/pending", token(t, app, "rektorat"), nil)
	assert.Equal(t, fiber.StatusOK, status)
}
