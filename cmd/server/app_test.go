package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                  8080,
			LogLevel:              "error",
			RequestTimeoutSeconds: 5,
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
			BcryptCost:           4,
		},
		Notification: config.NotificationConfig{
			ScanIntervalMinutes:    60,
			CleanupIntervalMinutes: 60,
			RetentionHours:         168,
			ApproachingWindowHours: 24,
			ScanBatchSize:          100,
			ScanTimeoutSeconds:     5,
			DispatchWorkers:        1,
			DispatchQueueSize:      16,
			DispatchTimeoutSeconds: 5,
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	cfg := testConfig()
	logger := discardLogger()
	st, err := openStorage(context.Background(), cfg, logger)
	require.NoError(t, err)
	app, err := newApplication(cfg, logger, st)
	require.NoError(t, err)
	return app
}

func TestNewApplication_MemoryDriver(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	assert.Nil(t, app.storage.db)
	assert.Nil(t, app.publisher, "no broker configured")
	assert.NotNil(t, app.scheduler)
	assert.NotNil(t, app.notifier)
}

func TestSetupRouter_Routes(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	router, ok := app.setupRouter().(chi.Routes)
	require.True(t, ok)

	var routes []string
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(routes)

	assert.Equal(t, []string{
		"DELETE /api/admin/tasks/{id}",
		"DELETE /api/tasks/{id}",
		"GET /api/admin/tasks",
		"GET /api/admin/users",
		"GET /api/notifications",
		"GET /api/tasks/",
		"GET /api/tasks/{id}",
		"GET /api/user",
		"GET /health",
		"POST /api/auth/login",
		"POST /api/auth/register",
		"POST /api/tasks/",
		"PUT /api/admin/users/{id}/role",
		"PUT /api/tasks/{id}",
	}, routes)
}

func TestSetupRouter_TaskCreationReachesNotificationLog(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	app.pool.Start()
	t.Cleanup(func() { _ = app.pool.Stop(context.Background()) })
	router := app.setupRouter()

	post := func(path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := post("/api/auth/register", "", map[string]string{"username": "carol", "password": "password123"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Trace-ID"))
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &auth))

	rr = post("/api/tasks", auth.Token, map[string]string{"title": "Water plants"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var notifs []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notifs))
	require.Len(t, notifs, 1)
	assert.Equal(t, "TASK_CREATED", notifs[0].Type)
}

func TestSetupRouter_Health(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestApplication_CleanupStopsBackground(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	app.startBackground(context.Background())
	done := make(chan struct{})
	go func() {
		app.cleanup(context.Background())
		close(done)
	}()
	<-done
}
