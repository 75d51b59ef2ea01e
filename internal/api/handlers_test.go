package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api"
	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifications struct {
	items map[uuid.UUID][]domain.Notification
}

func (s stubNotifications) ForUser(userID uuid.UUID) []domain.Notification {
	return s.items[userID]
}

type testServer struct {
	handler http.Handler
	users   *memory.UserStore
	jwt     auth.JWTService
	notifs  stubNotifications
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewUserStore()
	tasks := memory.NewTaskStore()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	userSvc := service.NewUserService(users, &mocks.MockPasswordHasher{}, logger)
	taskSvc := service.NewTaskService(tasks, nil, logger)
	notifs := stubNotifications{items: map[uuid.UUID][]domain.Notification{}}

	authHandler := api.NewAuthHandler(userSvc, jwtService)
	taskHandler := api.NewTaskHandler(taskSvc)
	adminHandler := api.NewAdminHandler(userSvc, taskSvc)
	notifHandler := api.NewNotificationHandler(notifs)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Get("/health", api.HealthHandler(nil))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/user", authHandler.Me)
			r.Get("/notifications", notifHandler.List)
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/users", adminHandler.ListUsers)
				r.Put("/users/{id}/role", adminHandler.SetRole)
				r.Get("/tasks", adminHandler.ListTasks)
				r.Delete("/tasks/{id}", adminHandler.DeleteTask)
			})
		})
	})

	return &testServer{handler: r, users: users, jwt: jwtService, notifs: notifs}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

// register creates a user through the API and returns its id and token.
func (s *testServer) register(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

// adminToken promotes a fresh user directly in the store.
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	id, _ := s.register(t, "root")
	_, err := s.users.UpdateRole(context.Background(), id, domain.RoleAdmin)
	require.NoError(t, err)
	token, err := s.jwt.GenerateToken(context.Background(), id, domain.RoleAdmin)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	_, token := srv.register(t, "alice")
	assert.NotEmpty(t, token)

	t.Run("duplicate username", func(t *testing.T) {
		rr := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "alice",
			"password": "password123",
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Username already exists", decodeError(t, rr).Message)
	})

	t.Run("short password", func(t *testing.T) {
		rr := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "bob",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "password", decodeError(t, rr).Field)
	})

	t.Run("login succeeds", func(t *testing.T) {
		rr := srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "alice",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, domain.RoleUser, resp.User.Role)
		assert.NotEmpty(t, resp.Token)
		assert.NotContains(t, rr.Body.String(), "hashed:")
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "alice",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid username or password", decodeError(t, rr).Message)
	})

	t.Run("current user", func(t *testing.T) {
		rr := srv.do(t, http.MethodGet, "/api/user", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("current user without token", func(t *testing.T) {
		rr := srv.do(t, http.MethodGet, "/api/user", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestTaskHandler_Lifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	_, token := srv.register(t, "alice")

	deadline := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	rr := srv.do(t, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title":    "Write report",
		"deadline": deadline,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created domain.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.Equal(t, domain.StatusPending, created.Status)
	require.NotNil(t, created.Deadline)
	path := "/api/tasks/" + created.ID.String()

	rr = srv.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodPut, path, token, map[string]interface{}{"status": "in-progress"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated domain.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	assert.NotNil(t, updated.Deadline, "absent deadline key leaves it unchanged")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	rr = srv.do(t, http.MethodPut, path, token, map[string]interface{}{"deadline": nil})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Nil(t, updated.Deadline, "null deadline clears it")

	rr = srv.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = srv.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found", decodeError(t, rr).Message)

	rr = srv.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code, "deleting a missing task is a no-op")
}

func TestTaskHandler_Validation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	_, token := srv.register(t, "alice")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		field  string
	}{
		{"missing title", http.MethodPost, "/api/tasks", map[string]string{"priority": "high"}, "title"},
		{"bad priority", http.MethodPost, "/api/tasks", map[string]string{"title": "x", "priority": "urgent"}, "priority"},
		{"bad status filter", http.MethodGet, "/api/tasks?status=done", nil, "status"},
		{"bad sort", http.MethodGet, "/api/tasks?sort=title", nil, "sort"},
		{"limit above ceiling", http.MethodGet, "/api/tasks?limit=101", nil, "limit"},
		{"non-numeric page", http.MethodGet, "/api/tasks?page=two", nil, "page"},
		{"page offset overflows", http.MethodGet, "/api/tasks?page=9223372036854775807", nil, "page"},
		{"page offset overflows with limit", http.MethodGet, "/api/tasks?page=1000000000000000000&limit=100", nil, "page"},
		{"bad task id", http.MethodGet, "/api/tasks/not-a-uuid", nil, "id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := srv.do(t, tc.method, tc.path, token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Equal(t, tc.field, decodeError(t, rr).Field)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		srv.handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskHandler_ListFilterAndOwnership(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	_, alice := srv.register(t, "alice")
	_, bob := srv.register(t, "bob")

	for _, title := range []string{"Buy milk", "Call plumber", "Book flights"} {
		rr := srv.do(t, http.MethodPost, "/api/tasks", alice, map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := srv.do(t, http.MethodPost, "/api/tasks", bob, map[string]string{"title": "Bob's task"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var bobTask domain.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bobTask))

	list := func(token, query string) api.TaskListResponse {
		rr := srv.do(t, http.MethodGet, "/api/tasks"+query, token, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp api.TaskListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp
	}

	all := list(alice, "")
	assert.Equal(t, 3, all.Total)
	assert.Len(t, all.Tasks, 3)

	search := list(alice, "?search=PLUMB")
	require.Equal(t, 1, search.Total, "case-insensitive substring over title")
	assert.Equal(t, "Call plumber", search.Tasks[0].Title)

	paged := list(alice, "?limit=2&page=2")
	assert.Equal(t, 3, paged.Total)
	assert.Len(t, paged.Tasks, 1)

	fallback := list(alice, "?limit=0&page=0")
	assert.Len(t, fallback.Tasks, 3)

	beyond := list(alice, "?page=1000000&limit=100")
	assert.Equal(t, 3, beyond.Total)
	assert.Empty(t, beyond.Tasks)

	empty := list(alice, "?priority=high")
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Tasks)
	assert.Contains(t, srv.do(t, http.MethodGet, "/api/tasks?priority=high", alice, nil).Body.String(), `"tasks":[]`)

	foreign := "/api/tasks/" + bobTask.ID.String()
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, foreign, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		srv.do(t, http.MethodPut, foreign, alice, map[string]string{"title": "mine"}).Code)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, foreign, alice, nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, foreign, bob, nil).Code, "foreign delete is a no-op")
}

func TestAdminHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	aliceID, alice := srv.register(t, "alice")
	admin := srv.adminToken(t)

	rr := srv.do(t, http.MethodPost, "/api/tasks", alice, map[string]string{"title": "Alice's task"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var task domain.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))

	t.Run("non-admin is forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodGet, "/api/admin/users", alice, nil).Code)
		assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodGet, "/api/admin/tasks", alice, nil).Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/admin/users", "", nil).Code)
	})

	t.Run("list users", func(t *testing.T) {
		rr := srv.do(t, http.MethodGet, "/api/admin/users", admin, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var users []api.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("list all tasks", func(t *testing.T) {
		rr := srv.do(t, http.MethodGet, "/api/admin/tasks", admin, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.TaskListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("set role", func(t *testing.T) {
		path := "/api/admin/users/" + aliceID.String() + "/role"
		rr := srv.do(t, http.MethodPut, path, admin, map[string]string{"role": "admin"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp api.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, domain.RoleAdmin, resp.Role)

		rr = srv.do(t, http.MethodPut, path, admin, map[string]string{"role": "superuser"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "role", decodeError(t, rr).Field)

		missing := "/api/admin/users/" + uuid.NewString() + "/role"
		rr = srv.do(t, http.MethodPut, missing, admin, map[string]string{"role": "user"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete any task", func(t *testing.T) {
		path := "/api/admin/tasks/" + task.ID.String()
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, path, admin, nil).Code)
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, path, admin, nil).Code)
		assert.Equal(t, http.StatusNotFound,
			srv.do(t, http.MethodGet, "/api/tasks/"+task.ID.String(), alice, nil).Code)
	})
}

func TestNotificationHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	aliceID, alice := srv.register(t, "alice")
	_, bob := srv.register(t, "bob")

	srv.notifs.items[aliceID] = []domain.Notification{{
		Type:      domain.NotificationTaskOverdue,
		UserID:    aliceID,
		TaskID:    uuid.New(),
		Message:   `Task "Pay rent" is overdue`,
		Timestamp: time.Now().UTC(),
	}}

	rr := srv.do(t, http.MethodGet, "/api/notifications", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got []domain.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationTaskOverdue, got[0].Type)

	rr = srv.do(t, http.MethodGet, "/api/notifications", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	api.HealthHandler(nil)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	api.HealthHandler(failingPinger{})(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	api.HealthHandler(failingPinger{err: context.DeadlineExceeded})(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
