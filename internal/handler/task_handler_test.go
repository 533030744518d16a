package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"taskcompass/internal/auth"
	"taskcompass/internal/handler"
	"taskcompass/internal/middleware"
	"taskcompass/internal/model"
	"taskcompass/internal/notify"
	"taskcompass/internal/refresh"
	"taskcompass/internal/report"
	"taskcompass/internal/tasks"
	"taskcompass/internal/users"
)

const testSecret = "test-secret-key"

type taskStore struct{ tasks []model.Task }

func (s *taskStore) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return append([]model.Task(nil), s.tasks...), nil
}

func (s *taskStore) SaveTasks(ctx context.Context, list []model.Task) error {
	s.tasks = list
	return nil
}

type userStore struct{ accounts []model.UserAccount }

func (s *userStore) LoadUsers(ctx context.Context) ([]model.UserAccount, error) {
	return append([]model.UserAccount(nil), s.accounts...), nil
}

func (s *userStore) SaveUsers(ctx context.Context, accounts []model.UserAccount) error {
	s.accounts = accounts
	return nil
}

// env wires a full router over in-memory stores with three known accounts.
type env struct {
	router     *gin.Engine
	tasks      *tasks.Service
	users      *users.Service
	dispatcher *notify.Dispatcher

	admin, alice, bob *model.UserAccount
	tokens            map[string]string
}

func setupEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)

	taskSvc := tasks.NewService(&taskStore{})
	userSvc := users.NewService(&userStore{})
	assert.NoError(t, userSvc.EnsureAdmin(context.Background(), "admin-pass"))

	register := func(username, displayName, email string) *model.UserAccount {
		account, err := userSvc.Register(context.Background(), users.Input{
			Username:    username,
			DisplayName: displayName,
			Email:       email,
			Password:    "password",
		})
		assert.NoError(t, err)
		return &account
	}
	alice := register("alice", "Alice", "alice@example.com")
	bob := register("bob", "Bob", "bob@example.com")
	admin, _ := userSvc.Lookup(model.AdminUID)

	dispatcher := notify.NewDispatcher()
	notifier := notify.NewNotifier(notify.NewStateStore(t.TempDir()), dispatcher)
	refresher := refresh.New(time.Hour, func(ctx context.Context) {
		notifier.Evaluate(taskSvc.Refresh(ctx), userSvc.Refresh(ctx))
	})
	onChange := func() {
		notifier.Evaluate(taskSvc.Snapshot(), userSvc.Snapshot())
	}

	taskHandler := handler.NewTaskHandler(taskSvc, userSvc, onChange)
	userHandler := handler.NewUserHandler(userSvc, testSecret)
	dashboardHandler := handler.NewDashboardHandler(taskSvc, userSvc, report.NewGenerator())
	notificationHandler := handler.NewNotificationHandler(userSvc, dispatcher, refresher)

	r := gin.New()
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(testSecret))
	{
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.List)
		authorized.GET("/tasks/export", taskHandler.Export)
		authorized.POST("/tasks/import", taskHandler.Import)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.POST("/tasks/:id/toggle", taskHandler.Toggle)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		authorized.GET("/dashboard", dashboardHandler.Summary)
		authorized.GET("/schedule", dashboardHandler.Schedule)
		authorized.GET("/progress", dashboardHandler.Progress)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/refresh", notificationHandler.Refresh)

		authorized.GET("/users", userHandler.List)
		authorized.POST("/users", userHandler.Create)
		authorized.DELETE("/users/:uid", userHandler.Delete)
	}

	tokens := make(map[string]string)
	for _, u := range []*model.UserAccount{admin, alice, bob} {
		token, err := auth.GenerateToken(u.UID, testSecret)
		assert.NoError(t, err)
		tokens[u.UID] = token
	}

	return &env{
		router:     r,
		tasks:      taskSvc,
		users:      userSvc,
		dispatcher: dispatcher,
		admin:      admin,
		alice:      alice,
		bob:        bob,
		tokens:     tokens,
	}
}

func (e *env) do(t *testing.T, as *model.UserAccount, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+e.tokens[as.UID])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) model.Task {
	var task model.Task
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func taskBody(title string, assignedTo ...string) gin.H {
	return gin.H{
		"title":      title,
		"dueDate":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"assignedTo": assignedTo,
	}
}

func TestTaskCreate(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.alice, http.MethodPost, "/tasks", taskBody("Buy milk"))

	assert.Equal(t, http.StatusCreated, w.Code)
	task := decodeTask(t, w)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, model.CategoryOther, task.Category)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, []string{e.alice.UID}, task.AssignedTo)
}

func TestTaskCreate_MissingTitle(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.alice, http.MethodPost, "/tasks", gin.H{
		"dueDate": time.Now().Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskCreate_Unauthorized(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, nil, http.MethodPost, "/tasks", taskBody("Buy milk"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskList_ScopedToCaller(t *testing.T) {
	e := setupEnv(t)
	e.do(t, e.alice, http.MethodPost, "/tasks", taskBody("Alice's task"))
	e.do(t, e.admin, http.MethodPost, "/tasks", taskBody("Team task", "Alice", "Bob"))

	var aliceList []model.Task
	w := e.do(t, e.alice, http.MethodGet, "/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &aliceList))
	assert.Len(t, aliceList, 2)

	var bobList []model.Task
	w = e.do(t, e.bob, http.MethodGet, "/tasks", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &bobList))
	assert.Len(t, bobList, 1)
	assert.Equal(t, "Team task", bobList[0].Title)
}

func TestTaskList_EmptyBodyIsJSONArray(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.bob, http.MethodGet, "/tasks", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTaskList_OverdueFilter(t *testing.T) {
	e := setupEnv(t)
	e.do(t, e.alice, http.MethodPost, "/tasks", gin.H{
		"title":   "Late",
		"dueDate": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
	})
	e.do(t, e.alice, http.MethodPost, "/tasks", taskBody("On time"))

	var list []model.Task
	w := e.do(t, e.alice, http.MethodGet, "/tasks?overdue=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, "Late", list[0].Title)
}

func TestTaskToggle_TeamTaskPermissions(t *testing.T) {
	e := setupEnv(t)
	created := decodeTask(t, e.do(t, e.admin, http.MethodPost, "/tasks", taskBody("Team task", "Alice", "Bob")))

	// Bob is assigned but not the lead.
	w := e.do(t, e.bob, http.MethodPost, "/tasks/"+created.ID.String()+"/toggle", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, e.alice, http.MethodPost, "/tasks/"+created.ID.String()+"/toggle", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	toggled := decodeTask(t, w)
	assert.True(t, toggled.Completed)
	assert.Equal(t, 100, toggled.Progress)
	assert.Equal(t, "Alice", toggled.CompletedBy)
}

func TestTaskUpdate_LeadReportsProgress(t *testing.T) {
	e := setupEnv(t)
	created := decodeTask(t, e.do(t, e.admin, http.MethodPost, "/tasks", taskBody("Team task", "Alice")))

	w := e.do(t, e.alice, http.MethodPut, "/tasks/"+created.ID.String(), gin.H{
		"progress": 60,
		"notes":    "waiting on review",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	updated := decodeTask(t, w)
	assert.Equal(t, 60, updated.Progress)

	// Structural edits stay with the admin and the creator.
	w = e.do(t, e.alice, http.MethodPut, "/tasks/"+created.ID.String(), gin.H{"title": "renamed"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskDelete(t *testing.T) {
	e := setupEnv(t)
	created := decodeTask(t, e.do(t, e.alice, http.MethodPost, "/tasks", taskBody("Mine")))

	w := e.do(t, e.bob, http.MethodDelete, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, e.alice, http.MethodDelete, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, e.alice, http.MethodGet, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskGetByID_InvalidID(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.alice, http.MethodGet, "/tasks/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskExportImport_RoundTrip(t *testing.T) {
	e := setupEnv(t)
	e.do(t, e.alice, http.MethodPost, "/tasks", taskBody("one"))
	e.do(t, e.alice, http.MethodPost, "/tasks", taskBody("two"))

	w := e.do(t, e.admin, http.MethodGet, "/tasks/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "task-compass-backup-")

	var doc struct {
		Tasks []model.Task `json:"tasks"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Tasks, 2)

	// Wipe and restore from the backup.
	for _, task := range doc.Tasks {
		e.do(t, e.alice, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	}
	w = e.do(t, e.admin, http.MethodPost, "/tasks/import", doc)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var list []model.Task
	w = e.do(t, e.alice, http.MethodGet, "/tasks", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestTaskImport_AdminOnly(t *testing.T) {
	e := setupEnv(t)
	e.do(t, e.admin, http.MethodPost, "/tasks", taskBody("Team task", "Alice"))

	// A regular user must not be able to wipe the shared list via import.
	w := e.do(t, e.bob, http.MethodPost, "/tasks/import", gin.H{"tasks": []model.Task{}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var list []model.Task
	w = e.do(t, e.admin, http.MethodGet, "/tasks", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestTaskImport_InvalidDocument(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.admin, http.MethodPost, "/tasks/import", gin.H{"nope": true})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

