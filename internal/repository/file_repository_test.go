package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskcompass/internal/model"
	"taskcompass/internal/repository"
)

func TestFileRepository_TasksRoundTrip(t *testing.T) {
	repo := repository.NewFileRepository(t.TempDir())

	task := model.Task{
		ID:         uuid.New(),
		Title:      "Water the plants",
		Category:   model.CategoryPersonal,
		Priority:   model.PriorityLow,
		DueDate:    time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC),
		AssignedTo: []string{"alice-id"},
		CreatedBy:  "alice-id",
	}

	assert.NoError(t, repo.SaveTasks(context.Background(), []model.Task{task}))

	loaded, err := repo.LoadTasks(context.Background())
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, task.ID, loaded[0].ID)
	assert.Equal(t, task.Title, loaded[0].Title)
	assert.Equal(t, task.AssignedTo, loaded[0].AssignedTo)
}

func TestFileRepository_MissingFilesYieldEmptyLists(t *testing.T) {
	repo := repository.NewFileRepository(t.TempDir())

	tasks, err := repo.LoadTasks(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, tasks)

	users, err := repo.LoadUsers(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestFileRepository_MalformedFileYieldsEmptyList(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(`{"tasks": [{`), 0o644)
	assert.NoError(t, err)

	tasks, err := repository.NewFileRepository(dir).LoadTasks(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFileRepository_UsersRoundTrip(t *testing.T) {
	repo := repository.NewFileRepository(t.TempDir())

	account := model.UserAccount{
		UID:         "alice-id",
		Username:    "alice",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Role:        model.RoleUser,
	}

	assert.NoError(t, repo.SaveUsers(context.Background(), []model.UserAccount{account}))

	loaded, err := repo.LoadUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, "alice", loaded[0].Username)
}

func TestFileRepository_WriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewFileRepository(dir)

	assert.NoError(t, repo.SaveTasks(context.Background(), []model.Task{}))

	// No temp file is left behind after a successful write.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}
