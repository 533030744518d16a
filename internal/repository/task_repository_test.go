package repository_test

import (
	"context"
	"testing"
	"time"

	"taskcompass/internal/model"
	"taskcompass/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestTaskRepository_LoadTasks(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	taskID := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM "tasks" ORDER BY created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "priority", "completed", "progress", "assigned_to", "created_by"}).
			AddRow(taskID.String(), "Quarterly report", "Work", "High", false, 40, `["Alice"]`, "admin-id"))

	// Act
	list, err := repo.LoadTasks(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, taskID, list[0].ID)
	assert.Equal(t, []string{"Alice"}, list[0].AssignedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_SaveTasks_UpsertsAndPrunes(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	task := model.Task{
		ID:         uuid.New(),
		Title:      "Quarterly report",
		Category:   model.CategoryWork,
		Priority:   model.PriorityHigh,
		DueDate:    time.Now(),
		AssignedTo: []string{"Alice"},
		CreatedBy:  "admin-id",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id NOT IN`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.SaveTasks(context.Background(), []model.Task{task})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_SaveTasks_EmptySnapshotClearsTable(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	// Act
	err := repo.SaveTasks(context.Background(), nil)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "user_accounts" WHERE username = .* LIMIT 1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "username", "display_name", "email", "role"}).
			AddRow("alice-id", "alice", "Alice", "alice@example.com", "user"))

	// Act
	account, err := repo.FindByUsername(context.Background(), "alice")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "alice-id", account.UID)
	assert.Equal(t, model.RoleUser, account.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "user_accounts" WHERE username = .*`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"uid"}))

	// Act
	_, err := repo.FindByUsername(context.Background(), "ghost")

	// Assert
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
