package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskcompass/internal/model"
)

// TaskRepository is the postgres backend for the task list. The service
// layer treats storage as a whole-list load/save pair: the in-memory
// snapshot is authoritative and the database trails it.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// LoadTasks retrieves the full task list.
func (r *TaskRepository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	var list []model.Task
	result := r.db.WithContext(ctx).Order("created_at").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}
	return list, nil
}

// SaveTasks replaces the stored list with the given snapshot: every task is
// upserted and rows absent from the snapshot are removed, in one transaction.
func (r *TaskRepository) SaveTasks(ctx context.Context, list []model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(list))
		for i := range list {
			if err := tx.Save(&list[i]).Error; err != nil {
				return err
			}
			ids = append(ids, list[i].ID)
		}
		if len(ids) == 0 {
			return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Task{}).Error
		}
		return tx.Where("id NOT IN ?", ids).Delete(&model.Task{}).Error
	})
}
