package store

import (
	"context"
	"errors"
	"time"

	"github.com/rsscat/rsscat/models"
	"gorm.io/gorm"
)

func (s *Store) CreateTask(ctx context.Context, task *models.ClassificationTask) error {
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	return s.db.WithContext(ctx).Create(task).Error
}

// UpdateTask moves a task to status. Terminal statuses also stamp CompletedAt.
func (s *Store) UpdateTask(ctx context.Context, taskID, status, category, errMsg string) error {
	updates := map[string]any{
		"status":   status,
		"category": category,
		"error":    errMsg,
	}
	if status == models.TaskCompleted || status == models.TaskFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	res := s.db.WithContext(ctx).
		Model(&models.ClassificationTask{}).
		Where("task_id = ?", taskID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, taskID string) (*models.ClassificationTask, error) {
	var task models.ClassificationTask
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}
