package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses.
const (
	TaskPending    = "pending"
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// ClassificationTask tracks one article handed to the classification workers.
type ClassificationTask struct {
	gorm.Model
	TaskID       string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"task_id"`
	ArticleID    uint       `gorm:"index" json:"article_id"`
	ArticleTitle string     `json:"article_title"`
	Status       string     `gorm:"type:varchar(20);not null" json:"status"` // pending/processing/completed/failed
	Category     string     `json:"category,omitempty"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for ClassificationTask
func (ClassificationTask) TableName() string {
	return "classification_tasks"
}

// Done reports whether the task reached a terminal status.
func (t ClassificationTask) Done() bool {
	return t.Status == TaskCompleted || t.Status == TaskFailed
}
