package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskModel mirrors the 'tasks' table. OwnerID references users.id.
type TaskModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index:tasks_owner_created_idx,priority:1"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text;not null"`
	Completed   bool      `gorm:"not null"`
	Priority    string    `gorm:"type:varchar(16);not null"`
	Category    string    `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"index:tasks_owner_created_idx,priority:2"`
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (TaskModel) TableName() string {
	return "tasks"
}
