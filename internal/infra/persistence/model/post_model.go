package model

import (
	"time"

	"github.com/google/uuid"
)

// PostModel mirrors the 'posts' table. OwnerID references users.id.
type PostModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:posts_owner_created_idx,priority:1"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Content   string    `gorm:"type:text;not null"`
	Author    string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"index:posts_owner_created_idx,priority:2"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}
