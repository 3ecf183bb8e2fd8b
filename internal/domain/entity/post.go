package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is an owner-scoped blog entry.
type Post struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that can be handed out without sharing storage.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p

	return &cp
}
