package service

import "github.com/google/uuid"

// Event names pushed to a user's live connections when their records change.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// Notifier pushes fire-and-forget events to a user. Implementations must not
// block and must not fail the calling operation.
type Notifier interface {
	NotifyUser(userID uuid.UUID, event string, data any)
}
