package domain

// Task change events delivered to a user's live connections.
// Transient: no persistence, no delivery guarantees beyond at-most-once.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// TaskEvent is the wire shape of a task change notification.
type TaskEvent struct {
	Type string `json:"type"`
	Task *Task  `json:"task"`
}
