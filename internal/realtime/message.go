// Package realtime fans task-changed events out to the websocket sessions of
// the owning user. Delivery is at-most-once per connected session with no
// persistence or replay; a client that reconnects refetches state through
// the list endpoints.
package realtime

import (
	"github.com/google/uuid"
	"github.com/taskwell/matrix-api/internal/domain"
)

// Action identifies what happened to a task.
type Action string

// Possible actions.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// messageTypeTaskUpdate is the frame type for task change notifications.
const messageTypeTaskUpdate = "task_update"

// deletedTask is the id-only payload carried by deletion notifications.
type deletedTask struct {
	ID uuid.UUID `json:"id"`
}

// Message is the single normalized notification payload. It is constructed
// once at the point of mutation and never inferred by shape downstream.
type Message struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
	Task   any    `json:"task"`
}

// NewTaskMessage builds the notification for a created or updated task.
func NewTaskMessage(action Action, task *domain.Task) Message {
	return Message{
		Type:   messageTypeTaskUpdate,
		Action: action,
		Task:   task,
	}
}

// NewDeletedMessage builds the notification for a deleted task. It carries
// only the id; the row no longer exists.
func NewDeletedMessage(id uuid.UUID) Message {
	return Message{
		Type:   messageTypeTaskUpdate,
		Action: ActionDeleted,
		Task:   deletedTask{ID: id},
	}
}

// Broadcaster is the contract the pipeline publishes through. Publishing
// never fails observably; failures are swallowed so a broken socket can
// never affect the outcome of the triggering mutation.
type Broadcaster interface {
	Publish(ownerID uuid.UUID, msg Message)
}
