package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/service"
)

// CreateTaskRequest defines the payload for the task creation endpoint.
// Urgency and importance are optional; zero values fall back to the domain
// default pending classification. Quadrant and score cannot be supplied.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Urgency     int    `json:"urgency"     validate:"omitempty,gte=1,lte=4"`
	Importance  int    `json:"importance"  validate:"omitempty,gte=1,lte=4"`

	Status   string `json:"status"    validate:"omitempty,oneof=pending in_progress completed cancelled"`
	TaskKind string `json:"task_kind" validate:"omitempty,oneof=daily monthly"`

	IsRecurring       bool   `json:"is_recurring"`
	RecurrencePattern string `json:"recurrence_pattern" validate:"omitempty,oneof=none daily weekly monthly"`
	// RecurrenceDays holds weekdays (0-6) for weekly patterns and month
	// days (1-31) for monthly ones.
	RecurrenceDays    []int      `json:"recurrence_days"    validate:"omitempty,dive,gte=0,lte=31"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date"`
	DueDate           *time.Time `json:"due_date"`
	DueTime           string     `json:"due_time"`
	ParentTaskID      *uuid.UUID `json:"parent_task_id"`
}

// ToInput converts the request into a service-level create input.
func (req CreateTaskRequest) ToInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Urgency:           req.Urgency,
		Importance:        req.Importance,
		Status:            domain.TaskStatus(req.Status),
		Kind:              domain.TaskKind(req.TaskKind),
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: domain.RecurrencePattern(req.RecurrencePattern),
		RecurrenceDays:    req.RecurrenceDays,
		RecurrenceEndDate: req.RecurrenceEndDate,
		DueDate:           req.DueDate,
		DueTime:           req.DueTime,
		ParentTaskID:      req.ParentTaskID,
	}
}

// UpdateTaskRequest defines the payload for partial task edits. Absent
// fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Urgency     *int    `json:"urgency"     validate:"omitempty,gte=1,lte=4"`
	Importance  *int    `json:"importance"  validate:"omitempty,gte=1,lte=4"`

	Status   *string `json:"status"    validate:"omitempty,oneof=pending in_progress completed cancelled"`
	TaskKind *string `json:"task_kind" validate:"omitempty,oneof=daily monthly"`

	IsRecurring       *bool      `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern" validate:"omitempty,oneof=none daily weekly monthly"`
	RecurrenceDays    *[]int     `json:"recurrence_days"    validate:"omitempty,dive,gte=0,lte=31"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date"`
	DueDate           *time.Time `json:"due_date"`
	DueTime           *string    `json:"due_time"`
	ParentTaskID      *uuid.UUID `json:"parent_task_id"`
}

// ToInput converts the request into a service-level update input.
func (req UpdateTaskRequest) ToInput() service.UpdateTaskInput {
	input := service.UpdateTaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Urgency:           req.Urgency,
		Importance:        req.Importance,
		IsRecurring:       req.IsRecurring,
		RecurrenceDays:    req.RecurrenceDays,
		RecurrenceEndDate: req.RecurrenceEndDate,
		DueDate:           req.DueDate,
		DueTime:           req.DueTime,
		ParentTaskID:      req.ParentTaskID,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.TaskKind != nil {
		kind := domain.TaskKind(*req.TaskKind)
		input.Kind = &kind
	}
	if req.RecurrencePattern != nil {
		pattern := domain.RecurrencePattern(*req.RecurrencePattern)
		input.RecurrencePattern = &pattern
	}
	return input
}

// TaskResponse is a task payload enriched with the human-readable quadrant
// label.
type TaskResponse struct {
	*domain.Task
	QuadrantLabel string `json:"quadrant_label"`
}

// NewTaskResponse wraps a task for API output.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		Task:          task,
		QuadrantLabel: task.Quadrant.Label(),
	}
}

// NewTaskListResponse wraps a task slice for API output. An empty input
// yields an empty array, never null.
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}
