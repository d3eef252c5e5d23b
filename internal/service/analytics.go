package service

import (
	"math"

	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/store"
)

// TaskAnalytics is the monthly dashboard aggregation. All counts and rates
// are zero when the month has no tasks.
type TaskAnalytics struct {
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	CompletionRate  float64 `json:"completion_rate"`

	PriorityBreakdown map[string]int `json:"priority_breakdown"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	DailyCounts       map[string]int `json:"daily_counts"`

	AvgUrgency       float64 `json:"avg_urgency"`
	AvgImportance    float64 `json:"avg_importance"`
	MonthName        string  `json:"month_name"`
	TotalDaysInMonth int     `json:"total_days_in_month"`
}

// ComputeAnalytics aggregates the monthly projection in memory. Daily counts
// are keyed by the task's due date, falling back to its creation date.
func ComputeAnalytics(window store.MonthWindow, tasks []*domain.Task) *TaskAnalytics {
	a := &TaskAnalytics{
		Month:             int(window.Month),
		Year:              window.Year,
		TotalTasks:        len(tasks),
		PriorityBreakdown: make(map[string]int),
		DailyCounts:       make(map[string]int),
		MonthName:         window.Month.String(),
		TotalDaysInMonth:  window.Days(),
	}

	var cancelled int
	var urgencySum, importanceSum int
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskStatusCompleted:
			a.CompletedTasks++
		case domain.TaskStatusPending:
			a.PendingTasks++
		case domain.TaskStatusInProgress:
			a.InProgressTasks++
		case domain.TaskStatusCancelled:
			cancelled++
		}

		a.PriorityBreakdown[string(t.Quadrant)]++

		day := t.CreatedAt
		if t.DueDate != nil {
			day = *t.DueDate
		}
		a.DailyCounts[day.UTC().Format("2006-01-02")]++

		urgencySum += t.Urgency
		importanceSum += t.Importance
	}

	a.StatusBreakdown = map[string]int{
		"completed":   a.CompletedTasks,
		"pending":     a.PendingTasks,
		"in_progress": a.InProgressTasks,
		"cancelled":   cancelled,
	}

	if a.TotalTasks > 0 {
		n := float64(a.TotalTasks)
		a.CompletionRate = round2(float64(a.CompletedTasks) / n * 100)
		a.AvgUrgency = round2(float64(urgencySum) / n)
		a.AvgImportance = round2(float64(importanceSum) / n)
	}

	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
