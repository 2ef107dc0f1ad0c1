package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task is done.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusSkipped indicates the task was dropped.
	TaskStatusSkipped TaskStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Open returns true for statuses that still need work.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// Task is a dated, estimated unit of work belonging to a milestone.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id" yaml:"id"`
	// MilestoneID references the owning milestone.
	MilestoneID string `json:"milestone_id" yaml:"milestone_id"`
	// PaperID references the paper of the owning milestone.
	PaperID string `json:"paper_id" yaml:"paper_id"`
	// Description is a specific, actionable piece of work.
	Description string `json:"description" yaml:"description"`
	// ScheduledDate is the day the task is planned for.
	ScheduledDate Date `json:"scheduled_date" yaml:"scheduled_date"`
	// EstimatedHours is the expected effort.
	EstimatedHours float64 `json:"estimated_hours" yaml:"estimated_hours"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status" yaml:"status"`
	// CreatedAt is when the task was generated.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewTask returns a pending Task with a fresh ID bound to a milestone and paper.
func NewTask(milestoneID, paperID, description string, scheduled Date, hours float64) Task {
	return Task{
		ID:             NewID(),
		MilestoneID:    milestoneID,
		PaperID:        paperID,
		Description:    description,
		ScheduledDate:  scheduled,
		EstimatedHours: hours,
		Status:         TaskStatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}
