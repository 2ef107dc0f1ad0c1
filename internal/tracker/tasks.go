package tracker

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

var openStatuses = []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}

// Tasks manages task records.
type Tasks struct {
	store store.Store
}

// NewTasks returns a Tasks service backed by s.
func NewTasks(s store.Store) *Tasks {
	return &Tasks{store: s}
}

// Create adds a single task to an existing milestone.
func (t *Tasks) Create(milestoneID, description string, scheduled models.Date, hours float64) (*models.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("task description is empty: %w", ErrInvalidInput)
	}
	if hours <= 0 {
		return nil, fmt.Errorf("estimated hours must be positive: %w", ErrInvalidInput)
	}
	ms, err := t.store.GetMilestone(milestoneID)
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	if ms == nil {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, ErrMilestoneNotFound)
	}

	task := models.NewTask(ms.ID, ms.PaperID, description, scheduled, hours)
	if err := t.store.CreateTasks([]models.Task{task}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Get returns the task with id, or ErrTaskNotFound.
func (t *Tasks) Get(id string) (*models.Task, error) {
	task, err := t.store.GetTask(id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	return task, nil
}

// Resolve finds a task by full id or unambiguous id prefix.
func (t *Tasks) Resolve(ref string) (*models.Task, error) {
	all, err := t.store.ListTasks(store.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	ids := make([]string, len(all))
	for i := range all {
		ids[i] = all[i].ID
	}
	id, err := resolveRef(ref, ids, ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	return t.Get(id)
}

// Today returns every task scheduled on today, optionally for one paper.
func (t *Tasks) Today(paperID string, today models.Date) ([]models.Task, error) {
	return t.list(store.TaskFilter{PaperID: paperID, From: today, To: today})
}

// Overdue returns open tasks scheduled before today.
func (t *Tasks) Overdue(paperID string, today models.Date) ([]models.Task, error) {
	return t.list(store.TaskFilter{
		PaperID:  paperID,
		Statuses: openStatuses,
		To:       today.AddDays(-1),
	})
}

// Pending returns every open task ordered by scheduled date.
func (t *Tasks) Pending(paperID string) ([]models.Task, error) {
	return t.list(store.TaskFilter{PaperID: paperID, Statuses: openStatuses})
}

// ListByMilestone returns a milestone's tasks ordered by scheduled date.
func (t *Tasks) ListByMilestone(milestoneID string) ([]models.Task, error) {
	return t.list(store.TaskFilter{MilestoneID: milestoneID})
}

func (t *Tasks) list(f store.TaskFilter) ([]models.Task, error) {
	tasks, err := t.store.ListTasks(f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// SetStatus moves a task to status.
func (t *Tasks) SetStatus(id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("task status %q: %w", status, ErrInvalidInput)
	}
	task, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	task.Status = status
	if err := t.store.UpdateTask(task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Start marks a task in progress.
func (t *Tasks) Start(id string) (*models.Task, error) {
	return t.SetStatus(id, models.TaskStatusInProgress)
}

// Complete marks a task completed.
func (t *Tasks) Complete(id string) (*models.Task, error) {
	return t.SetStatus(id, models.TaskStatusCompleted)
}

// Skip marks a task skipped.
func (t *Tasks) Skip(id string) (*models.Task, error) {
	return t.SetStatus(id, models.TaskStatusSkipped)
}

// PaperNames maps paper ids to names for display.
func (t *Tasks) PaperNames() (map[string]string, error) {
	return NewPapers(t.store).Names()
}
