// Package store persists papers, milestones and tasks.
//
// Two backends implement Store: a single JSON document rewritten wholesale
// on every mutation, and an SQLite database. Lookups by id return (nil, nil)
// when the record does not exist.
package store

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

var (
	// ErrIntegrity is returned when a record references a missing or
	// mismatched owner.
	ErrIntegrity = errors.New("referential integrity violation")

	// ErrNotFound is returned when updating a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned when inserting a record whose id is taken.
	ErrDuplicateID = errors.New("duplicate record id")
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// PaperStore handles paper persistence.
type PaperStore interface {
	CreatePaper(p *models.Paper) error
	GetPaper(id string) (*models.Paper, error)
	UpdatePaper(p *models.Paper) error
	ListPapers() ([]models.Paper, error)
}

// MilestoneFilter narrows ListMilestones. Zero fields match everything.
type MilestoneFilter struct {
	PaperID          string
	Decomposed       *bool
	ExcludeCompleted bool
}

// Match reports whether m passes the filter.
func (f MilestoneFilter) Match(m *models.Milestone) bool {
	if f.PaperID != "" && m.PaperID != f.PaperID {
		return false
	}
	if f.Decomposed != nil && m.Decomposed != *f.Decomposed {
		return false
	}
	if f.ExcludeCompleted && m.Status == models.MilestoneCompleted {
		return false
	}
	return true
}

// MilestoneStore handles milestone persistence.
type MilestoneStore interface {
	CreateMilestone(m *models.Milestone) error
	GetMilestone(id string) (*models.Milestone, error)
	UpdateMilestone(m *models.Milestone) error
	ListMilestones(f MilestoneFilter) ([]models.Milestone, error)
}

// TaskFilter narrows ListTasks. From and To are inclusive; zero means
// unbounded.
type TaskFilter struct {
	PaperID     string
	MilestoneID string
	Statuses    []models.TaskStatus
	From        models.Date
	To          models.Date
}

// Match reports whether t passes the filter.
func (f TaskFilter) Match(t *models.Task) bool {
	if f.PaperID != "" && t.PaperID != f.PaperID {
		return false
	}
	if f.MilestoneID != "" && t.MilestoneID != f.MilestoneID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && t.ScheduledDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.ScheduledDate.After(f.To) {
		return false
	}
	return true
}

// TaskStore handles task persistence.
type TaskStore interface {
	// CreateTasks inserts all tasks or none. Every task must reference an
	// existing milestone whose paper matches the task's PaperID.
	CreateTasks(tasks []models.Task) error
	GetTask(id string) (*models.Task, error)
	UpdateTask(t *models.Task) error
	ListTasks(f TaskFilter) ([]models.Task, error)
	// DeleteTasksByMilestone removes every task of a milestone and returns
	// how many were removed.
	DeleteTasksByMilestone(milestoneID string) (int, error)
}

// Migrator handles schema setup.
type Migrator interface {
	// Migrate brings the backing storage up to date.
	Migrate() error
}

// Store is the full record store used by services and the decomposer.
type Store interface {
	io.Closer
	Migrator
	PaperStore
	MilestoneStore
	TaskStore
	// Path returns the file backing the store.
	Path() string
}

// Compile-time verification that both backends implement Store.
var (
	_ Store = (*JSONStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// Open opens the named backend inside dataDir and migrates it.
func Open(backend, dataDir string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case BackendJSON, "":
		s, err = OpenJSON(filepath.Join(dataDir, "data.json"))
	case BackendSQLite:
		s, err = OpenSQLite(filepath.Join(dataDir, "paperbar.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate %s store: %w", backend, err)
	}
	return s, nil
}
