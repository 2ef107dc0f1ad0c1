package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

// document is the on-disk layout of the JSON backend.
type document struct {
	Papers     []models.Paper     `json:"papers"`
	Milestones []models.Milestone `json:"milestones"`
	Tasks      []models.Task      `json:"tasks"`
}

// JSONStore keeps every record in one JSON file. Each mutation reads the
// whole file, changes it in memory and replaces it atomically, so concurrent
// processes race with last-writer-wins semantics.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// OpenJSON opens (without reading) the JSON store at path, creating the
// parent directory if needed.
func OpenJSON(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

// Path returns the JSON file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Migrate is a no-op; a missing file reads as an empty document.
func (s *JSONStore) Migrate() error {
	return nil
}

// Close is a no-op.
func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &document{}, nil
	}

	// Hand-edited files may carry comments or trailing commas.
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("decode store %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(standardized, &doc); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *JSONStore) save(doc *document) error {
	if doc.Papers == nil {
		doc.Papers = []models.Paper{}
	}
	if doc.Milestones == nil {
		doc.Milestones = []models.Milestone{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []models.Task{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// view runs fn against a freshly loaded document.
func (s *JSONStore) view(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// update loads, mutates and rewrites the document. Nothing is written when
// fn fails.
func (s *JSONStore) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// Paper operations

// CreatePaper inserts a paper.
func (s *JSONStore) CreatePaper(p *models.Paper) error {
	return s.update(func(doc *document) error {
		for i := range doc.Papers {
			if doc.Papers[i].ID == p.ID {
				return fmt.Errorf("create paper %s: %w", p.ID, ErrDuplicateID)
			}
		}
		doc.Papers = append(doc.Papers, *p)
		return nil
	})
}

// GetPaper returns the paper with id, or nil.
func (s *JSONStore) GetPaper(id string) (*models.Paper, error) {
	var found *models.Paper
	err := s.view(func(doc *document) error {
		for i := range doc.Papers {
			if doc.Papers[i].ID == id {
				p := doc.Papers[i]
				found = &p
				return nil
			}
		}
		return nil
	})
	return found, err
}

// UpdatePaper replaces the stored paper with the same id.
func (s *JSONStore) UpdatePaper(p *models.Paper) error {
	return s.update(func(doc *document) error {
		for i := range doc.Papers {
			if doc.Papers[i].ID == p.ID {
				doc.Papers[i] = *p
				return nil
			}
		}
		return fmt.Errorf("update paper %s: %w", p.ID, ErrNotFound)
	})
}

// ListPapers returns every paper ordered by deadline, then name.
func (s *JSONStore) ListPapers() ([]models.Paper, error) {
	var papers []models.Paper
	err := s.view(func(doc *document) error {
		papers = append(papers, doc.Papers...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(papers, func(i, j int) bool {
		if !papers[i].Deadline.Equal(papers[j].Deadline) {
			return papers[i].Deadline.Before(papers[j].Deadline)
		}
		return papers[i].Name < papers[j].Name
	})
	return papers, nil
}

// Milestone operations

// CreateMilestone inserts a milestone. Its paper must exist.
func (s *JSONStore) CreateMilestone(m *models.Milestone) error {
	return s.update(func(doc *document) error {
		if !doc.hasPaper(m.PaperID) {
			return fmt.Errorf("create milestone: paper %s: %w", m.PaperID, ErrIntegrity)
		}
		for i := range doc.Milestones {
			if doc.Milestones[i].ID == m.ID {
				return fmt.Errorf("create milestone %s: %w", m.ID, ErrDuplicateID)
			}
		}
		doc.Milestones = append(doc.Milestones, *m)
		return nil
	})
}

// GetMilestone returns the milestone with id, or nil.
func (s *JSONStore) GetMilestone(id string) (*models.Milestone, error) {
	var found *models.Milestone
	err := s.view(func(doc *document) error {
		found = doc.milestone(id)
		return nil
	})
	return found, err
}

// UpdateMilestone replaces the stored milestone with the same id.
func (s *JSONStore) UpdateMilestone(m *models.Milestone) error {
	return s.update(func(doc *document) error {
		for i := range doc.Milestones {
			if doc.Milestones[i].ID == m.ID {
				doc.Milestones[i] = *m
				return nil
			}
		}
		return fmt.Errorf("update milestone %s: %w", m.ID, ErrNotFound)
	})
}

// ListMilestones returns matching milestones ordered by due date, then
// priority (highest first), then creation time.
func (s *JSONStore) ListMilestones(f MilestoneFilter) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := s.view(func(doc *document) error {
		for i := range doc.Milestones {
			if f.Match(&doc.Milestones[i]) {
				milestones = append(milestones, doc.Milestones[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortMilestones(milestones)
	return milestones, nil
}

// Task operations

// CreateTasks inserts all tasks in a single rewrite, or none of them.
func (s *JSONStore) CreateTasks(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return s.update(func(doc *document) error {
		ids := make(map[string]bool, len(doc.Tasks))
		for i := range doc.Tasks {
			ids[doc.Tasks[i].ID] = true
		}
		for i := range tasks {
			t := &tasks[i]
			if ids[t.ID] {
				return fmt.Errorf("create task %s: %w", t.ID, ErrDuplicateID)
			}
			ids[t.ID] = true

			m := doc.milestone(t.MilestoneID)
			if m == nil {
				return fmt.Errorf("create task: milestone %s: %w", t.MilestoneID, ErrIntegrity)
			}
			if !doc.hasPaper(t.PaperID) || m.PaperID != t.PaperID {
				return fmt.Errorf("create task: paper %s does not own milestone %s: %w", t.PaperID, t.MilestoneID, ErrIntegrity)
			}
		}
		doc.Tasks = append(doc.Tasks, tasks...)
		return nil
	})
}

// GetTask returns the task with id, or nil.
func (s *JSONStore) GetTask(id string) (*models.Task, error) {
	var found *models.Task
	err := s.view(func(doc *document) error {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == id {
				t := doc.Tasks[i]
				found = &t
				return nil
			}
		}
		return nil
	})
	return found, err
}

// UpdateTask replaces the stored task with the same id.
func (s *JSONStore) UpdateTask(t *models.Task) error {
	return s.update(func(doc *document) error {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == t.ID {
				doc.Tasks[i] = *t
				return nil
			}
		}
		return fmt.Errorf("update task %s: %w", t.ID, ErrNotFound)
	})
}

// ListTasks returns matching tasks ordered by scheduled date, keeping
// insertion order within a day.
func (s *JSONStore) ListTasks(f TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	err := s.view(func(doc *document) error {
		for i := range doc.Tasks {
			if f.Match(&doc.Tasks[i]) {
				tasks = append(tasks, doc.Tasks[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ScheduledDate.Before(tasks[j].ScheduledDate)
	})
	return tasks, nil
}

// DeleteTasksByMilestone removes every task of a milestone.
func (s *JSONStore) DeleteTasksByMilestone(milestoneID string) (int, error) {
	removed := 0
	err := s.update(func(doc *document) error {
		kept := doc.Tasks[:0]
		for _, t := range doc.Tasks {
			if t.MilestoneID == milestoneID {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		doc.Tasks = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (doc *document) hasPaper(id string) bool {
	for i := range doc.Papers {
		if doc.Papers[i].ID == id {
			return true
		}
	}
	return false
}

func (doc *document) milestone(id string) *models.Milestone {
	for i := range doc.Milestones {
		if doc.Milestones[i].ID == id {
			m := doc.Milestones[i]
			return &m
		}
	}
	return nil
}

// SortMilestones orders milestones by due date, then priority (highest
// first), then creation time.
func SortMilestones(ms []models.Milestone) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
