package tracker

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

// Milestones manages milestone records.
type Milestones struct {
	store store.Store
}

// NewMilestones returns a Milestones service backed by s.
func NewMilestones(s store.Store) *Milestones {
	return &Milestones{store: s}
}

// Create adds a milestone to an existing paper. The returned flag is set when
// the due date falls after the paper deadline; the milestone is stored anyway.
func (m *Milestones) Create(paperID, description string, due models.Date, priority int) (*models.Milestone, bool, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, false, fmt.Errorf("milestone description is empty: %w", ErrInvalidInput)
	}
	if due.IsZero() {
		return nil, false, fmt.Errorf("milestone due date is required: %w", ErrInvalidInput)
	}
	if priority < models.MinPriority || priority > models.MaxPriority {
		return nil, false, fmt.Errorf("priority %d not in %d-%d: %w",
			priority, models.MinPriority, models.MaxPriority, ErrInvalidInput)
	}

	paper, err := m.store.GetPaper(paperID)
	if err != nil {
		return nil, false, fmt.Errorf("get paper: %w", err)
	}
	if paper == nil {
		return nil, false, fmt.Errorf("paper %s: %w", paperID, ErrPaperNotFound)
	}

	ms := models.NewMilestone(paperID, description, due, priority)
	if err := m.store.CreateMilestone(&ms); err != nil {
		return nil, false, fmt.Errorf("create milestone: %w", err)
	}
	return &ms, due.After(paper.Deadline), nil
}

// Get returns the milestone with id, or ErrMilestoneNotFound.
func (m *Milestones) Get(id string) (*models.Milestone, error) {
	ms, err := m.store.GetMilestone(id)
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	if ms == nil {
		return nil, fmt.Errorf("milestone %s: %w", id, ErrMilestoneNotFound)
	}
	return ms, nil
}

// Resolve finds a milestone by full id or unambiguous id prefix.
func (m *Milestones) Resolve(ref string) (*models.Milestone, error) {
	all, err := m.store.ListMilestones(store.MilestoneFilter{})
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	ids := make([]string, len(all))
	for i := range all {
		ids[i] = all[i].ID
	}
	id, err := resolveRef(ref, ids, ErrMilestoneNotFound)
	if err != nil {
		return nil, err
	}
	return m.Get(id)
}

// ListByPaper returns a paper's milestones in due order. Completed
// milestones are left out unless includeCompleted is set. An empty paperID
// lists milestones of every paper.
func (m *Milestones) ListByPaper(paperID string, includeCompleted bool) ([]models.Milestone, error) {
	ms, err := m.store.ListMilestones(store.MilestoneFilter{
		PaperID:          paperID,
		ExcludeCompleted: !includeCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return ms, nil
}

// SetStatus moves a milestone to status.
func (m *Milestones) SetStatus(id string, status models.MilestoneStatus) (*models.Milestone, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("milestone status %q: %w", status, ErrInvalidInput)
	}
	return m.update(id, func(ms *models.Milestone) { ms.Status = status })
}

// Start marks a milestone in progress.
func (m *Milestones) Start(id string) (*models.Milestone, error) {
	return m.SetStatus(id, models.MilestoneInProgress)
}

// Complete marks a milestone completed.
func (m *Milestones) Complete(id string) (*models.Milestone, error) {
	return m.SetStatus(id, models.MilestoneCompleted)
}

func (m *Milestones) update(id string, mutate func(*models.Milestone)) (*models.Milestone, error) {
	ms, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	mutate(ms)
	if err := m.store.UpdateMilestone(ms); err != nil {
		return nil, fmt.Errorf("update milestone: %w", err)
	}
	return ms, nil
}
