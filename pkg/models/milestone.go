package models

import "time"

// MilestoneStatus represents the progress of a milestone.
type MilestoneStatus string

const (
	// MilestonePending indicates work has not started.
	MilestonePending MilestoneStatus = "pending"
	// MilestoneInProgress indicates work has started.
	MilestoneInProgress MilestoneStatus = "in_progress"
	// MilestoneCompleted indicates the milestone is done.
	MilestoneCompleted MilestoneStatus = "completed"
)

// Valid returns true if the status is a known value.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted:
		return true
	default:
		return false
	}
}

// Priority bounds for milestones.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Milestone is a dated sub-goal of a paper.
type Milestone struct {
	// ID is the unique identifier for this milestone.
	ID string `json:"id" yaml:"id"`
	// PaperID references the owning paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`
	// Description says what has to be done.
	Description string `json:"description" yaml:"description"`
	// DueDate should not be after the paper deadline (not enforced).
	DueDate Date `json:"due_date" yaml:"due_date"`
	// Status is the current progress.
	Status MilestoneStatus `json:"status" yaml:"status"`
	// Priority ranges from MinPriority to MaxPriority; higher is more important.
	Priority int `json:"priority" yaml:"priority"`
	// Decomposed is set once tasks have been generated for this milestone.
	Decomposed bool `json:"decomposed" yaml:"decomposed"`
	// CreatedAt is when the milestone was added.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewMilestone returns a pending, undecomposed Milestone with a fresh ID.
func NewMilestone(paperID, description string, due Date, priority int) Milestone {
	return Milestone{
		ID:          NewID(),
		PaperID:     paperID,
		Description: description,
		DueDate:     due,
		Status:      MilestonePending,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}
}
