package tracker

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

// Plan is the exported view of one paper with its milestones and tasks.
type Plan struct {
	Paper      PlanPaper       `yaml:"paper"`
	Milestones []PlanMilestone `yaml:"milestones"`
}

// PlanPaper is the paper section of a Plan.
type PlanPaper struct {
	Name        string      `yaml:"name"`
	Deadline    models.Date `yaml:"deadline"`
	Conference  string      `yaml:"conference,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Archived    bool        `yaml:"archived,omitempty"`
}

// PlanMilestone is a milestone with its tasks.
type PlanMilestone struct {
	ID          string                 `yaml:"id"`
	Description string                 `yaml:"description"`
	DueDate     models.Date            `yaml:"due_date"`
	Status      models.MilestoneStatus `yaml:"status"`
	Priority    int                    `yaml:"priority"`
	Decomposed  bool                   `yaml:"decomposed"`
	Tasks       []PlanTask             `yaml:"tasks,omitempty"`
}

// PlanTask is a task line in a Plan.
type PlanTask struct {
	ID             string            `yaml:"id"`
	ScheduledDate  models.Date       `yaml:"scheduled_date"`
	Description    string            `yaml:"description"`
	EstimatedHours float64           `yaml:"estimated_hours"`
	Status         models.TaskStatus `yaml:"status"`
}

// TotalHours sums the estimated hours of every task in the plan.
func (p *Plan) TotalHours() float64 {
	var total float64
	for _, m := range p.Milestones {
		for _, t := range m.Tasks {
			total += t.EstimatedHours
		}
	}
	return total
}

// WriteYAML encodes the plan to w.
func (p *Plan) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return enc.Close()
}

// ExportPlan builds the Plan of a paper, including completed milestones.
func ExportPlan(s store.Store, paperID string) (*Plan, error) {
	paper, err := NewPapers(s).Get(paperID)
	if err != nil {
		return nil, err
	}

	milestones, err := s.ListMilestones(store.MilestoneFilter{PaperID: paperID})
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	tasks, err := s.ListTasks(store.TaskFilter{PaperID: paperID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	byMilestone := make(map[string][]PlanTask)
	for _, t := range tasks {
		byMilestone[t.MilestoneID] = append(byMilestone[t.MilestoneID], PlanTask{
			ID:             t.ID,
			ScheduledDate:  t.ScheduledDate,
			Description:    t.Description,
			EstimatedHours: t.EstimatedHours,
			Status:         t.Status,
		})
	}

	plan := &Plan{
		Paper: PlanPaper{
			Name:        paper.Name,
			Deadline:    paper.Deadline,
			Conference:  paper.Conference,
			Description: paper.Description,
			Archived:    paper.Archived,
		},
		Milestones: make([]PlanMilestone, 0, len(milestones)),
	}
	for _, m := range milestones {
		plan.Milestones = append(plan.Milestones, PlanMilestone{
			ID:          m.ID,
			Description: m.Description,
			DueDate:     m.DueDate,
			Status:      m.Status,
			Priority:    m.Priority,
			Decomposed:  m.Decomposed,
			Tasks:       byMilestone[m.ID],
		})
	}
	return plan, nil
}
