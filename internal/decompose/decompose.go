// Package decompose turns milestones into dated tasks using a text generator.
package decompose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/paperbar/internal/llm"
	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

// Options controls a decomposition attempt.
type Options struct {
	// Force permits re-decomposing a milestone, replacing its tasks.
	Force bool
	// DryRun returns the generated tasks without persisting anything.
	DryRun bool
}

// Config is the configuration snapshot a Decomposer works with.
type Config struct {
	// DefaultTaskHours is used for tasks returned without estimated_hours.
	DefaultTaskHours float64
}

// Decomposer breaks milestones down into daily tasks.
type Decomposer struct {
	cfg    Config
	gen    llm.Generator
	store  store.Store
	today  func() models.Date
	logger *zap.Logger
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithClock sets the function that reports the current date.
func WithClock(today func() models.Date) Option {
	return func(d *Decomposer) {
		d.today = today
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decomposer) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Decomposer. The clock defaults to models.Today and the
// logger to a no-op logger.
func New(cfg Config, gen llm.Generator, s store.Store, opts ...Option) *Decomposer {
	d := &Decomposer{
		cfg:    cfg,
		gen:    gen,
		store:  s,
		today:  models.Today,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecomposeMilestone generates tasks for one milestone and, unless
// opts.DryRun is set, stores them and marks the milestone decomposed.
//
// Storing is two steps: the tasks are inserted, then the milestone is
// updated. A failure between them leaves tasks on a milestone that still
// reads as not decomposed.
func (d *Decomposer) DecomposeMilestone(ctx context.Context, milestoneID string, opts Options) ([]models.Task, error) {
	milestone, err := d.store.GetMilestone(milestoneID)
	if err != nil {
		return nil, fmt.Errorf("load milestone %s: %w", milestoneID, err)
	}
	if milestone == nil {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, ErrNotFound)
	}

	if milestone.Decomposed && !opts.Force {
		return nil, fmt.Errorf("milestone %q: %w", milestone.Description, ErrAlreadyDecomposed)
	}

	paper, err := d.store.GetPaper(milestone.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper %s: %w", milestone.PaperID, err)
	}
	if paper == nil {
		return nil, fmt.Errorf("paper %s for milestone %s: %w", milestone.PaperID, milestone.ID, ErrReferentialIntegrity)
	}

	days, err := AvailableDays(d.today(), milestone.DueDate)
	if err != nil {
		return nil, err
	}

	log := d.logger.With(zap.String("milestone_id", milestone.ID))
	log.Info("decomposing milestone",
		zap.Bool("force", opts.Force),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("window_days", len(days)),
	)

	prompt := BuildPrompt(paper, milestone, days)
	start := time.Now()
	response, err := d.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	log.Debug("generator returned", zap.Duration("elapsed", time.Since(start)), zap.Int("chars", len(response)))

	tasks, err := ParseResponse(response, milestone, paper, d.cfg.DefaultTaskHours)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		log.Info("dry run, nothing stored", zap.Int("tasks", len(tasks)))
		return tasks, nil
	}

	if opts.Force && milestone.Decomposed {
		purged, err := d.store.DeleteTasksByMilestone(milestone.ID)
		if err != nil {
			return nil, fmt.Errorf("purge previous tasks: %w", err)
		}
		log.Info("purged previous tasks", zap.Int("count", purged))
	}

	if err := d.store.CreateTasks(tasks); err != nil {
		if errors.Is(err, store.ErrIntegrity) {
			return nil, fmt.Errorf("store tasks: %w: %w", ErrReferentialIntegrity, err)
		}
		return nil, fmt.Errorf("store tasks: %w", err)
	}

	milestone.Decomposed = true
	if err := d.store.UpdateMilestone(milestone); err != nil {
		return nil, fmt.Errorf("mark milestone decomposed: %w", err)
	}

	log.Info("tasks committed", zap.Int("tasks", len(tasks)))
	return tasks, nil
}

// DecomposePaper decomposes the paper's eligible milestones in due-date
// order. Without Force only milestones that were never decomposed are
// eligible; with Force every milestone that is not completed is.
//
// The first failure stops the batch. Milestones handled before it stay
// stored, and their tasks are returned alongside the error.
func (d *Decomposer) DecomposePaper(ctx context.Context, paperID string, opts Options) ([]models.Task, error) {
	paper, err := d.store.GetPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("load paper %s: %w", paperID, err)
	}
	if paper == nil {
		return nil, fmt.Errorf("paper %s: %w", paperID, ErrNotFound)
	}

	filter := store.MilestoneFilter{PaperID: paper.ID}
	if opts.Force {
		filter.ExcludeCompleted = true
	} else {
		notDecomposed := false
		filter.Decomposed = &notDecomposed
	}
	milestones, err := d.store.ListMilestones(filter)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	store.SortMilestones(milestones)

	all := []models.Task{}
	for _, m := range milestones {
		tasks, err := d.DecomposeMilestone(ctx, m.ID, opts)
		if err != nil {
			return all, fmt.Errorf("decompose milestone %q: %w", m.Description, err)
		}
		all = append(all, tasks...)
	}

	d.logger.Debug("paper decomposed",
		zap.String("paper_id", paper.ID),
		zap.Int("milestones", len(milestones)),
		zap.Int("tasks", len(all)),
	)
	return all, nil
}
