package tracker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

// PaperInput holds the fields accepted when creating a paper.
type PaperInput struct {
	Name        string
	Deadline    models.Date
	Conference  string
	Description string
}

// Papers manages paper records.
type Papers struct {
	store store.Store
}

// NewPapers returns a Papers service backed by s.
func NewPapers(s store.Store) *Papers {
	return &Papers{store: s}
}

// Create adds a paper. Names are trimmed and must be unique regardless of case.
func (p *Papers) Create(in PaperInput) (*models.Paper, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("paper name is empty: %w", ErrInvalidInput)
	}
	if in.Deadline.IsZero() {
		return nil, fmt.Errorf("paper deadline is required: %w", ErrInvalidInput)
	}

	existing, err := p.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("paper %q: %w", existing.Name, ErrDuplicatePaper)
	}

	paper := models.NewPaper(name, in.Deadline)
	paper.Conference = strings.TrimSpace(in.Conference)
	paper.Description = strings.TrimSpace(in.Description)
	if err := p.store.CreatePaper(&paper); err != nil {
		return nil, fmt.Errorf("create paper: %w", err)
	}
	return &paper, nil
}

// Get returns the paper with id, or ErrPaperNotFound.
func (p *Papers) Get(id string) (*models.Paper, error) {
	paper, err := p.store.GetPaper(id)
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}
	if paper == nil {
		return nil, fmt.Errorf("paper %s: %w", id, ErrPaperNotFound)
	}
	return paper, nil
}

// GetByName returns the paper whose name matches case-insensitively, or nil
// when there is none.
func (p *Papers) GetByName(name string) (*models.Paper, error) {
	papers, err := p.store.ListPapers()
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	name = strings.TrimSpace(name)
	for i := range papers {
		if strings.EqualFold(papers[i].Name, name) {
			return &papers[i], nil
		}
	}
	return nil, nil
}

// MustGetByName is GetByName that reports a missing paper as ErrPaperNotFound.
func (p *Papers) MustGetByName(name string) (*models.Paper, error) {
	paper, err := p.GetByName(name)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, fmt.Errorf("paper %q: %w", name, ErrPaperNotFound)
	}
	return paper, nil
}

// List returns papers sorted by deadline, then name. Archived papers are
// left out unless includeArchived is set.
func (p *Papers) List(includeArchived bool) ([]models.Paper, error) {
	papers, err := p.store.ListPapers()
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	out := papers[:0]
	for _, paper := range papers {
		if paper.Archived && !includeArchived {
			continue
		}
		out = append(out, paper)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Archive hides a paper from default listings.
func (p *Papers) Archive(id string) (*models.Paper, error) {
	return p.setArchived(id, true)
}

// Unarchive restores an archived paper.
func (p *Papers) Unarchive(id string) (*models.Paper, error) {
	return p.setArchived(id, false)
}

func (p *Papers) setArchived(id string, archived bool) (*models.Paper, error) {
	paper, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	paper.Archived = archived
	if err := p.store.UpdatePaper(paper); err != nil {
		return nil, fmt.Errorf("update paper: %w", err)
	}
	return paper, nil
}

// Names returns a map from paper id to name covering every paper.
func (p *Papers) Names() (map[string]string, error) {
	papers, err := p.store.ListPapers()
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	names := make(map[string]string, len(papers))
	for _, paper := range papers {
		names[paper.ID] = paper.Name
	}
	return names, nil
}
