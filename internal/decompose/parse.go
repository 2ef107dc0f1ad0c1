package decompose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

const fence = "```"

// taskItem is one element of the generator's JSON array. Pointers separate
// absent fields from zero values.
type taskItem struct {
	ScheduledDate  *string  `json:"scheduled_date"`
	Description    *string  `json:"description"`
	EstimatedHours *float64 `json:"estimated_hours"`
}

// stripFences removes markdown code fences. When the text opens with a fence,
// every line starting with one is dropped and all other lines are kept.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, fence) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ParseResponse converts generator output into tasks owned by milestone and
// paper. Tasks without estimated_hours get defaultHours. Any malformed element
// rejects the whole response.
func ParseResponse(response string, milestone *models.Milestone, paper *models.Paper, defaultHours float64) ([]models.Task, error) {
	text := stripFences(response)

	var items []taskItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseParse, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrResponseParse)
	}

	tasks := make([]models.Task, 0, len(items))
	for i, item := range items {
		if item.ScheduledDate == nil {
			return nil, fmt.Errorf("%w: task %d: missing scheduled_date", ErrResponseParse, i)
		}
		scheduled, err := models.ParseDate(*item.ScheduledDate)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %w", ErrResponseParse, i, err)
		}

		if item.Description == nil || strings.TrimSpace(*item.Description) == "" {
			return nil, fmt.Errorf("%w: task %d: missing description", ErrResponseParse, i)
		}

		hours := defaultHours
		if item.EstimatedHours != nil {
			hours = *item.EstimatedHours
			if hours <= 0 {
				return nil, fmt.Errorf("%w: task %d: estimated_hours must be positive, got %v", ErrResponseParse, i, hours)
			}
		}

		tasks = append(tasks, models.NewTask(milestone.ID, paper.ID, *item.Description, scheduled, hours))
	}

	return tasks, nil
}
