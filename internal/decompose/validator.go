package decompose

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

// Planning thresholds the generator is asked to respect.
const (
	minTaskHours = 2.0
	maxTaskHours = 4.0
	maxDayHours  = 8.0
	minDescLen   = 15
)

// vaguePhrases flag descriptions that do not name concrete work.
var vaguePhrases = []string{"work on paper", "work on", "continue working", "misc", "tbd"}

// ValidationResult contains advisory findings about a generated plan.
// Findings never block storing the tasks.
type ValidationResult struct {
	Warnings []string
}

// Validator checks generated tasks against the window they were planned for.
type Validator struct {
	window map[models.Date]bool
	due    models.Date
}

// NewValidator creates a validator for a milestone due on due whose tasks
// were planned over days.
func NewValidator(due models.Date, days []models.Date) *Validator {
	window := make(map[models.Date]bool, len(days))
	for _, d := range days {
		window[d] = true
	}
	return &Validator{window: window, due: due}
}

// Validate reports scheduling and sizing concerns in tasks.
func (v *Validator) Validate(tasks []models.Task) ValidationResult {
	result := ValidationResult{Warnings: []string{}}

	v.validateSchedule(tasks, &result)
	v.validateSizing(tasks, &result)
	v.checkAntiPatterns(tasks, &result)

	return result
}

// validateSchedule flags tasks placed outside the availability window.
func (v *Validator) validateSchedule(tasks []models.Task, result *ValidationResult) {
	for _, task := range tasks {
		switch {
		case task.ScheduledDate.After(v.due):
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Task '%s': scheduled %s, after the milestone due date %s",
					short(task.Description), task.ScheduledDate, v.due))
		case !v.window[task.ScheduledDate]:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Task '%s': scheduled %s, outside the available days",
					short(task.Description), task.ScheduledDate))
		}
	}
}

// validateSizing flags estimates outside the requested range and overloaded
// days.
func (v *Validator) validateSizing(tasks []models.Task, result *ValidationResult) {
	perDay := make(map[models.Date]float64)
	var order []models.Date
	for _, task := range tasks {
		if task.EstimatedHours < minTaskHours || task.EstimatedHours > maxTaskHours {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Task '%s': estimated %.1fh, outside %.0f-%.0fh",
					short(task.Description), task.EstimatedHours, minTaskHours, maxTaskHours))
		}
		if _, seen := perDay[task.ScheduledDate]; !seen {
			order = append(order, task.ScheduledDate)
		}
		perDay[task.ScheduledDate] += task.EstimatedHours
	}

	for _, day := range order {
		if perDay[day] > maxDayHours {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s has %.1fh of tasks scheduled", day, perDay[day]))
		}
	}
}

// checkAntiPatterns looks for descriptions that are too vague to act on.
func (v *Validator) checkAntiPatterns(tasks []models.Task, result *ValidationResult) {
	for _, task := range tasks {
		desc := strings.ToLower(strings.TrimSpace(task.Description))
		if len(desc) < minDescLen {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Task '%s': description is very short, consider making it specific", task.Description))
			continue
		}
		for _, phrase := range vaguePhrases {
			if strings.HasPrefix(desc, phrase) && len(desc) < len(phrase)+minDescLen {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Task '%s': description looks vague", short(task.Description)))
				break
			}
		}
	}
}

// short truncates long descriptions for warnings.
func short(s string) string {
	r := []rune(s)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return s
}
