package decompose

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

// maxListedDays caps how many available days are spelled out in the prompt.
const maxListedDays = 14

// decompositionPrompt is the prompt template for milestone decomposition.
// Arguments: paper name, paper deadline, conference, milestone description,
// milestone due date, listed days, total day count.
const decompositionPrompt = `You are helping a researcher decompose a milestone into daily tasks.

Paper: %s
Paper Deadline: %s
Conference: %s

Milestone: %s
Milestone Due Date: %s

Available days for scheduling tasks: %s
Total available days: %d

Please decompose this milestone into specific, actionable daily tasks. Each task should:
- Be completable in 2-4 hours
- Be specific and actionable (not vague like "work on paper")
- Be scheduled on one of the available days
- Build logically on previous tasks

Return your response as a JSON array with objects containing:
- "scheduled_date": date in YYYY-MM-DD format
- "description": specific task description
- "estimated_hours": estimated hours (2-4)

Example format:
[
  {"scheduled_date": "2025-02-01", "description": "Draft introduction section outline with 3 main points", "estimated_hours": 2},
  {"scheduled_date": "2025-02-02", "description": "Write first draft of related work section", "estimated_hours": 3}
]

Return ONLY the JSON array, no other text.`

// BuildPrompt renders the decomposition prompt for a milestone.
func BuildPrompt(paper *models.Paper, milestone *models.Milestone, days []models.Date) string {
	listed := days
	if len(listed) > maxListedDays {
		listed = listed[:maxListedDays]
	}
	parts := make([]string, len(listed))
	for i, d := range listed {
		parts[i] = d.Format(models.DateLayout)
	}
	daysStr := strings.Join(parts, ", ")
	if len(days) > maxListedDays {
		daysStr += fmt.Sprintf(" ... (%d days total)", len(days))
	}

	conference := paper.Conference
	if conference == "" {
		conference = "Not specified"
	}

	return fmt.Sprintf(decompositionPrompt,
		paper.Name,
		paper.Deadline.Format(models.DateLayout),
		conference,
		milestone.Description,
		milestone.DueDate.Format(models.DateLayout),
		daysStr,
		len(days),
	)
}
