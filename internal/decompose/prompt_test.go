package decompose

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

func promptFixture(conference string) (*models.Paper, *models.Milestone) {
	p := models.NewPaper("Sparse Attention", models.NewDate(2025, 5, 15))
	p.Conference = conference
	m := models.NewMilestone(p.ID, "Finish experiments", models.NewDate(2025, 4, 1), 1)
	return &p, &m
}

func daysFrom(start models.Date, n int) []models.Date {
	days := make([]models.Date, n)
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

func TestBuildPrompt_Exact(t *testing.T) {
	p, m := promptFixture("NeurIPS")
	days := daysFrom(models.NewDate(2025, 3, 30), 3)

	want := `You are helping a researcher decompose a milestone into daily tasks.

Paper: Sparse Attention
Paper Deadline: 2025-05-15
Conference: NeurIPS

Milestone: Finish experiments
Milestone Due Date: 2025-04-01

Available days for scheduling tasks: 2025-03-30, 2025-03-31, 2025-04-01
Total available days: 3

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

	if got := BuildPrompt(p, m, days); got != want {
		t.Errorf("prompt mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestBuildPrompt_NoConference(t *testing.T) {
	p, m := promptFixture("")
	got := BuildPrompt(p, m, daysFrom(models.NewDate(2025, 3, 30), 1))
	if !strings.Contains(got, "\nConference: Not specified\n") {
		t.Errorf("missing placeholder conference:\n%s", got)
	}
}

func TestBuildPrompt_TruncatesDays(t *testing.T) {
	p, m := promptFixture("ICLR")

	tests := []struct {
		name      string
		n         int
		wantLine  string
		wantTotal string
	}{
		{
			"exactly fourteen",
			14,
			"Available days for scheduling tasks: 2025-03-01, 2025-03-02, 2025-03-03, 2025-03-04, 2025-03-05, 2025-03-06, 2025-03-07, 2025-03-08, 2025-03-09, 2025-03-10, 2025-03-11, 2025-03-12, 2025-03-13, 2025-03-14\n",
			"Total available days: 14\n",
		},
		{
			"fifteen",
			15,
			"Available days for scheduling tasks: 2025-03-01, 2025-03-02, 2025-03-03, 2025-03-04, 2025-03-05, 2025-03-06, 2025-03-07, 2025-03-08, 2025-03-09, 2025-03-10, 2025-03-11, 2025-03-12, 2025-03-13, 2025-03-14 ... (15 days total)\n",
			"Total available days: 15\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(p, m, daysFrom(models.NewDate(2025, 3, 1), tt.n))
			if !strings.Contains(got, tt.wantLine) {
				t.Errorf("days line missing, want %q in:\n%s", tt.wantLine, got)
			}
			if !strings.Contains(got, tt.wantTotal) {
				t.Errorf("total line missing, want %q", tt.wantTotal)
			}
		})
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	p, m := promptFixture("ACL")
	days := daysFrom(models.NewDate(2025, 3, 1), 20)
	if BuildPrompt(p, m, days) != BuildPrompt(p, m, days) {
		t.Error("BuildPrompt is not deterministic")
	}
}
