package decompose

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

func TestValidator_CleanPlan(t *testing.T) {
	due := models.NewDate(2025, 3, 5)
	days := daysFrom(models.NewDate(2025, 3, 1), 5)
	tasks := []models.Task{
		models.NewTask("m", "p", "Draft introduction outline with three points", models.NewDate(2025, 3, 1), 2),
		models.NewTask("m", "p", "Write related work section first draft", models.NewDate(2025, 3, 2), 3),
	}

	result := NewValidator(due, days).Validate(tasks)
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidator_Warnings(t *testing.T) {
	due := models.NewDate(2025, 3, 5)
	days := daysFrom(models.NewDate(2025, 3, 1), 5)

	tests := []struct {
		name    string
		tasks   []models.Task
		wantSub string
	}{
		{
			"after due date",
			[]models.Task{models.NewTask("m", "p", "Polish the abstract wording", models.NewDate(2025, 3, 9), 2)},
			"after the milestone due date",
		},
		{
			"before window",
			[]models.Task{models.NewTask("m", "p", "Polish the abstract wording", models.NewDate(2025, 2, 20), 2)},
			"outside the available days",
		},
		{
			"oversized task",
			[]models.Task{models.NewTask("m", "p", "Run every experiment again", models.NewDate(2025, 3, 2), 6)},
			"outside 2-4h",
		},
		{
			"overloaded day",
			[]models.Task{
				models.NewTask("m", "p", "Write the method section", models.NewDate(2025, 3, 2), 4),
				models.NewTask("m", "p", "Write the results section", models.NewDate(2025, 3, 2), 4),
				models.NewTask("m", "p", "Write the discussion section", models.NewDate(2025, 3, 2), 3),
			},
			"11.0h of tasks",
		},
		{
			"short description",
			[]models.Task{models.NewTask("m", "p", "Edit", models.NewDate(2025, 3, 2), 2)},
			"very short",
		},
		{
			"vague description",
			[]models.Task{models.NewTask("m", "p", "Work on paper stuff", models.NewDate(2025, 3, 2), 2)},
			"looks vague",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator(due, days).Validate(tt.tasks)
			found := false
			for _, w := range result.Warnings {
				if strings.Contains(w, tt.wantSub) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected warning containing %q, got %v", tt.wantSub, result.Warnings)
			}
		})
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short ascii", "Draft abstract", "Draft abstract"},
		{"long ascii", strings.Repeat("a", 60), strings.Repeat("a", 50) + "..."},
		{"exactly fifty runes", strings.Repeat("é", 50), strings.Repeat("é", 50)},
		{"long multi-byte", strings.Repeat("é", 49) + "日本語", strings.Repeat("é", 49) + "日..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := short(tt.in)
			if got != tt.want {
				t.Errorf("short() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("short() returned invalid UTF-8: %q", got)
			}
		})
	}
}
