package decompose

import (
	"testing"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

func TestAvailableDays(t *testing.T) {
	today := models.NewDate(2025, 3, 10)

	tests := []struct {
		name      string
		due       models.Date
		wantStart models.Date
		wantLen   int
	}{
		{"due tomorrow starts today", models.NewDate(2025, 3, 11), today, 2},
		{"due in a month starts today", models.NewDate(2025, 4, 9), today, 31},
		{"due today looks back a week", today, models.NewDate(2025, 3, 3), 8},
		{"overdue looks back from due", models.NewDate(2025, 3, 1), models.NewDate(2025, 2, 22), 8},
		{"across year boundary", models.NewDate(2025, 1, 3), models.NewDate(2024, 12, 27), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := AvailableDays(today, tt.due)
			if err != nil {
				t.Fatalf("AvailableDays failed: %v", err)
			}
			if len(days) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(days), tt.wantLen)
			}
			if days[0] != tt.wantStart {
				t.Errorf("start = %s, want %s", days[0], tt.wantStart)
			}
			if last := days[len(days)-1]; last != tt.due {
				t.Errorf("end = %s, want %s", last, tt.due)
			}
			if want := tt.due.DaysSince(days[0]) + 1; len(days) != want {
				t.Errorf("len = %d, want (end-start)+1 = %d", len(days), want)
			}
			for i := 1; i < len(days); i++ {
				if days[i] != days[i-1].AddDays(1) {
					t.Fatalf("days not consecutive at %d: %s after %s", i, days[i], days[i-1])
				}
			}
		})
	}
}
