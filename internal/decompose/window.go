package decompose

import "github.com/ShayCichocki/paperbar/pkg/models"

// lookbackDays is how far before an overdue due date the window starts.
const lookbackDays = 7

// AvailableDays returns every date, inclusive, on which tasks for a milestone
// due on due may be scheduled. The window starts today while the due date is
// still ahead, and a week before the due date otherwise.
func AvailableDays(today, due models.Date) ([]models.Date, error) {
	start := today
	if !today.Before(due) {
		start = due.AddDays(-lookbackDays)
	}

	var days []models.Date
	for d := start; !d.After(due); d = d.AddDays(1) {
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, ErrNoSchedulableDays
	}
	return days, nil
}
