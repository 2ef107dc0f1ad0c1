// Package dates parses the free-text dates typed on the command line and
// renders dates relative to today.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

// Accepted describes the forms Parse understands.
const Accepted = `today, tomorrow, yesterday, "in N days", "in N weeks", "next week", ` +
	`a weekday name, YYYY-MM-DD, M/D, M/D/YYYY, "Jan 2", "January 2, 2006"`

var (
	relativeRe = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks)$`)
	shortRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	yearRe     = regexp.MustCompile(`(^|\D)\d{4}(\D|$)`)
	// "Jan 2 2006" gets its comma back before it reaches dateparse.
	namedRe = regexp.MustCompile(`^([A-Za-z]+\.?) (\d{1,2}) (\d{4})$`)
)

// monthDayLayouts are tried in order for named-month input without a year.
var monthDayLayouts = []string{"Jan 2", "January 2"}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Parse interprets s relative to today.
func Parse(s string, today models.Date) (models.Date, error) {
	in := strings.ToLower(strings.Join(strings.Fields(s), " "))

	switch in {
	case "":
		return models.Date{}, fmt.Errorf("empty date; expected one of: %s", Accepted)
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "next week":
		return today.AddDays(7), nil
	}

	if m := relativeRe.FindStringSubmatch(in); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return models.Date{}, fmt.Errorf("parse %q: %w", s, err)
		}
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return today.AddDays(n), nil
	}

	if wd, ok := weekdays[strings.TrimPrefix(in, "next ")]; ok {
		ahead := (int(wd) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return today.AddDays(ahead), nil
	}

	if m := shortRe.FindStringSubmatch(in); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return upcoming(s, today, time.Month(month), day)
	}

	// Anything carrying a year is an absolute date: YYYY-MM-DD, M/D/YYYY,
	// "Jan 2, 2006" and the other layouts dateparse knows. Month comes first
	// in slashed dates.
	if yearRe.MatchString(in) {
		raw := namedRe.ReplaceAllString(strings.Join(strings.Fields(s), " "), "$1 $2, $3")
		t, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return models.Date{}, fmt.Errorf("could not parse date %q: %w; expected one of: %s", s, err, Accepted)
		}
		return models.DateOf(t), nil
	}

	// time.Parse matches month names case-insensitively.
	for _, layout := range monthDayLayouts {
		if t, err := time.Parse(layout, in); err == nil {
			return upcoming(s, today, t.Month(), t.Day())
		}
	}

	return models.Date{}, fmt.Errorf("could not parse date %q; expected one of: %s", s, Accepted)
}

// upcoming returns month/day in today's year, or next year when that date has
// already passed.
func upcoming(raw string, today models.Date, month time.Month, day int) (models.Date, error) {
	d, err := build(raw, today.Year(), int(month), day)
	if err != nil {
		return d, err
	}
	if d.Before(today) {
		return build(raw, today.Year()+1, int(month), day)
	}
	return d, nil
}

// build validates the calendar fields before constructing a date, since
// time.Date normalizes overflow such as February 30.
func build(raw string, year, month, day int) (models.Date, error) {
	if month < 1 || month > 12 {
		return models.Date{}, fmt.Errorf("invalid date %q: month %d out of range", raw, month)
	}
	d := models.NewDate(year, time.Month(month), day)
	if day < 1 || d.Month() != time.Month(month) {
		return models.Date{}, fmt.Errorf("invalid date %q: day %d out of range", raw, day)
	}
	return d, nil
}

// Format renders d relative to today: Today, Tomorrow, Yesterday, "In N days"
// and "N days ago" within a week, and a calendar date beyond that.
func Format(d, today models.Date) string {
	diff := DaysUntil(d, today)
	switch {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Tomorrow"
	case diff == -1:
		return "Yesterday"
	case diff > 1 && diff < 7:
		return fmt.Sprintf("In %d days", diff)
	case diff < -1 && diff > -7:
		return fmt.Sprintf("%d days ago", -diff)
	}
	if d.Year() != today.Year() {
		return d.Format("Mon, Jan 2, 2006")
	}
	return d.Format("Mon, Jan 2")
}

// DaysUntil returns the number of days from today to d; negative when d is in
// the past.
func DaysUntil(d, today models.Date) int {
	return d.DaysSince(today)
}
