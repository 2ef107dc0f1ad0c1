package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/ShayCichocki/paperbar/internal/dates"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

const unknownPaper = "Unknown"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	cyan    = lipgloss.Color("6")
	yellow  = lipgloss.Color("3")
	green   = lipgloss.Color("2")
	magenta = lipgloss.Color("5")
	red     = lipgloss.Color("1")
	blue    = lipgloss.Color("4")
	dim     = lipgloss.Color("245")
)

// column describes one table column.
type column struct {
	title string
	color lipgloss.TerminalColor
	right bool
}

// render draws a titled table. rowColor may override a cell's colour.
func render(title string, cols []column, rows [][]string, rowColor func(row, col int) lipgloss.TerminalColor) string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.title
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			s := cellStyle
			if cols[col].right {
				s = s.Align(lipgloss.Right)
			}
			fg := cols[col].color
			if rowColor != nil && row >= 0 && row < len(rows) {
				if c := rowColor(row, col); c != nil {
					fg = c
				}
			}
			if fg != nil {
				s = s.Foreground(fg)
			}
			return s
		})

	return titleStyle.Render(title) + "\n" + t.Render() + "\n"
}

// FormatHours renders an hour estimate such as "2.5h", or "-" when unset.
func FormatHours(h float64) string {
	if h <= 0 {
		return "-"
	}
	return humanize.FtoaWithDigits(h, 1) + "h"
}

// StatusColor returns the display colour of a task or milestone status.
func StatusColor(status string) lipgloss.TerminalColor {
	switch status {
	case string(models.TaskStatusPending):
		return yellow
	case string(models.TaskStatusInProgress):
		return blue
	case string(models.TaskStatusCompleted):
		return green
	case string(models.TaskStatusSkipped):
		return dim
	default:
		return nil
	}
}

// PapersTable lists papers with the days remaining until each deadline.
func PapersTable(title string, papers []models.Paper, today models.Date) string {
	cols := []column{
		{title: "Name", color: cyan},
		{title: "Deadline", color: yellow},
		{title: "Conference", color: green},
		{title: "Days Left", right: true},
	}
	rows := make([][]string, len(papers))
	left := make([]int, len(papers))
	for i, p := range papers {
		left[i] = dates.DaysUntil(p.Deadline, today)
		conference := p.Conference
		if conference == "" {
			conference = "-"
		}
		name := p.Name
		if p.Archived {
			name += " (archived)"
		}
		rows[i] = []string{name, dates.Format(p.Deadline, today), conference, daysLeft(left[i])}
	}

	return render(title, cols, rows, func(row, col int) lipgloss.TerminalColor {
		if col != 3 {
			return nil
		}
		switch d := left[row]; {
		case d < 0:
			return red
		case d <= 7:
			return yellow
		default:
			return green
		}
	})
}

func daysLeft(d int) string {
	if d < 0 {
		return fmt.Sprintf("%d overdue", -d)
	}
	return strconv.Itoa(d)
}

// MilestonesTable lists milestones. names maps paper ids to names.
func MilestonesTable(title string, milestones []models.Milestone, names map[string]string, today models.Date) string {
	cols := []column{
		{title: "ID", color: dim},
		{title: "Paper", color: magenta},
		{title: "Description", color: cyan},
		{title: "Due", color: yellow},
		{title: "Status"},
		{title: "Priority", right: true},
		{title: "Decomposed"},
	}
	rows := make([][]string, len(milestones))
	for i, m := range milestones {
		decomposed := "no"
		if m.Decomposed {
			decomposed = "yes"
		}
		rows[i] = []string{
			models.ShortID(m.ID),
			paperName(names, m.PaperID),
			m.Description,
			dates.Format(m.DueDate, today),
			string(m.Status),
			strconv.Itoa(m.Priority),
			decomposed,
		}
	}

	return render(title, cols, rows, func(row, col int) lipgloss.TerminalColor {
		if col == 4 {
			return StatusColor(string(milestones[row].Status))
		}
		return nil
	})
}

// TasksTable lists tasks. When overdue is set descriptions are drawn red.
func TasksTable(title string, tasks []models.Task, names map[string]string, overdue bool) string {
	cols := []column{
		{title: "ID", color: dim},
		{title: "Paper", color: magenta},
		{title: "Task", color: cyan},
		{title: "Est. Hours", color: yellow, right: true},
		{title: "Status"},
	}
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{
			models.ShortID(t.ID),
			paperName(names, t.PaperID),
			t.Description,
			FormatHours(t.EstimatedHours),
			string(t.Status),
		}
	}

	return render(title, cols, rows, func(row, col int) lipgloss.TerminalColor {
		switch {
		case col == 2 && overdue:
			return red
		case col == 4:
			return StatusColor(string(tasks[row].Status))
		}
		return nil
	})
}

func paperName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return unknownPaper
}
