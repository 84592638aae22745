package schedule

import (
	"fmt"
	"time"
)

// Cells per projected grid: six weeks of seven days. The grid is
// always full size regardless of how long the target month is, so the
// renderer never has to reflow.
const (
	gridDays  = 42
	weekDays  = 7
	gridWeeks = gridDays / weekDays
)

// Cell is one day in a projected calendar grid. Derived and ephemeral;
// rebuilt on every projection.
type Cell struct {
	Date     string `json:"date"`
	InMonth  bool   `json:"inMonth"`
	WorkType string `json:"workType,omitempty"`
	Content  string `json:"content,omitempty"`
	IsToday  bool   `json:"isToday"`
}

// View is a month calendar derived from one person's schedule.
type View struct {
	// Title is the target month as "YYYY-MM".
	Title string `json:"title"`

	// Weeks is always 6 rows of 7 cells.
	Weeks [][]Cell `json:"weeks"`
}

// Projector builds calendar views. The clock is injectable so tests
// can pin "today".
type Projector struct {
	now func() time.Time
}

// NewProjector creates a projector using the local wall clock.
func NewProjector() *Projector {
	return &Projector{now: time.Now}
}

// NewProjectorAt creates a projector with a fixed clock.
func NewProjectorAt(now func() time.Time) *Projector {
	return &Projector{now: now}
}

// Project builds a 6x7 calendar grid anchored to the month of target.
// The grid starts on the Sunday on or before the 1st of that month and
// runs 42 consecutive days. Entries from sched are attached by date key
// and IsToday is computed against the wall clock at projection time.
func (pr *Projector) Project(sched map[string]Entry, target string) (View, error) {
	day, err := time.ParseInLocation(DateLayout, target, time.Local)
	if err != nil {
		return View{}, fmt.Errorf("schedule: invalid target date %q: %w", target, err)
	}

	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.Local)
	anchor := first.AddDate(0, 0, -int(first.Weekday()))
	today := pr.now().In(time.Local).Format(DateLayout)

	view := View{
		Title: day.Format("2006-01"),
		Weeks: make([][]Cell, 0, gridWeeks),
	}

	week := make([]Cell, 0, weekDays)
	for i := 0; i < gridDays; i++ {
		d := anchor.AddDate(0, 0, i)
		key := d.Format(DateLayout)
		cell := Cell{
			Date:    key,
			InMonth: d.Month() == day.Month() && d.Year() == day.Year(),
			IsToday: key == today,
		}
		if e, ok := sched[key]; ok {
			cell.WorkType = e.WorkType
			cell.Content = e.Content
		}
		week = append(week, cell)
		if len(week) == weekDays {
			view.Weeks = append(view.Weeks, week)
			week = make([]Cell, 0, weekDays)
		}
	}
	return view, nil
}
