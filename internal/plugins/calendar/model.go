// Package calendar renders a project's shoot calendar as a filterable
// table, a Monday-first month grid, or a print layout. Day data comes from
// the upstream backend; this package only arranges and filters it.
package calendar

import (
	"time"

	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/plugins/filters"
)

// DayType is the single styling class for a day, by priority:
// hiatus > holiday > prep > shoot > working weekend > weekend > normal.
type DayType string

const (
	DayHiatus         DayType = "hiatus"
	DayHoliday        DayType = "holiday"
	DayPrep           DayType = "prep"
	DayShoot          DayType = "shoot"
	DayWorkingWeekend DayType = "working-weekend"
	DayWeekend        DayType = "weekend"
	DayNormal         DayType = "normal"
)

// TypeOf returns the day's styling class from its flags. The backend's own
// dayType field is ignored because older calendars predate it.
func TypeOf(d backend.Day) DayType {
	switch {
	case d.IsHiatus:
		return DayHiatus
	case d.IsHoliday:
		return DayHoliday
	case d.IsPrep:
		return DayPrep
	case d.IsShootDay:
		return DayShoot
	case d.IsWeekend && d.IsWorkingWeekend:
		return DayWorkingWeekend
	case d.IsWeekend:
		return DayWeekend
	}
	return DayNormal
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// Label renders the key as "January 2024".
func (k MonthKey) Label() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Cell is one square of a month grid. Cells outside the month carry only
// a date. In-month cells carry the day when the calendar has one; if not,
// Placeholder is set so the grid still shows the date.
type Cell struct {
	Date        time.Time
	InMonth     bool
	Placeholder bool
	Day         *backend.Day
}

// DateString returns the cell date in wire format.
func (c Cell) DateString() string {
	return c.Date.Format(backend.DateLayout)
}

// MonthGrid is a 7-column, Monday-first grid for one month.
type MonthGrid struct {
	MonthKey
	Cells []Cell
}

// Weeks splits the grid into rows of seven cells.
func (g MonthGrid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// InMonthCount returns the number of cells belonging to the month.
func (g MonthGrid) InMonthCount() int {
	n := 0
	for _, c := range g.Cells {
		if c.InMonth {
			n++
		}
	}
	return n
}

// --- View models ---

// Query is the per-request filter input that is never persisted.
type Query struct {
	Search    string
	Locations []string
	Areas     []string
}

// RowView is a table row ready for rendering.
type RowView struct {
	Day       backend.Day
	Type      DayType
	Classes   string
	Visible   bool
	AreaColor string
	TextColor string
	Droppable bool
}

// CellView is a month-grid cell ready for rendering.
type CellView struct {
	Cell
	Type      DayType
	Classes   string
	Visible   bool
	Droppable bool
}

// MonthView is a month grid ready for rendering.
type MonthView struct {
	Label string
	Weeks [][]CellView
}

// AreaOption is one entry in the area filter.
type AreaOption struct {
	Name      string
	Color     string
	TextColor string
	Active    bool
}

// LocationOption is one entry in the location filter.
type LocationOption struct {
	Name   string
	Active bool
}

// ToggleView describes one filter checkbox.
type ToggleView struct {
	ID      string
	Label   string
	Checked bool
	Enabled bool
}

// Page is everything a calendar render needs.
type Page struct {
	Project   *backend.Project
	State     filters.State
	Stats     filters.Stats
	Rows      []RowView
	Months    []MonthView
	Areas     []AreaOption
	Locations []LocationOption
	Types     []ToggleView
	Columns   []ToggleView
	IsDraft   bool
	Print     bool

	// FilterQuery re-encodes the active search and location filters so
	// view switches and toggles keep them.
	FilterQuery string
}

// IsCalendarView reports whether the month grid is shown.
func (p *Page) IsCalendarView() bool { return p.State.View == filters.ViewCalendar }

// ShowSequence and ShowSecondUnit report optional column visibility.
func (p *Page) ShowSequence() bool   { return p.State.ColumnVisible(filters.ColumnSequence) }
func (p *Page) ShowSecondUnit() bool { return p.State.ColumnVisible(filters.ColumnSecondUnit) }
