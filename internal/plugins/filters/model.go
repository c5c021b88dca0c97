// Package filters decides which calendar rows are visible. Each filter
// category (row type, location, search, view) owns exactly one hidden bit
// per row, and a row is visible only when no bit is set. Reapplying one
// category touches only its own bit, so changing the search can never
// undo a location filter and vice versa.
package filters

import (
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
)

// Category is one independently-owned filter predicate.
type Category uint8

const (
	// CategoryRowType hides rows by day type in the table view.
	CategoryRowType Category = iota

	// CategoryLocation hides rows not matching the active locations/areas.
	CategoryLocation

	// CategorySearch hides rows not containing the search query.
	CategorySearch

	// CategoryView hides month-grid cells by the calendar view's own
	// (restricted) set of day-type toggles.
	CategoryView

	numCategories
)

// String returns the CSS class historically used for the category. Views
// emit it so stylesheets and scripts can tell why a row is hidden.
func (c Category) String() string {
	switch c {
	case CategoryRowType:
		return "filtered-hidden"
	case CategoryLocation:
		return "location-filtered-hidden"
	case CategorySearch:
		return "search-hidden"
	case CategoryView:
		return "calendar-filtered-hidden"
	}
	return "hidden"
}

// Visibility is the set of categories currently hiding a row.
type Visibility uint8

// Visible reports whether no category hides the row.
func (v Visibility) Visible() bool { return v == 0 }

// HiddenBy reports whether cat hides the row.
func (v Visibility) HiddenBy(cat Category) bool { return v&(1<<cat) != 0 }

// with returns v with cat's bit set to hidden, leaving other bits alone.
func (v Visibility) with(cat Category, hidden bool) Visibility {
	if hidden {
		return v | 1<<cat
	}
	return v &^ (1 << cat)
}

// Classes lists the CSS classes for every category hiding the row.
func (v Visibility) Classes() []string {
	var out []string
	for c := Category(0); c < numCategories; c++ {
		if v.HiddenBy(c) {
			out = append(out, c.String())
		}
	}
	return out
}

// RowType classifies a day for row-type filtering. A day can carry
// several types at once (a prep day that is also a holiday).
type RowType string

const (
	RowWeekend RowType = "weekend"
	RowPrep    RowType = "prep"
	RowHoliday RowType = "holiday"
	RowHiatus  RowType = "hiatus"
	RowShoot   RowType = "shoot"
)

// RowTypes lists every row type in toolbar order.
var RowTypes = []RowType{RowWeekend, RowPrep, RowHoliday, RowHiatus, RowShoot}

// Column is an optional table column.
type Column string

const (
	ColumnSequence   Column = "sequence"
	ColumnSecondUnit Column = "second-unit"
)

// Columns lists the optional columns in table order.
var Columns = []Column{ColumnSequence, ColumnSecondUnit}

// View is the calendar presentation.
type View string

const (
	ViewTable    View = "table"
	ViewCalendar View = "calendar"
)

// ParseView maps a query value to a View, defaulting to the table.
func ParseView(s string) View {
	if View(s) == ViewCalendar {
		return ViewCalendar
	}
	return ViewTable
}

// calendarCompatible lists the row types the month grid can filter on.
// Weekends and shoot days are structural in a grid and cannot be hidden.
var calendarCompatible = map[RowType]bool{
	RowPrep:    true,
	RowHoliday: true,
	RowHiatus:  true,
}

// Allows reports whether a row-type toggle applies in this view.
func (v View) Allows(rt RowType) bool {
	if v == ViewCalendar {
		return calendarCompatible[rt]
	}
	return true
}

// filterIDs maps toolbar control ids to preference keys.
var filterIDs = map[string]string{
	"filter-weekends":        preferences.HideWeekends,
	"filter-prep":            preferences.HidePrep,
	"filter-holidays":        preferences.HideHolidays,
	"filter-hiatus":          preferences.HideHiatus,
	"filter-shoot":           preferences.HideShoot,
	"filter-col-sequence":    preferences.HideColSequence,
	"filter-col-second-unit": preferences.HideColSecondUnit,
}

// PrefKey returns the preference key for a toolbar filter id.
func PrefKey(filterID string) (string, bool) {
	key, ok := filterIDs[filterID]
	return key, ok
}

var rowTypeKeys = map[RowType]string{
	RowWeekend: preferences.HideWeekends,
	RowPrep:    preferences.HidePrep,
	RowHoliday: preferences.HideHolidays,
	RowHiatus:  preferences.HideHiatus,
	RowShoot:   preferences.HideShoot,
}

var columnKeys = map[Column]string{
	ColumnSequence:   preferences.HideColSequence,
	ColumnSecondUnit: preferences.HideColSecondUnit,
}

// FilterID returns the toolbar control id for a row type.
func (rt RowType) FilterID() string {
	switch rt {
	case RowWeekend:
		return "filter-weekends"
	case RowHoliday:
		return "filter-holidays"
	}
	return "filter-" + string(rt)
}

// FilterID returns the toolbar control id for a column.
func (c Column) FilterID() string {
	return "filter-col-" + string(c)
}

// State is the complete filter input for one render.
type State struct {
	View          View
	HiddenTypes   map[RowType]bool
	HiddenColumns map[Column]bool

	// Locations and Areas are the active location filter. They are
	// per-request (query string) and never persisted.
	Locations []string
	Areas     []string

	Query string
}

// StateFromPrefs builds the persisted part of State from saved prefs.
func StateFromPrefs(p preferences.Prefs, view View) State {
	s := State{
		View:          view,
		HiddenTypes:   make(map[RowType]bool),
		HiddenColumns: make(map[Column]bool),
	}
	for rt, key := range rowTypeKeys {
		if p.Hidden(key) {
			s.HiddenTypes[rt] = true
		}
	}
	for col, key := range columnKeys {
		if p.Hidden(key) {
			s.HiddenColumns[col] = true
		}
	}
	return s
}

// TypeHidden reports whether the toggle for rt is on, regardless of view.
func (s State) TypeHidden(rt RowType) bool { return s.HiddenTypes[rt] }

// ColumnVisible reports whether an optional table column is shown.
func (s State) ColumnVisible(c Column) bool { return !s.HiddenColumns[c] }

// Active reports whether any filter is narrowing the rows.
func (s State) Active() bool {
	for rt, hidden := range s.HiddenTypes {
		if hidden && s.View.Allows(rt) {
			return true
		}
	}
	return len(s.Locations) > 0 || len(s.Areas) > 0 || s.Query != ""
}

// Stats summarises a reconciled row set.
type Stats struct {
	Total        int
	Visible      int
	ShootTotal   int
	ShootVisible int
}
