package filters

import (
	"strings"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

// Row is one day with its filter classification.
type Row struct {
	Day   backend.Day
	Types []RowType
	Vis   Visibility
}

// Visible reports whether the row should be shown.
func (r Row) Visible() bool { return r.Vis.Visible() }

// HasType reports whether the row carries rt.
func (r Row) HasType(rt RowType) bool {
	for _, t := range r.Types {
		if t == rt {
			return true
		}
	}
	return false
}

// ClassifyDay returns every row type a day belongs to. A working weekend
// is not a "weekend" for filtering purposes because it is scheduled work.
func ClassifyDay(d backend.Day) []RowType {
	var types []RowType
	if d.IsWeekend && !d.IsWorkingWeekend {
		types = append(types, RowWeekend)
	}
	if d.IsPrep {
		types = append(types, RowPrep)
	}
	if d.IsHoliday {
		types = append(types, RowHoliday)
	}
	if d.IsHiatus {
		types = append(types, RowHiatus)
	}
	if d.IsShootDay {
		types = append(types, RowShoot)
	}
	return types
}

// Reconciler holds rows and recomputes one category at a time.
type Reconciler struct {
	rows []Row
}

// NewReconciler classifies days with every row visible.
func NewReconciler(days []backend.Day) *Reconciler {
	rows := make([]Row, len(days))
	for i, d := range days {
		rows[i] = Row{Day: d, Types: ClassifyDay(d)}
	}
	return &Reconciler{rows: rows}
}

// Rows returns the current rows. The slice is shared; callers must not
// modify it.
func (r *Reconciler) Rows() []Row { return r.rows }

// Apply recomputes every category from s.
func (r *Reconciler) Apply(s State) {
	r.ApplyRowTypes(s)
	r.ApplyLocations(s.Locations, s.Areas)
	r.ApplySearch(s.Query)
}

// ApplyRowTypes recomputes the row-type bits. The table view uses
// CategoryRowType with every toggle; the calendar view uses CategoryView
// with only the toggles it supports. The inactive view's bit is cleared.
func (r *Reconciler) ApplyRowTypes(s State) {
	active, inactive := CategoryRowType, CategoryView
	if s.View == ViewCalendar {
		active, inactive = CategoryView, CategoryRowType
	}

	for i := range r.rows {
		row := &r.rows[i]
		hidden := false
		for _, t := range row.Types {
			if s.HiddenTypes[t] && s.View.Allows(t) {
				hidden = true
				break
			}
		}
		row.Vis = row.Vis.with(active, hidden).with(inactive, false)
	}
}

// ApplyLocations recomputes the location bit. With no active locations or
// areas nothing is hidden. Otherwise a row stays visible if its location
// contains any active location (case-insensitive) or its area matches any
// active area.
func (r *Reconciler) ApplyLocations(locations, areas []string) {
	locs := lowerAll(locations)
	ars := lowerAll(areas)
	filtering := len(locs) > 0 || len(ars) > 0

	for i := range r.rows {
		row := &r.rows[i]
		hidden := filtering && !matchesLocation(row.Day, locs, ars)
		row.Vis = row.Vis.with(CategoryLocation, hidden)
	}
}

func matchesLocation(d backend.Day, locs, areas []string) bool {
	location := strings.ToLower(d.Location)
	area := strings.ToLower(strings.TrimSpace(d.LocationArea))

	for _, l := range locs {
		if location != "" && strings.Contains(location, l) {
			return true
		}
	}
	for _, a := range areas {
		if area != "" {
			if area == a {
				return true
			}
			continue
		}
		// Older days have no area field; fall back to the location text.
		if location != "" && strings.Contains(location, a) {
			return true
		}
	}
	return false
}

// ApplySearch recomputes the search bit. An empty query clears it.
func (r *Reconciler) ApplySearch(query string) {
	q := strings.ToLower(strings.TrimSpace(query))

	for i := range r.rows {
		row := &r.rows[i]
		hidden := q != "" && !strings.Contains(searchText(row.Day), q)
		row.Vis = row.Vis.with(CategorySearch, hidden)
	}
}

// searchText is the lowercased haystack for one day.
func searchText(d backend.Day) string {
	return strings.ToLower(strings.Join([]string{
		d.MainUnit, d.Location, d.Notes, d.Sequence, d.SecondUnit,
	}, " "))
}

// Stats counts total and visible rows, overall and for shoot days.
func (r *Reconciler) Stats() Stats {
	var s Stats
	for _, row := range r.rows {
		s.Total++
		visible := row.Visible()
		if visible {
			s.Visible++
		}
		if row.Day.IsShootDay {
			s.ShootTotal++
			if visible {
				s.ShootVisible++
			}
		}
	}
	return s
}

// VisibilityByDate indexes row visibility by date for the month grid.
func (r *Reconciler) VisibilityByDate() map[string]Visibility {
	out := make(map[string]Visibility, len(r.rows))
	for _, row := range r.rows {
		out[row.Day.Date] = row.Vis
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
