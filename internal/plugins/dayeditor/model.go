// Package dayeditor edits the free-text and crew fields of one calendar
// day. Day flags and numbering belong to the backend's generator and are
// never changed here.
package dayeditor

import (
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/sanitize"
)

// Form is the editable part of a day.
type Form struct {
	MainUnit       string   `form:"mainUnit" json:"mainUnit" validate:"max=500"`
	SecondUnit     string   `form:"secondUnit" json:"secondUnit" validate:"max=500"`
	Sequence       string   `form:"sequence" json:"sequence" validate:"max=100"`
	Location       string   `form:"location" json:"location" validate:"max=200"`
	LocationArea   string   `form:"locationArea" json:"locationArea" validate:"max=100"`
	Extras         int      `form:"extras" json:"extras" validate:"min=0"`
	FeaturedExtras int      `form:"featuredExtras" json:"featuredExtras" validate:"min=0"`
	Departments    []string `form:"departments" json:"departments" validate:"max=50,dive,max=20"`
	Notes          string   `form:"notes" json:"notes" validate:"max=5000"`
}

// apply copies sanitized form values onto d, leaving generator-owned
// fields alone.
func (f Form) apply(d *backend.Day) {
	d.MainUnit = sanitize.Line(f.MainUnit)
	d.SecondUnit = sanitize.Line(f.SecondUnit)
	d.Sequence = sanitize.Line(f.Sequence)
	d.Location = sanitize.Line(f.Location)
	d.LocationArea = sanitize.Line(f.LocationArea)
	d.Extras = backend.FlexInt(f.Extras)
	d.FeaturedExtras = backend.FlexInt(f.FeaturedExtras)
	d.Notes = sanitize.Text(f.Notes)

	deps := make([]string, 0, len(f.Departments))
	seen := make(map[string]bool, len(f.Departments))
	for _, code := range f.Departments {
		code = sanitize.Line(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		deps = append(deps, code)
	}
	d.Departments = deps
}

// Page is the view model for the editor.
type Page struct {
	ProjectID   string
	Title       string
	Day         backend.Day
	Prev        string
	Next        string
	Departments []backend.Department
	Locations   []backend.Location
	Selected    map[string]bool
}

// neighbours returns the dates before and after date in calendar order,
// or "" at either end.
func neighbours(days []backend.Day, date string) (prev, next string, found bool) {
	for i := range days {
		if days[i].Date != date {
			continue
		}
		if i > 0 {
			prev = days[i-1].Date
		}
		if i < len(days)-1 {
			next = days[i+1].Date
		}
		return prev, next, true
	}
	return "", "", false
}
