package calendar

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/filters"
	"github.com/keyxmakerx/shootcal/internal/plugins/moves"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/widgets/live"
)

// AreaLister supplies area colours. *reference.Cache satisfies it.
type AreaLister interface {
	Areas(ctx context.Context) ([]backend.Area, error)
}

// Service assembles calendar pages.
type Service interface {
	// Page loads the calendar and applies every filter for the request.
	Page(ctx context.Context, pc *projects.Context, q Query, print bool) (*Page, error)

	// Generate asks the backend to rebuild the calendar from its dates.
	Generate(ctx context.Context, pc *projects.Context) error
}

type service struct {
	api      backend.API
	areas    AreaLister
	notifier live.Notifier
	recorder audit.Recorder
}

// NewService creates a calendar service.
func NewService(api backend.API, areas AreaLister, notifier live.Notifier, recorder audit.Recorder) Service {
	return &service{api: api, areas: areas, notifier: notifier, recorder: recorder}
}

func (s *service) Page(ctx context.Context, pc *projects.Context, q Query, print bool) (*Page, error) {
	cal, err := s.api.GetCalendar(ctx, pc.ProjectID())
	if err != nil {
		return nil, err
	}

	state := pc.FilterState()
	state.Query = strings.TrimSpace(q.Search)
	state.Locations = q.Locations
	state.Areas = q.Areas

	rec := filters.NewReconciler(cal.Days)
	rec.Apply(state)

	page := &Page{
		Project:     pc.Project,
		State:       state,
		Stats:       rec.Stats(),
		Print:       print,
		FilterQuery: encodeQuery(q),
	}

	// Draft status and area colours decorate the page; neither is worth
	// failing the render over.
	if ws, err := s.api.Workspace(ctx, pc.ProjectID()); err != nil {
		slog.Warn("loading workspace failed", slog.String("project_id", pc.ProjectID()), slog.Any("error", err))
	} else {
		page.IsDraft = ws.IsDraft
	}
	var areas []backend.Area
	if s.areas != nil {
		if areas, err = s.areas.Areas(ctx); err != nil {
			slog.Warn("loading areas failed", slog.Any("error", err))
		}
	}

	colors := areaColors(areas)
	page.Rows = buildRows(rec.Rows(), colors, print)
	page.Areas = areaOptions(areas, q.Areas)
	page.Locations = locationOptions(cal.Days, q.Locations)
	page.Types, page.Columns = toggles(state)

	if state.View == filters.ViewCalendar && !print {
		page.Months = buildMonths(cal.Days, rec.VisibilityByDate())
	}
	return page, nil
}

func (s *service) Generate(ctx context.Context, pc *projects.Context) error {
	if err := s.api.GenerateCalendar(ctx, pc.ProjectID()); err != nil {
		return err
	}
	s.notifier.ProjectChanged(ctx, pc.ProjectID())
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: pc.ProjectID(),
		ClientID:  pc.ClientID,
		Action:    audit.ActionCalendarGenerated,
	})
	return nil
}

// --- Assembly helpers ---

func buildRows(rows []filters.Row, colors map[string]string, print bool) []RowView {
	out := make([]RowView, 0, len(rows))
	for _, r := range rows {
		if print && !r.Visible() {
			continue
		}
		t := TypeOf(r.Day)
		rv := RowView{
			Day:       r.Day,
			Type:      t,
			Classes:   classes(t, r.Vis),
			Visible:   r.Visible(),
			Droppable: moves.Droppable(r.Day),
		}
		if c, ok := colors[strings.ToLower(strings.TrimSpace(r.Day.LocationArea))]; ok {
			rv.AreaColor = c
			rv.TextColor = ContrastColor(c)
		}
		out = append(out, rv)
	}
	return out
}

func buildMonths(days []backend.Day, vis map[string]filters.Visibility) []MonthView {
	grids := BuildCalendar(days)
	out := make([]MonthView, 0, len(grids))
	for _, g := range grids {
		mv := MonthView{Label: g.Label()}
		for _, week := range g.Weeks() {
			row := make([]CellView, 0, 7)
			for _, cell := range week {
				cv := CellView{Cell: cell, Visible: true}
				if cell.Day != nil {
					v := vis[cell.Day.Date]
					cv.Type = TypeOf(*cell.Day)
					cv.Visible = v.Visible()
					cv.Classes = classes(cv.Type, v)
					cv.Droppable = moves.Droppable(*cell.Day)
				}
				row = append(row, cv)
			}
			mv.Weeks = append(mv.Weeks, row)
		}
		out = append(out, mv)
	}
	return out
}

func classes(t DayType, v filters.Visibility) string {
	return strings.Join(append([]string{"day-" + string(t)}, v.Classes()...), " ")
}

func areaColors(areas []backend.Area) map[string]string {
	out := make(map[string]string, len(areas))
	for _, a := range areas {
		if a.Color != "" {
			out[strings.ToLower(strings.TrimSpace(a.Name))] = a.Color
		}
	}
	return out
}

func areaOptions(areas []backend.Area, active []string) []AreaOption {
	on := lowerSet(active)
	out := make([]AreaOption, 0, len(areas))
	for _, a := range areas {
		opt := AreaOption{Name: a.Name, Color: a.Color, Active: on[strings.ToLower(a.Name)]}
		if a.Color != "" {
			opt.TextColor = ContrastColor(a.Color)
		}
		out = append(out, opt)
	}
	return out
}

func locationOptions(days []backend.Day, active []string) []LocationOption {
	on := lowerSet(active)
	seen := make(map[string]bool)
	var names []string
	for _, d := range days {
		name := strings.TrimSpace(d.Location)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })

	out := make([]LocationOption, len(names))
	for i, n := range names {
		out[i] = LocationOption{Name: n, Active: on[strings.ToLower(n)]}
	}
	return out
}

var typeLabels = map[filters.RowType]string{
	filters.RowWeekend: "Weekends",
	filters.RowPrep:    "Prep",
	filters.RowHoliday: "Holidays",
	filters.RowHiatus:  "Hiatus",
	filters.RowShoot:   "Shoot days",
}

var columnLabels = map[filters.Column]string{
	filters.ColumnSequence:   "Sequence",
	filters.ColumnSecondUnit: "Second unit",
}

// toggles describes the toolbar checkboxes. Checked means "shown". Toggles
// the current view cannot apply are disabled but keep their saved state.
func toggles(s filters.State) (types, columns []ToggleView) {
	for _, rt := range filters.RowTypes {
		types = append(types, ToggleView{
			ID:      rt.FilterID(),
			Label:   typeLabels[rt],
			Checked: !s.TypeHidden(rt),
			Enabled: s.View.Allows(rt),
		})
	}
	for _, col := range filters.Columns {
		columns = append(columns, ToggleView{
			ID:      col.FilterID(),
			Label:   columnLabels[col],
			Checked: s.ColumnVisible(col),
			Enabled: s.View == filters.ViewTable,
		})
	}
	return types, columns
}

func encodeQuery(q Query) string {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("q", s)
	}
	for _, l := range q.Locations {
		v.Add("loc", l)
	}
	for _, a := range q.Areas {
		v.Add("area", a)
	}
	return v.Encode()
}

func lowerSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return out
}
