// Package backendtest provides a hand-wired fake of backend.API for
// plugin tests. Each method delegates to the matching Fn field; unset
// fields return zero values, except the lookups, which return not-found.
package backendtest

import (
	"context"
	"sync"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
)

// API is a configurable backend.API. Calls records the method names
// invoked, in order, for assertions on call counts.
type API struct {
	ListProjectsFn       func(ctx context.Context) ([]backend.Project, error)
	GetProjectFn         func(ctx context.Context, projectID string) (*backend.Project, error)
	GetCalendarFn        func(ctx context.Context, projectID string) (*backend.Calendar, error)
	GenerateCalendarFn   func(ctx context.Context, projectID string) error
	GetDayFn             func(ctx context.Context, projectID, date string) (*backend.Day, error)
	UpdateDayFn          func(ctx context.Context, projectID, date string, day *backend.Day) (*backend.Day, error)
	MoveDayFn            func(ctx context.Context, projectID string, body any) (*backend.MoveResult, error)
	ListSpecialDatesFn   func(ctx context.Context, projectID string, kind backend.Kind) ([]backend.SpecialDate, error)
	GetSpecialDateFn     func(ctx context.Context, projectID string, kind backend.Kind, id string) (*backend.SpecialDate, error)
	CreateSpecialDateFn  func(ctx context.Context, projectID string, kind backend.Kind, sd *backend.SpecialDate) (*backend.SpecialDate, error)
	UpdateSpecialDateFn  func(ctx context.Context, projectID string, kind backend.Kind, sd *backend.SpecialDate) (*backend.SpecialDate, error)
	DeleteSpecialDateFn  func(ctx context.Context, projectID string, kind backend.Kind, id string) error
	LocationsFn          func(ctx context.Context) ([]backend.Location, error)
	AreaFn               func(ctx context.Context, areaID string) (*backend.Area, error)
	DepartmentsFn        func(ctx context.Context) ([]backend.Department, error)
	ListVersionsFn       func(ctx context.Context, projectID string) ([]backend.Version, error)
	CreateVersionFn      func(ctx context.Context, projectID string, req backend.CreateVersionRequest) (*backend.Version, error)
	PublishVersionFn     func(ctx context.Context, projectID, versionID string) (*backend.PublishResult, error)
	WorkspaceFn          func(ctx context.Context, projectID string) (*backend.Workspace, error)
	MigrateToVersionedFn func(ctx context.Context, projectID string) error

	mu    sync.Mutex
	calls []string
}

var _ backend.API = (*API)(nil)

func (m *API) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

// Calls returns a copy of the recorded method names.
func (m *API) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times name was invoked.
func (m *API) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *API) ListProjects(ctx context.Context) ([]backend.Project, error) {
	m.record("ListProjects")
	if m.ListProjectsFn != nil {
		return m.ListProjectsFn(ctx)
	}
	return nil, nil
}

func (m *API) GetProject(ctx context.Context, projectID string) (*backend.Project, error) {
	m.record("GetProject")
	if m.GetProjectFn != nil {
		return m.GetProjectFn(ctx, projectID)
	}
	return &backend.Project{ID: projectID, Title: "Project " + projectID}, nil
}

func (m *API) GetCalendar(ctx context.Context, projectID string) (*backend.Calendar, error) {
	m.record("GetCalendar")
	if m.GetCalendarFn != nil {
		return m.GetCalendarFn(ctx, projectID)
	}
	return &backend.Calendar{ProjectID: projectID}, nil
}

func (m *API) GenerateCalendar(ctx context.Context, projectID string) error {
	m.record("GenerateCalendar")
	if m.GenerateCalendarFn != nil {
		return m.GenerateCalendarFn(ctx, projectID)
	}
	return nil
}

func (m *API) GetDay(ctx context.Context, projectID, date string) (*backend.Day, error) {
	m.record("GetDay")
	if m.GetDayFn != nil {
		return m.GetDayFn(ctx, projectID, date)
	}
	return nil, apperror.NewNotFound("day not found")
}

func (m *API) UpdateDay(ctx context.Context, projectID, date string, day *backend.Day) (*backend.Day, error) {
	m.record("UpdateDay")
	if m.UpdateDayFn != nil {
		return m.UpdateDayFn(ctx, projectID, date, day)
	}
	return day, nil
}

func (m *API) MoveDay(ctx context.Context, projectID string, body any) (*backend.MoveResult, error) {
	m.record("MoveDay")
	if m.MoveDayFn != nil {
		return m.MoveDayFn(ctx, projectID, body)
	}
	return &backend.MoveResult{Success: true}, nil
}

func (m *API) ListSpecialDates(ctx context.Context, projectID string, kind backend.Kind) ([]backend.SpecialDate, error) {
	m.record("ListSpecialDates")
	if m.ListSpecialDatesFn != nil {
		return m.ListSpecialDatesFn(ctx, projectID, kind)
	}
	return nil, nil
}

func (m *API) GetSpecialDate(ctx context.Context, projectID string, kind backend.Kind, id string) (*backend.SpecialDate, error) {
	m.record("GetSpecialDate")
	if m.GetSpecialDateFn != nil {
		return m.GetSpecialDateFn(ctx, projectID, kind, id)
	}
	return nil, apperror.NewNotFound("special date not found")
}

func (m *API) CreateSpecialDate(ctx context.Context, projectID string, kind backend.Kind, sd *backend.SpecialDate) (*backend.SpecialDate, error) {
	m.record("CreateSpecialDate")
	if m.CreateSpecialDateFn != nil {
		return m.CreateSpecialDateFn(ctx, projectID, kind, sd)
	}
	return sd, nil
}

func (m *API) UpdateSpecialDate(ctx context.Context, projectID string, kind backend.Kind, sd *backend.SpecialDate) (*backend.SpecialDate, error) {
	m.record("UpdateSpecialDate")
	if m.UpdateSpecialDateFn != nil {
		return m.UpdateSpecialDateFn(ctx, projectID, kind, sd)
	}
	return sd, nil
}

func (m *API) DeleteSpecialDate(ctx context.Context, projectID string, kind backend.Kind, id string) error {
	m.record("DeleteSpecialDate")
	if m.DeleteSpecialDateFn != nil {
		return m.DeleteSpecialDateFn(ctx, projectID, kind, id)
	}
	return nil
}

func (m *API) Locations(ctx context.Context) ([]backend.Location, error) {
	m.record("Locations")
	if m.LocationsFn != nil {
		return m.LocationsFn(ctx)
	}
	return nil, nil
}

func (m *API) Area(ctx context.Context, areaID string) (*backend.Area, error) {
	m.record("Area")
	if m.AreaFn != nil {
		return m.AreaFn(ctx, areaID)
	}
	return nil, apperror.NewNotFound("area not found")
}

func (m *API) Departments(ctx context.Context) ([]backend.Department, error) {
	m.record("Departments")
	if m.DepartmentsFn != nil {
		return m.DepartmentsFn(ctx)
	}
	return nil, nil
}

func (m *API) ListVersions(ctx context.Context, projectID string) ([]backend.Version, error) {
	m.record("ListVersions")
	if m.ListVersionsFn != nil {
		return m.ListVersionsFn(ctx, projectID)
	}
	return nil, nil
}

func (m *API) CreateVersion(ctx context.Context, projectID string, req backend.CreateVersionRequest) (*backend.Version, error) {
	m.record("CreateVersion")
	if m.CreateVersionFn != nil {
		return m.CreateVersionFn(ctx, projectID, req)
	}
	return &backend.Version{ID: "v-new", VersionNumber: req.VersionNumber, Notes: req.Notes}, nil
}

func (m *API) PublishVersion(ctx context.Context, projectID, versionID string) (*backend.PublishResult, error) {
	m.record("PublishVersion")
	if m.PublishVersionFn != nil {
		return m.PublishVersionFn(ctx, projectID, versionID)
	}
	return &backend.PublishResult{Success: true}, nil
}

func (m *API) Workspace(ctx context.Context, projectID string) (*backend.Workspace, error) {
	m.record("Workspace")
	if m.WorkspaceFn != nil {
		return m.WorkspaceFn(ctx, projectID)
	}
	return &backend.Workspace{}, nil
}

func (m *API) MigrateToVersioned(ctx context.Context, projectID string) error {
	m.record("MigrateToVersioned")
	if m.MigrateToVersionedFn != nil {
		return m.MigrateToVersionedFn(ctx, projectID)
	}
	return nil
}
