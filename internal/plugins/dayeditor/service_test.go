package dayeditor

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/backend/backendtest"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/widgets/live"
)

type stubReference struct {
	locations   []backend.Location
	departments []backend.Department
	areas       map[string]*backend.Area
	err         error
}

func (s *stubReference) Locations(ctx context.Context) ([]backend.Location, error) {
	return s.locations, s.err
}

func (s *stubReference) Departments(ctx context.Context) ([]backend.Department, error) {
	return s.departments, s.err
}

func (s *stubReference) AreaForLocation(ctx context.Context, name string) (*backend.Area, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.areas[strings.ToLower(name)], nil
}

type recordingRecorder struct{ entries []audit.Entry }

func (r *recordingRecorder) Record(ctx context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d", expectedCode, appErr.Code)
	}
}

func testContext() *projects.Context {
	return &projects.Context{Project: &backend.Project{ID: "p1", Title: "Feature"}, ClientID: "c1"}
}

func calendarAPI() *backendtest.API {
	return &backendtest.API{
		GetCalendarFn: func(ctx context.Context, projectID string) (*backend.Calendar, error) {
			return &backend.Calendar{Days: []backend.Day{
				{Date: "2024-01-01"},
				{Date: "2024-01-02", IsShootDay: true, Departments: []string{"CAM", "SFX"}},
				{Date: "2024-01-03"},
			}}, nil
		},
	}
}

func TestLoad_Neighbours(t *testing.T) {
	svc := NewService(calendarAPI(), &stubReference{}, live.Nop{}, audit.Nop{})

	page, err := svc.Load(context.Background(), testContext(), "2024-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Prev != "2024-01-01" || page.Next != "2024-01-03" {
		t.Errorf("unexpected neighbours %q / %q", page.Prev, page.Next)
	}
	if !page.Selected["CAM"] || !page.Selected["SFX"] || page.Selected["HMU"] {
		t.Errorf("unexpected selection %v", page.Selected)
	}

	first, _ := svc.Load(context.Background(), testContext(), "2024-01-01")
	if first.Prev != "" {
		t.Errorf("expected no previous day, got %q", first.Prev)
	}
}

func TestLoad_UnknownDate(t *testing.T) {
	svc := NewService(calendarAPI(), &stubReference{}, live.Nop{}, audit.Nop{})
	_, err := svc.Load(context.Background(), testContext(), "2025-01-01")
	assertAppError(t, err, http.StatusNotFound)
}

func TestLoad_ReferenceFailureIsNotFatal(t *testing.T) {
	svc := NewService(calendarAPI(), &stubReference{err: errors.New("down")}, live.Nop{}, audit.Nop{})
	if _, err := svc.Load(context.Background(), testContext(), "2024-01-02"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSave_KeepsFlagsAndSanitizes(t *testing.T) {
	var sent *backend.Day
	n := 4
	api := &backendtest.API{
		GetDayFn: func(ctx context.Context, projectID, date string) (*backend.Day, error) {
			return &backend.Day{Date: date, IsShootDay: true, ShootDay: &n, Notes: "old"}, nil
		},
		UpdateDayFn: func(ctx context.Context, projectID, date string, day *backend.Day) (*backend.Day, error) {
			sent = day
			return day, nil
		},
	}
	ref := &stubReference{areas: map[string]*backend.Area{"old mill": {Name: "Rural"}}}
	rec := &recordingRecorder{}
	svc := NewService(api, ref, live.Nop{}, rec)

	_, err := svc.Save(context.Background(), testContext(), "2024-01-02", Form{
		MainUnit:    " INT. MILL - DAY ",
		Location:    "Old Mill",
		Extras:      12,
		Departments: []string{"CAM", "", "CAM", "SFX"},
		Notes:       "<i>Rain</i> cover",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sent.IsShootDay || sent.ShootDay == nil || *sent.ShootDay != 4 {
		t.Error("generator-owned fields must survive an edit")
	}
	if sent.MainUnit != "INT. MILL - DAY" || sent.Notes != "Rain cover" {
		t.Errorf("unexpected text %q / %q", sent.MainUnit, sent.Notes)
	}
	if sent.LocationArea != "Rural" {
		t.Errorf("expected area looked up from location, got %q", sent.LocationArea)
	}
	if !reflect.DeepEqual(sent.Departments, []string{"CAM", "SFX"}) {
		t.Errorf("unexpected departments %v", sent.Departments)
	}
	if sent.Extras != 12 {
		t.Errorf("unexpected extras %d", sent.Extras)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != audit.ActionDayUpdated {
		t.Errorf("unexpected audit entries %+v", rec.entries)
	}
}

func TestSave_ExplicitAreaWins(t *testing.T) {
	var sent *backend.Day
	api := &backendtest.API{
		GetDayFn: func(ctx context.Context, projectID, date string) (*backend.Day, error) {
			return &backend.Day{Date: date}, nil
		},
		UpdateDayFn: func(ctx context.Context, projectID, date string, day *backend.Day) (*backend.Day, error) {
			sent = day
			return day, nil
		},
	}
	ref := &stubReference{areas: map[string]*backend.Area{"old mill": {Name: "Rural"}}}
	svc := NewService(api, ref, live.Nop{}, audit.Nop{})

	if _, err := svc.Save(context.Background(), testContext(), "2024-01-02", Form{Location: "Old Mill", LocationArea: "Coast"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent.LocationArea != "Coast" {
		t.Errorf("expected explicit area kept, got %q", sent.LocationArea)
	}
}

func TestSave_Validation(t *testing.T) {
	api := &backendtest.API{}
	svc := NewService(api, &stubReference{}, live.Nop{}, audit.Nop{})

	_, err := svc.Save(context.Background(), testContext(), "2024-01-02", Form{Extras: -1})
	assertAppError(t, err, http.StatusUnprocessableEntity)
	if len(api.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", api.Calls())
	}
}

func TestMalformedDateNeverReachesBackend(t *testing.T) {
	for _, date := range []string{"..", "2024-13-01", "2024-01-02/../x", ""} {
		t.Run("load "+date, func(t *testing.T) {
			api := calendarAPI()
			svc := NewService(api, &stubReference{}, live.Nop{}, audit.Nop{})
			_, err := svc.Load(context.Background(), testContext(), date)
			assertAppError(t, err, http.StatusBadRequest)
			if len(api.Calls()) != 0 {
				t.Errorf("expected no backend calls, got %v", api.Calls())
			}
		})
		t.Run("save "+date, func(t *testing.T) {
			api := &backendtest.API{}
			svc := NewService(api, &stubReference{}, live.Nop{}, audit.Nop{})
			_, err := svc.Save(context.Background(), testContext(), date, Form{})
			assertAppError(t, err, http.StatusBadRequest)
			if len(api.Calls()) != 0 {
				t.Errorf("expected no backend calls, got %v", api.Calls())
			}
		})
	}
}
