package dayeditor

import (
	"context"
	"log/slog"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/validate"
	"github.com/keyxmakerx/shootcal/internal/widgets/live"
)

// Reference is the lookup data the editor needs. *reference.Cache
// satisfies it.
type Reference interface {
	Locations(ctx context.Context) ([]backend.Location, error)
	Departments(ctx context.Context) ([]backend.Department, error)
	AreaForLocation(ctx context.Context, locationName string) (*backend.Area, error)
}

// Service loads and saves single days.
type Service interface {
	Load(ctx context.Context, pc *projects.Context, date string) (*Page, error)
	Save(ctx context.Context, pc *projects.Context, date string, f Form) (*backend.Day, error)
}

type service struct {
	api      backend.API
	ref      Reference
	notifier live.Notifier
	recorder audit.Recorder
}

// NewService creates a day editor service.
func NewService(api backend.API, ref Reference, notifier live.Notifier, recorder audit.Recorder) Service {
	return &service{api: api, ref: ref, notifier: notifier, recorder: recorder}
}

func (s *service) Load(ctx context.Context, pc *projects.Context, date string) (*Page, error) {
	if err := validate.Date("date", date); err != nil {
		return nil, err
	}
	cal, err := s.api.GetCalendar(ctx, pc.ProjectID())
	if err != nil {
		return nil, err
	}
	prev, next, ok := neighbours(cal.Days, date)
	if !ok {
		return nil, apperror.NewNotFound("That date is not in the calendar.")
	}
	day := *cal.FindDay(date)

	page := &Page{
		ProjectID: pc.ProjectID(),
		Title:     pc.Project.Title,
		Day:       day,
		Prev:      prev,
		Next:      next,
		Selected:  make(map[string]bool, len(day.Departments)),
	}
	for _, code := range day.Departments {
		page.Selected[code] = true
	}

	// Pickers are a convenience; the form still works without them.
	if page.Departments, err = s.ref.Departments(ctx); err != nil {
		slog.Warn("loading departments failed", slog.Any("error", err))
	}
	if page.Locations, err = s.ref.Locations(ctx); err != nil {
		slog.Warn("loading locations failed", slog.Any("error", err))
	}
	return page, nil
}

func (s *service) Save(ctx context.Context, pc *projects.Context, date string, f Form) (*backend.Day, error) {
	if err := validate.Date("date", date); err != nil {
		return nil, err
	}
	if err := validate.Struct(f); err != nil {
		return nil, err
	}

	day, err := s.api.GetDay(ctx, pc.ProjectID(), date)
	if err != nil {
		return nil, err
	}
	f.apply(day)

	if day.LocationArea == "" && day.Location != "" {
		area, err := s.ref.AreaForLocation(ctx, day.Location)
		if err != nil {
			slog.Warn("area lookup failed", slog.String("location", day.Location), slog.Any("error", err))
		} else if area != nil {
			day.LocationArea = area.Name
		}
	}

	saved, err := s.api.UpdateDay(ctx, pc.ProjectID(), date, day)
	if err != nil {
		return nil, err
	}

	s.notifier.ProjectChanged(ctx, pc.ProjectID())
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: pc.ProjectID(),
		ClientID:  pc.ClientID,
		Action:    audit.ActionDayUpdated,
		Target:    date,
		Details:   map[string]any{"location": day.Location, "mainUnit": day.MainUnit},
	})
	return saved, nil
}
