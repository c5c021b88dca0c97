package specialdates

import (
	"context"
	"sort"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/widgets/live"
)

// Service handles business logic for special dates.
type Service interface {
	List(ctx context.Context, projectID string, kind backend.Kind) ([]backend.SpecialDate, error)
	ListAll(ctx context.Context, projectID string) ([]Group, error)
	Get(ctx context.Context, projectID string, kind backend.Kind, id string) (*backend.SpecialDate, error)

	// Create, Update and Delete regenerate the calendar after the change.
	Create(ctx context.Context, pc *projects.Context, kind backend.Kind, in Input) (*backend.SpecialDate, error)
	Update(ctx context.Context, pc *projects.Context, kind backend.Kind, id string, in Input) (*backend.SpecialDate, error)
	Delete(ctx context.Context, pc *projects.Context, kind backend.Kind, id string) error
}

type service struct {
	api      backend.API
	notifier live.Notifier
	recorder audit.Recorder
}

// NewService creates a special dates service.
func NewService(api backend.API, notifier live.Notifier, recorder audit.Recorder) Service {
	return &service{api: api, notifier: notifier, recorder: recorder}
}

func checkKind(kind backend.Kind) error {
	if !kind.Valid() {
		return apperror.NewNotFound("unknown date collection")
	}
	return nil
}

func (s *service) List(ctx context.Context, projectID string, kind backend.Kind) ([]backend.SpecialDate, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	list, err := s.api.ListSpecialDates(ctx, projectID, kind)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return sortKey(list[i]) < sortKey(list[j])
	})
	return list, nil
}

// sortKey orders by date, or by start date for hiatus periods.
func sortKey(sd backend.SpecialDate) string {
	if sd.Date != "" {
		return sd.Date
	}
	return sd.StartDate
}

func (s *service) ListAll(ctx context.Context, projectID string) ([]Group, error) {
	groups := make([]Group, 0, len(backend.Kinds))
	for _, kind := range backend.Kinds {
		items, err := s.List(ctx, projectID, kind)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Kind: kind, Label: Labels[kind], Items: items})
	}
	return groups, nil
}

func (s *service) Get(ctx context.Context, projectID string, kind backend.Kind, id string) (*backend.SpecialDate, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.api.GetSpecialDate(ctx, projectID, kind, id)
}

func (s *service) Create(ctx context.Context, pc *projects.Context, kind backend.Kind, in Input) (*backend.SpecialDate, error) {
	rec, err := in.Record(kind)
	if err != nil {
		return nil, err
	}
	out, err := s.api.CreateSpecialDate(ctx, pc.ProjectID(), kind, rec)
	if err != nil {
		return nil, err
	}
	if err := s.changed(ctx, pc, audit.ActionSpecialDateCreated, kind, out.ID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, pc *projects.Context, kind backend.Kind, id string, in Input) (*backend.SpecialDate, error) {
	if id == "" {
		return nil, apperror.NewBadRequest("id is required")
	}
	in.ID = id
	rec, err := in.Record(kind)
	if err != nil {
		return nil, err
	}
	out, err := s.api.UpdateSpecialDate(ctx, pc.ProjectID(), kind, rec)
	if err != nil {
		return nil, err
	}
	if err := s.changed(ctx, pc, audit.ActionSpecialDateUpdated, kind, id); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, pc *projects.Context, kind backend.Kind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if id == "" {
		return apperror.NewBadRequest("id is required")
	}
	if err := s.api.DeleteSpecialDate(ctx, pc.ProjectID(), kind, id); err != nil {
		return err
	}
	return s.changed(ctx, pc, audit.ActionSpecialDateDeleted, kind, id)
}

// changed regenerates the calendar and tells everyone about it. The
// record is already saved when this runs, so the audit entry is written
// even if regeneration fails; the error is still returned so the admin
// knows the calendar is stale.
func (s *service) changed(ctx context.Context, pc *projects.Context, action string, kind backend.Kind, id string) error {
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: pc.ProjectID(),
		ClientID:  pc.ClientID,
		Action:    action,
		Target:    string(kind) + "/" + id,
	})

	if err := s.api.GenerateCalendar(ctx, pc.ProjectID()); err != nil {
		return err
	}
	s.notifier.ProjectChanged(ctx, pc.ProjectID())
	return nil
}
