package versions

import (
	"context"
	"sort"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/sanitize"
	"github.com/keyxmakerx/shootcal/internal/validate"
	"github.com/keyxmakerx/shootcal/internal/widgets/live"
)

// Service handles business logic for calendar versions.
type Service interface {
	// List returns versions newest first.
	List(ctx context.Context, projectID string) ([]backend.Version, error)

	// Create snapshots the calendar and returns the refreshed list.
	Create(ctx context.Context, pc *projects.Context, in CreateInput) ([]backend.Version, error)

	// Publish shares a version and returns its access info and the
	// refreshed list.
	Publish(ctx context.Context, pc *projects.Context, versionID string) (*backend.AccessInfo, []backend.Version, error)

	// Workspace reports whether the project is editing a draft.
	Workspace(ctx context.Context, projectID string) (*backend.Workspace, error)

	// MigrateToVersioned moves a legacy project onto versioning.
	MigrateToVersioned(ctx context.Context, pc *projects.Context) error
}

type service struct {
	api      backend.API
	notifier live.Notifier
	recorder audit.Recorder
}

// NewService creates a version service.
func NewService(api backend.API, notifier live.Notifier, recorder audit.Recorder) Service {
	return &service{api: api, notifier: notifier, recorder: recorder}
}

func (s *service) List(ctx context.Context, projectID string) ([]backend.Version, error) {
	list, err := s.api.ListVersions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *service) Create(ctx context.Context, pc *projects.Context, in CreateInput) ([]backend.Version, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	v, err := s.api.CreateVersion(ctx, pc.ProjectID(), backend.CreateVersionRequest{
		VersionNumber: in.VersionNumber,
		Notes:         sanitize.Text(in.Notes),
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProjectChanged(ctx, pc.ProjectID())
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: pc.ProjectID(),
		ClientID:  pc.ClientID,
		Action:    audit.ActionVersionCreated,
		Target:    v.ID,
		Details:   map[string]any{"versionNumber": in.VersionNumber},
	})
	return s.List(ctx, pc.ProjectID())
}

func (s *service) Publish(ctx context.Context, pc *projects.Context, versionID string) (*backend.AccessInfo, []backend.Version, error) {
	if versionID == "" {
		return nil, nil, apperror.NewBadRequest("version ID is required")
	}

	res, err := s.api.PublishVersion(ctx, pc.ProjectID(), versionID)
	if err != nil {
		return nil, nil, err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "The version could not be published."
		}
		return nil, nil, apperror.NewBadRequest(msg)
	}

	s.notifier.ProjectChanged(ctx, pc.ProjectID())
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: pc.ProjectID(),
		ClientID:  pc.ClientID,
		Action:    audit.ActionVersionPublished,
		Target:    versionID,
	})

	list, err := s.List(ctx, pc.ProjectID())
	if err != nil {
		return nil, nil, err
	}
	return res.AccessInfo, list, nil
}

func (s *service) Workspace(ctx context.Context, projectID string) (*backend.Workspace, error) {
	return s.api.Workspace(ctx, projectID)
}

func (s *service) MigrateToVersioned(ctx context.Context, pc *projects.Context) error {
	if err := s.api.MigrateToVersioned(ctx, pc.ProjectID()); err != nil {
		return err
	}
	s.notifier.ProjectChanged(ctx, pc.ProjectID())
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: pc.ProjectID(),
		ClientID:  pc.ClientID,
		Action:    audit.ActionProjectMigrated,
	})
	return nil
}
