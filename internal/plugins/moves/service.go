package moves

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

// Service moves shoot days.
type Service interface {
	// Move swaps the shoot day on in.From onto in.To. Moving a day onto
	// itself succeeds without contacting the backend.
	Move(ctx context.Context, pc *projects.Context, in MoveInput) (*backend.MoveResult, error)
}

type service struct {
	api      backend.API
	locker   Locker
	notifier live.Notifier
	recorder audit.Recorder
	shape    string
}

// NewService creates a move service. shape is config.MovePayloadFromTo or
// config.MovePayloadSourceTarget.
func NewService(api backend.API, locker Locker, notifier live.Notifier, recorder audit.Recorder, shape string) Service {
	return &service{api: api, locker: locker, notifier: notifier, recorder: recorder, shape: shape}
}

func (s *service) Move(ctx context.Context, pc *projects.Context, in MoveInput) (*backend.MoveResult, error) {
	if in.From == "" || in.To == "" {
		return nil, apperror.NewBadRequest(msgMissingDate)
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.From == in.To {
		return &backend.MoveResult{Success: true, Message: "Day is already on " + in.To, Mode: ModeSwap}, nil
	}

	projectID := pc.ProjectID()
	cal, err := s.api.GetCalendar(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := CheckMove(cal, in.From, in.To); err != nil {
		return nil, err
	}

	release, ok, err := s.locker.Acquire(ctx, lockKey(projectID))
	switch {
	case err != nil:
		// The backend is still authoritative; a Redis outage only loses
		// the duplicate-submit guard.
		slog.Warn("move lock unavailable, continuing without it",
			slog.String("project_id", projectID),
			slog.Any("error", err),
		)
	case !ok:
		return nil, apperror.NewConflict(msgInFlight)
	default:
		defer release()
	}

	res, err := s.api.MoveDay(ctx, projectID, buildPayload(s.shape, in))
	if err != nil {
		return nil, err
	}

	slog.Info("shoot day moved",
		slog.String("project_id", projectID),
		slog.String("from", in.From),
		slog.String("to", in.To),
	)

	s.notifier.ProjectChanged(ctx, projectID)
	s.recorder.Record(ctx, audit.Entry{
		ProjectID: projectID,
		ClientID:  pc.ClientID,
		Action:    audit.ActionDayMoved,
		Target:    in.From,
		Details:   map[string]any{"from": in.From, "to": in.To, "message": res.Message},
	})
	return res, nil
}
