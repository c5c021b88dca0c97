package preferences

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/shootcal/internal/apperror"
)

// Service handles business logic for client preferences.
type Service interface {
	// Load returns the client's prefs. Store failures degrade to defaults
	// so a Redis hiccup never blocks the calendar from rendering.
	Load(ctx context.Context, clientID string) Prefs

	// SetHidden sets one hide toggle and returns the updated prefs.
	SetHidden(ctx context.Context, clientID, key string, hidden bool) (Prefs, error)

	// Reset clears every hide toggle, keeping the theme.
	Reset(ctx context.Context, clientID string) (Prefs, error)

	// ToggleTheme flips between light and dark.
	ToggleTheme(ctx context.Context, clientID string) (Prefs, error)

	// Subscribe exposes the store's change feed.
	Subscribe(ctx context.Context, clientID string) (<-chan Change, func(), error)
}

type service struct {
	store Store
}

// NewService creates a preferences service backed by store.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Load(ctx context.Context, clientID string) Prefs {
	if clientID == "" {
		return Default()
	}
	p, err := s.store.Get(ctx, clientID)
	if err != nil {
		slog.Warn("loading prefs failed, using defaults",
			slog.String("client_id", clientID),
			slog.Any("error", err),
		)
		return Default()
	}
	return p
}

func (s *service) SetHidden(ctx context.Context, clientID, key string, hidden bool) (Prefs, error) {
	if clientID == "" {
		return Prefs{}, apperror.NewMissingContext()
	}
	if !KnownKey(key) {
		return Prefs{}, apperror.NewBadRequest(fmt.Sprintf("unknown filter %q", key))
	}

	current, err := s.current(ctx, clientID)
	if err != nil {
		return Prefs{}, err
	}
	next := current.With(key, hidden)
	if err := s.store.Set(ctx, clientID, next); err != nil {
		return Prefs{}, apperror.NewInternal(err)
	}
	return next, nil
}

func (s *service) Reset(ctx context.Context, clientID string) (Prefs, error) {
	if clientID == "" {
		return Prefs{}, apperror.NewMissingContext()
	}

	current, err := s.current(ctx, clientID)
	if err != nil {
		return Prefs{}, err
	}
	next := Prefs{Hide: map[string]bool{}, Theme: current.Theme}
	if err := s.store.Set(ctx, clientID, next); err != nil {
		return Prefs{}, apperror.NewInternal(err)
	}
	return next, nil
}

func (s *service) ToggleTheme(ctx context.Context, clientID string) (Prefs, error) {
	if clientID == "" {
		return Prefs{}, apperror.NewMissingContext()
	}

	next, err := s.current(ctx, clientID)
	if err != nil {
		return Prefs{}, err
	}
	next.Theme = next.Theme.Normalize().Toggle()
	if err := s.store.Set(ctx, clientID, next); err != nil {
		return Prefs{}, apperror.NewInternal(err)
	}
	return next, nil
}

// current reads the saved prefs for a write. Unlike Load it never falls
// back to defaults: saving defaults over an unreadable value would erase
// every other toggle.
func (s *service) current(ctx context.Context, clientID string) (Prefs, error) {
	p, err := s.store.Get(ctx, clientID)
	if err != nil {
		return Prefs{}, apperror.NewInternal(fmt.Errorf("reading prefs for update: %w", err))
	}
	return p, nil
}

func (s *service) Subscribe(ctx context.Context, clientID string) (<-chan Change, func(), error) {
	return s.store.Subscribe(ctx, clientID)
}
