package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/keyxmakerx/shootcal/internal/apperror"
)

// perPage is the number of audit entries shown per page in the activity feed.
const perPage = 50

// maxTargetHistoryEntries caps the history returned for a single target.
const maxTargetHistoryEntries = 100

// recordTimeout bounds a background write so a slow database cannot pile
// up goroutines.
const recordTimeout = 5 * time.Second

// Recorder is the narrow interface other plugins depend on.
type Recorder interface {
	// Record persists an entry in the background. It never blocks on the
	// database and never returns an error.
	Record(ctx context.Context, entry Entry)
}

// Service handles business logic for the audit log.
type Service interface {
	Recorder

	// Log validates and synchronously persists an entry.
	Log(ctx context.Context, entry *Entry) error

	// Activity returns a page of a project's feed plus the total count.
	Activity(ctx context.Context, projectID string, page int) ([]Entry, int, error)

	// TargetHistory returns recent changes to one target. For a date this
	// includes moves onto it as well as changes keyed by it.
	TargetHistory(ctx context.Context, projectID, target string) ([]Entry, error)

	// Stats returns aggregate statistics for a project.
	Stats(ctx context.Context, projectID string) (*Stats, error)
}

type service struct {
	repo Repository
}

// NewService creates a new audit service with the given repository.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Log(ctx context.Context, entry *Entry) error {
	if entry.ProjectID == "" {
		return apperror.NewBadRequest("project ID is required for audit entry")
	}
	if entry.Action == "" {
		return apperror.NewBadRequest("action is required for audit entry")
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Error("failed to write audit log entry",
			slog.String("project_id", entry.ProjectID),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
		return apperror.NewInternal(fmt.Errorf("writing audit entry: %w", err))
	}
	return nil
}

// Record detaches from the request context so the write survives the
// response being sent, then logs and drops any failure.
func (s *service) Record(ctx context.Context, entry Entry) {
	if entry.RemoteIP == "" {
		entry.RemoteIP = remoteIPFrom(ctx)
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		wctx, cancel := context.WithTimeout(bg, recordTimeout)
		defer cancel()
		_ = s.Log(wctx, &entry)
	}()
}

// Activity returns the paginated feed. Pages are 1-indexed; invalid page
// numbers are clamped to 1.
func (s *service) Activity(ctx context.Context, projectID string, page int) ([]Entry, int, error) {
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.ListByProject(ctx, projectID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, apperror.NewInternal(fmt.Errorf("listing project activity: %w", err))
	}
	return entries, total, nil
}

func (s *service) TargetHistory(ctx context.Context, projectID, target string) ([]Entry, error) {
	if target == "" {
		return nil, apperror.NewBadRequest("target is required")
	}

	entries, err := s.repo.ListByTarget(ctx, projectID, target, maxTargetHistoryEntries)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing target history: %w", err))
	}
	onto, err := s.repo.ListMovesOnto(ctx, projectID, target, maxTargetHistoryEntries)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing moves onto target: %w", err))
	}
	return mergeNewestFirst(entries, onto, maxTargetHistoryEntries), nil
}

// mergeNewestFirst combines two newest-first lists, dropping duplicate ids
// and keeping at most limit entries.
func mergeNewestFirst(a, b []Entry, limit int) []Entry {
	seen := make(map[int64]bool, len(a)+len(b))
	out := make([]Entry, 0, len(a)+len(b))
	for _, e := range append(append([]Entry(nil), a...), b...) {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *service) Stats(ctx context.Context, projectID string) (*Stats, error) {
	if projectID == "" {
		return nil, apperror.NewBadRequest("project ID is required")
	}

	stats, err := s.repo.GetStats(ctx, projectID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("getting project stats: %w", err))
	}
	return stats, nil
}

// Nop is a Recorder that drops everything. Tests and tools without a
// database use it.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) {}
