package audit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/keyxmakerx/shootcal/internal/apperror"
)

// --- Mock Repository ---

type mockRepo struct {
	logFn           func(ctx context.Context, entry *Entry) error
	listByProjectFn func(ctx context.Context, projectID string, limit, offset int) ([]Entry, int, error)
	listByTargetFn  func(ctx context.Context, projectID, target string, limit int) ([]Entry, error)
	listMovesOntoFn func(ctx context.Context, projectID, date string, limit int) ([]Entry, error)
	getStatsFn      func(ctx context.Context, projectID string) (*Stats, error)
}

func (m *mockRepo) Log(ctx context.Context, entry *Entry) error {
	if m.logFn != nil {
		return m.logFn(ctx, entry)
	}
	return nil
}

func (m *mockRepo) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Entry, int, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockRepo) ListByTarget(ctx context.Context, projectID, target string, limit int) ([]Entry, error) {
	if m.listByTargetFn != nil {
		return m.listByTargetFn(ctx, projectID, target, limit)
	}
	return nil, nil
}

func (m *mockRepo) ListMovesOnto(ctx context.Context, projectID, date string, limit int) ([]Entry, error) {
	if m.listMovesOntoFn != nil {
		return m.listMovesOntoFn(ctx, projectID, date, limit)
	}
	return nil, nil
}

func (m *mockRepo) GetStats(ctx context.Context, projectID string) (*Stats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, projectID)
	}
	return &Stats{}, nil
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

func TestLog_RequiresProjectAndAction(t *testing.T) {
	svc := NewService(&mockRepo{})

	assertAppError(t, svc.Log(context.Background(), &Entry{Action: ActionDayMoved}), http.StatusBadRequest)
	assertAppError(t, svc.Log(context.Background(), &Entry{ProjectID: "p1"}), http.StatusBadRequest)
}

func TestLog_RepoFailureIsInternal(t *testing.T) {
	svc := NewService(&mockRepo{
		logFn: func(ctx context.Context, entry *Entry) error { return errors.New("db down") },
	})
	err := svc.Log(context.Background(), &Entry{ProjectID: "p1", Action: ActionDayMoved})
	assertAppError(t, err, http.StatusInternalServerError)
}

func TestRecord_WritesInBackground(t *testing.T) {
	got := make(chan Entry, 1)
	svc := NewService(&mockRepo{
		logFn: func(ctx context.Context, entry *Entry) error {
			got <- *entry
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	svc.Record(ctx, Entry{ProjectID: "p1", Action: ActionVersionCreated, Target: "v1"})
	cancel() // The write must outlive the request context.

	select {
	case e := <-got:
		if e.Target != "v1" || e.Action != ActionVersionCreated {
			t.Errorf("unexpected entry %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background write")
	}
}

func TestRecord_SwallowsFailure(t *testing.T) {
	done := make(chan struct{})
	svc := NewService(&mockRepo{
		logFn: func(ctx context.Context, entry *Entry) error {
			defer close(done)
			return errors.New("db down")
		},
	})

	svc.Record(context.Background(), Entry{ProjectID: "p1", Action: ActionDayMoved})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background write")
	}
}

func TestActivity_ClampsPage(t *testing.T) {
	var gotOffset, gotLimit int
	svc := NewService(&mockRepo{
		listByProjectFn: func(ctx context.Context, projectID string, limit, offset int) ([]Entry, int, error) {
			gotLimit, gotOffset = limit, offset
			return nil, 0, nil
		},
	})

	if _, _, err := svc.Activity(context.Background(), "p1", -3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 0 || gotLimit != perPage {
		t.Errorf("expected limit %d offset 0, got %d/%d", perPage, gotLimit, gotOffset)
	}

	_, _, _ = svc.Activity(context.Background(), "p1", 3)
	if gotOffset != 2*perPage {
		t.Errorf("expected offset %d, got %d", 2*perPage, gotOffset)
	}
}

func TestTargetHistory_RequiresTarget(t *testing.T) {
	svc := NewService(&mockRepo{})
	_, err := svc.TargetHistory(context.Background(), "p1", "")
	assertAppError(t, err, http.StatusBadRequest)
}

func TestActivityPagination(t *testing.T) {
	p := ActivityPage{Page: 1, PerPage: 50, Total: 120}
	if p.HasPrev() || !p.HasNext() {
		t.Errorf("page 1: prev=%v next=%v", p.HasPrev(), p.HasNext())
	}
	p.Page = 3
	if !p.HasPrev() || p.HasNext() {
		t.Errorf("page 3: prev=%v next=%v", p.HasPrev(), p.HasNext())
	}
}

func TestRecord_TakesRemoteIPFromContext(t *testing.T) {
	got := make(chan Entry, 1)
	svc := NewService(&mockRepo{
		logFn: func(ctx context.Context, entry *Entry) error {
			got <- *entry
			return nil
		},
	})

	ctx := WithRemoteIP(context.Background(), "203.0.113.9")
	svc.Record(ctx, Entry{ProjectID: "p1", Action: ActionDayUpdated})

	select {
	case e := <-got:
		if e.RemoteIP != "203.0.113.9" {
			t.Errorf("expected remote ip from context, got %q", e.RemoteIP)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background write")
	}
}

func TestTargetHistory_IncludesMovesOntoDate(t *testing.T) {
	base := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	svc := NewService(&mockRepo{
		listByTargetFn: func(_ context.Context, _, target string, _ int) ([]Entry, error) {
			return []Entry{
				{ID: 3, Action: ActionDayUpdated, Target: target, CreatedAt: base.Add(2 * time.Hour)},
				{ID: 1, Action: ActionDayMoved, Target: target, CreatedAt: base},
			}, nil
		},
		listMovesOntoFn: func(_ context.Context, _, date string, _ int) ([]Entry, error) {
			return []Entry{
				{ID: 2, Action: ActionDayMoved, Target: "2024-01-02",
					Details: map[string]any{"from": "2024-01-02", "to": date}, CreatedAt: base.Add(time.Hour)},
			}, nil
		},
	})

	entries, err := svc.TargetHistory(context.Background(), "p1", "2024-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []int64
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 2 || ids[2] != 1 {
		t.Errorf("expected entries 3, 2, 1 newest first, got %v", ids)
	}
}

func TestTargetHistory_MovesOntoFailure(t *testing.T) {
	svc := NewService(&mockRepo{
		listMovesOntoFn: func(context.Context, string, string, int) ([]Entry, error) {
			return nil, errors.New("db down")
		},
	})
	_, err := svc.TargetHistory(context.Background(), "p1", "2024-01-03")
	assertAppError(t, err, http.StatusInternalServerError)
}

func TestMergeNewestFirst_DedupesAndLimits(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := []Entry{{ID: 5, CreatedAt: at.Add(5 * time.Minute)}, {ID: 1, CreatedAt: at}}
	b := []Entry{{ID: 5, CreatedAt: at.Add(5 * time.Minute)}, {ID: 4, CreatedAt: at.Add(4 * time.Minute)}}

	got := mergeNewestFirst(a, b, 2)
	if len(got) != 2 || got[0].ID != 5 || got[1].ID != 4 {
		t.Errorf("unexpected merge %+v", got)
	}
}
