package moves

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/backend/backendtest"
	"github.com/keyxmakerx/shootcal/internal/config"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/filters"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
)

// --- Test doubles ---

type recordingNotifier struct {
	mu       sync.Mutex
	projects []string
}

func (n *recordingNotifier) ProjectChanged(ctx context.Context, projectID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.projects = append(n.projects, projectID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.projects)
}

type recordingRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingRecorder) Record(ctx context.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func assertAppError(t *testing.T, err error, expectedCode int) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (%s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

func shoot(n int) *int { return &n }

func fixtureCalendar() *backend.Calendar {
	return &backend.Calendar{ProjectID: "p1", Days: []backend.Day{
		{Date: "2024-01-02", IsShootDay: true, ShootDay: shoot(1)},
		{Date: "2024-01-03", IsShootDay: true, ShootDay: shoot(2)},
		{Date: "2024-01-04"},
		{Date: "2024-01-06", IsWeekend: true},
		{Date: "2024-01-07", IsWeekend: true, IsWorkingWeekend: true},
		{Date: "2024-01-08", IsHoliday: true},
		{Date: "2024-01-09", IsHoliday: true, IsShootDay: true, ShootDay: shoot(3)},
		{Date: "2024-01-10", IsHiatus: true},
	}}
}

type fixture struct {
	api      *backendtest.API
	mr       *miniredis.Miniredis
	notifier *recordingNotifier
	recorder *recordingRecorder
	svc      Service
	pc       *projects.Context
}

func newFixture(t *testing.T, shape string) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		api: &backendtest.API{
			GetCalendarFn: func(ctx context.Context, projectID string) (*backend.Calendar, error) {
				return fixtureCalendar(), nil
			},
		},
		mr:       mr,
		notifier: &recordingNotifier{},
		recorder: &recordingRecorder{},
		pc: &projects.Context{
			Project:  &backend.Project{ID: "p1", Title: "Feature"},
			ClientID: "client-1",
			View:     filters.ViewTable,
		},
	}
	f.svc = NewService(f.api, NewRedisLocker(rdb, 15*time.Second), f.notifier, f.recorder, shape)
	return f
}

// --- Tests ---

func TestMove_MissingDate(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	_, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02"})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	if appErr.Message != msgMissingDate {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if len(f.api.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", f.api.Calls())
	}
}

func TestMove_MalformedDate(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	_, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "Jan 4"})
	assertAppError(t, err, http.StatusUnprocessableEntity)
}

func TestMove_SameDateIsNoop(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	res, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "2024-01-02"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("expected success")
	}
	if len(f.api.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", f.api.Calls())
	}
	if f.notifier.count() != 0 {
		t.Error("expected no refresh for a no-op")
	}
}

func TestMove_AdvisoryRejections(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		code     int
		message  string
	}{
		{"source not shoot", "2024-01-04", "2024-01-03", http.StatusBadRequest, msgNotShootDay},
		{"onto weekend", "2024-01-02", "2024-01-06", http.StatusBadRequest, msgNonWorkingDay},
		{"onto holiday", "2024-01-02", "2024-01-08", http.StatusBadRequest, msgNonWorkingDay},
		{"onto holiday with shoot day", "2024-01-02", "2024-01-09", http.StatusBadRequest, msgNonWorkingDay},
		{"onto hiatus", "2024-01-02", "2024-01-10", http.StatusBadRequest, msgNonWorkingDay},
		{"unknown target", "2024-01-02", "2024-03-01", http.StatusNotFound, msgDayNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.MovePayloadFromTo)
			_, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: tt.from, To: tt.to})
			appErr := assertAppError(t, err, tt.code)
			if appErr.Message != tt.message {
				t.Errorf("got %q, want %q", appErr.Message, tt.message)
			}
			if f.api.CallCount("MoveDay") != 0 {
				t.Error("rejected move must not reach the backend")
			}
		})
	}
}

func TestMove_AllowedTargets(t *testing.T) {
	for _, to := range []string{"2024-01-03", "2024-01-04", "2024-01-07"} {
		t.Run(to, func(t *testing.T) {
			f := newFixture(t, config.MovePayloadFromTo)
			if _, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: to}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMove_SendsFromToPayload(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	var got any
	f.api.MoveDayFn = func(ctx context.Context, projectID string, body any) (*backend.MoveResult, error) {
		got = body
		return &backend.MoveResult{Success: true, Message: "Day 1 swapped with 2024-01-04", Mode: ModeSwap}, nil
	}

	res, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "2024-01-04"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fromToPayload{FromDate: "2024-01-02", ToDate: "2024-01-04", Mode: ModeSwap}
	if got != want {
		t.Errorf("got body %#v, want %#v", got, want)
	}
	if res.Message != "Day 1 swapped with 2024-01-04" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if f.notifier.count() != 1 {
		t.Errorf("expected one refresh, got %d", f.notifier.count())
	}
	if len(f.recorder.entries) != 1 || f.recorder.entries[0].Action != audit.ActionDayMoved {
		t.Errorf("expected a day.moved audit entry, got %+v", f.recorder.entries)
	}
	if f.mr.Exists("move:p1") {
		t.Error("expected lock released after move")
	}
}

func TestMove_SendsSourceTargetPayload(t *testing.T) {
	f := newFixture(t, config.MovePayloadSourceTarget)
	var got any
	f.api.MoveDayFn = func(ctx context.Context, projectID string, body any) (*backend.MoveResult, error) {
		got = body
		return &backend.MoveResult{Success: true}, nil
	}

	if _, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "2024-01-04"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := sourceTargetPayload{SourceDate: "2024-01-02", TargetDate: "2024-01-04"}
	if got != want {
		t.Errorf("got body %#v, want %#v", got, want)
	}
}

func TestMove_ConcurrentMoveConflicts(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	if err := f.mr.Set("move:p1", "someone-else"); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "2024-01-04"})
	assertAppError(t, err, http.StatusConflict)
	if f.api.CallCount("MoveDay") != 0 {
		t.Error("conflicting move must not reach the backend")
	}
	if v, _ := f.mr.Get("move:p1"); v != "someone-else" {
		t.Error("must not release a lock held by another request")
	}
}

func TestMove_BackendErrorSurfacesAndReleases(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	f.api.MoveDayFn = func(ctx context.Context, projectID string, body any) (*backend.MoveResult, error) {
		return nil, apperror.NewUpstream(http.StatusBadRequest, msgNonWorkingDay, nil)
	}

	_, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "2024-01-04"})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	if appErr.Message != msgNonWorkingDay {
		t.Errorf("expected backend message, got %q", appErr.Message)
	}
	if f.mr.Exists("move:p1") {
		t.Error("expected lock released after failure")
	}
	if f.notifier.count() != 0 || len(f.recorder.entries) != 0 {
		t.Error("failed move must not notify or audit")
	}
}

func TestMove_RedisDownStillMoves(t *testing.T) {
	f := newFixture(t, config.MovePayloadFromTo)
	f.mr.Close()

	if _, err := f.svc.Move(context.Background(), f.pc, MoveInput{From: "2024-01-02", To: "2024-01-04"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.api.CallCount("MoveDay") != 1 {
		t.Error("expected the move to reach the backend")
	}
}

func TestAPIRequest_Input(t *testing.T) {
	in := APIRequest{SourceDate: "2024-01-02", TargetDate: "2024-01-04"}.Input()
	if in.From != "2024-01-02" || in.To != "2024-01-04" {
		t.Errorf("unexpected input %+v", in)
	}
	in = APIRequest{FromDate: "a", SourceDate: "b", ToDate: "c"}.Input()
	if in.From != "a" || in.To != "c" {
		t.Errorf("expected fromDate/toDate to win, got %+v", in)
	}
}
