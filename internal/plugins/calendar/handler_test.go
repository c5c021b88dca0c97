package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
)

const testClientID = "6f1c2a9e-3b4d-4c5e-8f70-112233445566"

type handlerFixture struct {
	e     *echo.Echo
	prefs preferences.Service
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	prefs := preferences.NewService(preferences.NewRedisStore(rdb, 0))

	api := calendarAPI()
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(apperror.SafeCode(err), map[string]string{"error": apperror.SafeMessage(err)})
	}
	e.Use(middleware.ClientID())
	pages := e.Group("/projects/:id", projects.RequireProject(api, prefs))
	RegisterRoutes(pages, NewHandler(NewService(api, stubAreas{}, &recordingNotifier{}, &recordingRecorder{}), prefs))
	return &handlerFixture{e: e, prefs: prefs}
}

func (f *handlerFixture) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	req.AddCookie(&http.Cookie{Name: "shootcal_client", Value: testClientID})
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ShowFullPage(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodGet, "/projects/p1/calendar", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", `id="filter-form"`, `data-date="2024-01-02"`, `class="move-form"`, "calendar-table"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestHandler_ShowHTMXFragment(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodGet, "/projects/p1/calendar?view=calendar&q=opening", nil, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("expected a fragment, got a full page")
	}
	if !strings.Contains(body, "month-grid") || !strings.Contains(body, "January 2024") {
		t.Error("expected the month grid")
	}
	if !strings.Contains(body, "Showing 1 of 6 days") {
		t.Errorf("expected search applied to stats, got %s", body)
	}
}

func TestHandler_Print(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodGet, "/projects/p1/calendar/print", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "print-table") {
		t.Error("expected print table")
	}
	if strings.Contains(body, "move-form") || strings.Contains(body, "filter-form") {
		t.Error("print layout must have no interactive controls")
	}
}

func TestHandler_ToggleFilterPersists(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPost, "/projects/p1/filters/filter-weekends?view=table",
		url.Values{"hidden": {"true"}, "q": {"studio"}}, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/projects/p1/calendar?view=table&q=studio" {
		t.Errorf("unexpected redirect %q", loc)
	}
	if !f.prefs.Load(context.Background(), testClientID).Hidden(preferences.HideWeekends) {
		t.Error("expected weekend toggle saved")
	}
}

func TestHandler_ToggleFilterHTMXRendersBody(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPost, "/projects/p1/filters/filter-col-sequence?view=table",
		url.Values{"hidden": {"true"}}, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `<th class="col-sequence">`) {
		t.Error("expected sequence column removed")
	}
}

func TestHandler_ToggleFilterRejectsUnknown(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPost, "/projects/p1/filters/filter-everything", url.Values{"hidden": {"true"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = f.do(http.MethodPost, "/projects/p1/filters/filter-prep", url.Values{"hidden": {"maybe"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad flag, got %d", rec.Code)
	}
}

func TestHandler_ResetClearsPrefs(t *testing.T) {
	f := newHandlerFixture(t)
	if _, err := f.prefs.SetHidden(context.Background(), testClientID, preferences.HidePrep, true); err != nil {
		t.Fatalf("seeding prefs: %v", err)
	}

	rec := f.do(http.MethodPost, "/projects/p1/filters/reset?view=calendar", url.Values{}, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/projects/p1/calendar?view=calendar" {
		t.Errorf("unexpected HX-Redirect %q", got)
	}
	if f.prefs.Load(context.Background(), testClientID).Hidden(preferences.HidePrep) {
		t.Error("expected prep toggle cleared")
	}
}

func TestHandler_GenerateHTMXRefreshes(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPost, "/projects/p1/calendar/generate", url.Values{}, true)
	if rec.Code != http.StatusNoContent || rec.Header().Get("HX-Refresh") != "true" {
		t.Errorf("expected 204 with HX-Refresh, got %d", rec.Code)
	}
}

func TestHandler_RefreshURLFollowsFilters(t *testing.T) {
	f := newHandlerFixture(t)

	tests := []struct {
		name   string
		method string
		target string
		form   url.Values
		htmx   bool
		want   string
	}{
		{"full page without filters", http.MethodGet, "/projects/p1/calendar?view=table", nil, false,
			`data-refresh="/projects/p1/calendar?view=table"`},
		{"htmx search", http.MethodGet, "/projects/p1/calendar?view=table&q=opening", nil, true,
			`data-refresh="/projects/p1/calendar?view=table&amp;q=opening"`},
		{"htmx toggle keeps search and location", http.MethodPost, "/projects/p1/filters/filter-weekends?view=table",
			url.Values{"hidden": {"true"}, "q": {"studio"}, "loc": {"Studio A"}}, true,
			`data-refresh="/projects/p1/calendar?view=table&amp;loc=Studio&#43;A&amp;q=studio"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.target, tt.form, tt.htmx)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("expected %s in response", tt.want)
			}
			if strings.Count(body, "data-refresh=") != 1 {
				t.Errorf("expected exactly one refresh URL, got %d", strings.Count(body, "data-refresh="))
			}
		})
	}
}
