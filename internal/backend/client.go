// Package backend is the HTTP client for the upstream calendar REST API.
// The backend owns all calendar data and rules; this package only moves
// requests and responses across the wire and maps failures to AppErrors.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/config"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// API is the contract the plugins depend on. Tests substitute hand-written
// mocks; production uses *Client.
type API interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, projectID string) (*Project, error)

	GetCalendar(ctx context.Context, projectID string) (*Calendar, error)
	GenerateCalendar(ctx context.Context, projectID string) error
	GetDay(ctx context.Context, projectID, date string) (*Day, error)
	UpdateDay(ctx context.Context, projectID, date string, day *Day) (*Day, error)
	MoveDay(ctx context.Context, projectID string, body any) (*MoveResult, error)

	ListSpecialDates(ctx context.Context, projectID string, kind Kind) ([]SpecialDate, error)
	GetSpecialDate(ctx context.Context, projectID string, kind Kind, id string) (*SpecialDate, error)
	CreateSpecialDate(ctx context.Context, projectID string, kind Kind, sd *SpecialDate) (*SpecialDate, error)
	UpdateSpecialDate(ctx context.Context, projectID string, kind Kind, sd *SpecialDate) (*SpecialDate, error)
	DeleteSpecialDate(ctx context.Context, projectID string, kind Kind, id string) error

	Locations(ctx context.Context) ([]Location, error)
	Area(ctx context.Context, areaID string) (*Area, error)
	Departments(ctx context.Context) ([]Department, error)

	ListVersions(ctx context.Context, projectID string) ([]Version, error)
	CreateVersion(ctx context.Context, projectID string, req CreateVersionRequest) (*Version, error)
	PublishVersion(ctx context.Context, projectID, versionID string) (*PublishResult, error)
	Workspace(ctx context.Context, projectID string) (*Workspace, error)
	MigrateToVersioned(ctx context.Context, projectID string) error
}

// Client implements API over HTTP.
type Client struct {
	baseURL       string
	sessionCookie string
	timeout       time.Duration
	http          *http.Client
}

// NewClient creates a backend client from config.
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:       cfg.URL,
		sessionCookie: cfg.SessionCookie,
		timeout:       cfg.Timeout,
		http:          &http.Client{},
	}
}

// --- Projects & calendar ---

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, ""), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetCalendar(ctx context.Context, projectID string) (*Calendar, error) {
	var cal Calendar
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "/calendar"), nil, &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

func (c *Client) GenerateCalendar(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodPost, projectPath(projectID, "/calendar/generate"), nil, nil)
}

func (c *Client) GetDay(ctx context.Context, projectID, date string) (*Day, error) {
	var d Day
	path := projectPath(projectID, "/calendar/day/"+url.PathEscape(date))
	if err := c.do(ctx, http.MethodGet, path, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) UpdateDay(ctx context.Context, projectID, date string, day *Day) (*Day, error) {
	var d Day
	path := projectPath(projectID, "/calendar/day/"+url.PathEscape(date))
	if err := c.do(ctx, http.MethodPut, path, day, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// MoveDay posts a move request. The body shape is chosen by the caller
// because deployments disagree on it.
func (c *Client) MoveDay(ctx context.Context, projectID string, body any) (*MoveResult, error) {
	var res MoveResult
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "/calendar/move-day"), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Special dates ---

func (c *Client) ListSpecialDates(ctx context.Context, projectID string, kind Kind) ([]SpecialDate, error) {
	var out []SpecialDate
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "/"+string(kind)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSpecialDate(ctx context.Context, projectID string, kind Kind, id string) (*SpecialDate, error) {
	var sd SpecialDate
	if err := c.do(ctx, http.MethodGet, specialDatePath(projectID, kind, id), nil, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (c *Client) CreateSpecialDate(ctx context.Context, projectID string, kind Kind, sd *SpecialDate) (*SpecialDate, error) {
	var out SpecialDate
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "/"+string(kind)), sd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSpecialDate(ctx context.Context, projectID string, kind Kind, sd *SpecialDate) (*SpecialDate, error) {
	var out SpecialDate
	if err := c.do(ctx, http.MethodPut, specialDatePath(projectID, kind, sd.ID), sd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSpecialDate(ctx context.Context, projectID string, kind Kind, id string) error {
	return c.do(ctx, http.MethodDelete, specialDatePath(projectID, kind, id), nil, nil)
}

// --- Reference data ---

func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	var out []Location
	if err := c.do(ctx, http.MethodGet, "/api/locations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Area(ctx context.Context, areaID string) (*Area, error) {
	var a Area
	if err := c.do(ctx, http.MethodGet, "/api/areas/"+url.PathEscape(areaID), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	var out []Department
	if err := c.do(ctx, http.MethodGet, "/api/departments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Versions ---

func (c *Client) ListVersions(ctx context.Context, projectID string) ([]Version, error) {
	var out []Version
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "/versions"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateVersion(ctx context.Context, projectID string, req CreateVersionRequest) (*Version, error) {
	var v Version
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "/versions"), req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) PublishVersion(ctx context.Context, projectID, versionID string) (*PublishResult, error) {
	var res PublishResult
	path := projectPath(projectID, "/versions/"+url.PathEscape(versionID)+"/publish")
	if err := c.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Workspace(ctx context.Context, projectID string) (*Workspace, error) {
	var w Workspace
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "/workspace"), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) MigrateToVersioned(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodPost, projectPath(projectID, "/migrate-to-versioned"), nil, nil)
}

// --- Transport ---

// do performs one upstream request. Non-2xx responses are decoded as the
// backend's {"error": msg} envelope and returned as an Upstream AppError.
// There is no retry: a failed call is reported to the user as-is.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encoding %s %s body: %w", method, path, err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("building %s %s: %w", method, path, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	sess := SessionFrom(ctx)
	requestID := sess.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	if sess.Cookie != "" && c.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: c.sessionCookie, Value: sess.Cookie})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return apperror.NewUpstream(0, "", fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	slog.Debug("backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var env errorEnvelope
		_ = sonic.Unmarshal(raw, &env)
		return apperror.NewUpstream(resp.StatusCode, env.Error,
			fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewUpstream(0, "", fmt.Errorf("reading %s %s: %w", method, path, err))
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return apperror.NewUpstream(0, "", fmt.Errorf("decoding %s %s: %w", method, path, err))
	}
	return nil
}

func projectPath(projectID, suffix string) string {
	return "/api/projects/" + url.PathEscape(projectID) + suffix
}

func specialDatePath(projectID string, kind Kind, id string) string {
	return projectPath(projectID, "/"+string(kind)+"/"+url.PathEscape(id))
}
