// data.go provides typed context helpers for passing layout data from
// handlers/middleware to the views. Only simple types are stored so the
// layouts package never imports plugin types.
//
// Data flow: Handler/Middleware → Echo Context → LayoutInjector → Go Context → views
package layouts

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyProjectID    ctxKey = "layout_project_id"
	keyProjectTitle ctxKey = "layout_project_title"
	keyView         ctxKey = "layout_view"
	keyTheme        ctxKey = "layout_theme"
	keyCSRFToken    ctxKey = "layout_csrf_token"
	keyFlashSuccess ctxKey = "layout_flash_success"
	keyFlashError   ctxKey = "layout_flash_error"
	keyActivePath   ctxKey = "layout_active_path"
)

// Layout is the chrome data every page template can read as .Layout.
type Layout struct {
	ProjectID    string
	ProjectTitle string
	View         string
	Theme        string
	CSRFToken    string
	FlashSuccess string
	FlashError   string
	ActivePath   string
}

// InProject reports whether the page belongs to a project.
func (l Layout) InProject() bool { return l.ProjectID != "" }

// FromContext collects everything the injector stored.
func FromContext(ctx context.Context) Layout {
	theme := GetTheme(ctx)
	if theme == "" {
		theme = "dark"
	}
	return Layout{
		ProjectID:    GetProjectID(ctx),
		ProjectTitle: GetProjectTitle(ctx),
		View:         GetView(ctx),
		Theme:        theme,
		CSRFToken:    GetCSRFToken(ctx),
		FlashSuccess: GetFlashSuccess(ctx),
		FlashError:   GetFlashError(ctx),
		ActivePath:   GetActivePath(ctx),
	}
}

// --- Setters (called by the layout injector in app/routes.go) ---

// SetProjectID stores the current project's ID in context.
func SetProjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyProjectID, id)
}

// SetProjectTitle stores the current project's display title in context.
func SetProjectTitle(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, keyProjectTitle, title)
}

// SetView stores the calendar view mode so nav links keep it.
func SetView(ctx context.Context, view string) context.Context {
	return context.WithValue(ctx, keyView, view)
}

// SetTheme stores the client's colour theme.
func SetTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, keyTheme, theme)
}

// SetCSRFToken stores the CSRF token for forms.
func SetCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyCSRFToken, token)
}

// SetFlashSuccess stores a success flash message for the current render.
func SetFlashSuccess(ctx context.Context, msg string) context.Context {
	return context.WithValue(ctx, keyFlashSuccess, msg)
}

// SetFlashError stores an error flash message for the current render.
func SetFlashError(ctx context.Context, msg string) context.Context {
	return context.WithValue(ctx, keyFlashError, msg)
}

// SetActivePath stores the current request path for nav highlighting.
func SetActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyActivePath, path)
}

// --- Getters ---

// GetProjectID returns the current project ID, or "" outside a project.
func GetProjectID(ctx context.Context) string {
	id, _ := ctx.Value(keyProjectID).(string)
	return id
}

// GetProjectTitle returns the current project title, or "".
func GetProjectTitle(ctx context.Context) string {
	title, _ := ctx.Value(keyProjectTitle).(string)
	return title
}

// GetView returns the calendar view mode, or "".
func GetView(ctx context.Context) string {
	view, _ := ctx.Value(keyView).(string)
	return view
}

// GetTheme returns the client's theme, or "".
func GetTheme(ctx context.Context) string {
	theme, _ := ctx.Value(keyTheme).(string)
	return theme
}

// GetCSRFToken returns the CSRF token, or "".
func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(keyCSRFToken).(string)
	return token
}

// GetFlashSuccess returns a success flash message, or "".
func GetFlashSuccess(ctx context.Context) string {
	msg, _ := ctx.Value(keyFlashSuccess).(string)
	return msg
}

// GetFlashError returns an error flash message, or "".
func GetFlashError(ctx context.Context) string {
	msg, _ := ctx.Value(keyFlashError).(string)
	return msg
}

// GetActivePath returns the current request path for nav highlighting.
func GetActivePath(ctx context.Context) string {
	path, _ := ctx.Value(keyActivePath).(string)
	return path
}
