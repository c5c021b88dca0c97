// Package projects resolves the project a request is about and carries
// the per-request calendar state every other plugin reads.
package projects

import (
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/plugins/filters"
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
)

// Context is the explicit state for one request against a project. It is
// built once by RequireProject; handlers never look anywhere else for the
// selected project, view mode or prefs.
type Context struct {
	Project  *backend.Project
	ClientID string
	Prefs    preferences.Prefs
	View     filters.View
}

// ProjectID is a nil-safe shortcut.
func (pc *Context) ProjectID() string {
	if pc == nil || pc.Project == nil {
		return ""
	}
	return pc.Project.ID
}

// FilterState builds the persisted filter state for the current view.
func (pc *Context) FilterState() filters.State {
	return filters.StateFromPrefs(pc.Prefs, pc.View)
}
