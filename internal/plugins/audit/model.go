// Package audit records calendar mutations made through this server. Every
// move, day edit, version and special-date change is captured as an Entry
// and persisted to the audit_log table. The activity feed shows a project
// who changed what and when.
//
// Recording is observational: a failed write is logged and never fails the
// operation being recorded.
package audit

import "time"

// --- Action Constants ---
// Each action string follows the pattern "resource.verb" for consistent
// filtering and display grouping.

const (
	// ActionDayMoved is logged when a shoot day is swapped to another date.
	ActionDayMoved = "day.moved"

	// ActionDayUpdated is logged when a day's fields are edited.
	ActionDayUpdated = "day.updated"

	// ActionVersionCreated is logged when a calendar snapshot is taken.
	ActionVersionCreated = "version.created"

	// ActionVersionPublished is logged when a version is shared with crew.
	ActionVersionPublished = "version.published"

	ActionSpecialDateCreated = "special_date.created"
	ActionSpecialDateUpdated = "special_date.updated"
	ActionSpecialDateDeleted = "special_date.deleted"

	// ActionCalendarGenerated is logged when the calendar is regenerated
	// on request (not when a mutation regenerates it implicitly).
	ActionCalendarGenerated = "calendar.generated"

	// ActionProjectMigrated is logged when a project moves to versioning.
	ActionProjectMigrated = "project.migrated"
)

// Entry represents a single recorded action in the audit log. Target is
// the thing acted on: a date, a version id or "<kind>/<id>".
type Entry struct {
	ID        int64          `json:"id"`
	ProjectID string         `json:"projectId"`
	ClientID  string         `json:"clientId"`
	Action    string         `json:"action"`
	Target    string         `json:"target,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RemoteIP  string         `json:"remoteIp,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Stats holds aggregate activity for a project, shown above the feed.
type Stats struct {
	TotalEntries int64 `json:"totalEntries"`

	// LastActivityAt is nil if the project has no activity yet.
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`

	// ActiveClients counts distinct browsers that changed something in
	// the last 30 days.
	ActiveClients int `json:"activeClients"`
}

// ActivityPage is the view model for the activity feed.
type ActivityPage struct {
	ProjectID string
	Title     string
	Entries   []Entry
	Stats     *Stats
	Page      int
	PerPage   int
	Total     int
}

// HasPrev reports whether a previous page exists.
func (p ActivityPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a further page exists.
func (p ActivityPage) HasNext() bool { return p.Page*p.PerPage < p.Total }

// PrevPage and NextPage are for pagination links.
func (p ActivityPage) PrevPage() int { return p.Page - 1 }
func (p ActivityPage) NextPage() int { return p.Page + 1 }
