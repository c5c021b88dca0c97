package backend

import (
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// DateLayout is the wire format for every calendar date.
const DateLayout = "2006-01-02"

// Project is the subset of the upstream project record the front-end shows.
type Project struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	PrepStartDate  string `json:"prepStartDate,omitempty"`
	ShootStartDate string `json:"shootStartDate,omitempty"`
	WrapDate       string `json:"wrapDate,omitempty"`
}

// Day is one calendar day as produced by the upstream generator. The
// backend owns numbering; this server only reads and edits fields.
type Day struct {
	Date             string   `json:"date"`
	DayOfWeek        string   `json:"dayOfWeek,omitempty"`
	MonthName        string   `json:"monthName,omitempty"`
	IsPrep           bool     `json:"isPrep"`
	IsShootDay       bool     `json:"isShootDay"`
	IsWeekend        bool     `json:"isWeekend"`
	IsHoliday        bool     `json:"isHoliday"`
	IsHiatus         bool     `json:"isHiatus"`
	IsWorkingWeekend bool     `json:"isWorkingWeekend"`
	DayType          string   `json:"dayType,omitempty"`
	ShootDay         *int     `json:"shootDay"`
	MainUnit         string   `json:"mainUnit"`
	SecondUnit       string   `json:"secondUnit"`
	Extras           FlexInt  `json:"extras"`
	FeaturedExtras   FlexInt  `json:"featuredExtras"`
	Location         string   `json:"location"`
	LocationArea     string   `json:"locationArea"`
	Sequence         string   `json:"sequence"`
	Departments      []string `json:"departments"`
	Notes            string   `json:"notes"`
}

// Time parses the day's date. The error is returned as-is so callers can
// decide whether a malformed record is fatal.
func (d Day) Time() (time.Time, error) {
	return time.Parse(DateLayout, d.Date)
}

// Calendar is the full generated calendar for a project.
type Calendar struct {
	ProjectID   string `json:"projectId"`
	Days        []Day  `json:"days"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// FindDay returns the day with the given date, or nil.
func (c *Calendar) FindDay(date string) *Day {
	for i := range c.Days {
		if c.Days[i].Date == date {
			return &c.Days[i]
		}
	}
	return nil
}

// FlexInt accepts JSON numbers and numeric strings. Older calendars store
// extras counts as form strings.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		var fl float64
		if ferr := sonic.Unmarshal(data, &fl); ferr != nil {
			return err
		}
		n = int(fl)
	}
	*f = FlexInt(n)
	return nil
}

// Kind identifies one of the special-date collections on a project.
type Kind string

const (
	KindWeekends     Kind = "weekends"
	KindHolidays     Kind = "holidays"
	KindHiatus       Kind = "hiatus"
	KindSpecialDates Kind = "special-dates"
)

// Kinds lists every special-date collection in display order.
var Kinds = []Kind{KindWeekends, KindHolidays, KindHiatus, KindSpecialDates}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindWeekends, KindHolidays, KindHiatus, KindSpecialDates:
		return true
	}
	return false
}

// SpecialDate is the union of the four special-date record shapes. Which
// fields are meaningful depends on the Kind it was read from.
type SpecialDate struct {
	ID          string `json:"id"`
	Date        string `json:"date,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	IsWorking   bool   `json:"isWorking"`
	IsShootDay  bool   `json:"isShootDay"`
}

// Location is a shooting location. AreaID links it to an Area.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	AreaID  string `json:"areaId,omitempty"`
}

// Area groups locations and carries the color used in the calendar.
type Area struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// Department is a crew department that can be flagged on a day.
type Department struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Version is a snapshot of a project's calendar.
type Version struct {
	ID                string     `json:"id"`
	VersionNumber     string     `json:"versionNumber"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty"`
	IsPublished       bool       `json:"isPublished"`
	IsLatestPublished bool       `json:"isLatestPublished"`
}

// CreateVersionRequest is the body for POST /versions.
type CreateVersionRequest struct {
	VersionNumber string `json:"versionNumber"`
	Notes         string `json:"notes"`
}

// AccessInfo is what crew need to open a published version.
type AccessInfo struct {
	AccessCode string `json:"access_code"`
	ShareURL   string `json:"share_url"`
}

// PublishResult is the response to POST /versions/:id/publish.
type PublishResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	AccessInfo *AccessInfo `json:"access_info,omitempty"`
}

// Workspace reports whether the project is editing a draft.
type Workspace struct {
	IsDraft bool `json:"isDraft"`
}

// MoveResult is the backend's response to a move-day request.
type MoveResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OriginalDay *Day   `json:"originalDay,omitempty"`
	TargetDay   *Day   `json:"targetDay,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// errorEnvelope is the backend's error body.
type errorEnvelope struct {
	Error string `json:"error"`
}
