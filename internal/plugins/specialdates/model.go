// Package specialdates edits the four date collections that shape a
// generated calendar: weekends worked or skipped, holidays, hiatus
// periods and other special dates. Every change regenerates the calendar.
package specialdates

import (
	"github.com/google/uuid"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/sanitize"
	"github.com/keyxmakerx/shootcal/internal/validate"
)

// Types lists the allowed special-date types in display order.
var Types = []string{"travel", "meeting", "rehearsal", "other"}

// Labels maps kinds to section headings.
var Labels = map[backend.Kind]string{
	backend.KindWeekends:     "Weekends",
	backend.KindHolidays:     "Holidays",
	backend.KindHiatus:       "Hiatus",
	backend.KindSpecialDates: "Special dates",
}

// Input is the union form for every kind. Which fields are read depends
// on the kind being saved.
type Input struct {
	ID          string `json:"id" form:"id"`
	Date        string `json:"date" form:"date"`
	StartDate   string `json:"startDate" form:"startDate"`
	EndDate     string `json:"endDate" form:"endDate"`
	Name        string `json:"name" form:"name"`
	Type        string `json:"type" form:"type"`
	Description string `json:"description" form:"description"`
	IsWorking   bool   `json:"isWorking" form:"isWorking"`
	IsShootDay  bool   `json:"isShootDay" form:"isShootDay"`
}

type weekendInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=500"`
}

type holidayInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,max=100"`
}

type hiatusInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=500"`
}

type specialInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Name        string `json:"name" validate:"required,max=100"`
	Type        string `json:"type" validate:"required,oneof=travel meeting rehearsal other"`
	Description string `json:"description" validate:"max=500"`
}

// Record validates in for kind and returns the record to send upstream.
// Text is sanitized and a missing id is generated.
func (in Input) Record(kind backend.Kind) (*backend.SpecialDate, error) {
	name := sanitize.Line(in.Name)
	desc := sanitize.Text(in.Description)

	sd := &backend.SpecialDate{ID: in.ID}
	switch kind {
	case backend.KindWeekends:
		if err := validate.Struct(weekendInput{Date: in.Date, Description: desc}); err != nil {
			return nil, err
		}
		sd.Date, sd.Description, sd.IsShootDay = in.Date, desc, in.IsShootDay

	case backend.KindHolidays:
		if err := validate.Struct(holidayInput{Date: in.Date, Name: name}); err != nil {
			return nil, err
		}
		// A holiday can only be shot on if it is worked.
		sd.Date, sd.Name = in.Date, name
		sd.IsShootDay = in.IsShootDay
		sd.IsWorking = in.IsWorking || in.IsShootDay

	case backend.KindHiatus:
		if err := validate.Struct(hiatusInput{Name: name, StartDate: in.StartDate, EndDate: in.EndDate, Description: desc}); err != nil {
			return nil, err
		}
		// YYYY-MM-DD compares correctly as a string.
		if in.StartDate > in.EndDate {
			return nil, apperror.NewValidation("startDate must not be after endDate")
		}
		sd.Name, sd.StartDate, sd.EndDate, sd.Description = name, in.StartDate, in.EndDate, desc

	case backend.KindSpecialDates:
		if err := validate.Struct(specialInput{Date: in.Date, Name: name, Type: in.Type, Description: desc}); err != nil {
			return nil, err
		}
		sd.Date, sd.Name, sd.Type, sd.Description, sd.IsWorking = in.Date, name, in.Type, desc, in.IsWorking

	default:
		return nil, apperror.NewNotFound("unknown date collection")
	}

	if sd.ID == "" {
		sd.ID = uuid.NewString()
	}
	return sd, nil
}

// Group is one kind's records for display.
type Group struct {
	Kind  backend.Kind
	Label string
	Items []backend.SpecialDate
}

// Page is the view model for the special dates page.
type Page struct {
	ProjectID string
	Title     string
	Groups    []Group
	Types     []string
}

// Blank is the empty record the create forms start from.
func (Page) Blank() backend.SpecialDate { return backend.SpecialDate{} }
