package moves

import (
	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
)

// CheckMove runs the advisory checks against a loaded calendar. Only shoot
// days may move, and only onto a working date. The backend repeats these
// checks; running them here saves a round trip for the common mistakes.
func CheckMove(cal *backend.Calendar, from, to string) error {
	source := cal.FindDay(from)
	target := cal.FindDay(to)
	if source == nil || target == nil {
		return apperror.NewNotFound(msgDayNotFound)
	}
	if !source.IsShootDay {
		return apperror.NewBadRequest(msgNotShootDay)
	}
	if !Droppable(*target) {
		return apperror.NewBadRequest(msgNonWorkingDay)
	}
	return nil
}

// Droppable reports whether a shoot day may be moved onto d. Views use it
// to mark drop targets. Every holiday is rejected, including one already
// carrying a shoot day: day records do not say whether the holiday is
// working, and the backend refuses such moves.
func Droppable(d backend.Day) bool {
	switch {
	case d.IsHiatus:
		return false
	case d.IsHoliday:
		return false
	case d.IsWeekend && !d.IsWorkingWeekend:
		return false
	}
	return true
}
