package calendar

import (
	"log/slog"
	"sort"
	"time"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

// BuildMonthGrid lays out one month Monday-first. Leading cells run back
// to the Monday on or before the 1st, trailing cells forward to the
// Sunday on or after the last day, so len(Cells) is always a multiple of 7.
// Days whose date does not parse are logged and skipped.
func BuildMonthGrid(days []backend.Day, year int, month time.Month) MonthGrid {
	byDate := indexDays(days)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
	end := last.AddDate(0, 0, 6-mondayOffset(last.Weekday()))

	grid := MonthGrid{MonthKey: MonthKey{Year: year, Month: month}}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		cell := Cell{Date: d, InMonth: d.Month() == month}
		if cell.InMonth {
			if day, ok := byDate[d.Format(backend.DateLayout)]; ok {
				cell.Day = day
			} else {
				cell.Placeholder = true
			}
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid
}

// GroupByMonth returns the distinct months present in days, oldest first.
func GroupByMonth(days []backend.Day) []MonthKey {
	seen := make(map[MonthKey]bool)
	var keys []MonthKey
	for _, d := range days {
		t, err := d.Time()
		if err != nil {
			continue
		}
		k := MonthKey{Year: t.Year(), Month: t.Month()}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})
	return keys
}

// BuildCalendar builds one grid per month present in days.
func BuildCalendar(days []backend.Day) []MonthGrid {
	keys := GroupByMonth(days)
	grids := make([]MonthGrid, 0, len(keys))
	for _, k := range keys {
		grids = append(grids, BuildMonthGrid(days, k.Year, k.Month))
	}
	return grids
}

// indexDays maps valid dates to their day, logging malformed records.
func indexDays(days []backend.Day) map[string]*backend.Day {
	out := make(map[string]*backend.Day, len(days))
	for i := range days {
		t, err := days[i].Time()
		if err != nil {
			slog.Warn("skipping day with malformed date",
				slog.String("date", days[i].Date),
				slog.Any("error", err),
			)
			continue
		}
		out[t.Format(backend.DateLayout)] = &days[i]
	}
	return out
}

// mondayOffset returns how many days wd is after Monday (Mon=0 .. Sun=6).
func mondayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
