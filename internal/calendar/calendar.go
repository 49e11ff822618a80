// Package calendar builds business-day date sequences.
package calendar

import (
	"fmt"
	"time"

	"MarketSim/internal/model"
)

// IsBusinessDay reports whether t falls on Monday through Friday.
// Public holidays are not considered.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Generate returns numDays business days in ascending order, starting from
// anchor minus 2*numDays calendar days. The lookback always leaves the last
// date at or before the anchor. Dates are normalized to midnight in the
// anchor's location.
func Generate(numDays int, anchor time.Time) (model.DateSequence, error) {
	if numDays < 1 {
		return nil, fmt.Errorf("%w: number of days must be >= 1, got %d", model.ErrInvalidParameter, numDays)
	}

	y, m, d := anchor.Date()
	day := time.Date(y, m, d-2*numDays, 0, 0, 0, 0, anchor.Location())

	dates := make(model.DateSequence, 0, numDays)
	for len(dates) < numDays {
		if IsBusinessDay(day) {
			dates = append(dates, day)
		}
		day = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, day.Location())
	}
	return dates, nil
}
