package services

import (
	"fmt"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
)

const clockLayout = "15:04"

// periodBounds anchors a period to a calendar date. A period whose end is
// at or before its start crosses midnight and extends into the next day;
// end exactly equal to start is a zero-width period and yields ok=false.
func periodBounds(period models.Period, date time.Time) (start, end time.Time, ok bool, err error) {
	startClock, err := time.Parse(clockLayout, period.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid period start %q: %w", period.Start, err)
	}
	endClock, err := time.Parse(clockLayout, period.End)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid period end %q: %w", period.End, err)
	}

	if startClock.Equal(endClock) {
		return time.Time{}, time.Time{}, false, nil
	}

	start = time.Date(date.Year(), date.Month(), date.Day(),
		startClock.Hour(), startClock.Minute(), 0, 0, date.Location())
	end = time.Date(date.Year(), date.Month(), date.Day(),
		endClock.Hour(), endClock.Minute(), 0, 0, date.Location())

	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true, nil
}

// PeriodOverlapHours returns how many hours of [sessionStart, sessionEnd)
// fall inside the given period anchored to date. The afternoon and night
// periods are evaluated independently; a session may overlap both, one,
// or neither.
func PeriodOverlapHours(sessionStart, sessionEnd time.Time, period models.Period, date time.Time) (float64, error) {
	periodStart, periodEnd, ok, err := periodBounds(period, date)
	if err != nil || !ok {
		return 0, err
	}

	overlapStart := sessionStart
	if periodStart.After(overlapStart) {
		overlapStart = periodStart
	}
	overlapEnd := sessionEnd
	if periodEnd.Before(overlapEnd) {
		overlapEnd = periodEnd
	}

	if overlapStart.Before(overlapEnd) {
		return overlapEnd.Sub(overlapStart).Hours(), nil
	}
	return 0, nil
}

// ValidatePeriod reports whether a period's clock strings parse.
func ValidatePeriod(period models.Period) error {
	_, _, _, err := periodBounds(period, time.Now())
	return err
}
