package pcp

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// monthDays are the days per month of a common year.
var monthDays = [12]float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// isLeap returns whether the provided year is a Gregorian leap year.
func isLeap(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// MJD2000ToDate returns the calendar date reached after the provided number of days from 2000-01-01. The
// calendar is walked forward one month at a time, and any fraction of a day is kept in the returned day.
func MJD2000ToDate(value float64) (year, month int, day float64, err error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		err = fmt.Errorf("%w: %f", ErrNonFiniteEpoch, value)
		return
	}
	if value < 0 {
		err = fmt.Errorf("%w: %f", ErrNegativeEpoch, value)
		return
	}
	year, month, day = 2000, 1, 1
	remaining := value
	for remaining > 0 {
		days := monthDays[month-1]
		if month == 2 && isLeap(year) {
			days = 29
		}
		if remaining < days {
			day += remaining
			break
		}
		remaining -= days
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return
}

// MJD2000ToTime converts an MJD2000 epoch to a UTC time.
func MJD2000ToTime(value float64) time.Time {
	return julian.JDToTime(value + MJD2000Offset).UTC()
}

// TimeToMJD2000 converts a time to an MJD2000 epoch.
func TimeToMJD2000(dt time.Time) float64 {
	return julian.TimeToJD(dt) - MJD2000Offset
}
