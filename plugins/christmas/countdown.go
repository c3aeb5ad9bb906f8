package christmas

import (
	"strconv"
	"time"
)

// CountdownState is derived from the calendar date on every update.
type CountdownState struct {
	DaysRemaining int
	Merry         bool
}

// Countdown computes the state for the calendar date of today (in today's location).
//
// Dates before Dec 25 count down to Dec 25 of the same year; Dec 25 through
// Dec 31 are the "Merry" window. Jan 1 starts counting toward the new year's
// Dec 25.
func Countdown(today time.Time) CountdownState {
	y, m, d := today.Date()
	if m == time.December && d >= 25 {
		return CountdownState{Merry: true}
	}
	// UTC midnights keep DST transitions out of the day count.
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := time.Date(y, time.December, 25, 0, 0, 0, 0, time.UTC)
	return CountdownState{DaysRemaining: int(to.Sub(from) / (24 * time.Hour))}
}

// narrowWidth is the canvas width below which "CHRISTMAS" is shortened to "XMAS".
const narrowWidth = 64

// SelectText returns the message shown for state on a canvas of the given width.
func SelectText(state CountdownState, width int) string {
	if state.Merry {
		return "MERRY CHRISTMAS"
	}
	word := "CHRISTMAS"
	if width < narrowWidth {
		word = "XMAS"
	}
	return strconv.Itoa(state.DaysRemaining) + " DAYS UNTIL " + word
}
