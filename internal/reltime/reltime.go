// Package reltime renders the delta between two instants as a French
// relative-time phrase ("maintenant", "dans 20 minutes", "hier",
// "après-demain", "il y a 5 jours", ...).
package reltime

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// Format returns the French phrase describing to relative to from.
// Both instants are interpreted in their own locations; no time-zone
// conversion is performed.
//
// Below one minute the phrase is "maintenant"; below two hours it is
// a signed minutes phrase. Beyond that the phrase counts calendar
// days as midnights crossed, not 24-hour periods: the truncated day
// difference is corrected by one whenever the two times of day
// straddle a midnight the truncation missed.
func Format(from, to time.Time) string {
	diff := to.Sub(from)
	abs := diff
	if abs < 0 {
		abs = -abs
	}

	if abs < time.Minute {
		return "maintenant"
	}
	if abs < 2*time.Hour {
		return signedCount(roundUnits(diff, time.Minute), "minute")
	}

	diffDays := int(diff / day)
	fromTOD := sinceMidnight(from)
	toTOD := sinceMidnight(to)
	if diff > 0 && toTOD < fromTOD {
		diffDays++
	}
	if diff < 0 && fromTOD < toTOD {
		diffDays--
	}

	switch diffDays {
	case 0:
		return signedCount(roundUnits(diff, time.Hour), "heure")
	case -2:
		return "avant-hier"
	case -1:
		return "hier"
	case 1:
		return "demain"
	case 2:
		return "après-demain"
	default:
		return signedCount(diffDays, "jour")
	}
}

// roundUnits rounds the duration to the nearest whole count of unit.
func roundUnits(d, unit time.Duration) int {
	return int(math.Round(float64(d) / float64(unit)))
}

// signedCount renders "dans N <unit>(s)" for the future and
// "il y a N <unit>(s)" for the past, pluralizing above one.
func signedCount(n int, unit string) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if abs > 1 {
		unit += "s"
	}
	if n < 0 {
		return fmt.Sprintf("il y a %d %s", abs, unit)
	}
	return fmt.Sprintf("dans %d %s", abs, unit)
}

// sinceMidnight returns the elapsed time since local midnight of t's
// calendar day.
func sinceMidnight(t time.Time) time.Duration {
	year, month, dayOfMonth := t.Date()
	midnight := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, t.Location())
	return t.Sub(midnight)
}
