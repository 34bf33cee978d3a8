package domain

import "time"

// Window is the notification window derived from a single reference instant.
// Both bounds are inclusive: a secret expiring exactly at End is still due
// for a notification, and one expiring exactly at Start (i.e. right now)
// has not yet expired.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window [now, now + horizonDays].
// Horizon arithmetic is calendar-day based so DST transitions do not
// shift the boundary by an hour.
func NewWindow(now time.Time, horizonDays int) Window {
	return Window{Start: now, End: now.AddDate(0, 0, horizonDays)}
}

// Contains reports whether expiry falls inside the window.
// Already-expired secrets (expiry before Start) are never in the window.
func (w Window) Contains(expiry time.Time) bool {
	return !expiry.Before(w.Start) && !expiry.After(w.End)
}

// InWindow reports whether expiry lies within horizonDays of now.
func InWindow(expiry, now time.Time, horizonDays int) bool {
	return NewWindow(now, horizonDays).Contains(expiry)
}

// DaysUntil returns the number of whole or partial days between now and
// expiry, rounding up. A secret expiring later today yields 1, one that
// expired in the past yields zero or a negative count.
func DaysUntil(expiry, now time.Time) int {
	d := expiry.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
