package timeline

import "time"

// DayIndex converts an event timestamp into a protocol-relative day number.
// The anchor's calendar date is day 1 and boundaries are calendar-date based:
// 23:59 on day 1 and 00:01 on day 2 are one day apart. Events dated before
// the anchor produce day <= 0 and are never clamped — callers use them to
// flag pre-admission exclusions.
func DayIndex(anchor, ts time.Time) int {
	a := midnightUTC(anchor)
	e := midnightUTC(ts)
	return int(e.Sub(a).Hours()/24) + 1
}

func midnightUTC(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EpisodeWindow is an anchor instant plus a protocol-defined radius. Windows
// are computed on demand from anchor events and never persisted.
type EpisodeWindow struct {
	Anchor time.Time
	Radius time.Duration
}

// WindowAround builds a window centered on an anchor event.
func WindowAround(anchor time.Time, radius time.Duration) EpisodeWindow {
	return EpisodeWindow{Anchor: anchor, Radius: radius}
}

// Start returns the inclusive lower bound of the window.
func (w EpisodeWindow) Start() time.Time { return w.Anchor.Add(-w.Radius) }

// End returns the inclusive upper bound of the window.
func (w EpisodeWindow) End() time.Time { return w.Anchor.Add(w.Radius) }

// Contains reports whether ts falls inside the window, bounds inclusive.
func (w EpisodeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start()) && !ts.After(w.End())
}

// WithinDays reports whether two timestamps fall within radiusDays calendar
// days of each other. Day-radius windows (the sepsis +/-1 day rule) are
// calendar based, unlike the duration windows above.
func WithinDays(a, b time.Time, radiusDays int) bool {
	d := DayIndex(a, b) - 1
	if d < 0 {
		d = -d
	}
	return d <= radiusDays
}
