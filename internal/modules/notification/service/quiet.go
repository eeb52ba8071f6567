package service

import "time"

// inQuietWindow reports whether now falls inside a "HH:MM"-"HH:MM" quiet
// window. Windows may wrap past midnight (e.g. 22:00-06:00). An empty or
// malformed bound disables the window.
func inQuietWindow(now time.Time, start, end string) bool {
	startMin, okStart := parseClock(start)
	endMin, okEnd := parseClock(end)
	if !okStart || !okEnd || startMin == endMin {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()

	if startMin < endMin {
		return nowMin >= startMin && nowMin < endMin
	}
	// Overnight window.
	return nowMin >= startMin || nowMin < endMin
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
