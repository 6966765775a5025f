package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InQuietHours reports whether now falls inside the user's quiet-hours
// window. Both bounds must be set; otherwise quiet hours are off. The window
// is inclusive on both ends and may wrap midnight (start > end).
func InQuietHours(prefs *Preferences, now time.Time) bool {
	if prefs == nil || prefs.QuietHoursStart == nil || prefs.QuietHoursEnd == nil {
		return false
	}

	start, err := parseClock(*prefs.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(*prefs.QuietHoursEnd)
	if err != nil {
		return false
	}

	local := now
	if prefs.Timezone != "" {
		if loc, locErr := time.LoadLocation(prefs.Timezone); locErr == nil {
			local = now.In(loc)
		}
	}
	minutes := local.Hour()*60 + local.Minute()

	if start > end {
		// Window wraps midnight, e.g. 22:00-06:00.
		return minutes >= start || minutes <= end
	}
	return minutes >= start && minutes <= end
}

// parseClock converts a strict HH:MM string to minutes since midnight.
func parseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}

	return hour*60 + minute, nil
}
