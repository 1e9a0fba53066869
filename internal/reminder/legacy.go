package reminder

import (
	"strconv"
	"strings"
	"time"
)

// legacyEpochFloor separates real epoch-second values from the historical
// encoding that stored snooze expiry as minutes since midnight. Values below
// the floor cannot be a plausible epoch and are migrated; this heuristic
// exists only to read old data — new writes are always absolute timestamps.
const legacyEpochFloor = 100000

// ParseSnoozeUntil reads a persisted REMINDER_SNOOZE_UNTIL cell. It accepts
// epoch seconds, RFC 3339 / ISO timestamps, and the legacy minutes-since-
// midnight integers, which are anchored to the current day.
func ParseSnoozeUntil(raw string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return time.Time{}, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < legacyEpochFloor {
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return midnight.Add(time.Duration(n) * time.Minute), true
		}
		return time.Unix(n, 0), true
	}

	// Tolerate float-formatted epochs from spreadsheet round trips.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int64(f)
		if n < legacyEpochFloor {
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return midnight.Add(time.Duration(n) * time.Minute), true
		}
		return time.Unix(n, 0), true
	}

	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatSnoozeUntil renders the wire value for REMINDER_SNOOZE_UNTIL: epoch
// seconds, unambiguous across restarts and store backends.
func FormatSnoozeUntil(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}
