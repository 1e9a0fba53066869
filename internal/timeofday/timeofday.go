package timeofday

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision, independent of date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func New(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// FromMinutes converts minutes-since-midnight back to a TimeOfDay.
// Values outside one day wrap around.
func FromMinutes(m int) TimeOfDay {
	m = ((m % 1440) + 1440) % 1440
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns minutes since midnight in [0, 1440).
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String renders the 24-hour wire format used by the schedule columns.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// String12 renders a 12-hour display format like "02:15 PM".
func (t TimeOfDay) String12() string {
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h, t.Minute, suffix)
}

// placeholders that mean "no time" rather than a parse error.
func isPlaceholder(s string) bool {
	switch strings.ToUpper(s) {
	case "", "N/A", "NAT", "NONE", "NAN":
		return true
	}
	return false
}

// Parse coerces the many time representations found in schedule data into a
// TimeOfDay. It accepts HH:MM, HH:MM:SS, HH.MM, 12-hour strings like
// "9:30 PM", fraction-of-day serials in [0,1], and hours.minutes decimals
// like 9.30. Placeholder tokens and anything unparseable report ok=false.
func Parse(value string) (TimeOfDay, bool) {
	s := strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
	if isPlaceholder(s) {
		return TimeOfDay{}, false
	}

	if t, ok := parse12Hour(s); ok {
		return t, true
	}

	if strings.Contains(s, ":") {
		if t, ok := parseColon(s); ok {
			return t, true
		}
	}

	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		if len(parts) == 2 {
			h, errH := strconv.Atoi(parts[0])
			m, errM := strconv.Atoi(parts[1])
			if errH == nil && errM == nil && h >= 0 && h < 24 && m >= 0 && m < 60 {
				return TimeOfDay{Hour: h, Minute: m}, true
			}
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return ParseFloat(f)
	}

	return TimeOfDay{}, false
}

// ParseFloat interprets a numeric cell value. Values in [0,1] are
// fraction-of-day serials (0.625 = 15:00). Values in [0,24) are read as
// hours.minutes where the decimal digits are literal minutes (9.30 = 09:30);
// when that reading yields an invalid minute the fractional part is
// reinterpreted as a fraction of an hour instead.
func ParseFloat(f float64) (TimeOfDay, bool) {
	if f >= 0 && f <= 1 {
		total := int(math.Round(f*1440)) % 1440
		return TimeOfDay{Hour: total / 60, Minute: total % 60}, true
	}
	if f >= 0 && f < 24 {
		hours := int(f)
		frac := f - float64(hours)
		minutes := int(math.Round(frac * 100))
		if minutes > 59 {
			minutes = int(math.Round(frac * 60))
		}
		if minutes >= 60 {
			hours = (hours + 1) % 24
			minutes = 0
		}
		if hours >= 0 && hours < 24 && minutes >= 0 && minutes < 60 {
			return TimeOfDay{Hour: hours, Minute: minutes}, true
		}
	}
	return TimeOfDay{}, false
}

func parse12Hour(s string) (TimeOfDay, bool) {
	upper := strings.ToUpper(s)
	var suffix string
	switch {
	case strings.HasSuffix(upper, "AM"):
		suffix = "AM"
	case strings.HasSuffix(upper, "PM"):
		suffix = "PM"
	default:
		return TimeOfDay{}, false
	}

	body := strings.TrimSpace(upper[:len(upper)-2])
	for _, layout := range []string{"3:04", "3:04:05"} {
		if parsed, err := time.Parse(layout+" PM", body+" "+suffix); err == nil {
			return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, true
		}
	}
	return TimeOfDay{}, false
}

func parseColon(s string) (TimeOfDay, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return TimeOfDay{}, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeOfDay{}, false
	}
	// Tolerate trailing junk after the minutes, e.g. "09:30:00".
	minDigits := strings.TrimSpace(parts[1])
	for i, r := range minDigits {
		if r < '0' || r > '9' {
			minDigits = minDigits[:i]
			break
		}
	}
	m, err := strconv.Atoi(minDigits)
	if err != nil {
		return TimeOfDay{}, false
	}
	if h < 0 || h >= 24 || m < 0 || m >= 60 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: h, Minute: m}, true
}

// Render formats a raw cell value as HH:MM, or "N/A" when it cannot be read.
func Render(value string) string {
	t, ok := Parse(value)
	if !ok {
		return "N/A"
	}
	return t.String()
}

// NormalizeWindow converts a start/end pair to comparable minutes, rolling
// the end past midnight when the window wraps (end < start means overnight).
func NormalizeWindow(start, end TimeOfDay) (int, int) {
	s := start.Minutes()
	e := end.Minutes()
	if e < s {
		e += 1440
	}
	return s, e
}

// Overlaps reports whether the half-open intervals [a0,a1) and [b0,b1)
// intersect. Callers are expected to normalize overnight windows first.
func Overlaps(a0, a1, b0, b1 int) bool {
	return !(a1 <= b0 || a0 >= b1)
}
