package roster

import (
	"strings"
	"time"
)

// Profile is one staff record from the optional profile store. It overrides
// the static configuration at startup.
type Profile struct {
	Name       string
	Department string
	Status     string // ACTIVE or INACTIVE
	WeeklyOff  string // comma-separated weekday names, e.g. "Monday,Thursday"
}

var weekdayByName = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// ApplyProfiles folds profile-store records into the roster. INACTIVE staff
// are removed everywhere; a non-empty weekly_off replaces the staff member's
// entries in the calendar. Unknown weekday names are ignored.
func (r *Roster) ApplyProfiles(profiles []Profile) {
	for _, p := range profiles {
		if NormKey(p.Name) == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p.Status), "INACTIVE") {
			r.removeStaff(p.Name)
			continue
		}
		if strings.TrimSpace(p.WeeklyOff) != "" {
			r.setWeeklyOff(p.Name, p.WeeklyOff)
		}
	}
}

func (r *Roster) removeStaff(name string) {
	for i := range r.Departments {
		r.Departments[i].Doctors = r.without(r.Departments[i].Doctors, name)
		r.Departments[i].Assistants = r.without(r.Departments[i].Assistants, name)
	}
	for day, names := range r.WeeklyOff {
		r.WeeklyOff[day] = r.without(names, name)
	}
}

func (r *Roster) setWeeklyOff(name, spec string) {
	if r.WeeklyOff == nil {
		r.WeeklyOff = make(map[time.Weekday][]string)
	}
	for day, names := range r.WeeklyOff {
		r.WeeklyOff[day] = r.without(names, name)
	}
	for _, token := range strings.Split(spec, ",") {
		day, ok := weekdayByName[strings.ToUpper(strings.TrimSpace(token))]
		if !ok {
			continue
		}
		r.WeeklyOff[day] = append(r.WeeklyOff[day], strings.ToUpper(strings.TrimSpace(name)))
	}
}

func (r *Roster) without(names []string, drop string) []string {
	out := names[:0:0]
	for _, n := range names {
		if !r.SameStaff(n, drop) {
			out = append(out, n)
		}
	}
	return out
}
