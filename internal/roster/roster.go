package roster

import (
	"strings"
	"time"
)

// Role names for the three assistant slots on an appointment row.
const (
	RoleFirst  = "FIRST"
	RoleSecond = "SECOND"
	RoleThird  = "THIRD"
)

// Roles lists the assistant slots in the order the allocation engine fills them.
var Roles = []string{RoleFirst, RoleSecond, RoleThird}

// SharedDepartment marks an assistant who serves either department.
const SharedDepartment = "SHARED"

// TimeOverride prefers a name once the appointment start hour reaches the
// threshold. Thresholds are listed ascending and the last satisfied one wins.
type TimeOverride struct {
	Threshold float64
	Name      string
}

// Rule is the layered preference policy for a single role within a department.
type Rule struct {
	// Default is the department-level ordered preference list.
	Default []string
	// Doctor holds per-doctor override lists keyed by canonical doctor name.
	Doctor map[string][]string
	// TimeOverride applies to FIRST only.
	TimeOverride []TimeOverride
	// WhenFirstIs applies to SECOND only: preference conditioned on who
	// occupies FIRST.
	WhenFirstIs map[string][]string
}

type Department struct {
	Name       string
	Doctors    []string
	Assistants []string
	Rules      map[string]Rule
}

// Roster is the full staff configuration: departments in declaration order
// plus the weekly-off calendar.
type Roster struct {
	Departments []Department
	// WeeklyOff maps a weekday to staff unavailable for that entire day.
	WeeklyOff map[time.Weekday][]string
	// Aliases maps normalized spelling variants to their canonical normalized
	// key, so historical data keeps matching as the roster grows.
	Aliases map[string]string
}

// NormKey reduces a staff name to a stable comparison key: uppercase with all
// non-alphanumeric characters stripped, so "DR. HUSSAIN" == "DR.HUSSAIN".
func NormKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonical resolves a normalized key through the alias table.
func (r *Roster) canonical(key string) string {
	if r.Aliases != nil {
		if c, ok := r.Aliases[key]; ok {
			return c
		}
	}
	return key
}

// SameStaff reports whether two names refer to the same person: equal
// alias-resolved normalized keys, nothing fuzzier. Assistant names like ANYA
// and LAVANYA share a suffix, so substring tolerance is not safe here; spelling
// variants belong in the alias table.
func (r *Roster) SameStaff(a, b string) bool {
	ka := r.canonical(NormKey(a))
	kb := r.canonical(NormKey(b))
	if ka == "" || kb == "" {
		return false
	}
	return ka == kb
}

// SameDoctor is the looser comparison used only for doctor names, where the
// "DR." prefix comes and goes: equal canonical keys or one a suffix of the
// other.
func (r *Roster) SameDoctor(a, b string) bool {
	ka := r.canonical(NormKey(a))
	kb := r.canonical(NormKey(b))
	if ka == "" || kb == "" {
		return false
	}
	return ka == kb || strings.HasSuffix(ka, kb) || strings.HasSuffix(kb, ka)
}

// DepartmentForDoctor returns the department a doctor belongs to, or "".
func (r *Roster) DepartmentForDoctor(doctor string) string {
	if NormKey(doctor) == "" {
		return ""
	}
	for _, dept := range r.Departments {
		for _, d := range dept.Doctors {
			if r.SameDoctor(doctor, d) {
				return dept.Name
			}
		}
	}
	return ""
}

// DepartmentForAssistant returns the department an assistant belongs to.
// Unknown assistants with a non-empty name resolve to SHARED.
func (r *Roster) DepartmentForAssistant(assistant string) string {
	if NormKey(assistant) == "" {
		return ""
	}
	for _, dept := range r.Departments {
		for _, a := range dept.Assistants {
			if r.SameStaff(assistant, a) {
				return dept.Name
			}
		}
	}
	return SharedDepartment
}

// AssistantsFor returns the ordered assistant list for a department, falling
// back to the combined roster when the department is unknown.
func (r *Roster) AssistantsFor(department string) []string {
	key := strings.ToUpper(strings.TrimSpace(department))
	for _, dept := range r.Departments {
		if dept.Name == key {
			return dept.Assistants
		}
	}
	return r.AllAssistants()
}

// RulesFor returns the allocation rules for a department, or nil.
func (r *Roster) RulesFor(department string) map[string]Rule {
	key := strings.ToUpper(strings.TrimSpace(department))
	for _, dept := range r.Departments {
		if dept.Name == key {
			return dept.Rules
		}
	}
	return nil
}

// AllDoctors returns every doctor across departments, deduplicated in
// declaration order.
func (r *Roster) AllDoctors() []string {
	return r.uniqueAcross(func(d Department) []string { return d.Doctors })
}

// AllAssistants returns every assistant across departments, deduplicated in
// declaration order.
func (r *Roster) AllAssistants() []string {
	return r.uniqueAcross(func(d Department) []string { return d.Assistants })
}

func (r *Roster) uniqueAcross(pick func(Department) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, dept := range r.Departments {
		for _, name := range pick(dept) {
			key := r.canonical(NormKey(name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, name)
		}
	}
	return out
}

// IsWeeklyOff reports whether the staff member is off for the entire given
// weekday. Weekly off overrides every other availability state.
func (r *Roster) IsWeeklyOff(name string, day time.Weekday) bool {
	for _, off := range r.WeeklyOff[day] {
		if r.SameStaff(name, off) {
			return true
		}
	}
	return false
}
