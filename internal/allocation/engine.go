// Package allocation fills the FIRST/SECOND/THIRD assistant slots on
// appointment rows. Assignment is a greedy, single-pass preference-list walk
// with layered fallbacks; it never backtracks, so a role filled by a weak
// fallback can use up a name a later role would have preferred. That is
// accepted policy.
package allocation

import (
	"strings"
	"time"

	"github.com/dentaldesk/frontdesk/internal/availability"
	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/schedule"
)

type Engine struct {
	ros *roster.Roster
	res *availability.Resolver
}

func NewEngine(ros *roster.Roster, res *availability.Resolver) *Engine {
	return &Engine{ros: ros, res: res}
}

// Allocate is the "recommended allocation" preview: resolve the doctor's
// department, compute the free set for the window, and hand the first free
// names to FIRST, SECOND, THIRD in roster order. Slots may come back empty.
func (e *Engine) Allocate(
	doctor, windowStart, windowEnd string,
	tbl schedule.Table,
	blocks []schedule.TimeBlock,
	excludeRowID string,
	now time.Time,
) map[string]string {
	result := map[string]string{
		roster.RoleFirst:  "",
		roster.RoleSecond: "",
		roster.RoleThird:  "",
	}

	department := e.ros.DepartmentForDoctor(doctor)
	if department == "" {
		return result
	}

	var free []string
	for _, r := range e.res.AvailableStaff(department, windowStart, windowEnd, tbl, blocks, excludeRowID, now) {
		if r.Available {
			free = append(free, r.Name)
		}
	}

	for i, role := range roster.Roles {
		if i < len(free) {
			result[role] = free[i]
		}
	}
	return result
}

// AutoFillRow applies the full layered policy to one row on save. When
// onlyFillEmpty is set, roles that already have a name are left alone.
// Reports whether anything changed.
func (e *Engine) AutoFillRow(
	tbl schedule.Table,
	rowID string,
	blocks []schedule.TimeBlock,
	onlyFillEmpty bool,
	now time.Time,
) bool {
	row := tbl.FindByID(rowID)
	if row == nil {
		return false
	}
	if strings.TrimSpace(row.Doctor) == "" {
		return false
	}
	in, inOK := row.In()
	_, outOK := row.Out()
	if !inOK || !outOK {
		return false
	}

	department := e.ros.DepartmentForDoctor(row.Doctor)
	if department == "" {
		return false
	}
	rules := e.ros.RulesFor(department)

	if onlyFillEmpty && filled(row.First) && filled(row.Second) && filled(row.Third) {
		return false
	}

	// Names already on the row; a person is never assigned to two roles.
	already := make(map[string]bool)
	for _, v := range []string{row.First, row.Second, row.Third} {
		if filled(v) {
			already[roster.NormKey(v)] = true
		}
	}

	apptHour := float64(in.Hour) + float64(in.Minute)/60

	// Free set for this window, excluding the row's own conflicts.
	var freeOrder []string // roster order, for the deterministic fallback
	freeSet := make(map[string]string)
	for _, r := range e.res.AvailableStaff(department, row.InTime, row.OutTime, tbl, blocks, row.ID, now) {
		if r.Available {
			freeOrder = append(freeOrder, r.Name)
			freeSet[roster.NormKey(r.Name)] = r.Name
		}
	}

	usable := func(name string) (string, bool) {
		key := roster.NormKey(name)
		if already[key] {
			return "", false
		}
		display, ok := freeSet[key]
		return display, ok
	}

	changed := false
	for _, role := range roster.Roles {
		if onlyFillEmpty && filled(row.RoleValue(role)) {
			continue
		}

		var candidates []string
		if rule, ok := rules[role]; ok {
			// Layer 1: department default list, in order.
			for _, name := range rule.Default {
				if display, ok := usable(name); ok {
					candidates = append(candidates, display)
				}
			}

			// Layer 2: doctor-specific override, only when the default
			// yielded nothing. The order is intentional.
			if len(candidates) == 0 {
				for _, name := range e.doctorList(rule, row.Doctor) {
					if display, ok := usable(name); ok {
						candidates = append(candidates, display)
					}
				}
			}

			// Layer 3: SECOND conditioned on who holds FIRST.
			if len(candidates) == 0 && role == roster.RoleSecond && rule.WhenFirstIs != nil {
				for _, name := range e.conditionalList(rule, row.First) {
					if display, ok := usable(name); ok {
						candidates = append(candidates, display)
					}
				}
			}

			// Layer 4: FIRST time overrides. Thresholds ascend and the last
			// one satisfied by the start hour wins.
			if len(candidates) == 0 && role == roster.RoleFirst {
				var pick string
				for _, ov := range rule.TimeOverride {
					if apptHour >= ov.Threshold {
						if display, ok := usable(ov.Name); ok {
							pick = display
						}
					}
				}
				if pick != "" {
					candidates = append(candidates, pick)
				}
			}
		}

		// Layer 5: any free, unassigned assistant in roster order.
		if len(candidates) == 0 {
			for _, name := range freeOrder {
				if _, ok := usable(name); ok {
					candidates = append(candidates, name)
					break
				}
			}
		}

		if len(candidates) > 0 {
			chosen := candidates[0]
			row.SetRole(role, chosen)
			already[roster.NormKey(chosen)] = true
			changed = true
		}
	}

	return changed
}

func (e *Engine) doctorList(rule roster.Rule, doctor string) []string {
	for key, list := range rule.Doctor {
		if e.ros.SameDoctor(key, doctor) {
			return list
		}
	}
	return nil
}

func (e *Engine) conditionalList(rule roster.Rule, first string) []string {
	if !filled(first) {
		return nil
	}
	for key, list := range rule.WhenFirstIs {
		if e.ros.SameStaff(key, first) {
			return list
		}
	}
	return nil
}

func filled(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s != "" && s != "nan" && s != "none"
}
