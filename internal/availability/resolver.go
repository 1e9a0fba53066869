// Package availability decides whether staff can take an appointment window,
// checking weekly-off days, ad-hoc time blocks, and conflicting rows on the
// current schedule.
package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/schedule"
	"github.com/dentaldesk/frontdesk/internal/timeofday"
)

type Resolver struct {
	ros *roster.Roster
}

func NewResolver(ros *roster.Roster) *Resolver {
	return &Resolver{ros: ros}
}

// Result is one staff member's availability verdict for a window.
type Result struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// IsAvailable checks a staff member against a requested time window. Checks
// run in order and the first failure wins: weekly-off, window parse
// (fail-open), today's time blocks, then conflicting appointments. The row
// being edited is excluded from conflict checks by its stable ID.
func (r *Resolver) IsAvailable(
	name, windowStart, windowEnd string,
	tbl schedule.Table,
	blocks []schedule.TimeBlock,
	excludeRowID string,
	now time.Time,
) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "No assistant specified"
	}

	if r.ros.IsWeeklyOff(name, now.Weekday()) {
		return false, fmt.Sprintf("Weekly off on %s", now.Weekday())
	}

	in, inOK := timeofday.Parse(windowStart)
	out, outOK := timeofday.Parse(windowEnd)
	if !inOK || !outOK {
		// Cannot prove a conflict without a window.
		return true, ""
	}
	checkStart, checkEnd := timeofday.NormalizeWindow(in, out)

	today := now.Format(time.DateOnly)
	for _, block := range blocks {
		if strings.TrimSpace(block.Date) != today {
			continue
		}
		if !r.ros.SameStaff(block.Assistant, name) {
			continue
		}
		blockStart, blockEnd, ok := block.Window()
		if !ok {
			continue
		}
		if timeofday.Overlaps(checkStart, checkEnd, blockStart, blockEnd) {
			reason := block.Reason
			if strings.TrimSpace(reason) == "" {
				reason = "Blocked"
			}
			return false, fmt.Sprintf("Blocked: %s", reason)
		}
	}

	exclude := strings.TrimSpace(excludeRowID)
	for i := range tbl {
		row := &tbl[i]
		if exclude != "" && strings.TrimSpace(row.ID) == exclude {
			continue
		}
		if row.Status.Closed() {
			continue
		}
		if !row.AssignedTo(r.ros, name) {
			continue
		}
		rowStart, rowEnd, ok := row.Window()
		if !ok {
			continue
		}
		if timeofday.Overlaps(checkStart, checkEnd, rowStart, rowEnd) {
			patient := strings.TrimSpace(row.PatientName)
			if patient == "" {
				patient = "patient"
			}
			rowIn, _ := row.In()
			rowOut, _ := row.Out()
			return false, fmt.Sprintf("With %s (%s-%s)", patient, rowIn, rowOut)
		}
	}

	return true, ""
}

// AvailableStaff evaluates every assistant on a department's roster against
// the window, preserving roster order.
func (r *Resolver) AvailableStaff(
	department, windowStart, windowEnd string,
	tbl schedule.Table,
	blocks []schedule.TimeBlock,
	excludeRowID string,
	now time.Time,
) []Result {
	assistants := r.ros.AssistantsFor(department)
	results := make([]Result, 0, len(assistants))
	for _, name := range assistants {
		ok, reason := r.IsAvailable(name, windowStart, windowEnd, tbl, blocks, excludeRowID, now)
		if ok {
			reason = "Available"
		}
		results = append(results, Result{Name: name, Available: ok, Reason: reason})
	}
	return results
}
