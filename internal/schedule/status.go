package schedule

import "time"

// ApplyStatus records a status transition on the row. Transitions are
// free-form (the grid allows any edit) but every change stamps the audit
// fields:
//
//   - STATUS_CHANGED_AT is set to now on every change
//   - the status log gets an append-only {at, from, to} entry
//   - the first transition into ON GOING stamps ACTUAL_START_AT
//   - the first transition into DONE/COMPLETED stamps ACTUAL_END_AT
//
// The actual-start/end stamps are idempotent: later re-entries into the same
// state leave the original timestamp alone.
func ApplyStatus(r *Row, to Status, now time.Time) {
	from := r.Status
	if from == to {
		return
	}

	r.Status = to
	stamp := now
	r.StatusChangedAt = &stamp
	r.StatusLog = append(r.StatusLog, StatusChange{
		At:   now.Format(time.DateTime),
		From: string(from),
		To:   string(to),
	})

	if to.containsAny("ON GOING", "ONGOING") && r.ActualStartAt == nil {
		r.ActualStartAt = &stamp
	}
	if to.containsAny("DONE", "COMPLETED") && r.ActualEndAt == nil {
		r.ActualEndAt = &stamp
	}
}

// Ongoing is the derived dashboard condition, independent of the status text:
// the current clock time falls inside the row's window and the row is not
// closed. Overnight windows are normalized before comparison.
func (r *Row) Ongoing(now time.Time) bool {
	if r.Status.Closed() {
		return false
	}
	start, end, ok := r.Window()
	if !ok {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	if cur < start {
		cur += 1440
	}
	return start <= cur && cur <= end
}

// MinutesUntilStart returns how far in the future the row's start time is,
// negative when it has passed. ok=false when the in-time is unreadable.
func (r *Row) MinutesUntilStart(now time.Time) (int, bool) {
	in, inOK := r.In()
	if !inOK {
		return 0, false
	}
	return in.Minutes() - (now.Hour()*60 + now.Minute()), true
}

// OvertimeMinutes reports how many minutes an ongoing row has run past its
// scheduled out-time, zero otherwise.
func (r *Row) OvertimeMinutes(now time.Time) int {
	if r.Status.Closed() {
		return 0
	}
	start, end, ok := r.Window()
	if !ok {
		return 0
	}
	cur := now.Hour()*60 + now.Minute()
	if cur < start {
		// The clock may have wrapped past midnight on a late row
		// (22:00-23:30 checked at 00:15) or the row may simply not have
		// started yet (14:00 checked at 10:00). Read it as overtime only
		// when the wrapped end is nearer than the upcoming start.
		if over := cur + 1440 - end; over > 0 && over < start-cur {
			return over
		}
		return 0
	}
	if over := cur - end; over > 0 {
		return over
	}
	return 0
}
