package schedule

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/timeofday"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusWaiting   Status = "WAITING"
	StatusArriving  Status = "ARRIVING"
	StatusArrived   Status = "ARRIVED"
	StatusOnGoing   Status = "ON GOING"
	StatusDone      Status = "DONE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusShifted   Status = "SHIFTED"
	StatusLate      Status = "LATE"
)

// containsAny matches status text the way the grid does: free-form, case
// insensitive, by keyword ("ongoing" and "ON GOING" both count).
func (s Status) containsAny(keywords ...string) bool {
	upper := strings.ToUpper(string(s))
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// Closed reports a row that no longer occupies its staff: cancelled, shifted,
// or finished. Closed rows are skipped by conflict checks and highlighting.
func (s Status) Closed() bool {
	return s.containsAny("CANCELLED", "DONE", "COMPLETED", "SHIFTED")
}

// ReminderExempt reports statuses that suppress the 15-minute reminder: the
// closed set plus patients already here or in the chair.
func (s Status) ReminderExempt() bool {
	return s.Closed() || s.containsAny("ARRIVED", "ARRIVING", "ON GOING", "ONGOING")
}

// StatusChange is one entry in a row's append-only status audit log.
type StatusChange struct {
	At   string `json:"at"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Row is one scheduled procedure on the grid.
type Row struct {
	// ID is the stable row identifier: generated once, immutable, never
	// reused. It is the only safe key for reminder state and deletion.
	ID          string
	PatientID   string
	PatientName string
	InTime      string // raw cell value; parse via In()
	OutTime     string // raw cell value; parse via Out()
	Procedure   string
	Doctor      string
	First       string
	Second      string
	Third       string
	CasePaper   string
	Chair       string // the OP column
	Suction     bool
	Cleaning    bool
	Status      Status

	SnoozeUntil *time.Time // reminder snooze expiry, absolute
	Dismissed   bool

	StatusChangedAt *time.Time
	ActualStartAt   *time.Time
	ActualEndAt     *time.Time
	StatusLog       []StatusChange
}

func NewRow() Row {
	return Row{ID: uuid.NewString(), Status: StatusPending}
}

// In parses the raw in-time cell. ok=false means the value is blank or
// unreadable, which availability treats as fail-open.
func (r *Row) In() (timeofday.TimeOfDay, bool) {
	return timeofday.Parse(r.InTime)
}

func (r *Row) Out() (timeofday.TimeOfDay, bool) {
	return timeofday.Parse(r.OutTime)
}

// Window returns the row's overnight-normalized minute window.
func (r *Row) Window() (start, end int, ok bool) {
	in, inOK := r.In()
	out, outOK := r.Out()
	if !inOK || !outOK {
		return 0, 0, false
	}
	start, end = timeofday.NormalizeWindow(in, out)
	return start, end, true
}

// Blank reports a row with no patient, used by auto-append.
func (r *Row) Blank() bool {
	return strings.TrimSpace(r.PatientName) == "" && strings.TrimSpace(r.PatientID) == ""
}

// AssignedTo reports whether the named staff member occupies any of the three
// assistant slots on this row.
func (r *Row) AssignedTo(ros *roster.Roster, name string) bool {
	for _, slot := range []string{r.First, r.Second, r.Third} {
		if strings.TrimSpace(slot) != "" && ros.SameStaff(slot, name) {
			return true
		}
	}
	return false
}

// RoleValue returns the current occupant of an assistant role slot.
func (r *Row) RoleValue(role string) string {
	switch role {
	case roster.RoleFirst:
		return r.First
	case roster.RoleSecond:
		return r.Second
	case roster.RoleThird:
		return r.Third
	}
	return ""
}

// SetRole assigns a name to an assistant role slot.
func (r *Row) SetRole(role, name string) {
	switch role {
	case roster.RoleFirst:
		r.First = name
	case roster.RoleSecond:
		r.Second = name
	case roster.RoleThird:
		r.Third = name
	}
}

// ClearPatient is the logical delete: all scheduling fields reset but the
// stable identifier survives so reminder state stays keyed correctly.
func (r *Row) ClearPatient() {
	id := r.ID
	*r = Row{ID: id, Status: StatusPending}
}
