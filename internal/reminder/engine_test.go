package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/notify"
	"github.com/dentaldesk/frontdesk/internal/schedule"
)

var baseNow = time.Date(2025, 6, 2, 9, 50, 0, 0, time.Local)

type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Publish(_ context.Context, ev notify.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func newTestEngine() (*Engine, *captureNotifier) {
	c := &captureNotifier{}
	return NewEngine(c, DefaultLead, DefaultAutoSnooze, zerolog.Nop()), c
}

func row(id, patient, in string, status schedule.Status) schedule.Row {
	return schedule.Row{
		ID: id, PatientName: patient, InTime: in, OutTime: "11:00",
		Doctor: "DR.FARHATH", Status: status,
	}
}

func TestSweepFiresInsideWindow(t *testing.T) {
	e, c := newTestEngine()
	st := NewState()
	tbl := schedule.Table{
		row("in-window", "ASHOK", "10:00", schedule.StatusPending),  // 10 min out
		row("too-far", "MEERA", "10:30", schedule.StatusPending),    // 40 min out
		row("past", "VIKRAM", "09:45", schedule.StatusPending),      // already started
		row("arrived", "SUNITA", "10:00", schedule.StatusArrived),   // exempt status
		row("done", "RAHUL", "10:00", schedule.StatusDone),          // exempt status
	}

	changed := e.Sweep(context.Background(), tbl, st, baseNow)

	if len(c.events) != 1 || c.events[0].RowID != "in-window" {
		t.Fatalf("events = %+v", c.events)
	}
	if c.events[0].MinutesLeft != 10 {
		t.Errorf("minutes left = %d, want 10", c.events[0].MinutesLeft)
	}
	if len(changed) != 1 || changed[0] != "in-window" {
		t.Errorf("changed = %v", changed)
	}

	// The fired row is auto-snoozed and its persisted fields updated.
	until, ok := st.Snoozed["in-window"]
	if !ok || !until.Equal(baseNow.Add(30*time.Second)) {
		t.Errorf("auto-snooze until = %v", until)
	}
	if tbl[0].SnoozeUntil == nil || tbl[0].Dismissed {
		t.Error("row reminder fields not persisted")
	}
}

func TestSweepDoesNotRepeatWhileSnoozed(t *testing.T) {
	e, c := newTestEngine()
	st := NewState()
	tbl := schedule.Table{row("r1", "ASHOK", "10:00", schedule.StatusPending)}

	e.Sweep(context.Background(), tbl, st, baseNow)
	e.Sweep(context.Background(), tbl, st, baseNow.Add(10*time.Second))
	if len(c.events) != 1 {
		t.Fatalf("reminder repeated during snooze: %d events", len(c.events))
	}

	// After the 30-second auto-snooze lapses the reminder re-fires: the
	// expiry sweep drops it and eligibility picks it up again.
	e.Sweep(context.Background(), tbl, st, baseNow.Add(31*time.Second))
	if len(c.events) != 2 {
		t.Fatalf("reminder did not re-fire after snooze expiry: %d events", len(c.events))
	}
}

func TestDismissIsTerminalForTheRow(t *testing.T) {
	e, c := newTestEngine()
	st := NewState()
	tbl := schedule.Table{row("r1", "ASHOK", "10:00", schedule.StatusPending)}

	if !e.Dismiss(tbl, st, "r1") {
		t.Fatal("dismiss failed")
	}
	if tbl[0].SnoozeUntil != nil || !tbl[0].Dismissed {
		t.Error("dismiss should persist dismissed=true and clear snooze")
	}

	// Cross the window repeatedly; nothing may fire.
	for _, offset := range []time.Duration{0, time.Minute, 5 * time.Minute, 14 * time.Minute} {
		e.Sweep(context.Background(), tbl, st, baseNow.Add(offset))
	}
	if len(c.events) != 0 {
		t.Fatalf("dismissed reminder fired: %+v", c.events)
	}

	// A new row identity resets the slate.
	tbl[0].ID = "r2"
	e.Sweep(context.Background(), tbl, st, baseNow)
	if len(c.events) != 1 {
		t.Error("new row identity should fire again")
	}
}

func TestManualSnoozeClearsDismissal(t *testing.T) {
	e, c := newTestEngine()
	st := NewState()
	tbl := schedule.Table{row("r1", "ASHOK", "10:00", schedule.StatusPending)}

	e.Dismiss(tbl, st, "r1")
	if !e.Snooze(tbl, st, "r1", 2*time.Minute, baseNow) {
		t.Fatal("snooze failed")
	}
	if tbl[0].Dismissed {
		t.Error("manual snooze must clear dismissed")
	}

	e.Sweep(context.Background(), tbl, st, baseNow.Add(time.Minute))
	if len(c.events) != 0 {
		t.Error("fired during manual snooze")
	}
	e.Sweep(context.Background(), tbl, st, baseNow.Add(3*time.Minute))
	if len(c.events) != 1 {
		t.Error("did not fire after manual snooze expired")
	}
}

func TestStateLoadResumesPersistedSnoozes(t *testing.T) {
	st := NewState()
	future := baseNow.Add(5 * time.Minute)
	past := baseNow.Add(-5 * time.Minute)

	tbl := schedule.Table{
		{ID: "active", SnoozeUntil: &future},
		{ID: "lapsed", SnoozeUntil: &past},
		{ID: "dismissed", Dismissed: true},
	}
	st.Load(tbl, baseNow)

	if _, ok := st.Snoozed["active"]; !ok {
		t.Error("active snooze not resumed")
	}
	if _, ok := st.Snoozed["lapsed"]; ok {
		t.Error("lapsed snooze should not resume")
	}
	if !st.Dismissed["dismissed"] {
		t.Error("dismissal not resumed")
	}
}

func TestStateLoadClearsStaleEntries(t *testing.T) {
	st := NewState()
	future := baseNow.Add(5 * time.Minute)
	st.Snoozed["r1"] = future
	st.Dismissed["r1"] = true

	// The persisted row now carries neither a snooze nor a dismissal.
	st.Load(schedule.Table{{ID: "r1"}}, baseNow)

	if _, ok := st.Snoozed["r1"]; ok {
		t.Error("stale snooze survived reload")
	}
	if st.Dismissed["r1"] {
		t.Error("stale dismissal survived reload")
	}
}

// A worker that reloads persisted state every cycle must honor a dismiss
// followed by a manual snooze: once the snooze lapses, the reminder fires
// again because the row was saved with dismissed=false.
func TestReloadedDismissalLiftedByManualSnooze(t *testing.T) {
	e, c := newTestEngine()
	st := NewState()

	// Cycle 1: the row is dismissed on disk.
	tbl := schedule.Table{row("r1", "ASHOK", "10:00", schedule.StatusPending)}
	tbl[0].Dismissed = true
	st.Load(tbl, baseNow)
	e.Sweep(context.Background(), tbl, st, baseNow)
	if len(c.events) != 0 {
		t.Fatalf("dismissed row fired: %+v", c.events)
	}

	// Cycle 2: the dashboard snoozed it, persisting dismissed=false with a
	// snooze that has since lapsed.
	lapsed := baseNow.Add(-time.Minute)
	tbl[0].Dismissed = false
	tbl[0].SnoozeUntil = &lapsed
	now := baseNow.Add(time.Minute)
	st.Load(tbl, now)
	e.Sweep(context.Background(), tbl, st, now)

	if len(c.events) != 1 || c.events[0].RowID != "r1" {
		t.Fatalf("reminder did not re-fire after snooze lapsed: %+v", c.events)
	}
}

func TestSweepTransitions(t *testing.T) {
	e, c := newTestEngine()
	st := NewState()
	tbl := schedule.Table{
		{ID: "on", PatientName: "ASHOK", InTime: "09:30", OutTime: "10:30", Status: schedule.StatusWaiting},
		{ID: "up", PatientName: "MEERA", InTime: "10:00", OutTime: "10:30", Status: schedule.StatusPending},
	}

	e.SweepTransitions(context.Background(), tbl, st, baseNow)
	kinds := map[notify.Kind]int{}
	for _, ev := range c.events {
		kinds[ev.Kind]++
	}
	if kinds[notify.KindOngoing] != 1 || kinds[notify.KindUpcoming] != 1 {
		t.Fatalf("events = %+v", c.events)
	}

	// Second pass with no changes stays quiet.
	e.SweepTransitions(context.Background(), tbl, st, baseNow)
	if len(c.events) != 2 {
		t.Errorf("transition events repeated: %+v", c.events)
	}
}

func TestParseSnoozeUntil(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	midnight := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{name: "epoch seconds", raw: "1748850600", want: time.Unix(1748850600, 0), ok: true},
		{name: "legacy minutes since midnight", raw: "570", want: midnight.Add(570 * time.Minute), ok: true},
		{name: "float epoch", raw: "1748850600.0", want: time.Unix(1748850600, 0), ok: true},
		{name: "iso timestamp", raw: "2025-06-02T09:30:00+05:30",
			want: time.Date(2025, 6, 2, 9, 30, 0, 0, time.FixedZone("", 19800)), ok: true},
		{name: "blank", raw: "", ok: false},
		{name: "nan", raw: "nan", ok: false},
		{name: "garbage", raw: "whenever", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSnoozeUntil(tt.raw, now)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseSnoozeUntil(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatSnoozeUntilRoundTrip(t *testing.T) {
	until := time.Unix(1748850600, 0)
	raw := FormatSnoozeUntil(&until)
	got, ok := ParseSnoozeUntil(raw, baseNow)
	if !ok || !got.Equal(until) {
		t.Errorf("round trip %q -> %v (%v)", raw, got, ok)
	}
	if FormatSnoozeUntil(nil) != "" {
		t.Error("nil snooze should format as empty")
	}
}
