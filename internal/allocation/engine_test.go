package allocation

import (
	"testing"
	"time"

	"github.com/dentaldesk/frontdesk/internal/availability"
	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/schedule"
)

// Monday; RAJA is the only weekly-off that day.
var monday = time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)

func newEngine(ros *roster.Roster) *Engine {
	return NewEngine(ros, availability.NewResolver(ros))
}

func allDayBlock(assistant string) schedule.TimeBlock {
	return schedule.TimeBlock{
		Assistant: assistant, Date: "2025-06-02", Reason: "Backend Work",
		StartTime: "00:00", EndTime: "23:59",
	}
}

func TestAllocatePreviewTakesFreeInRosterOrder(t *testing.T) {
	e := newEngine(roster.Default())

	got := e.Allocate("DR.FARHATH", "10:00", "10:30", nil, nil, "", monday)
	// ENDO roster order with everyone free: ANYA, LAVANYA, ROHINI.
	if got[roster.RoleFirst] != "ANYA" || got[roster.RoleSecond] != "LAVANYA" || got[roster.RoleThird] != "ROHINI" {
		t.Errorf("preview = %v", got)
	}
}

func TestAllocateUnknownDoctor(t *testing.T) {
	e := newEngine(roster.Default())
	got := e.Allocate("DR.WHO", "10:00", "10:30", nil, nil, "", monday)
	for role, name := range got {
		if name != "" {
			t.Errorf("role %s = %q, want empty", role, name)
		}
	}
}

// A doctor whose FIRST rule is exactly one name gets that name when free.
func TestAutoFillDoctorOverride(t *testing.T) {
	ros := &roster.Roster{
		Departments: []roster.Department{{
			Name:       "ENDO",
			Doctors:    []string{"DR.NIMAI"},
			Assistants: []string{"ANYA", "LAVANYA", "ARCHANA"},
			Rules: map[string]roster.Rule{
				roster.RoleFirst: {
					Doctor: map[string][]string{"DR.NIMAI": {"ARCHANA"}},
				},
			},
		}},
		WeeklyOff: map[time.Weekday][]string{},
	}
	e := newEngine(ros)

	tbl := schedule.Table{{
		ID: "r1", PatientName: "ASHOK", Doctor: "DR.NIMAI",
		InTime: "10:00", OutTime: "10:30", Status: schedule.StatusPending,
	}}

	if !e.AutoFillRow(tbl, "r1", nil, true, monday) {
		t.Fatal("AutoFillRow reported no change")
	}
	if tbl[0].First != "ARCHANA" {
		t.Errorf("FIRST = %q, want ARCHANA", tbl[0].First)
	}
}

// Default-list candidates are tried before time overrides: a 14:00 PROSTHO
// appointment with ANSHIKA free picks ANSHIKA even though the 13:00 ARCHANA
// threshold has passed.
func TestAutoFillDefaultBeatsTimeOverride(t *testing.T) {
	e := newEngine(roster.Default())

	tbl := schedule.Table{{
		ID: "r1", PatientName: "ASHOK", Doctor: "DR.HUSSAIN",
		InTime: "14:00", OutTime: "14:30", Status: schedule.StatusPending,
	}}

	e.AutoFillRow(tbl, "r1", nil, true, monday)
	if tbl[0].First != "ANSHIKA" {
		t.Errorf("FIRST = %q, want ANSHIKA", tbl[0].First)
	}
}

// With the whole default list held, the FIRST time override applies and the
// last satisfied threshold wins.
func TestAutoFillTimeOverrideLastThresholdWins(t *testing.T) {
	e := newEngine(roster.Default())
	blocks := []schedule.TimeBlock{
		allDayBlock("ANSHIKA"), allDayBlock("NITIN"), allDayBlock("RESHMA"),
		allDayBlock("PRAMOTH"), allDayBlock("BABU"),
		// RAJA is off Monday anyway.
	}

	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{name: "after both thresholds", start: "16:00", end: "16:30", want: "SHAKSHI"},
		{name: "between thresholds", start: "14:00", end: "14:30", want: "ARCHANA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := schedule.Table{{
				ID: "r1", PatientName: "ASHOK", Doctor: "DR.HUSSAIN",
				InTime: tt.start, OutTime: tt.end, Status: schedule.StatusPending,
			}}
			e.AutoFillRow(tbl, "r1", blocks, true, monday)
			if tbl[0].First != tt.want {
				t.Errorf("FIRST = %q, want %q", tbl[0].First, tt.want)
			}
		})
	}
}

// SECOND's conditional list applies once default and doctor layers are
// exhausted: with ANSHIKA on FIRST, ARCHANA is preferred.
func TestAutoFillWhenFirstIs(t *testing.T) {
	e := newEngine(roster.Default())
	blocks := []schedule.TimeBlock{
		allDayBlock("NITIN"), allDayBlock("BABU"), allDayBlock("RESHMA"), allDayBlock("PRAMOTH"),
	}

	tbl := schedule.Table{{
		ID: "r1", PatientName: "ASHOK", Doctor: "DR.HUSSAIN",
		InTime: "10:00", OutTime: "10:30", First: "ANSHIKA",
		Status: schedule.StatusPending,
	}}

	e.AutoFillRow(tbl, "r1", blocks, true, monday)
	if tbl[0].Second != "ARCHANA" {
		t.Errorf("SECOND = %q, want ARCHANA", tbl[0].Second)
	}
}

func TestAutoFillNeverDuplicatesNames(t *testing.T) {
	e := newEngine(roster.Default())

	tbl := schedule.Table{{
		ID: "r1", PatientName: "ASHOK", Doctor: "DR.FARHATH",
		InTime: "10:00", OutTime: "10:30", Status: schedule.StatusPending,
	}}

	e.AutoFillRow(tbl, "r1", nil, true, monday)
	row := tbl[0]
	names := map[string]bool{}
	for _, n := range []string{row.First, row.Second, row.Third} {
		if n == "" {
			continue
		}
		key := roster.NormKey(n)
		if names[key] {
			t.Fatalf("name %q assigned twice: %+v", n, row)
		}
		names[key] = true
	}
	if len(names) != 3 {
		t.Errorf("expected three distinct assignments, got %+v", row)
	}
}

func TestAutoFillNeverAssignsUnavailableStaff(t *testing.T) {
	ros := roster.Default()
	res := availability.NewResolver(ros)
	e := NewEngine(ros, res)

	// One conflicting row holds LAVANYA; a block holds ANYA.
	blocks := []schedule.TimeBlock{{
		Assistant: "ANYA", Date: "2025-06-02", Reason: "Lab run",
		StartTime: "09:45", EndTime: "10:45",
	}}
	tbl := schedule.Table{
		{
			ID: "busy", PatientName: "MEERA", Doctor: "DR.SHRUTI",
			InTime: "10:00", OutTime: "11:00", First: "LAVANYA",
			Status: schedule.StatusWaiting,
		},
		{
			ID: "fill", PatientName: "ASHOK", Doctor: "DR.FARHATH",
			InTime: "10:00", OutTime: "10:30", Status: schedule.StatusPending,
		},
	}

	e.AutoFillRow(tbl, "fill", blocks, true, monday)
	row := tbl[1]
	for _, n := range []string{row.First, row.Second, row.Third} {
		if n == "" {
			continue
		}
		ok, reason := res.IsAvailable(n, row.InTime, row.OutTime, tbl, blocks, row.ID, monday)
		if !ok {
			t.Errorf("assigned %q who is unavailable: %s", n, reason)
		}
	}
	if row.First == "LAVANYA" || row.First == "ANYA" {
		t.Errorf("FIRST = %q should be held elsewhere", row.First)
	}
}

func TestAutoFillOnlyFillEmpty(t *testing.T) {
	e := newEngine(roster.Default())

	tbl := schedule.Table{{
		ID: "r1", PatientName: "ASHOK", Doctor: "DR.FARHATH",
		InTime: "10:00", OutTime: "10:30",
		First: "ROHINI", Second: "MUKHILA", Third: "SHAKSHI",
		Status: schedule.StatusPending,
	}}

	if e.AutoFillRow(tbl, "r1", nil, true, monday) {
		t.Error("fully staffed row should not change")
	}
	if tbl[0].First != "ROHINI" {
		t.Error("existing assignment overwritten")
	}
}

func TestAutoFillSkipsRowsWithoutDoctorOrTimes(t *testing.T) {
	e := newEngine(roster.Default())

	tests := []struct {
		name string
		row  schedule.Row
	}{
		{name: "no doctor", row: schedule.Row{ID: "r1", InTime: "10:00", OutTime: "10:30"}},
		{name: "bad in time", row: schedule.Row{ID: "r1", Doctor: "DR.FARHATH", InTime: "x", OutTime: "10:30"}},
		{name: "bad out time", row: schedule.Row{ID: "r1", Doctor: "DR.FARHATH", InTime: "10:00", OutTime: ""}},
		{name: "unknown doctor", row: schedule.Row{ID: "r1", Doctor: "DR.WHO", InTime: "10:00", OutTime: "10:30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := schedule.Table{tt.row}
			if e.AutoFillRow(tbl, "r1", nil, true, monday) {
				t.Error("AutoFillRow should refuse this row")
			}
		})
	}
}
