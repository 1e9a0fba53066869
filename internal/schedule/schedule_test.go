package schedule

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local) // a Monday

func TestApplyStatusStamps(t *testing.T) {
	r := NewRow()
	r.PatientName = "ASHOK"

	ApplyStatus(&r, StatusWaiting, testNow)
	if r.Status != StatusWaiting {
		t.Fatalf("status = %q", r.Status)
	}
	if r.StatusChangedAt == nil || !r.StatusChangedAt.Equal(testNow) {
		t.Error("STATUS_CHANGED_AT not stamped")
	}
	if len(r.StatusLog) != 1 || r.StatusLog[0].From != "PENDING" || r.StatusLog[0].To != "WAITING" {
		t.Errorf("status log = %+v", r.StatusLog)
	}
	if r.ActualStartAt != nil || r.ActualEndAt != nil {
		t.Error("actual start/end should not be stamped yet")
	}
}

func TestApplyStatusActualStartIdempotent(t *testing.T) {
	r := NewRow()
	first := testNow
	later := testNow.Add(30 * time.Minute)

	ApplyStatus(&r, StatusOnGoing, first)
	if r.ActualStartAt == nil || !r.ActualStartAt.Equal(first) {
		t.Fatal("ACTUAL_START_AT not stamped on first ON GOING")
	}

	ApplyStatus(&r, StatusWaiting, later)
	ApplyStatus(&r, StatusOnGoing, later.Add(time.Minute))
	if !r.ActualStartAt.Equal(first) {
		t.Error("ACTUAL_START_AT overwritten on re-entry")
	}

	ApplyStatus(&r, StatusDone, later.Add(2*time.Minute))
	endStamp := *r.ActualEndAt
	ApplyStatus(&r, StatusCompleted, later.Add(3*time.Minute))
	if !r.ActualEndAt.Equal(endStamp) {
		t.Error("ACTUAL_END_AT overwritten on second completion")
	}
	if len(r.StatusLog) != 5 {
		t.Errorf("status log length = %d, want 5", len(r.StatusLog))
	}
}

func TestApplyStatusNoOpOnSameStatus(t *testing.T) {
	r := NewRow()
	ApplyStatus(&r, StatusPending, testNow)
	if r.StatusChangedAt != nil || len(r.StatusLog) != 0 {
		t.Error("re-applying the current status should not stamp anything")
	}
}

func TestOngoing(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		status   Status
		now      time.Time
		want     bool
	}{
		{name: "inside window", in: "09:30", out: "10:30", status: StatusArrived, now: testNow, want: true},
		{name: "before window", in: "11:00", out: "12:00", status: StatusPending, now: testNow, want: false},
		{name: "cancelled never ongoing", in: "09:30", out: "10:30", status: StatusCancelled, now: testNow, want: false},
		{name: "done never ongoing", in: "09:30", out: "10:30", status: StatusDone, now: testNow, want: false},
		{name: "overnight window before midnight", in: "22:00", out: "01:00", status: StatusOnGoing,
			now: time.Date(2025, 6, 2, 23, 15, 0, 0, time.Local), want: true},
		{name: "overnight window after midnight", in: "22:00", out: "01:00", status: StatusOnGoing,
			now: time.Date(2025, 6, 3, 0, 30, 0, 0, time.Local), want: true},
		{name: "unparseable times", in: "N/A", out: "10:30", status: StatusPending, now: testNow, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Row{InTime: tt.in, OutTime: tt.out, Status: tt.status}
			if got := r.Ongoing(tt.now); got != tt.want {
				t.Errorf("Ongoing = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOvertimeMinutes(t *testing.T) {
	r := Row{InTime: "09:00", OutTime: "09:45", Status: StatusOnGoing}
	if got := r.OvertimeMinutes(testNow); got != 15 {
		t.Errorf("overtime = %d, want 15", got)
	}
	r.Status = StatusDone
	if got := r.OvertimeMinutes(testNow); got != 0 {
		t.Errorf("closed row overtime = %d, want 0", got)
	}
}

func TestOvertimeMinutesAcrossMidnight(t *testing.T) {
	justPastMidnight := time.Date(2025, 6, 3, 0, 15, 0, 0, time.Local)

	// A late evening row still open at 00:15 has run 45 minutes over.
	r := Row{InTime: "22:00", OutTime: "23:30", Status: StatusOnGoing}
	if got := r.OvertimeMinutes(justPastMidnight); got != 45 {
		t.Errorf("wrapped overtime = %d, want 45", got)
	}

	// An overnight window that ended at 01:30, checked at 02:00.
	r = Row{InTime: "23:00", OutTime: "01:30", Status: StatusOnGoing}
	twoAM := time.Date(2025, 6, 3, 2, 0, 0, 0, time.Local)
	if got := r.OvertimeMinutes(twoAM); got != 30 {
		t.Errorf("overnight overtime = %d, want 30", got)
	}

	// A row later today must not be misread as wrapped.
	r = Row{InTime: "14:00", OutTime: "15:00", Status: StatusPending}
	if got := r.OvertimeMinutes(testNow); got != 0 {
		t.Errorf("future row overtime = %d, want 0", got)
	}
}

func TestTableLifecycle(t *testing.T) {
	tbl := Table{{PatientName: "ASHOK"}, {ID: "keep", PatientName: "MEERA"}}

	if !tbl.EnsureIDs() {
		t.Fatal("EnsureIDs should report a backfill")
	}
	if tbl[0].ID == "" || tbl[1].ID != "keep" {
		t.Fatal("EnsureIDs touched the wrong rows")
	}
	if tbl.EnsureIDs() {
		t.Error("second EnsureIDs should be a no-op")
	}

	tbl = tbl.AutoAppend()
	if len(tbl) != 3 || !tbl[2].Blank() {
		t.Fatalf("AutoAppend should add a blank row, got %d rows", len(tbl))
	}
	tbl = tbl.AutoAppend()
	if len(tbl) != 3 {
		t.Error("AutoAppend with a blank tail should not grow the table")
	}

	if tbl.FindByID("keep") == nil {
		t.Error("FindByID missed an existing row")
	}
	if tbl.FindByID("") != nil {
		t.Error("FindByID on empty ID should be nil")
	}

	if !tbl.DeleteByID("keep") {
		t.Fatal("DeleteByID failed")
	}
	if len(tbl) != 2 || tbl.FindByID("keep") != nil {
		t.Error("row not removed")
	}
	if tbl.DeleteByID("keep") {
		t.Error("double delete should report false")
	}
}

func TestClearPatientKeepsID(t *testing.T) {
	r := NewRow()
	id := r.ID
	r.PatientName = "ASHOK"
	r.First = "ANSHIKA"
	r.Dismissed = true

	r.ClearPatient()
	if r.ID != id {
		t.Error("logical delete must keep the stable identifier")
	}
	if r.PatientName != "" || r.First != "" || r.Dismissed {
		t.Error("logical delete must reset the scheduling fields")
	}
}

func TestBlocksRoundTrip(t *testing.T) {
	blocks := []TimeBlock{
		{Assistant: "ANYA", Date: "2025-06-02", Reason: "Backend Work", StartTime: "12:00", EndTime: "12:30"},
		{Assistant: "RAJA", Date: "2025-06-02", Reason: "Lab run", StartTime: "23:30", EndTime: "00:15"},
	}

	meta := map[string]string{}
	if err := EncodeBlocks(meta, blocks, testNow); err != nil {
		t.Fatal(err)
	}
	if meta[MetaTimeBlocksUpdatedAt] == "" {
		t.Error("update timestamp missing")
	}

	got := DecodeBlocks(meta)
	if len(got) != len(blocks) {
		t.Fatalf("decoded %d blocks, want %d", len(got), len(blocks))
	}
	for i := range blocks {
		if got[i] != blocks[i] {
			t.Errorf("block %d = %+v, want %+v", i, got[i], blocks[i])
		}
	}

	// Overnight block normalizes past midnight.
	start, end, ok := got[1].Window()
	if !ok || start != 1410 || end != 1455 {
		t.Errorf("overnight block window = (%d,%d,%v)", start, end, ok)
	}
}

func TestDecodeBlocksMalformed(t *testing.T) {
	if got := DecodeBlocks(map[string]string{MetaTimeBlocks: "{not json"}); got != nil {
		t.Errorf("malformed meta should decode as empty, got %v", got)
	}
	if got := DecodeBlocks(map[string]string{}); got != nil {
		t.Errorf("missing meta should decode as empty, got %v", got)
	}
}
