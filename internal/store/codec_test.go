package store

import (
	"testing"
	"time"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

var decodeNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)

func TestEncodeDecodeRow(t *testing.T) {
	stamp := time.Date(2025, 6, 2, 8, 45, 0, 0, time.Local)
	snooze := time.Unix(1748850600, 0)
	in := schedule.Row{
		ID: "row-1", PatientID: "P042", PatientName: "ASHOK",
		InTime: "9:30 AM", OutTime: "10:00", Procedure: "RCT",
		Doctor: "DR.NIMAI", First: "ARCHANA", Second: "MUKHILA", Third: "",
		CasePaper: "ANYA", Chair: "OP2", Suction: true, Cleaning: false,
		Status: schedule.StatusWaiting, SnoozeUntil: &snooze, Dismissed: false,
		StatusChangedAt: &stamp,
		StatusLog: []schedule.StatusChange{
			{At: "2025-06-02 08:45:00", From: "PENDING", To: "WAITING"},
		},
	}

	rec := EncodeRow(in)
	if rec[ColInTime] != "09:30" {
		t.Errorf("in time serialized as %q, want 24-hour HH:MM", rec[ColInTime])
	}
	if rec[ColDoctor] != "DR.NIMAI" || rec[ColSuction] != "TRUE" || rec[ColDismissed] != "FALSE" {
		t.Errorf("record = %v", rec)
	}

	out := DecodeRow(rec, decodeNow)
	if out.ID != in.ID || out.PatientName != in.PatientName || out.Doctor != in.Doctor {
		t.Errorf("identity fields lost: %+v", out)
	}
	if out.InTime != "09:30" || !out.Suction || out.Cleaning {
		t.Errorf("value fields lost: %+v", out)
	}
	if out.SnoozeUntil == nil || !out.SnoozeUntil.Equal(snooze) {
		t.Errorf("snooze = %v, want %v", out.SnoozeUntil, snooze)
	}
	if out.StatusChangedAt == nil || !out.StatusChangedAt.Equal(stamp) {
		t.Errorf("status changed at = %v", out.StatusChangedAt)
	}
	if len(out.StatusLog) != 1 || out.StatusLog[0].To != "WAITING" {
		t.Errorf("status log = %+v", out.StatusLog)
	}
}

func TestDecodeRowLenient(t *testing.T) {
	rec := Record{
		ColRowID:       "row-1",
		ColPatientName: "ASHOK",
		ColInTime:      "soonish",
		ColSuction:     "maybe",
		ColSnoozeUntil: "whenever",
		ColStatusLog:   "{broken",
		ColFirst:       "nan",
	}

	r := DecodeRow(rec, decodeNow)
	if r.ID != "row-1" || r.PatientName != "ASHOK" {
		t.Fatal("good cells must survive bad neighbors")
	}
	if r.InTime != "soonish" {
		t.Error("raw unparseable time should be preserved for display fallback")
	}
	if r.Suction || r.SnoozeUntil != nil || r.StatusLog != nil {
		t.Errorf("bad cells should degrade to zero values: %+v", r)
	}
	if r.First != "" {
		t.Error("nan placeholder should decode as empty")
	}
}

func TestDecodeRowLegacySnooze(t *testing.T) {
	rec := Record{ColRowID: "row-1", ColSnoozeUntil: "570"}
	r := DecodeRow(rec, decodeNow)

	want := time.Date(2025, 6, 2, 9, 30, 0, 0, time.Local)
	if r.SnoozeUntil == nil || !r.SnoozeUntil.Equal(want) {
		t.Errorf("legacy snooze = %v, want %v", r.SnoozeUntil, want)
	}
}

func TestEncodeRowKeepsUnparseableTimeRaw(t *testing.T) {
	rec := EncodeRow(schedule.Row{ID: "r", InTime: "soonish"})
	if rec[ColInTime] != "soonish" {
		t.Errorf("unparseable time rewritten to %q", rec[ColInTime])
	}
}
