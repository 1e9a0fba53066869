package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dentaldesk/frontdesk/internal/reminder"
	"github.com/dentaldesk/frontdesk/internal/schedule"
	"github.com/dentaldesk/frontdesk/internal/timeofday"
)

// Legacy column names. They are the wire contract: external tooling reads
// these headers, so they survive even where the casing is inconsistent.
const (
	ColPatientID    = "Patient ID"
	ColPatientName  = "Patient Name"
	ColInTime       = "In Time"
	ColOutTime      = "Out Time"
	ColProcedure    = "Procedure"
	ColDoctor       = "DR."
	ColFirst        = "FIRST"
	ColSecond       = "SECOND"
	ColThird        = "Third"
	ColCasePaper    = "CASE PAPER"
	ColChair        = "OP"
	ColSuction      = "SUCTION"
	ColCleaning     = "CLEANING"
	ColStatus       = "STATUS"
	ColRowID        = "REMINDER_ROW_ID"
	ColSnoozeUntil  = "REMINDER_SNOOZE_UNTIL"
	ColDismissed    = "REMINDER_DISMISSED"
	ColStatusChange = "STATUS_CHANGED_AT"
	ColActualStart  = "ACTUAL_START_AT"
	ColActualEnd    = "ACTUAL_END_AT"
	ColStatusLog    = "STATUS_LOG"
)

// Columns lists the wire schema in its canonical order.
var Columns = []string{
	ColPatientID, ColPatientName, ColInTime, ColOutTime, ColProcedure,
	ColDoctor, ColFirst, ColSecond, ColThird, ColCasePaper, ColChair,
	ColSuction, ColCleaning, ColStatus, ColRowID, ColSnoozeUntil,
	ColDismissed, ColStatusChange, ColActualStart, ColActualEnd, ColStatusLog,
}

// Record is one row in wire form: column name to cell text.
type Record map[string]string

// EncodeRow translates a Row to the legacy column layout. Parseable time
// cells are normalized to HH:MM; unreadable ones pass through untouched so a
// bad cell survives a load/save cycle instead of silently vanishing.
func EncodeRow(r schedule.Row) Record {
	rec := Record{
		ColPatientID:    r.PatientID,
		ColPatientName:  r.PatientName,
		ColInTime:       encodeTime(r.InTime),
		ColOutTime:      encodeTime(r.OutTime),
		ColProcedure:    r.Procedure,
		ColDoctor:       r.Doctor,
		ColFirst:        r.First,
		ColSecond:       r.Second,
		ColThird:        r.Third,
		ColCasePaper:    r.CasePaper,
		ColChair:        r.Chair,
		ColSuction:      encodeBool(r.Suction),
		ColCleaning:     encodeBool(r.Cleaning),
		ColStatus:       string(r.Status),
		ColRowID:        r.ID,
		ColSnoozeUntil:  reminder.FormatSnoozeUntil(r.SnoozeUntil),
		ColDismissed:    encodeBool(r.Dismissed),
		ColStatusChange: encodeStamp(r.StatusChangedAt),
		ColActualStart:  encodeStamp(r.ActualStartAt),
		ColActualEnd:    encodeStamp(r.ActualEndAt),
	}
	if len(r.StatusLog) > 0 {
		if data, err := json.Marshal(r.StatusLog); err == nil {
			rec[ColStatusLog] = string(data)
		}
	}
	return rec
}

// DecodeRow translates a wire record back to a Row. Decoding is lenient:
// unreadable cells degrade to their zero value rather than failing the load,
// matching the fail-open parse policy.
func DecodeRow(rec Record, now time.Time) schedule.Row {
	r := schedule.Row{
		ID:          cell(rec, ColRowID),
		PatientID:   cell(rec, ColPatientID),
		PatientName: cell(rec, ColPatientName),
		InTime:      cell(rec, ColInTime),
		OutTime:     cell(rec, ColOutTime),
		Procedure:   cell(rec, ColProcedure),
		Doctor:      cell(rec, ColDoctor),
		First:       cell(rec, ColFirst),
		Second:      cell(rec, ColSecond),
		Third:       cell(rec, ColThird),
		CasePaper:   cell(rec, ColCasePaper),
		Chair:       cell(rec, ColChair),
		Suction:     decodeBool(cell(rec, ColSuction)),
		Cleaning:    decodeBool(cell(rec, ColCleaning)),
		Status:      schedule.Status(cell(rec, ColStatus)),
		Dismissed:   decodeBool(cell(rec, ColDismissed)),
	}

	if until, ok := reminder.ParseSnoozeUntil(cell(rec, ColSnoozeUntil), now); ok {
		r.SnoozeUntil = &until
	}
	r.StatusChangedAt = decodeStamp(cell(rec, ColStatusChange))
	r.ActualStartAt = decodeStamp(cell(rec, ColActualStart))
	r.ActualEndAt = decodeStamp(cell(rec, ColActualEnd))

	if raw := cell(rec, ColStatusLog); raw != "" {
		var log []schedule.StatusChange
		if err := json.Unmarshal([]byte(raw), &log); err == nil {
			r.StatusLog = log
		}
	}
	return r
}

func cell(rec Record, col string) string {
	v := strings.TrimSpace(rec[col])
	if strings.EqualFold(v, "nan") || strings.EqualFold(v, "none") || strings.EqualFold(v, "nat") {
		return ""
	}
	return v
}

func encodeTime(raw string) string {
	if t, ok := timeofday.Parse(raw); ok {
		return t.String()
	}
	return raw
}

func encodeBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func decodeBool(v string) bool {
	switch strings.ToUpper(v) {
	case "TRUE", "1", "T", "YES":
		return true
	}
	return false
}

func encodeStamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateTime)
}

func decodeStamp(v string) *time.Time {
	if v == "" {
		return nil
	}
	if t, err := time.ParseInLocation(time.DateTime, v, time.Local); err == nil {
		return &t
	}
	return nil
}
