package api

import (
	"time"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

// RowPayload is the wire form of one schedule row. Raw time strings pass
// through unchanged so a value the parser cannot read survives a round-trip.
type RowPayload struct {
	ID          string `json:"id,omitempty"`
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	InTime      string `json:"in_time"`
	OutTime     string `json:"out_time"`
	Procedure   string `json:"procedure"`
	Doctor      string `json:"doctor"`
	First       string `json:"first"`
	Second      string `json:"second"`
	Third       string `json:"third"`
	CasePaper   string `json:"case_paper"`
	Chair       string `json:"chair"`
	Suction     bool   `json:"suction"`
	Cleaning    bool   `json:"cleaning"`
	Status      string `json:"status"`
}

// RowView is RowPayload plus server-derived fields.
type RowView struct {
	RowPayload

	Ongoing           bool   `json:"ongoing"`
	MinutesUntilStart *int   `json:"minutes_until_start,omitempty"`
	OvertimeMinutes   int    `json:"overtime_minutes,omitempty"`
	SnoozeUntil       string `json:"snooze_until,omitempty"`
	Dismissed         bool   `json:"dismissed,omitempty"`

	StatusChangedAt string                  `json:"status_changed_at,omitempty"`
	ActualStartAt   string                  `json:"actual_start_at,omitempty"`
	ActualEndAt     string                  `json:"actual_end_at,omitempty"`
	StatusLog       []schedule.StatusChange `json:"status_log,omitempty"`
}

type ScheduleResponse struct {
	Rows []RowView         `json:"rows"`
	Meta map[string]string `json:"meta,omitempty"`
}

type SaveScheduleRequest struct {
	Rows []RowPayload `json:"rows"`
	// AutoAllocate runs the assistant auto-fill over every row after the
	// incoming edits are applied, filling empty slots only.
	AutoAllocate bool `json:"auto_allocate,omitempty"`
}

// RowError reports one row that could not be applied during a bulk save.
// The rest of the snapshot still saves.
type RowError struct {
	Index   int    `json:"index"`
	RowID   string `json:"row_id,omitempty"`
	Details string `json:"details"`
}

type SaveScheduleResponse struct {
	Saved     int        `json:"saved"`
	Allocated []string   `json:"allocated,omitempty"`
	RowErrors []RowError `json:"row_errors,omitempty"`
}

type StatusChangeRequest struct {
	Status string `json:"status"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes,omitempty"`
}

type BlockRequest struct {
	Assistant string `json:"assistant"`
	Date      string `json:"date,omitempty"`
	Reason    string `json:"reason,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type StaffStatus struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	State      string `json:"state"` // FREE, BLOCKED, WITH PATIENT, WEEKLY OFF
	Detail     string `json:"detail,omitempty"`
}

func (p RowPayload) toRow() schedule.Row {
	return schedule.Row{
		ID:          p.ID,
		PatientID:   p.PatientID,
		PatientName: p.PatientName,
		InTime:      p.InTime,
		OutTime:     p.OutTime,
		Procedure:   p.Procedure,
		Doctor:      p.Doctor,
		First:       p.First,
		Second:      p.Second,
		Third:       p.Third,
		CasePaper:   p.CasePaper,
		Chair:       p.Chair,
		Suction:     p.Suction,
		Cleaning:    p.Cleaning,
		Status:      schedule.Status(p.Status),
	}
}

func payloadFrom(r *schedule.Row) RowPayload {
	return RowPayload{
		ID:          r.ID,
		PatientID:   r.PatientID,
		PatientName: r.PatientName,
		InTime:      r.InTime,
		OutTime:     r.OutTime,
		Procedure:   r.Procedure,
		Doctor:      r.Doctor,
		First:       r.First,
		Second:      r.Second,
		Third:       r.Third,
		CasePaper:   r.CasePaper,
		Chair:       r.Chair,
		Suction:     r.Suction,
		Cleaning:    r.Cleaning,
		Status:      string(r.Status),
	}
}

func viewFrom(r *schedule.Row, now time.Time) RowView {
	v := RowView{
		RowPayload: payloadFrom(r),
		Ongoing:    r.Ongoing(now),
		Dismissed:  r.Dismissed,
		StatusLog:  r.StatusLog,
	}
	if mins, ok := r.MinutesUntilStart(now); ok && mins > 0 {
		v.MinutesUntilStart = &mins
	}
	v.OvertimeMinutes = r.OvertimeMinutes(now)
	v.SnoozeUntil = stamp(r.SnoozeUntil)
	v.StatusChangedAt = stamp(r.StatusChangedAt)
	v.ActualStartAt = stamp(r.ActualStartAt)
	v.ActualEndAt = stamp(r.ActualEndAt)
	return v
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateTime)
}
