package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/allocation"
	"github.com/dentaldesk/frontdesk/internal/availability"
	"github.com/dentaldesk/frontdesk/internal/notify"
	"github.com/dentaldesk/frontdesk/internal/reminder"
	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/schedule"
	"github.com/dentaldesk/frontdesk/internal/session"
	"github.com/dentaldesk/frontdesk/internal/store"
)

// Server bundles the dependencies the handlers share.
type Server struct {
	Ros      *roster.Roster
	Resolver *availability.Resolver
	Alloc    *allocation.Engine
	Reminder *reminder.Engine
	Session  *session.Session
	Notifier notify.Notifier
	Log      zerolog.Logger
	Now      func() time.Time
}

func getScheduleHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		views := make([]RowView, 0, len(tbl))
		for i := range tbl {
			views = append(views, viewFrom(&tbl[i], now))
		}
		writeJSON(w, http.StatusOK, ScheduleResponse{Rows: views, Meta: meta})
	}
}

// saveScheduleHandler replaces the whole grid with the client's snapshot.
// Last write wins; there is no merge of concurrent editors. Rows that cannot
// be applied are reported individually while the rest of the snapshot saves.
func saveScheduleHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		now := s.Now()
		prev, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		var rowErrs []RowError
		seen := make(map[string]bool)
		tbl := make(schedule.Table, 0, len(req.Rows))
		for i, p := range req.Rows {
			id := strings.TrimSpace(p.ID)
			if id != "" && seen[id] {
				rowErrs = append(rowErrs, RowError{Index: i, RowID: id, Details: "duplicate row id"})
				continue
			}
			row := p.toRow()
			if id == "" {
				row = withFreshID(row)
			} else {
				seen[id] = true
				// Server-side stamps are not client-editable; carry them over
				// from the previous snapshot and route status changes through
				// the transition endpoint.
				if old := prev.FindByID(id); old != nil {
					carryStamps(&row, old)
					if target := row.Status; target != old.Status {
						row.Status = old.Status
						schedule.ApplyStatus(&row, target, now)
					}
				}
			}
			tbl = append(tbl, row)
		}
		tbl = tbl.AutoAppend()

		var allocated []string
		if req.AutoAllocate {
			blocks := schedule.DecodeBlocks(meta)
			for i := range tbl {
				if s.Alloc.AutoFillRow(tbl, tbl[i].ID, blocks, true, now) {
					allocated = append(allocated, tbl[i].ID)
				}
			}
		}

		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		s.publish(r.Context(), notify.Event{Kind: notify.KindUpdated})

		writeJSON(w, http.StatusOK, SaveScheduleResponse{
			Saved:     len(tbl),
			Allocated: allocated,
			RowErrors: rowErrs,
		})
	}
}

func addRowHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p RowPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		row := withFreshID(p.toRow())
		if row.Status == "" {
			row.Status = schedule.StatusPending
		}

		// Fill the trailing blank row if one is waiting, otherwise append.
		if n := len(tbl); n > 0 && tbl[n-1].Blank() {
			row.ID = tbl[n-1].ID
			tbl[n-1] = row
		} else {
			tbl = append(tbl, row)
		}
		tbl = tbl.AutoAppend()

		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		s.publish(r.Context(), notify.Event{Kind: notify.KindUpdated, RowID: row.ID, Patient: row.PatientName})

		writeJSON(w, http.StatusCreated, viewFrom(&row, now))
	}
}

// deleteRowHandler clears the row in place by default, keeping its stable ID
// so reminder dismissals survive. ?hard=true removes the row entirely.
func deleteRowHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		hard := r.URL.Query().Get("hard") == "true"

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		if hard {
			if !tbl.DeleteByID(id) {
				writeError(w, http.StatusNotFound, "row_not_found", "no row with that id")
				return
			}
		} else {
			row := tbl.FindByID(id)
			if row == nil {
				writeError(w, http.StatusNotFound, "row_not_found", "no row with that id")
				return
			}
			row.ClearPatient()
		}

		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		s.publish(r.Context(), notify.Event{Kind: notify.KindUpdated, RowID: id})

		w.WriteHeader(http.StatusNoContent)
	}
}

func changeStatusHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req StatusChangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		to := schedule.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
		if to == "" {
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be non-empty")
			return
		}

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		row := tbl.FindByID(id)
		if row == nil {
			writeError(w, http.StatusNotFound, "row_not_found", "no row with that id")
			return
		}

		schedule.ApplyStatus(row, to, now)

		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewFrom(row, now))
	}
}

// clearScheduleHandler resets every row to blank for a fresh day. Row IDs
// are regenerated so reminder dismissals from the old day cannot leak in.
func clearScheduleHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		tbl = tbl.Cleared()
		s.Session.Reminders.Reset()

		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		s.publish(r.Context(), notify.Event{Kind: notify.KindUpdated})

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "schedule_store_unavailable",
			"the schedule backend is unreachable; check the connection and retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *Server) publish(ctx context.Context, ev notify.Event) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ctx, ev); err != nil {
		s.Log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("publish event")
	}
}

func withFreshID(row schedule.Row) schedule.Row {
	fresh := schedule.NewRow()
	row.ID = fresh.ID
	return row
}

func carryStamps(row, old *schedule.Row) {
	row.SnoozeUntil = old.SnoozeUntil
	row.Dismissed = old.Dismissed
	row.StatusChangedAt = old.StatusChangedAt
	row.ActualStartAt = old.ActualStartAt
	row.ActualEndAt = old.ActualEndAt
	row.StatusLog = old.StatusLog
}
