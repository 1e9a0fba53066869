package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultSnoozeMinutes = 5

func snoozeReminderHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req SnoozeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		minutes := req.Minutes
		if minutes <= 0 {
			minutes = defaultSnoozeMinutes
		}

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		if !s.Reminder.Snooze(tbl, s.Session.Reminders, id, time.Duration(minutes)*time.Minute, now) {
			writeError(w, http.StatusNotFound, "row_not_found", "no row with that id")
			return
		}
		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewFrom(tbl.FindByID(id), now))
	}
}

func dismissReminderHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		if !s.Reminder.Dismiss(tbl, s.Session.Reminders, id) {
			writeError(w, http.StatusNotFound, "row_not_found", "no row with that id")
			return
		}
		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewFrom(tbl.FindByID(id), now))
	}
}
