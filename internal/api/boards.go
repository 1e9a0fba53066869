package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dentaldesk/frontdesk/internal/schedule"
	"github.com/dentaldesk/frontdesk/internal/timeofday"
)

func allocationPreviewHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		doctor := q.Get("doctor")
		if strings.TrimSpace(doctor) == "" {
			writeError(w, http.StatusBadRequest, "missing_doctor", "doctor query parameter is required")
			return
		}

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		blocks := schedule.DecodeBlocks(meta)

		assignment := s.Alloc.Allocate(doctor, q.Get("start"), q.Get("end"), tbl, blocks, q.Get("exclude"), now)
		writeJSON(w, http.StatusOK, assignment)
	}
}

func availabilityHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		department := q.Get("department")
		if strings.TrimSpace(department) == "" {
			writeError(w, http.StatusBadRequest, "missing_department", "department query parameter is required")
			return
		}

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		blocks := schedule.DecodeBlocks(meta)

		results := s.Resolver.AvailableStaff(department, q.Get("start"), q.Get("end"), tbl, blocks, q.Get("exclude"), now)
		writeJSON(w, http.StatusOK, results)
	}
}

// staffStatusHandler is the live board: one line per assistant with what they
// are doing right now.
func staffStatusHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		blocks := schedule.DecodeBlocks(meta)

		// Probe a one-minute window starting now.
		start := timeofday.FromTime(now)
		end := timeofday.FromMinutes(start.Minutes() + 1)

		var board []StaffStatus
		for _, name := range s.Ros.AllAssistants() {
			st := StaffStatus{
				Name:       name,
				Department: s.Ros.DepartmentForAssistant(name),
				State:      "FREE",
			}
			ok, reason := s.Resolver.IsAvailable(name, start.String(), end.String(), tbl, blocks, "", now)
			if !ok {
				st.Detail = reason
				switch {
				case strings.HasPrefix(reason, "Weekly off"):
					st.State = "WEEKLY OFF"
				case strings.HasPrefix(reason, "Blocked"):
					st.State = "BLOCKED"
				default:
					st.State = "WITH PATIENT"
				}
			}
			board = append(board, st)
		}
		writeJSON(w, http.StatusOK, board)
	}
}

func listBlocksHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, meta, err := s.Session.Snapshot(r.Context(), s.Now())
		if err != nil {
			handleStoreError(w, err)
			return
		}
		blocks := schedule.DecodeBlocks(meta)
		if blocks == nil {
			blocks = []schedule.TimeBlock{}
		}
		writeJSON(w, http.StatusOK, blocks)
	}
}

func addBlockHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if strings.TrimSpace(req.Assistant) == "" {
			writeError(w, http.StatusBadRequest, "missing_assistant", "assistant is required")
			return
		}
		start, okStart := timeofday.Parse(req.StartTime)
		end, okEnd := timeofday.Parse(req.EndTime)
		if !okStart || !okEnd {
			writeError(w, http.StatusBadRequest, "invalid_window", "start_time and end_time must be readable times")
			return
		}

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		blk := schedule.NewTimeBlock(req.Assistant, start, end, req.Reason, now)
		if req.Date != "" {
			blk.Date = req.Date
		}
		blocks := append(schedule.DecodeBlocks(meta), blk)
		if meta == nil {
			meta = make(map[string]string)
		}
		if err := schedule.EncodeBlocks(meta, blocks, now); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, blk)
	}
}

// deleteBlockHandler removes blocks matching assistant (+ optional date and
// start time filters).
func deleteBlockHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assistant := q.Get("assistant")
		if strings.TrimSpace(assistant) == "" {
			writeError(w, http.StatusBadRequest, "missing_assistant", "assistant query parameter is required")
			return
		}
		date := q.Get("date")
		start := q.Get("start")

		now := s.Now()
		tbl, meta, err := s.Session.Snapshot(r.Context(), now)
		if err != nil {
			handleStoreError(w, err)
			return
		}

		blocks := schedule.DecodeBlocks(meta)
		kept := blocks[:0]
		removed := 0
		for _, b := range blocks {
			match := s.Ros.SameStaff(b.Assistant, assistant) &&
				(date == "" || b.Date == date) &&
				(start == "" || b.StartTime == start)
			if match {
				removed++
				continue
			}
			kept = append(kept, b)
		}
		if removed == 0 {
			writeError(w, http.StatusNotFound, "block_not_found", "no matching time block")
			return
		}

		if meta == nil {
			meta = make(map[string]string)
		}
		if err := schedule.EncodeBlocks(meta, kept, now); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if err := s.Session.Apply(r.Context(), tbl, meta); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	}
}
