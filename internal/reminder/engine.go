// Package reminder tracks the 15-minute-ahead appointment reminders: firing,
// snoozing with resumable expiry, and per-row dismissal.
package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/notify"
	"github.com/dentaldesk/frontdesk/internal/schedule"
)

const (
	// DefaultLead is how far ahead of the in-time a reminder fires.
	DefaultLead = 15 * time.Minute
	// DefaultAutoSnooze keeps a fired reminder quiet between refresh ticks.
	DefaultAutoSnooze = 30 * time.Second
)

// State is the session-scoped reminder bookkeeping. It is owned by one
// session and passed explicitly; nothing here is process-global.
type State struct {
	// Snoozed maps row ID to the absolute snooze expiry.
	Snoozed map[string]time.Time
	// Dismissed rows never re-fire within the session unless the row's
	// identity changes.
	Dismissed map[string]bool

	prevOngoing  map[string]bool
	prevUpcoming map[string]bool
}

func NewState() *State {
	return &State{
		Snoozed:      make(map[string]time.Time),
		Dismissed:    make(map[string]bool),
		prevOngoing:  make(map[string]bool),
		prevUpcoming: make(map[string]bool),
	}
}

// Load mirrors the persisted snooze/dismiss fields of a freshly loaded table
// into the session state, so reminders resume across restarts. The persisted
// row is authoritative both ways: a row saved with dismissed=false (a manual
// snooze after a dismiss, for instance) clears any stale in-memory dismissal,
// and a row with no snooze drops the stale expiry. Already expired snoozes
// are skipped.
func (s *State) Load(tbl schedule.Table, now time.Time) {
	for i := range tbl {
		row := &tbl[i]
		id := strings.TrimSpace(row.ID)
		if id == "" {
			continue
		}
		if row.SnoozeUntil != nil && row.SnoozeUntil.After(now) {
			s.Snoozed[id] = *row.SnoozeUntil
		} else {
			delete(s.Snoozed, id)
		}
		if row.Dismissed {
			s.Dismissed[id] = true
		} else {
			delete(s.Dismissed, id)
		}
	}
}

// Reset drops all session reminder state, used after the schedule is cleared
// or replaced wholesale.
func (s *State) Reset() {
	*s = *NewState()
}

type Engine struct {
	notifier   notify.Notifier
	lead       time.Duration
	autoSnooze time.Duration
	log        zerolog.Logger
}

func NewEngine(notifier notify.Notifier, lead, autoSnooze time.Duration, log zerolog.Logger) *Engine {
	if lead <= 0 {
		lead = DefaultLead
	}
	if autoSnooze <= 0 {
		autoSnooze = DefaultAutoSnooze
	}
	return &Engine{notifier: notifier, lead: lead, autoSnooze: autoSnooze, log: log}
}

// Sweep runs one refresh cycle: drop expired snoozes, find rows inside the
// reminder window, emit notifications for rows that are neither snoozed nor
// dismissed, and auto-snooze each fired row so it stays quiet until the next
// expiry. Returns the IDs of rows whose persisted reminder fields changed,
// so the caller knows to save.
func (e *Engine) Sweep(ctx context.Context, tbl schedule.Table, st *State, now time.Time) []string {
	// Expired snoozes are simply dropped, not persisted as a clear; the next
	// eligibility pass re-fires naturally if the row is still in-window.
	for id, until := range st.Snoozed {
		if !until.After(now) {
			delete(st.Snoozed, id)
		}
	}

	var changed []string
	leadMinutes := int(e.lead.Minutes())

	for i := range tbl {
		row := &tbl[i]
		id := strings.TrimSpace(row.ID)
		if id == "" {
			continue
		}
		if row.Status.ReminderExempt() {
			continue
		}
		minsLeft, ok := row.MinutesUntilStart(now)
		if !ok || minsLeft <= 0 || minsLeft > leadMinutes {
			continue
		}
		if _, snoozed := st.Snoozed[id]; snoozed {
			continue
		}
		if st.Dismissed[id] {
			continue
		}

		in, _ := row.In()
		ev := notify.Event{
			Kind:        notify.KindReminder,
			RowID:       id,
			Patient:     row.PatientName,
			Doctor:      row.Doctor,
			Chair:       row.Chair,
			Procedure:   row.Procedure,
			StartTime:   in.String(),
			MinutesLeft: minsLeft,
			Assistants:  assignedNames(row),
		}
		if err := e.notifier.Publish(ctx, ev); err != nil {
			e.log.Warn().Err(err).Str("row_id", id).Msg("reminder publish failed")
			// Still snooze: a flaky sink must not turn into a reminder storm.
		}

		until := now.Add(e.autoSnooze)
		st.Snoozed[id] = until
		row.SnoozeUntil = &until
		row.Dismissed = false
		changed = append(changed, id)
	}

	return changed
}

// Snooze quiets a row's reminder until now+duration and clears any dismissal.
func (e *Engine) Snooze(tbl schedule.Table, st *State, rowID string, d time.Duration, now time.Time) bool {
	row := tbl.FindByID(rowID)
	if row == nil {
		return false
	}
	if d <= 0 {
		d = e.autoSnooze
	}
	until := now.Add(d)
	st.Snoozed[row.ID] = until
	delete(st.Dismissed, row.ID)
	row.SnoozeUntil = &until
	row.Dismissed = false
	return true
}

// Dismiss silences a row's reminder for good. It never re-fires for this row
// identifier, regardless of wall-clock time, until the row identity changes.
func (e *Engine) Dismiss(tbl schedule.Table, st *State, rowID string) bool {
	row := tbl.FindByID(rowID)
	if row == nil {
		return false
	}
	st.Dismissed[row.ID] = true
	delete(st.Snoozed, row.ID)
	row.SnoozeUntil = nil
	row.Dismissed = true
	return true
}

// SweepTransitions emits NOW ONGOING and upcoming-window events for rows
// that newly entered those derived states since the previous cycle.
func (e *Engine) SweepTransitions(ctx context.Context, tbl schedule.Table, st *State, now time.Time) {
	ongoing := make(map[string]bool)
	upcoming := make(map[string]bool)
	leadMinutes := int(e.lead.Minutes())

	for i := range tbl {
		row := &tbl[i]
		id := strings.TrimSpace(row.ID)
		if id == "" || row.Blank() {
			continue
		}

		if row.Ongoing(now) {
			ongoing[id] = true
			if !st.prevOngoing[id] {
				e.publish(ctx, notify.Event{
					Kind: notify.KindOngoing, RowID: id, Patient: row.PatientName,
					Doctor: row.Doctor, Chair: row.Chair, Procedure: row.Procedure,
				})
			}
			continue
		}

		if row.Status.Closed() {
			continue
		}
		if minsLeft, ok := row.MinutesUntilStart(now); ok && minsLeft > 0 && minsLeft <= leadMinutes {
			upcoming[id] = true
			if !st.prevUpcoming[id] {
				e.publish(ctx, notify.Event{
					Kind: notify.KindUpcoming, RowID: id, Patient: row.PatientName,
					Doctor: row.Doctor, Procedure: row.Procedure, MinutesLeft: minsLeft,
				})
			}
		}
	}

	st.prevOngoing = ongoing
	st.prevUpcoming = upcoming
}

func (e *Engine) publish(ctx context.Context, ev notify.Event) {
	if err := e.notifier.Publish(ctx, ev); err != nil {
		e.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("event publish failed")
	}
}

func assignedNames(row *schedule.Row) []string {
	var out []string
	for _, n := range []string{row.First, row.Second, row.Third} {
		n = strings.TrimSpace(n)
		if n != "" && !strings.EqualFold(n, "nan") && !strings.EqualFold(n, "none") {
			out = append(out, n)
		}
	}
	return out
}
