// Package session holds the per-session dashboard state: the pending-edit
// buffer, the auto-save toggle, the ad-hoc time blocks, and the reminder
// bookkeeping. State is explicit and passed around, never process-global, so
// multiple sessions stay independent and tests stay simple.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dentaldesk/frontdesk/internal/reminder"
	"github.com/dentaldesk/frontdesk/internal/schedule"
	"github.com/dentaldesk/frontdesk/internal/store"
)

type Session struct {
	mu sync.Mutex

	store    store.Store
	autoSave bool

	// pending buffers edits while auto-save is off. Single-owner: one
	// session, never shared.
	pending     schedule.Table
	pendingMeta map[string]string
	dirty       bool

	Reminders *reminder.State
}

func New(st store.Store, autoSave bool) *Session {
	return &Session{
		store:     st,
		autoSave:  autoSave,
		Reminders: reminder.NewState(),
	}
}

// Snapshot returns the working copy of the schedule: the pending buffer when
// unsaved edits exist, otherwise a fresh load from the store. Stable row IDs
// are backfilled on the way in.
func (s *Session) Snapshot(ctx context.Context, now time.Time) (schedule.Table, map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty {
		// Hand out a copy: interleaving handlers each edit their own
		// snapshot and race only at Apply, which is last-write-wins.
		return cloneTable(s.pending), cloneMeta(s.pendingMeta), nil
	}

	tbl, meta, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load schedule: %w", err)
	}
	if tbl.EnsureIDs() {
		// Persist freshly generated IDs immediately so reminder state has a
		// stable key even if the session never saves anything else.
		if err := s.store.Save(ctx, tbl, meta); err != nil {
			return nil, nil, fmt.Errorf("persist generated row ids: %w", err)
		}
	}
	s.Reminders.Load(tbl, now)
	return tbl, meta, nil
}

// Apply takes an edited snapshot. With auto-save on it commits straight to
// the store; otherwise it lands in the pending buffer until Flush.
func (s *Session) Apply(ctx context.Context, tbl schedule.Table, meta map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoSave {
		if err := s.store.Save(ctx, tbl, meta); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		s.dirty = false
		s.pending = nil
		s.pendingMeta = nil
		return nil
	}

	s.pending = cloneTable(tbl)
	s.pendingMeta = cloneMeta(meta)
	s.dirty = true
	return nil
}

func cloneTable(tbl schedule.Table) schedule.Table {
	if tbl == nil {
		return nil
	}
	out := make(schedule.Table, len(tbl))
	copy(out, tbl)
	for i := range out {
		out[i].StatusLog = append([]schedule.StatusChange(nil), out[i].StatusLog...)
	}
	return out
}

func cloneMeta(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

// Flush commits the pending buffer, if any.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.store.Save(ctx, s.pending, s.pendingMeta); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	s.dirty = false
	s.pending = nil
	s.pendingMeta = nil
	return nil
}

// Discard drops unsaved edits.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.pending = nil
	s.pendingMeta = nil
}

// SetAutoSave flips the toggle. Turning auto-save on does not flush existing
// pending edits; callers decide whether to Flush or Discard first.
func (s *Session) SetAutoSave(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSave = on
}

func (s *Session) AutoSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSave
}

// Dirty reports whether unsaved edits are buffered.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
