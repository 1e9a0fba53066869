package store

import (
	"context"
	"sync"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

// MemoryStore keeps the schedule in process memory. Used for tests and as a
// scratch backend for demos.
type MemoryStore struct {
	mu   sync.Mutex
	rows schedule.Table
	meta map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{meta: make(map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context) (schedule.Table, map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTable(s.rows), copyMeta(s.meta), nil
}

func (s *MemoryStore) Save(_ context.Context, tbl schedule.Table, meta map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = copyTable(tbl)
	s.meta = copyMeta(meta)
	return nil
}

func copyTable(tbl schedule.Table) schedule.Table {
	out := make(schedule.Table, len(tbl))
	copy(out, tbl)
	return out
}

func copyMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
