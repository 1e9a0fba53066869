// Package store persists the schedule: an ordered table of appointment rows
// plus an opaque key/value metadata blob. Implementations are swappable and
// selected by explicit configuration. Saves are full-snapshot, last writer
// wins; there is no versioning scheme.
package store

import (
	"context"
	"errors"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

var (
	// ErrUnavailable marks store connectivity failures. Handlers surface it
	// as a blocking error with remediation hints; no partial write happens.
	ErrUnavailable = errors.New("schedule store unavailable")
)

type Store interface {
	// Load returns the full row table in display order and the metadata map.
	Load(ctx context.Context) (schedule.Table, map[string]string, error)
	// Save unconditionally overwrites the store with the given snapshot.
	Save(ctx context.Context, tbl schedule.Table, meta map[string]string) error
}
