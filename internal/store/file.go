package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

const (
	fileLoadRetries = 3
	fileRetryDelay  = 500 * time.Millisecond
)

// fileSnapshot is the on-disk layout: the row table in wire form plus the
// metadata blob.
type fileSnapshot struct {
	Rows []Record          `json:"rows"`
	Meta map[string]string `json:"meta"`
}

// FileStore persists the schedule as a local JSON workbook. External tools
// may rewrite the file between our reads, so loads retry a few times when
// the content looks torn mid-write.
type FileStore struct {
	path string
	now  func() time.Time
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, now: time.Now, log: log}
}

func (s *FileStore) Load(ctx context.Context) (schedule.Table, map[string]string, error) {
	var lastErr error

	for attempt := 0; attempt < fileLoadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(fileRetryDelay):
			}
		}

		data, err := os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			// Fresh install: an empty schedule, not an error.
			return schedule.Table{}, map[string]string{}, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, s.path, err)
		}

		var snap fileSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// A concurrent writer can leave a torn file; retry before failing.
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("schedule file unreadable, retrying")
			continue
		}

		now := s.now()
		rows := make(schedule.Table, 0, len(snap.Rows))
		for _, rec := range snap.Rows {
			rows = append(rows, DecodeRow(rec, now))
		}
		meta := snap.Meta
		if meta == nil {
			meta = map[string]string{}
		}
		return rows, meta, nil
	}

	return nil, nil, fmt.Errorf("%w: %s appears corrupted or mid-write: %v", ErrUnavailable, s.path, lastErr)
}

func (s *FileStore) Save(_ context.Context, tbl schedule.Table, meta map[string]string) error {
	snap := fileSnapshot{
		Rows: make([]Record, 0, len(tbl)),
		Meta: meta,
	}
	for _, row := range tbl {
		snap.Rows = append(snap.Rows, EncodeRow(row))
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedule snapshot: %w", err)
	}

	// Write-then-rename so a crashed save never leaves a torn file behind.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: prepare %s: %v", ErrUnavailable, s.path, err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrUnavailable, s.path, err)
	}
	return nil
}
