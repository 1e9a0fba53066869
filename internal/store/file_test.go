package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allotment.json")
	s := NewFileStore(path, zerolog.Nop())
	ctx := context.Background()

	tbl := schedule.Table{
		{ID: "r1", PatientName: "ASHOK", InTime: "09:30", OutTime: "10:00", Status: schedule.StatusPending},
		{ID: "r2", PatientName: "MEERA", InTime: "10:00", OutTime: "10:45", Status: schedule.StatusWaiting},
	}
	meta := map[string]string{"time_blocks": `[]`}

	if err := s.Save(ctx, tbl, meta); err != nil {
		t.Fatal(err)
	}

	gotRows, gotMeta, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotRows) != 2 || gotRows[0].ID != "r1" || gotRows[1].PatientName != "MEERA" {
		t.Errorf("rows = %+v", gotRows)
	}
	if gotMeta["time_blocks"] != "[]" {
		t.Errorf("meta = %v", gotMeta)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	rows, meta, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 || meta == nil {
		t.Errorf("fresh install should load empty, got %v / %v", rows, meta)
	}
}

func TestFileStoreCorruptFileSurfacesAfterRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allotment.json")
	if err := os.WriteFile(path, []byte(`{"rows": [{"Pat`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, zerolog.Nop())
	_, _, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("corrupt file should fail after retries")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestFileStoreLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allotment.json")
	s := NewFileStore(path, zerolog.Nop())
	ctx := context.Background()

	first := schedule.Table{{ID: "r1", PatientName: "ASHOK"}}
	second := schedule.Table{{ID: "r2", PatientName: "MEERA"}}

	if err := s.Save(ctx, first, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, second, nil); err != nil {
		t.Fatal(err)
	}

	rows, _, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "r2" {
		t.Errorf("snapshot save should fully replace: %+v", rows)
	}
}
