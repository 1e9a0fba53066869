package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentaldesk/frontdesk/internal/schedule"
)

// PgStore keeps the schedule in Postgres: one table of appointment rows with
// an explicit display position, and a key/value table for the metadata blob.
// Saves replace the whole snapshot inside one transaction.
type PgStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, now: time.Now}
}

// Schema returns the DDL the store expects; cmd/seed applies it.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS appointment_rows (
    row_id            TEXT PRIMARY KEY,
    position          INT NOT NULL,
    patient_id        TEXT NOT NULL DEFAULT '',
    patient_name      TEXT NOT NULL DEFAULT '',
    in_time           TEXT NOT NULL DEFAULT '',
    out_time          TEXT NOT NULL DEFAULT '',
    procedure         TEXT NOT NULL DEFAULT '',
    doctor            TEXT NOT NULL DEFAULT '',
    first_assistant   TEXT NOT NULL DEFAULT '',
    second_assistant  TEXT NOT NULL DEFAULT '',
    third_assistant   TEXT NOT NULL DEFAULT '',
    case_paper        TEXT NOT NULL DEFAULT '',
    chair             TEXT NOT NULL DEFAULT '',
    suction           BOOLEAN NOT NULL DEFAULT FALSE,
    cleaning          BOOLEAN NOT NULL DEFAULT FALSE,
    status            TEXT NOT NULL DEFAULT '',
    snooze_until      BIGINT,
    dismissed         BOOLEAN NOT NULL DEFAULT FALSE,
    status_changed_at TIMESTAMPTZ,
    actual_start_at   TIMESTAMPTZ,
    actual_end_at     TIMESTAMPTZ,
    status_log        JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS schedule_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS staff_profiles (
    name       TEXT PRIMARY KEY,
    department TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'ACTIVE',
    weekly_off TEXT NOT NULL DEFAULT ''
);
`
}

func (s *PgStore) Load(ctx context.Context) (schedule.Table, map[string]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT row_id, patient_id, patient_name, in_time, out_time, procedure,
		       doctor, first_assistant, second_assistant, third_assistant,
		       case_paper, chair, suction, cleaning, status,
		       snooze_until, dismissed, status_changed_at, actual_start_at,
		       actual_end_at, status_log
		FROM appointment_rows
		ORDER BY position
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query rows: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var tbl schedule.Table
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan appointment row: %w", err)
		}
		tbl = append(tbl, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: read rows: %v", ErrUnavailable, err)
	}

	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, nil, err
	}
	return tbl, meta, nil
}

func (s *PgStore) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM schedule_meta`)
	if err != nil {
		return nil, fmt.Errorf("%w: query meta: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *PgStore) Save(ctx context.Context, tbl schedule.Table, meta map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin save: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM appointment_rows`); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schedule_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}

	for pos, row := range tbl {
		if err := insertRow(ctx, tx, pos, row); err != nil {
			return fmt.Errorf("insert row %d: %w", pos, err)
		}
	}
	for k, v := range meta {
		if _, err := tx.Exec(ctx, `INSERT INTO schedule_meta (key, value) VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("insert meta %q: %w", k, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit save: %v", ErrUnavailable, err)
	}
	return nil
}

func insertRow(ctx context.Context, tx pgx.Tx, pos int, r schedule.Row) error {
	var snooze *int64
	if r.SnoozeUntil != nil {
		v := r.SnoozeUntil.Unix()
		snooze = &v
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO appointment_rows (
			row_id, position, patient_id, patient_name, in_time, out_time,
			procedure, doctor, first_assistant, second_assistant,
			third_assistant, case_paper, chair, suction, cleaning, status,
			snooze_until, dismissed, status_changed_at, actual_start_at,
			actual_end_at, status_log
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`,
		r.ID, pos, r.PatientID, r.PatientName, r.InTime, r.OutTime,
		r.Procedure, r.Doctor, r.First, r.Second,
		r.Third, r.CasePaper, r.Chair, r.Suction, r.Cleaning, string(r.Status),
		snooze, r.Dismissed, r.StatusChangedAt, r.ActualStartAt,
		r.ActualEndAt, r.StatusLog,
	)
	return err
}

func scanRow(rows pgx.Rows) (schedule.Row, error) {
	var r schedule.Row
	var snooze *int64
	var status string

	err := rows.Scan(
		&r.ID, &r.PatientID, &r.PatientName, &r.InTime, &r.OutTime,
		&r.Procedure, &r.Doctor, &r.First, &r.Second, &r.Third,
		&r.CasePaper, &r.Chair, &r.Suction, &r.Cleaning, &status,
		&snooze, &r.Dismissed, &r.StatusChangedAt, &r.ActualStartAt,
		&r.ActualEndAt, &r.StatusLog,
	)
	if err != nil {
		return schedule.Row{}, err
	}

	r.Status = schedule.Status(status)
	if snooze != nil {
		t := time.Unix(*snooze, 0)
		r.SnoozeUntil = &t
	}
	return r, nil
}

// LoadProfiles reads the optional profile store used to override the static
// roster at startup. A missing table is not an error; the static defaults
// simply stand.
func LoadProfiles(ctx context.Context, pool *pgxpool.Pool) ([]ProfileRecord, error) {
	rows, err := pool.Query(ctx, `SELECT name, department, status, weekly_off FROM staff_profiles`)
	if err != nil {
		return nil, fmt.Errorf("query staff profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRecord
	for rows.Next() {
		var p ProfileRecord
		if err := rows.Scan(&p.Name, &p.Department, &p.Status, &p.WeeklyOff); err != nil {
			return nil, fmt.Errorf("scan staff profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProfileRecord mirrors roster.Profile at the store boundary.
type ProfileRecord struct {
	Name       string
	Department string
	Status     string
	WeeklyOff  string
}
