package schedule

import (
	"strings"

	"github.com/google/uuid"
)

// Table is the full appointment grid in display order. Display order is not a
// stable key; row IDs are.
type Table []Row

// EnsureIDs backfills missing stable identifiers. Returns true when any row
// was assigned a new ID, so callers know the table needs saving.
func (t Table) EnsureIDs() bool {
	changed := false
	for i := range t {
		id := strings.TrimSpace(t[i].ID)
		if id == "" || strings.EqualFold(id, "nan") {
			t[i].ID = uuid.NewString()
			changed = true
		}
	}
	return changed
}

// AutoAppend adds a fresh blank row when the grid's last row is non-blank,
// so the front desk always has a row to type into.
func (t Table) AutoAppend() Table {
	if len(t) == 0 || !t[len(t)-1].Blank() {
		return append(t, NewRow())
	}
	return t
}

// FindByID returns a pointer into the table, or nil.
func (t Table) FindByID(id string) *Row {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for i := range t {
		if strings.TrimSpace(t[i].ID) == id {
			return &t[i]
		}
	}
	return nil
}

// DeleteByID physically removes a row. Returns false when the ID is unknown.
func (t *Table) DeleteByID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	for i := range *t {
		if strings.TrimSpace((*t)[i].ID) == id {
			*t = append((*t)[:i], (*t)[i+1:]...)
			return true
		}
	}
	return false
}

// Cleared returns a table of the same length with every row reset to blank.
// Row IDs are regenerated so stale reminder state cannot attach to the new
// rows.
func (t Table) Cleared() Table {
	out := make(Table, len(t))
	for i := range out {
		out[i] = NewRow()
	}
	return out
}
