// Package alias implements the fixed alias-mapping table of spec.md §4.3:
// at most one row per 12-bit CAN alias at any moment, with duplicate and
// permitted flags maintained by the login state machine (pkg/login) and
// the CAN RX path (pkg/canframe).
package alias

import (
	"sync"

	olcb "github.com/openlcb-go/golcb"
)

// Mapping binds one CAN alias to one 48-bit NodeID for the duration of a
// login session.
type Mapping struct {
	Alias       olcb.Alias
	NodeID      olcb.NodeID
	IsDuplicate bool
	IsPermitted bool
	InUse       bool
}

// Table is the fixed-size alias mapping table shared between the main
// loop and the CAN RX path; callers hold the engine's shared-resource
// lock around every call exactly as with pkg/buffer.Store.
type Table struct {
	mu   sync.Mutex
	rows []Mapping
}

func NewTable(capacity int) *Table {
	return &Table{rows: make([]Mapping, capacity)}
}

// Register inserts a tentative (not-yet-permitted) mapping. It fails with
// ErrAliasTableFull when no row is free, and never inserts a second row
// for an alias already present (the invariant in spec.md §4.3/§8).
func (t *Table) Register(a olcb.Alias, id olcb.NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].InUse && t.rows[i].Alias == a {
			return olcb.ErrAliasTableFull
		}
	}
	for i := range t.rows {
		if !t.rows[i].InUse {
			t.rows[i] = Mapping{Alias: a, NodeID: id, InUse: true}
			return nil
		}
	}
	return olcb.ErrAliasTableFull
}

// Unregister clears the row for an alias, e.g. on AMR or session reset.
func (t *Table) Unregister(a olcb.Alias) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].InUse && t.rows[i].Alias == a {
			t.rows[i] = Mapping{}
			return
		}
	}
}

// FindByAlias performs the linear scan spec.md §4.3 calls for.
func (t *Table) FindByAlias(a olcb.Alias) (Mapping, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if row.InUse && row.Alias == a {
			return row, true
		}
	}
	return Mapping{}, false
}

func (t *Table) FindByNodeID(id olcb.NodeID) (Mapping, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if row.InUse && row.NodeID == id {
			return row, true
		}
	}
	return Mapping{}, false
}

// SetPermitted marks a mapping permitted once CID/RID/AMD has completed
// without observing a conflicting duplicate alias.
func (t *Table) SetPermitted(a olcb.Alias, permitted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].InUse && t.rows[i].Alias == a {
			t.rows[i].IsPermitted = permitted
			return
		}
	}
}

// SetDuplicate marks a mapping as conflicting; the CAN RX path calls this
// when it observes this alias claimed by a different source (spec.md §4.5).
func (t *Table) SetDuplicate(a olcb.Alias) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].InUse && t.rows[i].Alias == a {
			t.rows[i].IsDuplicate = true
			return
		}
	}
}

// ClearDuplicate resets the duplicate flag once a node has regenerated a
// fresh alias and re-entered the login sequence.
func (t *Table) ClearDuplicate(a olcb.Alias) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].InUse && t.rows[i].Alias == a {
			t.rows[i].IsDuplicate = false
			return
		}
	}
}
