// Package msgqueue implements the buffer list and priority FIFO of
// spec.md §4.2: a fixed random-access list keyed by {source alias, dest
// alias, MTI} for in-progress multi-frame reassembly, and a priority FIFO
// of completed inbound messages ordered by the upper bits of the MTI.
package msgqueue

import (
	"sync"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/buffer"
)

// List is the fixed array of partially-assembled multi-frame messages.
type List struct {
	mu      sync.Mutex
	entries []listEntry
}

type listEntry struct {
	handle      buffer.Handle
	sourceAlias olcb.Alias
	destAlias   olcb.Alias
	mti         olcb.MTI
	inUse       bool
}

func NewList(capacity int) *List {
	return &List{entries: make([]listEntry, capacity)}
}

// Add fills the first empty slot, or returns ErrBufferListFull. If a slot
// already holds a FIRST frame for the same {sourceAlias, destAlias, mti}
// triple, it is silently replaced (spec.md §4.5: "first-while-first-
// already-open replaces the stale slot").
func (l *List) Add(h buffer.Handle, sourceAlias, destAlias olcb.Alias, mti olcb.MTI) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].inUse && l.entries[i].sourceAlias == sourceAlias &&
			l.entries[i].destAlias == destAlias && l.entries[i].mti == mti {
			l.entries[i] = listEntry{handle: h, sourceAlias: sourceAlias, destAlias: destAlias, mti: mti, inUse: true}
			return nil
		}
	}
	for i := range l.entries {
		if !l.entries[i].inUse {
			l.entries[i] = listEntry{handle: h, sourceAlias: sourceAlias, destAlias: destAlias, mti: mti, inUse: true}
			return nil
		}
	}
	return olcb.ErrBufferListFull
}

// Find performs the linear scan spec.md §4.2 calls for.
func (l *List) Find(sourceAlias, destAlias olcb.Alias, mti olcb.MTI) (buffer.Handle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.inUse && e.sourceAlias == sourceAlias && e.destAlias == destAlias && e.mti == mti {
			return e.handle, true
		}
	}
	return buffer.Handle{}, false
}

// Release clears the slot without freeing the underlying buffer; the
// caller decides separately whether to free (reassembly complete, move to
// FIFO) or free outright (protocol violation, drop).
func (l *List) Release(sourceAlias, destAlias olcb.Alias, mti olcb.MTI) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].inUse && l.entries[i].sourceAlias == sourceAlias &&
			l.entries[i].destAlias == destAlias && l.entries[i].mti == mti {
			l.entries[i] = listEntry{}
			return
		}
	}
}

const priorityLevels = 8

// FIFO is the priority queue of completed inbound messages. Messages are
// dequeued in MTI-priority order (lower numeric priority first); messages
// of equal priority come out FIFO.
type FIFO struct {
	mu       sync.Mutex
	buckets  [priorityLevels][]buffer.Handle
	size     int
	capacity int
}

func NewFIFO(capacity int) *FIFO {
	return &FIFO{capacity: capacity}
}

func (f *FIFO) Push(h buffer.Handle, mti olcb.MTI) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.size >= f.capacity {
		return olcb.ErrFIFOFull
	}
	p := mti.Priority()
	f.buckets[p] = append(f.buckets[p], h)
	f.size++
	return nil
}

// Pop removes and returns the highest-priority, oldest-enqueued handle.
func (f *FIFO) Pop() (buffer.Handle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p := 0; p < priorityLevels; p++ {
		if len(f.buckets[p]) > 0 {
			h := f.buckets[p][0]
			f.buckets[p] = f.buckets[p][1:]
			f.size--
			return h, true
		}
	}
	return buffer.Handle{}, false
}

func (f *FIFO) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}
