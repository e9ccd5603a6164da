// Package buffer implements the fixed-capacity, reference-counted message
// buffer pool described in spec.md §4.1: three static size classes (basic,
// datagram, SNIP), no dynamic allocation, NULL-safe idempotent free.
package buffer

import (
	"sync"

	olcb "github.com/openlcb-go/golcb"
)

// Default capacities, sized for a typical embedded node; callers size
// their own pool via NewStore for larger PC-hosted bridges.
const (
	DefaultBasicCount    = 16
	DefaultDatagramCount = 4
	DefaultSNIPCount     = 2

	BasicPayloadMax    = 8
	DatagramPayloadMax = 72
	SNIPPayloadMax     = 253
)

// Handle is an opaque index into a size-class array, the "handle into a
// fixed pool" pattern recommended in spec.md §9 in place of the source's
// raw buffer pointers.
type Handle struct {
	kind olcb.MessageKind
	idx  int
	// generation guards against stale handles: a handle captured before a
	// slot's refcount reached zero and got reused no longer validates.
	generation uint32
}

func (h Handle) Valid() bool { return h.idx >= 0 }

var invalidHandle = Handle{idx: -1}

type slot struct {
	msg        olcb.Message
	allocated  bool
	refcount   int
	generation uint32
}

// Store is the fixed pool of message buffers in three size classes. Every
// exported method takes the Store's own mutex, so callers need no outside
// lock around it.
type Store struct {
	mu      sync.Mutex
	basic   []slot
	datagr  []slot
	snip    []slot
	peak    map[olcb.MessageKind]int
	current map[olcb.MessageKind]int
}

func NewStore(basicCount, datagramCount, snipCount int) *Store {
	return &Store{
		basic:   make([]slot, basicCount),
		datagr:  make([]slot, datagramCount),
		snip:    make([]slot, snipCount),
		peak:    map[olcb.MessageKind]int{},
		current: map[olcb.MessageKind]int{},
	}
}

func NewDefaultStore() *Store {
	return NewStore(DefaultBasicCount, DefaultDatagramCount, DefaultSNIPCount)
}

func (s *Store) classFor(kind olcb.MessageKind) []slot {
	switch kind {
	case olcb.KindDatagram:
		return s.datagr
	case olcb.KindSNIP:
		return s.snip
	default:
		return s.basic
	}
}

// Allocate returns a handle to a fresh, zeroed message of the requested
// kind, or ErrBufferPoolExhausted when the size class is full.
func (s *Store) Allocate(kind olcb.MessageKind) (Handle, *olcb.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	class := s.classForLocked(kind)
	for i := range class {
		if !class[i].allocated {
			class[i].allocated = true
			class[i].refcount = 1
			class[i].generation++
			class[i].msg = olcb.Message{Kind: kind}
			s.current[kind]++
			if s.current[kind] > s.peak[kind] {
				s.peak[kind] = s.current[kind]
			}
			return Handle{kind: kind, idx: i, generation: class[i].generation}, &class[i].msg, nil
		}
	}
	return invalidHandle, nil, olcb.ErrBufferPoolExhausted
}

// classForLocked returns the backing slice for a kind. Like classFor above,
// it returns a slice header that shares s's backing array, so writes
// through it (Allocate/IncRef/Free) reach s's own slots.
func (s *Store) classForLocked(kind olcb.MessageKind) []slot {
	switch kind {
	case olcb.KindDatagram:
		return s.datagr
	case olcb.KindSNIP:
		return s.snip
	default:
		return s.basic
	}
}

func (s *Store) lookup(h Handle) *slot {
	class := s.classForLocked(h.kind)
	if h.idx < 0 || h.idx >= len(class) {
		return nil
	}
	sl := &class[h.idx]
	if !sl.allocated || sl.generation != h.generation {
		return nil
	}
	return sl
}

// Get returns the message for a handle, or nil if the handle is stale.
func (s *Store) Get(h Handle) *olcb.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(h)
	if sl == nil {
		return nil
	}
	return &sl.msg
}

// IncRef increments the refcount of a still-live handle; shared ownership
// across the FIFO and a retry store both holding the same message.
func (s *Store) IncRef(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(h)
	if sl == nil {
		return
	}
	sl.refcount++
}

// Free decrements the refcount and reclaims the slot at zero. NULL-safe
// (a stale or already-freed handle is a silent no-op) and idempotent
// beyond zero, matching spec.md §4.1's invariant.
func (s *Store) Free(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(h)
	if sl == nil {
		return
	}
	sl.refcount--
	if sl.refcount <= 0 {
		sl.allocated = false
		sl.refcount = 0
		sl.msg = olcb.Message{}
		s.current[h.kind]--
	}
}

// Stats reports current and peak occupancy for a size class.
type Stats struct {
	Current int
	Peak    int
	Total   int
}

func (s *Store) Stats(kind olcb.MessageKind) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Current: s.current[kind],
		Peak:    s.peak[kind],
		Total:   len(s.classForLocked(kind)),
	}
}

// KindForPayload picks the smallest size class that can hold n bytes,
// used by callers building an outgoing message before they know its final
// payload length.
func KindForPayload(n int) olcb.MessageKind {
	switch {
	case n > DatagramPayloadMax:
		return olcb.KindSNIP
	case n > BasicPayloadMax:
		return olcb.KindDatagram
	default:
		return olcb.KindBasic
	}
}
