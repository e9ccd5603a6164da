// Package node implements the fixed node pool of spec.md §3: each virtual
// node's parameters, producer/consumer event lists, alias, run-state and
// owner lock.
package node

import (
	"sync"

	olcb "github.com/openlcb-go/golcb"
)

// RunState is the per-node login/run sequence of spec.md §3 and §4.4/§4.8.
type RunState uint8

const (
	RunStateInit RunState = iota
	RunStateGenerateSeed
	RunStateGenerateAlias
	RunStateLoadCheckID07
	RunStateLoadCheckID06
	RunStateLoadCheckID05
	RunStateLoadCheckID04
	RunStateWait200ms
	RunStateLoadReserveID
	RunStateLoadAliasMapDefinition
	RunStateLoadInitializationComplete
	RunStateLoadProducerEvents
	RunStateLoadConsumerEvents
	RunStateRun
)

func (s RunState) String() string {
	switch s {
	case RunStateInit:
		return "INIT"
	case RunStateGenerateSeed:
		return "GENERATE_SEED"
	case RunStateGenerateAlias:
		return "GENERATE_ALIAS"
	case RunStateLoadCheckID07:
		return "LOAD_CHECK_ID_07"
	case RunStateLoadCheckID06:
		return "LOAD_CHECK_ID_06"
	case RunStateLoadCheckID05:
		return "LOAD_CHECK_ID_05"
	case RunStateLoadCheckID04:
		return "LOAD_CHECK_ID_04"
	case RunStateWait200ms:
		return "WAIT_200ms"
	case RunStateLoadReserveID:
		return "LOAD_RESERVE_ID"
	case RunStateLoadAliasMapDefinition:
		return "LOAD_ALIAS_MAP_DEFINITION"
	case RunStateLoadInitializationComplete:
		return "LOAD_INITIALIZATION_COMPLETE"
	case RunStateLoadProducerEvents:
		return "LOAD_PRODUCER_EVENTS"
	case RunStateLoadConsumerEvents:
		return "LOAD_CONSUMER_EVENTS"
	case RunStateRun:
		return "RUN"
	default:
		return "UNKNOWN"
	}
}

// EventState is the per-event validity a node reports in Producer/Consumer
// Identified replies.
type EventState uint8

const (
	EventValid EventState = iota
	EventInvalid
	EventUnknown
)

// EventRange is a producer/consumer range entry, kept separate from the
// discrete event list per spec.md §3 ("a separate range list").
type EventRange struct {
	Base  olcb.EventID
	Count uint64
}

// EventEntry is one discrete producer or consumer event and its reported
// validity state.
type EventEntry struct {
	ID    olcb.EventID
	State EventState
}

// enumerator tracks a login-time or re-enumeration cursor across ranges
// first, then discrete events, per spec.md §4.8 / DESIGN.md Open
// Question 3.
type enumerator struct {
	rangeIdx    int
	discreteIdx int
}

func (e *enumerator) reset() { e.rangeIdx, e.discreteIdx = 0, 0 }

// TrainState carries the minimal train-node surface needed to exercise
// memory-config spaces 0xFA/0xF9 end to end (SPEC_FULL.md §11.1); full DCC
// throttle semantics are out of scope per spec.md §1.
type TrainState struct {
	FDI       []byte
	Functions [29]uint16 // per-function 16-bit values, spec.md §4.10 space 0xF9
}

// Parameters holds a node's static manufacturer data: SNIP strings,
// protocol-support bitmap, address-space descriptors and CDI bytes.
type Parameters struct {
	ManufacturerName  string
	ManufacturerModel string
	HardwareVersion   string
	SoftwareVersion   string
	SNIPVersion       byte
	UserVersion       byte
	ProtocolSupport   uint64 // PIP bitmap, SPEC_FULL.md §11.1
	CDI               []byte
	IsSimpleNode      bool // selects MTI 0x100 vs 0x101 for Initialization Complete
}

// Node is one virtual OpenLCB node in the local node pool.
type Node struct {
	mu sync.Mutex

	NodeID     olcb.NodeID
	Alias      olcb.Alias
	Params     Parameters
	Train      TrainState
	ConfigMem  []byte // in-memory stand-in for the host's config-memory driver

	RunState RunState
	Seed     uint64 // LFSR state, spec.md §4.4

	TickCounter int // 100ms ticks since entering WAIT_200ms

	Initialized bool
	Permitted   bool
	DatagramAckSent bool
	ResendDatagram  bool

	// PendingDatagram is this node's last_received_datagram pointer,
	// spec.md §4.9/§5: the datagram this node sent and is awaiting an
	// ack/reject for. ResendDatagram is set by the Datagram Rejected
	// handler on a temporary rejection and acted on by Engine.On100ms.
	PendingDatagram *olcb.Message

	// DatagramTicks counts 100ms ticks since PendingDatagram was set,
	// spec.md §4.9/§9's timeout Open Question: pkg/datagram.Tick clears a
	// held datagram once this reaches the configured timeout.
	DatagramTicks int

	OwnerNode olcb.NodeID // nonzero while the config-memory lock is held

	Producers []EventEntry
	ProducerRanges []EventRange
	Consumers []EventEntry
	ConsumerRanges []EventRange

	// OnReboot and OnFactoryReset are optional host delegates invoked by
	// pkg/memconfig's CONFIG_MEM_CONFIGURATION reset/factory-reset
	// subcommands (spec.md §6's reboot()/configuration_memory_factory_
	// reset() host callbacks). A reference host with nothing to restart
	// beyond ConfigMem may leave both nil.
	OnReboot       func()
	OnFactoryReset func()

	producerCursor enumerator
	consumerCursor enumerator
}

func New(id olcb.NodeID, params Parameters) *Node {
	return &Node{
		NodeID:    id,
		Params:    params,
		RunState:  RunStateInit,
		ConfigMem: make([]byte, 256),
	}
}

func (n *Node) Lock()   { n.mu.Lock() }
func (n *Node) Unlock() { n.mu.Unlock() }

// SetUserStrings seeds the ACDI user-space convention's name/description
// fields (spec.md §4.10 space 0xFB) in ConfigMem, truncating to the fixed
// 64-byte field width. Host code calls this once at startup from a
// configured default; thereafter the fields are user-writable via
// MemConfig writes to space 0xFB like any other config-memory byte.
func (n *Node) SetUserStrings(name, description string) {
	writeCStringAt(n.ConfigMem, olcb.ACDIUserNameOffset, olcb.ACDIUserNameLength, name)
	writeCStringAt(n.ConfigMem, olcb.ACDIUserDescriptionOffset, olcb.ACDIUserDescriptionLength, description)
}

func writeCStringAt(mem []byte, offset, length int, s string) {
	if offset < 0 || offset+length > len(mem) {
		return
	}
	field := mem[offset : offset+length]
	for i := range field {
		field[i] = 0
	}
	copy(field[:length-1], s)
}

// MatchesDest reports whether this node is the addressed recipient of a
// message, by alias or (if the message carries it) node ID.
func (n *Node) MatchesDest(destAlias olcb.Alias, destID olcb.NodeID) bool {
	if destAlias != 0 && destAlias == n.Alias {
		return true
	}
	if destID != 0 && destID == n.NodeID {
		return true
	}
	return false
}

// AddProducer/AddConsumer register discrete events. Ranges are added
// directly to ProducerRanges/ConsumerRanges by callers building a node's
// static parameter set.
func (n *Node) AddProducer(id olcb.EventID, state EventState) {
	n.Producers = append(n.Producers, EventEntry{ID: id, State: state})
}

func (n *Node) AddConsumer(id olcb.EventID, state EventState) {
	n.Consumers = append(n.Consumers, EventEntry{ID: id, State: state})
}

// ResetProducerEnumeration and ResetConsumerEnumeration rewind the
// producer or consumer enumerator cursor to the start (ranges first, then
// discretes), called on entry to
// RunStateLoadProducerEvents/RunStateLoadConsumerEvents.
func (n *Node) ResetProducerEnumeration() { n.producerCursor.reset() }
func (n *Node) ResetConsumerEnumeration() { n.consumerCursor.reset() }

// NextProducerStep returns the next range or discrete producer entry to
// emit, and whether enumeration is finished. Ranges are exhausted before
// discretes begin.
func (n *Node) NextProducerStep() (rng EventRange, entry EventEntry, isRange, done bool) {
	return nextStep(&n.producerCursor, n.ProducerRanges, n.Producers)
}

func (n *Node) NextConsumerStep() (rng EventRange, entry EventEntry, isRange, done bool) {
	return nextStep(&n.consumerCursor, n.ConsumerRanges, n.Consumers)
}

func nextStep(cur *enumerator, ranges []EventRange, entries []EventEntry) (rng EventRange, entry EventEntry, isRange, done bool) {
	if cur.rangeIdx < len(ranges) {
		rng = ranges[cur.rangeIdx]
		cur.rangeIdx++
		return rng, EventEntry{}, true, false
	}
	if cur.discreteIdx < len(entries) {
		entry = entries[cur.discreteIdx]
		cur.discreteIdx++
		return EventRange{}, entry, false, false
	}
	return EventRange{}, EventEntry{}, false, true
}

// Pool is the fixed set of local virtual nodes (spec.md §3, component #4
// in §2).
type Pool struct {
	mu    sync.Mutex
	nodes []*Node
}

func NewPool(capacity int) *Pool {
	return &Pool{nodes: make([]*Node, 0, capacity)}
}

func (p *Pool) Add(n *Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.nodes) == cap(p.nodes) && cap(p.nodes) != 0 {
		return olcb.ErrNodePoolExhausted
	}
	p.nodes = append(p.nodes, n)
	return nil
}

func (p *Pool) All() []*Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

func (p *Pool) ByAlias(a olcb.Alias) *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.nodes {
		if n.Alias == a {
			return n
		}
	}
	return nil
}

func (p *Pool) ByNodeID(id olcb.NodeID) *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.nodes {
		if n.NodeID == id {
			return n
		}
	}
	return nil
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.nodes)
}
