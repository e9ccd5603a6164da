// Package network implements the main state-machine dispatcher and the
// OpenLCB login machine of spec.md §4.7/§4.8: it owns the node pool, the
// shared buffer/alias/queue primitives, and the per-MTI handler table, and
// drives everything from two host-called entry points, Tick and On100ms.
package network

import (
	"sync"

	"github.com/sirupsen/logrus"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/alias"
	"github.com/openlcb-go/golcb/pkg/buffer"
	"github.com/openlcb-go/golcb/pkg/canframe"
	"github.com/openlcb-go/golcb/pkg/datagram"
	"github.com/openlcb-go/golcb/pkg/login"
	"github.com/openlcb-go/golcb/pkg/msgqueue"
	"github.com/openlcb-go/golcb/pkg/node"
)

// Handler processes one message against one node. Setting msg.Enumerate
// before returning asks the dispatcher to call the same handler again on
// the same node/message pair next tick (spec.md §4.7 step 2) — used by
// two-phase datagram handling (pkg/datagram.HandleIncoming).
type Handler func(e *Engine, n *node.Node, msg *olcb.Message) error

// Engine is the embeddable OpenLCB node engine (spec.md §1-§2): the host
// supplies a Bus and periodic Tick/On100ms calls; Engine owns everything
// else. It takes no host-supplied lock callbacks: shared state is guarded
// by Engine's own mutex.
type Engine struct {
	mu sync.Mutex

	Pool    *node.Pool
	Aliases *alias.Table
	Store   *buffer.Store
	List    *msgqueue.List
	FIFO    *msgqueue.FIFO

	Assembler   *canframe.Assembler
	Transmitter *canframe.Transmitter
	Login       *login.Machine

	handlers map[olcb.MTI]Handler

	// outQueue holds messages awaiting TX, spec.md §4.7 step 1. A handler
	// may call Send more than once per invocation (eventsIdentifyHandler
	// emits one reply per producer/consumer event); stepOutgoing drains it
	// one message per Tick so TX backpressure (Transmitter.SendMessage
	// returning an error) delays the rest of the queue instead of
	// discarding them.
	outQueue    []olcb.Message
	outQueueCap int
	cursor      dispatchCursor

	datagramTimeoutTicks int

	log logrus.FieldLogger

	// OnRxBufferFull is an optional observer invoked when an incoming frame
	// is dropped for lack of buffer/list/FIFO space (spec.md §4.5 edge case,
	// §6 item 9).
	OnRxBufferFull func(err error)

	// OnEventReport is an optional observer invoked when a node in the
	// pool consumes a Producer/Consumer Event Report matching one of its
	// registered consumer events or ranges (spec.md §6 item 9).
	OnEventReport func(n *node.Node, id olcb.EventID)
}

// dispatchCursor tracks the message currently held for dispatch and which
// node in the pool it is being offered to next (spec.md §4.7 steps 3-5).
type dispatchCursor struct {
	handle    buffer.Handle
	active    bool
	nodeIndex int
}

// Config bundles the fixed capacities used to size Engine's shared state,
// mirroring pkg/config's ini-backed settings.
type Config struct {
	BasicBuffers    int
	DatagramBuffers int
	SNIPBuffers     int
	BufferListSize  int
	FIFOSize        int
	AliasTableSize  int
	NodePoolSize    int

	// DatagramTimeoutTicks is the number of On100ms ticks a sent datagram
	// may go unacknowledged before it is discarded (spec.md §9's timeout
	// Open Question). Zero disables the timeout.
	DatagramTimeoutTicks int

	// OutQueueSize bounds the outgoing-message queue (see Engine.outQueue).
	// Zero means unbounded.
	OutQueueSize int
}

func DefaultConfig() Config {
	return Config{
		BasicBuffers:         buffer.DefaultBasicCount,
		DatagramBuffers:      buffer.DefaultDatagramCount,
		SNIPBuffers:          buffer.DefaultSNIPCount,
		BufferListSize:       4,
		FIFOSize:             16,
		AliasTableSize:       8,
		NodePoolSize:         4,
		DatagramTimeoutTicks: datagram.DefaultTimeoutTicks,
		OutQueueSize:         8,
	}
}

// NewEngine wires together every shared subsystem and registers the
// built-in MTI dispatch table. bus is the host-supplied CAN transport.
func NewEngine(cfg Config, bus olcb.Bus, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	store := buffer.NewStore(cfg.BasicBuffers, cfg.DatagramBuffers, cfg.SNIPBuffers)
	list := msgqueue.NewList(cfg.BufferListSize)
	fifo := msgqueue.NewFIFO(cfg.FIFOSize)
	aliases := alias.NewTable(cfg.AliasTableSize)

	bm := olcb.NewBusManager(bus, log)
	tx := canframe.NewTransmitter(bm, log)
	assembler := canframe.NewAssembler(store, list, fifo, log)

	e := &Engine{
		Pool:                 node.NewPool(cfg.NodePoolSize),
		Aliases:              aliases,
		Store:                store,
		List:                 list,
		FIFO:                 fifo,
		Assembler:            assembler,
		Transmitter:          tx,
		Login:                login.NewMachine(aliases, tx, log),
		handlers:             make(map[olcb.MTI]Handler),
		datagramTimeoutTicks: cfg.DatagramTimeoutTicks,
		outQueueCap:          cfg.OutQueueSize,
		log:                  log,
	}
	registerDefaultHandlers(e)

	if err := bm.Subscribe(rxListener{e}); err != nil {
		log.WithError(err).Warn("network: bus subscribe failed")
	}
	return e
}

type rxListener struct{ e *Engine }

func (l rxListener) Handle(f olcb.Frame) {
	l.e.mu.Lock()
	defer l.e.mu.Unlock()
	if cf := canframe.ClassifyControl(f); cf.Kind != canframe.ControlNone {
		for _, n := range l.e.Pool.All() {
			l.e.Login.ObserveControlFrame(n, cf)
		}
		login.ObserveForeignMapping(l.e.Aliases, cf)
		return
	}
	if err := l.e.Assembler.HandleFrame(f); err != nil && l.e.OnRxBufferFull != nil {
		l.e.OnRxBufferFull(err)
	}
}

// AddNode registers a node in the pool and starts its CAN login sequence.
func (e *Engine) AddNode(n *node.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Pool.Add(n)
}

// RegisterHandler overrides or adds a dispatch-table entry for mti.
func (e *Engine) RegisterHandler(mti olcb.MTI, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[mti] = h
}

// On100ms advances every node's CAN login state machine by one step. It
// must be called by the host roughly every 100ms (spec.md §6 item 8); the
// WAIT_200ms state's tick counter depends on this cadence, not on Tick's.
func (e *Engine) On100ms() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range e.Pool.All() {
		n.Lock()
		if n.RunState < node.RunStateLoadInitializationComplete {
			if err := e.Login.Step(n); err != nil {
				e.log.WithError(err).Debug("network: login step deferred")
			}
		}
		if n.ResendDatagram {
			datagram.Resend(e, n)
		}
		datagram.Tick(n, e.datagramTimeoutTicks)
		n.Unlock()
	}
}

// Tick runs one non-blocking iteration of the main dispatcher (spec.md
// §4.7). It never blocks: every branch either makes progress or returns
// immediately so the host can call it again on the next loop iteration.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stepOutgoing() {
		return
	}
	if e.stepLoginEnumeration() {
		return
	}
	if e.stepEnumerateCurrent() {
		return
	}
	if !e.cursor.active {
		h, ok := e.FIFO.Pop()
		if !ok {
			return
		}
		e.cursor = dispatchCursor{handle: h, active: true, nodeIndex: -1}
	}
	e.advanceAndDispatch()
}

// stepOutgoing implements spec.md §4.7 step 1: send the head of outQueue.
// A TX-buffer-full error leaves it in place for a retry next tick rather
// than dropping it or letting later steps run ahead of it.
func (e *Engine) stepOutgoing() bool {
	if len(e.outQueue) == 0 {
		return false
	}
	if err := e.Transmitter.SendMessage(e.outQueue[0]); err != nil {
		return true // TX buffer full, retry next tick
	}
	e.outQueue = e.outQueue[1:]
	return false
}

// stepLoginEnumeration advances any node currently inside the OpenLCB
// login machine's producer/consumer enumeration (spec.md §4.8).
func (e *Engine) stepLoginEnumeration() bool {
	for _, n := range e.Pool.All() {
		n.Lock()
		state := n.RunState
		n.Unlock()
		if state == node.RunStateLoadInitializationComplete ||
			state == node.RunStateLoadProducerEvents ||
			state == node.RunStateLoadConsumerEvents {
			e.stepOpenLCBLogin(n)
			return true
		}
	}
	return false
}

// stepEnumerateCurrent implements spec.md §4.7 step 2.
func (e *Engine) stepEnumerateCurrent() bool {
	if !e.cursor.active || e.cursor.nodeIndex < 0 {
		return false
	}
	msg := e.Store.Get(e.cursor.handle)
	if msg == nil || !msg.Enumerate {
		return false
	}
	nodes := e.Pool.All()
	if e.cursor.nodeIndex >= len(nodes) {
		e.finishCurrent()
		return true
	}
	e.dispatchOne(nodes[e.cursor.nodeIndex], msg)
	return true
}

func (e *Engine) finishCurrent() {
	e.Store.Free(e.cursor.handle)
	e.cursor = dispatchCursor{}
}

func (e *Engine) advanceAndDispatch() {
	msg := e.Store.Get(e.cursor.handle)
	if msg == nil {
		e.cursor = dispatchCursor{}
		return
	}
	nodes := e.Pool.All()
	e.cursor.nodeIndex++
	if e.cursor.nodeIndex >= len(nodes) {
		e.finishCurrent()
		return
	}
	e.dispatchOne(nodes[e.cursor.nodeIndex], msg)
}

// nodeAccepts implements spec.md §4.7's node filter.
func nodeAccepts(n *node.Node, msg *olcb.Message) bool {
	if !n.Initialized {
		return false
	}
	if msg.MTI == olcb.MTIVerifyNodeIDGlobal {
		return true
	}
	if !msg.Addressed {
		return true
	}
	return n.MatchesDest(msg.DestAlias, msg.DestID)
}

func (e *Engine) dispatchOne(n *node.Node, msg *olcb.Message) {
	n.Lock()
	defer n.Unlock()

	if n.RunState != node.RunStateRun {
		msg.Enumerate = false
		return
	}
	if !nodeAccepts(n, msg) {
		msg.Enumerate = false
		if e.cursor.nodeIndex >= len(e.Pool.All())-1 {
			e.finishCurrent()
		}
		return
	}

	h, ok := e.handlers[msg.MTI]
	if !ok {
		e.rejectUnknownMTI(n, msg)
		msg.Enumerate = false
		return
	}
	if err := h(e, n, msg); err != nil {
		e.log.WithError(err).WithField("mti", msg.MTI).Warn("network: handler error")
	}
	if !msg.Enumerate {
		// This node is done with the message; if no one else needs the
		// message held (addressed messages only ever target one node) free
		// it now rather than waiting for a wasted pass over the pool.
		if msg.Addressed {
			e.finishCurrent()
		}
	}
}

// rejectUnknownMTI implements spec.md §4.7's Optional Interaction Rejected
// path for MTIs with no registered handler: an MTI that isRequestMTI (see
// handlers.go) reports as a request gets the rejection reply, and any
// other unregistered MTI is dropped silently.
func (e *Engine) rejectUnknownMTI(n *node.Node, msg *olcb.Message) {
	if !isRequestMTI(msg.MTI) {
		return
	}
	payload := make([]byte, 2)
	payload[0] = byte(olcb.ErrorCodeUnknownMTIOrTransport >> 8)
	payload[1] = byte(olcb.ErrorCodeUnknownMTIOrTransport)
	payload = append(payload, byte(msg.MTI>>8), byte(msg.MTI))
	reply := olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		DestAlias:   msg.SourceAlias,
		DestID:      msg.SourceID,
		MTI:         olcb.MTIOptionalInteractionRejected,
		Addressed:   true,
		Payload:     payload,
	}
	e.Send(reply)
}

// Send appends msg to outQueue for TX on a future Tick (spec.md §4.7 step
// 1). Handlers may call this more than once per invocation (e.g.
// eventsIdentifyHandler, one reply per producer/consumer event); each
// queued message still passes through stepOutgoing's backpressure check
// rather than bypassing it. If outQueueCap is reached, the message is
// dropped and logged rather than blocking the handler or growing without
// bound.
func (e *Engine) Send(msg olcb.Message) {
	if e.outQueueCap > 0 && len(e.outQueue) >= e.outQueueCap {
		e.log.WithField("mti", msg.MTI).Warn("network: outgoing queue full, dropping message")
		return
	}
	e.outQueue = append(e.outQueue, msg)
}
