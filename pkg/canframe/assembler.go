package canframe

import (
	"github.com/sirupsen/logrus"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/buffer"
	"github.com/openlcb-go/golcb/pkg/msgqueue"
)

// Assembler is the CAN RX frame state machine of spec.md §4.5: it
// classifies incoming frames, reassembles multi-frame messages and
// datagrams against the pending-message list, and pushes completed
// messages onto the dispatch FIFO. Control frames (CID/RID/AMD/AME/AMR)
// are left for the login state machine and are not consumed here.
type Assembler struct {
	store *buffer.Store
	list  *msgqueue.List
	fifo  *msgqueue.FIFO
	log   logrus.FieldLogger
}

func NewAssembler(store *buffer.Store, list *msgqueue.List, fifo *msgqueue.FIFO, log logrus.FieldLogger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{store: store, list: list, fifo: fifo, log: log}
}

func kindForMTI(mti olcb.MTI) olcb.MessageKind {
	switch mti {
	case olcb.MTISimpleNodeInfoRequest, olcb.MTISimpleNodeInfoReply:
		return olcb.KindSNIP
	case olcb.MTIStreamInitiateRequest, olcb.MTIStreamInitiateReply, olcb.MTIStreamSend,
		olcb.MTIStreamProceed, olcb.MTIStreamComplete:
		return olcb.KindStream
	default:
		return olcb.KindBasic
	}
}

// HandleFrame is the entry point the bus's FrameListener calls for every
// received CAN frame that isn't a control frame. It returns a non-nil
// error only when the first frame of a multi-frame message or datagram
// finds the buffer pool or buffer list full; a completed message that
// finds the pool or FIFO full is logged and dropped without an error, and
// all other malformed or out-of-sequence frames are dropped silently per
// spec.md §4.5.
func (a *Assembler) HandleFrame(f olcb.Frame) error {
	if ClassifyControl(f).Kind != ControlNone {
		return nil
	}
	if dg, ok := ParseDatagramFrame(f); ok {
		return a.handleDatagram(dg)
	}
	if msg, ok := ParseMessageFrame(f); ok {
		return a.handleMessage(msg)
	}
	return nil
}

func (a *Assembler) handleMessage(p ParsedMessageFrame) error {
	switch p.Framing {
	case olcb.FramingOnly:
		return a.completeNew(p.MTI, p.SourceAlias, p.DestAlias, p.Addressed, p.Data)
	case olcb.FramingFirst:
		return a.openFirst(p.MTI, p.SourceAlias, p.DestAlias, p.Addressed, p.Data)
	case olcb.FramingMiddle:
		a.appendMiddle(p.MTI, p.SourceAlias, p.DestAlias, p.Data, false)
		return nil
	case olcb.FramingLast:
		a.appendMiddle(p.MTI, p.SourceAlias, p.DestAlias, p.Data, true)
		return nil
	}
	return nil
}

func (a *Assembler) openFirst(mti olcb.MTI, source, dest olcb.Alias, addressed bool, data []byte) error {
	kind := kindForMTI(mti)
	h, msg, err := a.store.Allocate(kind)
	if err != nil {
		a.log.WithError(err).Warn("canframe: buffer pool exhausted opening multi-frame message")
		return err
	}
	*msg = olcb.Message{
		SourceAlias: source,
		DestAlias:   dest,
		MTI:         mti,
		Addressed:   addressed,
		Kind:        kind,
		Payload:     append([]byte(nil), data...),
	}
	if err := a.list.Add(h, source, dest, mti); err != nil {
		a.store.Free(h)
		a.log.WithError(err).Warn("canframe: pending-message list full")
		return err
	}
	return nil
}

func (a *Assembler) appendMiddle(mti olcb.MTI, source, dest olcb.Alias, data []byte, last bool) {
	h, ok := a.list.Find(source, dest, mti)
	if !ok {
		// Middle or Last frame with no matching First: dropped silently.
		return
	}
	msg := a.store.Get(h)
	if msg == nil {
		a.list.Release(source, dest, mti)
		return
	}
	msg.Payload = append(msg.Payload, data...)
	if !last {
		return
	}
	a.list.Release(source, dest, mti)
	complete := *msg
	a.store.Free(h)
	a.enqueueNew(complete)
}

func (a *Assembler) completeNew(mti olcb.MTI, source, dest olcb.Alias, addressed bool, data []byte) error {
	msg := olcb.Message{
		SourceAlias: source,
		DestAlias:   dest,
		MTI:         mti,
		Addressed:   addressed,
		Kind:        kindForMTI(mti),
		Payload:     append([]byte(nil), data...),
	}
	a.enqueueNew(msg)
	return nil
}

// enqueueNew allocates a fresh buffer slot for a fully assembled message
// and pushes it onto the dispatch FIFO.
func (a *Assembler) enqueueNew(msg olcb.Message) {
	h, slot, err := a.store.Allocate(msg.Kind)
	if err != nil {
		a.log.WithError(err).Warn("canframe: buffer pool exhausted enqueueing message")
		return
	}
	*slot = msg
	if err := a.fifo.Push(h, msg.MTI); err != nil {
		a.store.Free(h)
		a.log.WithError(err).Warn("canframe: dispatch FIFO full, message dropped")
	}
}

func (a *Assembler) handleDatagram(p ParsedDatagramFrame) error {
	const mti = olcb.MTIDatagram
	switch p.FrameType {
	case olcb.DatagramFrameOnly:
		a.enqueueNew(olcb.Message{
			SourceAlias: p.SourceAlias,
			DestAlias:   p.DestAlias,
			MTI:         mti,
			Addressed:   true,
			Kind:        olcb.KindDatagram,
			Payload:     append([]byte(nil), p.Data...),
		})
		return nil
	case olcb.DatagramFrameFirst:
		h, msg, err := a.store.Allocate(olcb.KindDatagram)
		if err != nil {
			a.log.WithError(err).Warn("canframe: buffer pool exhausted opening datagram")
			return err
		}
		*msg = olcb.Message{
			SourceAlias: p.SourceAlias,
			DestAlias:   p.DestAlias,
			MTI:         mti,
			Addressed:   true,
			Kind:        olcb.KindDatagram,
			Payload:     append([]byte(nil), p.Data...),
		}
		if err := a.list.Add(h, p.SourceAlias, p.DestAlias, mti); err != nil {
			a.store.Free(h)
			a.log.WithError(err).Warn("canframe: pending-message list full")
			return err
		}
		return nil
	case olcb.DatagramFrameMiddle, olcb.DatagramFrameLast:
		a.appendMiddle(mti, p.SourceAlias, p.DestAlias, p.Data, p.FrameType == olcb.DatagramFrameLast)
		return nil
	}
	return nil
}
