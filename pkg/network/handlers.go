package network

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/datagram"
	"github.com/openlcb-go/golcb/pkg/event"
	"github.com/openlcb-go/golcb/pkg/node"
	"github.com/openlcb-go/golcb/pkg/snip"
)

// registerDefaultHandlers wires the built-in MTI dispatch table (spec.md
// §2's "row 12" handlers plus datagram/memory-config): everything an
// embedding host gets for free without calling RegisterHandler itself.
func registerDefaultHandlers(e *Engine) {
	e.handlers[olcb.MTIVerifyNodeIDAddressed] = verifyNodeIDHandler
	e.handlers[olcb.MTIVerifyNodeIDGlobal] = verifyNodeIDHandler
	e.handlers[olcb.MTIProtocolSupportInquiry] = protocolSupportHandler
	e.handlers[olcb.MTIProducerIdentify] = producerIdentifyHandler
	e.handlers[olcb.MTIConsumerIdentify] = consumerIdentifyHandler
	e.handlers[olcb.MTIEventsIdentifyAddressed] = eventsIdentifyHandler
	e.handlers[olcb.MTIEventsIdentifyGlobal] = eventsIdentifyHandler
	e.handlers[olcb.MTIEventLearn] = eventLearnHandler
	e.handlers[olcb.MTIProducerConsumerEventReport] = eventReportHandler
	e.handlers[olcb.MTITerminateDueToError] = terminateHandler
	e.handlers[olcb.MTISimpleNodeInfoRequest] = simpleNodeInfoHandler
	e.handlers[olcb.MTIDatagram] = datagramHandler
	e.handlers[olcb.MTIDatagramReceivedOK] = datagramReceivedOKHandler
	e.handlers[olcb.MTIDatagramRejected] = datagramRejectedHandler
}

// isRequestMTI classifies MTIs that warrant Optional Interaction Rejected
// when no handler is registered for them (spec.md §4.7); reply-type and
// fire-and-forget MTIs are silently dropped instead.
func isRequestMTI(mti olcb.MTI) bool {
	switch mti {
	case olcb.MTIVerifyNodeIDAddressed, olcb.MTIVerifyNodeIDGlobal,
		olcb.MTIProtocolSupportInquiry,
		olcb.MTIProducerIdentify, olcb.MTIConsumerIdentify,
		olcb.MTIEventsIdentifyAddressed, olcb.MTIEventsIdentifyGlobal,
		olcb.MTISimpleNodeInfoRequest,
		olcb.MTIDatagram,
		olcb.MTIStreamInitiateRequest, olcb.MTIStreamSend:
		return true
	default:
		return false
	}
}

// verifyNodeIDHandler replies to both the addressed and global forms of
// Verify Node ID. The reply itself is always global (MTIVerifiedNodeID
// carries no addressed bit): any node tracking the alias map benefits
// from overhearing it, not just the original requester.
func verifyNodeIDHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	if len(msg.Payload) >= 6 && olcb.NodeIDFromBytes(msg.Payload[:6]) != n.NodeID {
		return nil
	}
	e.Send(olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		MTI:         olcb.MTIVerifiedNodeID,
		Payload:     snip.VerifiedNodeIDPayload(n),
	})
	return nil
}

func protocolSupportHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	e.Send(olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		DestAlias:   msg.SourceAlias,
		DestID:      msg.SourceID,
		MTI:         olcb.MTIProtocolSupportReply,
		Addressed:   true,
		Payload:     snip.PIPReply(n),
	})
	return nil
}

func be64(b []byte) olcb.EventID {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return olcb.EventID(v)
}

// findProducer/findConsumer report whether id matches a discrete event or
// falls within a registered range, returning the matched range's own base
// (which may differ from id, since id may be any member of the range) so
// replies encode the whole range rather than the single queried event.
func findProducer(n *node.Node, id olcb.EventID) (node.EventEntry, node.EventRange, bool, bool) {
	return findEvent(n.Producers, n.ProducerRanges, id)
}

func findConsumer(n *node.Node, id olcb.EventID) (node.EventEntry, node.EventRange, bool, bool) {
	return findEvent(n.Consumers, n.ConsumerRanges, id)
}

func findEvent(entries []node.EventEntry, ranges []node.EventRange, id olcb.EventID) (entry node.EventEntry, rng node.EventRange, isRange, found bool) {
	for _, en := range entries {
		if en.ID == id {
			return en, node.EventRange{}, false, true
		}
	}
	for _, r := range ranges {
		if (event.Range{Base: r.Base, Count: r.Count}).Contains(id) {
			return node.EventEntry{}, r, true, true
		}
	}
	return node.EventEntry{}, node.EventRange{}, false, false
}

func producerIdentifyHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	if len(msg.Payload) < 8 {
		return nil
	}
	id := be64(msg.Payload[:8])
	entry, rng, isRange, found := findProducer(n, id)
	if !found {
		return nil
	}
	if isRange {
		e.Send(e.producerRangeMessage(n, rng))
		return nil
	}
	e.Send(e.producerDiscreteMessage(n, entry))
	return nil
}

func consumerIdentifyHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	if len(msg.Payload) < 8 {
		return nil
	}
	id := be64(msg.Payload[:8])
	entry, rng, isRange, found := findConsumer(n, id)
	if !found {
		return nil
	}
	if isRange {
		e.Send(e.consumerRangeMessage(n, rng))
		return nil
	}
	e.Send(e.consumerDiscreteMessage(n, entry))
	return nil
}

// eventsIdentifyHandler enumerates every producer and consumer event this
// node holds in a single call. Each reply is queued via Engine.Send and
// drained one per Tick by stepOutgoing, so TX backpressure delays the
// rest of the list; a reply that finds the outgoing queue already full is
// dropped by Engine.Send.
func eventsIdentifyHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	n.ResetProducerEnumeration()
	for {
		rng, entry, isRange, done := n.NextProducerStep()
		if done {
			break
		}
		if isRange {
			e.Send(e.producerRangeMessage(n, rng))
		} else {
			e.Send(e.producerDiscreteMessage(n, entry))
		}
	}
	n.ResetConsumerEnumeration()
	for {
		rng, entry, isRange, done := n.NextConsumerStep()
		if done {
			break
		}
		if isRange {
			e.Send(e.consumerRangeMessage(n, rng))
		} else {
			e.Send(e.consumerDiscreteMessage(n, entry))
		}
	}
	return nil
}

// eventLearnHandler teaches n a new consumer mapping (minimal stub: no
// CDI-driven configuration reload, just the in-memory event list).
func eventLearnHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	if len(msg.Payload) < 8 {
		return nil
	}
	id := be64(msg.Payload[:8])
	if _, _, _, found := findConsumer(n, id); found {
		return nil
	}
	n.AddConsumer(id, node.EventValid)
	return nil
}

func eventReportHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	if len(msg.Payload) < 8 {
		return nil
	}
	id := be64(msg.Payload[:8])
	if _, _, _, found := findConsumer(n, id); found && e.OnEventReport != nil {
		e.OnEventReport(n, id)
	}
	return nil
}

func terminateHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	e.log.WithField("node_id", n.NodeID).WithField("from_alias", msg.SourceAlias).
		Warn("network: received Terminate Due To Error")
	return nil
}

func simpleNodeInfoHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	e.Send(olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		DestAlias:   msg.SourceAlias,
		DestID:      msg.SourceID,
		MTI:         olcb.MTISimpleNodeInfoReply,
		Addressed:   true,
		Kind:        olcb.KindSNIP,
		Payload:     snip.BuildReply(n),
	})
	return nil
}

func datagramHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	datagram.HandleIncoming(e, n, msg)
	return nil
}

func datagramReceivedOKHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	datagram.HandleReceivedOK(n, msg)
	return nil
}

func datagramRejectedHandler(e *Engine, n *node.Node, msg *olcb.Message) error {
	datagram.HandleRejected(n, msg)
	return nil
}
