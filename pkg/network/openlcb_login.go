package network

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/event"
	"github.com/openlcb-go/golcb/pkg/node"
)

// stepOpenLCBLogin drives one step of spec.md §4.8's post-CAN-login
// sequence: Initialization Complete, then every producer range/discrete
// event, then every consumer range/discrete event, ranges always before
// discretes (DESIGN.md Open Question 3). Each call emits at most one
// message, mirroring pkg/login.Machine.Step's one-frame-per-call shape.
func (e *Engine) stepOpenLCBLogin(n *node.Node) {
	n.Lock()
	defer n.Unlock()

	switch n.RunState {
	case node.RunStateLoadInitializationComplete:
		e.Send(e.initCompleteMessage(n))
		n.ResetProducerEnumeration()
		n.RunState = node.RunStateLoadProducerEvents

	case node.RunStateLoadProducerEvents:
		rng, entry, isRange, done := n.NextProducerStep()
		if done {
			n.ResetConsumerEnumeration()
			n.RunState = node.RunStateLoadConsumerEvents
			return
		}
		if isRange {
			e.Send(e.producerRangeMessage(n, rng))
		} else {
			e.Send(e.producerDiscreteMessage(n, entry))
		}

	case node.RunStateLoadConsumerEvents:
		rng, entry, isRange, done := n.NextConsumerStep()
		if done {
			n.Initialized = true
			n.RunState = node.RunStateRun
			return
		}
		if isRange {
			e.Send(e.consumerRangeMessage(n, rng))
		} else {
			e.Send(e.consumerDiscreteMessage(n, entry))
		}
	}
}

func eventIDBytes(id olcb.EventID) []byte {
	return []byte{
		byte(id >> 56), byte(id >> 48), byte(id >> 40), byte(id >> 32),
		byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id),
	}
}

func (e *Engine) initCompleteMessage(n *node.Node) olcb.Message {
	mti := olcb.MTIInitializationComplete
	if n.Params.IsSimpleNode {
		mti = olcb.MTIInitializationCompleteSimple
	}
	b := n.NodeID.Bytes()
	return olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		MTI:         mti,
		Payload:     b[:],
	}
}

func (e *Engine) producerDiscreteMessage(n *node.Node, entry node.EventEntry) olcb.Message {
	mti := olcb.MTIProducerIdentifiedUnknown
	switch entry.State {
	case node.EventValid:
		mti = olcb.MTIProducerIdentifiedValid
	case node.EventInvalid:
		mti = olcb.MTIProducerIdentifiedInvalid
	}
	return olcb.Message{SourceAlias: n.Alias, SourceID: n.NodeID, MTI: mti, Payload: eventIDBytes(entry.ID)}
}

func (e *Engine) producerRangeMessage(n *node.Node, rng node.EventRange) olcb.Message {
	id := event.Encode(rng.Base, rng.Count)
	return olcb.Message{SourceAlias: n.Alias, SourceID: n.NodeID, MTI: olcb.MTIProducerRangeIdentified, Payload: eventIDBytes(id)}
}

func (e *Engine) consumerDiscreteMessage(n *node.Node, entry node.EventEntry) olcb.Message {
	mti := olcb.MTIConsumerIdentifiedUnknown
	switch entry.State {
	case node.EventValid:
		mti = olcb.MTIConsumerIdentifiedValid
	case node.EventInvalid:
		mti = olcb.MTIConsumerIdentifiedInvalid
	}
	return olcb.Message{SourceAlias: n.Alias, SourceID: n.NodeID, MTI: mti, Payload: eventIDBytes(entry.ID)}
}

func (e *Engine) consumerRangeMessage(n *node.Node, rng node.EventRange) olcb.Message {
	id := event.Encode(rng.Base, rng.Count)
	return olcb.Message{SourceAlias: n.Alias, SourceID: n.NodeID, MTI: olcb.MTIConsumerRangeIdentified, Payload: eventIDBytes(id)}
}
