// Package datagram implements the reliable datagram transfer layer of
// spec.md §4.9: two-phase ACK-then-work processing of incoming datagrams,
// dispatch of the CONFIG_MEM_CONFIGURATION command to pkg/memconfig, and
// the client-side retry-on-temporary-rejection rule for datagrams this
// node has sent.
package datagram

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/memconfig"
	"github.com/openlcb-go/golcb/pkg/node"
)

// Sender is the subset of pkg/network.Engine this package depends on,
// kept narrow to avoid an import cycle (network already imports
// datagram's handler entry points).
type Sender interface {
	Send(msg olcb.Message)
}

// DefaultTimeoutTicks is the default datagram-reply timeout, expressed in
// 100ms ticks (spec.md §9's timeout Open Question): 3 seconds, matching
// spec.md's own suggested figure.
const DefaultTimeoutTicks = 30

// HandleIncoming processes one inbound MTI_DATAGRAM message per spec.md
// §4.9's two-phase rule. The first call acknowledges immediately and asks
// the dispatcher to re-invoke it (msg.Enumerate = true); the second call
// does the actual work and clears both flags.
func HandleIncoming(s Sender, n *node.Node, msg *olcb.Message) {
	if !n.DatagramAckSent {
		s.Send(olcb.Message{
			SourceAlias: n.Alias,
			SourceID:    n.NodeID,
			DestAlias:   msg.SourceAlias,
			DestID:      msg.SourceID,
			MTI:         olcb.MTIDatagramReceivedOK,
			Addressed:   true,
			Payload:     nil,
		})
		n.DatagramAckSent = true
		msg.Enumerate = true
		return
	}

	n.DatagramAckSent = false
	msg.Enumerate = false

	if len(msg.Payload) == 0 || msg.Payload[0] != olcb.DatagramCommandConfigMem {
		s.Send(rejectMessage(n, msg, olcb.ErrorCodeCommandUnknown))
		return
	}

	reply := memconfig.Handle(n, msg.Payload)
	if !reply.OK {
		s.Send(rejectMessage(n, msg, reply.Code))
		return
	}
	sendDatagram(s, n, olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		DestAlias:   msg.SourceAlias,
		DestID:      msg.SourceID,
		MTI:         olcb.MTIDatagram,
		Addressed:   true,
		Kind:        olcb.KindDatagram,
		Payload:     reply.Payload,
	})
}

// sendDatagram transmits msg and records it as n's last_received_datagram
// pointer (spec.md §4.9/§5) so HandleRejected/Resend can retry it on a
// temporary rejection from the peer. Every MTI_DATAGRAM send this node
// initiates — both client-initiated requests (Send) and memory-config
// reply payloads (HandleIncoming) — goes through this, since the peer may
// reject either one.
func sendDatagram(s Sender, n *node.Node, msg olcb.Message) {
	n.PendingDatagram = &msg
	n.ResendDatagram = false
	n.DatagramTicks = 0
	s.Send(msg)
}

func rejectMessage(n *node.Node, msg *olcb.Message, code olcb.ErrorCode) olcb.Message {
	return olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		DestAlias:   msg.SourceAlias,
		DestID:      msg.SourceID,
		MTI:         olcb.MTIDatagramRejected,
		Addressed:   true,
		Payload:     []byte{byte(code >> 8), byte(code)},
	}
}

// Send transmits a datagram addressed to dest; see sendDatagram.
func Send(s Sender, n *node.Node, destAlias olcb.Alias, destID olcb.NodeID, payload []byte) {
	sendDatagram(s, n, olcb.Message{
		SourceAlias: n.Alias,
		SourceID:    n.NodeID,
		DestAlias:   destAlias,
		DestID:      destID,
		MTI:         olcb.MTIDatagram,
		Addressed:   true,
		Kind:        olcb.KindDatagram,
		Payload:     payload,
	})
}

// HandleReceivedOK clears n's pending datagram once the peer has
// acknowledged it; the peer's actual reply (if any) arrives later as a
// separate MTI_DATAGRAM message.
func HandleReceivedOK(n *node.Node, msg *olcb.Message) {
	n.PendingDatagram = nil
	n.ResendDatagram = false
	n.DatagramTicks = 0
}

// HandleRejected implements spec.md §4.9's client-side retry rule: a
// temporary error code asks the main loop to resend the held datagram; a
// permanent one discards it.
func HandleRejected(n *node.Node, msg *olcb.Message) {
	if n.PendingDatagram == nil {
		return
	}
	if len(msg.Payload) < 2 {
		n.PendingDatagram = nil
		return
	}
	code := olcb.ErrorCode(uint16(msg.Payload[0])<<8 | uint16(msg.Payload[1]))
	if code.Temporary() {
		n.ResendDatagram = true
		return
	}
	n.PendingDatagram = nil
	n.ResendDatagram = false
}

// Resend re-transmits the held pending datagram, called by the main loop
// when ResendDatagram is set (spec.md §4.9).
func Resend(s Sender, n *node.Node) {
	if n.PendingDatagram == nil || !n.ResendDatagram {
		return
	}
	n.ResendDatagram = false
	n.DatagramTicks = 0
	s.Send(*n.PendingDatagram)
}

// Tick ages n's pending datagram by one 100ms step and discards it once
// timeoutTicks is reached, since no Rejected/Received OK reply arrived in
// time (spec.md §9's timeout Open Question). Pass 0 to disable the timeout.
func Tick(n *node.Node, timeoutTicks int) {
	if n.PendingDatagram == nil || timeoutTicks <= 0 {
		return
	}
	n.DatagramTicks++
	if n.DatagramTicks >= timeoutTicks {
		n.PendingDatagram = nil
		n.ResendDatagram = false
		n.DatagramTicks = 0
	}
}
