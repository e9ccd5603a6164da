// Package memconfig implements the memory-configuration datagram
// sub-protocol of spec.md §4.10/§4.11: read, write, write-under-mask,
// options, address-space-info, reserve/lock, freeze/unfreeze,
// update-complete, reset, factory-reset and get-unique-id.
package memconfig

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
)

const maxReadCount = 64

// Reply is the datagram payload memconfig hands back to the caller
// (pkg/datagram), to be sent as a MTI_DATAGRAM reply addressed back to
// the requester.
type Reply struct {
	Payload []byte
	OK      bool
	Code    olcb.ErrorCode
}

// Handle processes one CONFIG_MEM_CONFIGURATION (command byte 0x20)
// datagram payload. Callers must already have verified payload[0] ==
// olcb.DatagramCommandConfigMem and must hold n's lock.
func Handle(n *node.Node, payload []byte) Reply {
	if len(payload) < 2 {
		return rejectGeneric(0, olcb.ErrorCodeInvalidArguments)
	}
	subcmd := payload[1]

	switch subcmd {
	case olcb.ConfigMemSubCmdOptions:
		return optionsReply()
	case olcb.ConfigMemSubCmdAddrSpaceInfo:
		return addressSpaceInfoReply(n, payload)
	case olcb.ConfigMemSubCmdReserve:
		return reserveReply(n, payload)
	case olcb.ConfigMemSubCmdFreeze:
		return ackOnly(olcb.ConfigMemSubCmdFreeze)
	case olcb.ConfigMemSubCmdUnfreeze:
		return ackOnly(olcb.ConfigMemSubCmdUnfreeze)
	case olcb.ConfigMemSubCmdUpdateComplete:
		return ackOnly(olcb.ConfigMemSubCmdUpdateComplete)
	case olcb.ConfigMemSubCmdReset:
		if n.OnReboot != nil {
			n.OnReboot()
		}
		return ackOnly(olcb.ConfigMemSubCmdReset)
	case olcb.ConfigMemSubCmdFactoryReset:
		for i := range n.ConfigMem {
			n.ConfigMem[i] = 0
		}
		if n.OnFactoryReset != nil {
			n.OnFactoryReset()
		}
		return ackOnly(olcb.ConfigMemSubCmdFactoryReset)
	case olcb.ConfigMemSubCmdGetUniqueID:
		b := n.NodeID.Bytes()
		return Reply{OK: true, Payload: append([]byte{olcb.DatagramCommandConfigMem, olcb.ConfigMemSubCmdGetUniqueID + replyOffset}, b[:]...)}
	}

	info, ok := subCommandTable[subcmd]
	if !ok {
		return rejectGeneric(subcmd, olcb.ErrorCodeNotImplementedSubcommandUnknown)
	}
	return handleReadWrite(n, subcmd, info, payload)
}

func rejectGeneric(subcmd byte, code olcb.ErrorCode) Reply {
	return Reply{OK: false, Code: code, Payload: []byte{
		olcb.DatagramCommandConfigMem, subcmd + failReplyOffset,
		byte(code >> 8), byte(code),
	}}
}

func ackOnly(subcmd byte) Reply {
	return Reply{OK: true, Payload: []byte{olcb.DatagramCommandConfigMem, subcmd + replyOffset}}
}
