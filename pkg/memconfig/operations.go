package memconfig

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
)

// capability bits for the Options reply, spec.md §4.11.
const (
	capWriteUnderMask   = 1 << 0
	capUnalignedReadWrite = 1 << 1
	capReadACDIMfg      = 1 << 2
	capReadACDIUser     = 1 << 3
	capWriteACDIUser    = 1 << 4
)

func optionsReply() Reply {
	caps := uint16(capWriteUnderMask | capUnalignedReadWrite | capReadACDIMfg | capReadACDIUser | capWriteACDIUser)
	payload := []byte{
		olcb.DatagramCommandConfigMem, olcb.ConfigMemSubCmdOptionsReply,
		byte(caps >> 8), byte(caps),
		maxReadCount,            // write-length bitmap: this port supports up to maxReadCount bytes per write
		olcb.SpaceFirmware,      // lowest recognized address space
		olcb.SpaceCDI,           // highest recognized address space
	}
	payload = append(payload, []byte("golcb memconfig")...)
	payload = append(payload, 0)
	return Reply{OK: true, Payload: payload}
}

func addressSpaceInfoReply(n *node.Node, payload []byte) Reply {
	if len(payload) < 3 {
		return rejectGeneric(olcb.ConfigMemSubCmdAddrSpaceInfo, olcb.ErrorCodeInvalidArguments)
	}
	space := payload[2]
	out := []byte{olcb.DatagramCommandConfigMem, olcb.ConfigMemSubCmdAddrSpaceInfo + replyOffset, space}

	hi := highestAddress(n, space)
	if hi < 0 {
		out = append(out, 0x00) // not present
		return Reply{OK: true, Payload: out}
	}
	const flagPresent = 0x01
	out = append(out, flagPresent)
	out = append(out, beBytes4(uint32(hi))...)
	out = append(out, []byte(spaceDescription(space))...)
	out = append(out, 0)
	return Reply{OK: true, Payload: out}
}

func reserveReply(n *node.Node, payload []byte) Reply {
	if len(payload) < 8 {
		return rejectGeneric(olcb.ConfigMemSubCmdReserve, olcb.ErrorCodeInvalidArguments)
	}
	contender := olcb.NodeIDFromBytes(payload[2:8])
	switch {
	case n.OwnerNode == 0 && contender != 0:
		n.OwnerNode = contender // grant
	case n.OwnerNode != 0 && contender == 0:
		n.OwnerNode = 0 // release
	}
	owner := n.OwnerNode.Bytes()
	out := append([]byte{olcb.DatagramCommandConfigMem, olcb.ConfigMemSubCmdReserveReply}, owner[:]...)
	return Reply{OK: true, Payload: out}
}

func spaceDescription(space byte) string {
	switch space {
	case olcb.SpaceCDI:
		return "CDI"
	case olcb.SpaceAll:
		return "All"
	case olcb.SpaceConfig:
		return "Config"
	case olcb.SpaceACDIManufacturer:
		return "ACDI Mfg"
	case olcb.SpaceACDIUser:
		return "ACDI User"
	case olcb.SpaceTrainFDI:
		return "Train FDI"
	case olcb.SpaceTrainFunctionConfig:
		return "Train Functions"
	case olcb.SpaceFirmware:
		return "Firmware"
	default:
		return ""
	}
}
