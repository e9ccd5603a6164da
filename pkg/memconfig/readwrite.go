package memconfig

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
)

func beBytes4(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// handleReadWrite implements spec.md §4.10: validation, the overrun clamp,
// per-space dispatch, and write-under-mask.
func handleReadWrite(n *node.Node, subcmd byte, info subCommandInfo, payload []byte) Reply {
	const hdrBase = 6 // cmd + subcmd + 4-byte address
	if len(payload) < hdrBase {
		return rejectGeneric(subcmd, olcb.ErrorCodeInvalidArguments)
	}
	addr := be32(payload[2:6])
	space := info.space
	hdrLen := hdrBase
	if info.generic {
		if len(payload) <= hdrLen {
			return rejectGeneric(subcmd, olcb.ErrorCodeInvalidArguments)
		}
		space = payload[hdrLen]
		hdrLen++
	}

	hi := highestAddress(n, space)
	if hi < 0 {
		return rejectGeneric(subcmd, olcb.ErrorCodeAddressSpaceUnknown)
	}
	if int(addr) > hi {
		return rejectGeneric(subcmd, olcb.ErrorCodeOutOfBoundsInvalidAddress)
	}

	header := func(data []byte) []byte {
		out := []byte{olcb.DatagramCommandConfigMem, subcmd + replyOffset}
		out = append(out, beBytes4(addr)...)
		if info.generic {
			out = append(out, space)
		}
		return append(out, data...)
	}

	switch info.op {
	case opRead:
		if len(payload) <= hdrLen {
			return rejectGeneric(subcmd, olcb.ErrorCodeInvalidArguments)
		}
		count := int(payload[hdrLen])
		if count <= 0 || count > maxReadCount {
			return rejectGeneric(subcmd, olcb.ErrorCodeInvalidArguments)
		}
		if int(addr)+count > hi+1 {
			count = hi - int(addr) + 1
		}
		data, ok := readSpace(n, space, addr, count)
		if !ok {
			return rejectGeneric(subcmd, olcb.ErrorCodeAddressSpaceUnknown)
		}
		return Reply{OK: true, Payload: header(data)}

	case opWrite:
		data := payload[hdrLen:]
		if !writeSpace(n, space, addr, data) {
			return rejectGeneric(subcmd, olcb.ErrorCodeAddressSpaceUnknown)
		}
		return Reply{OK: true, Payload: header(nil)}

	case opWriteMask:
		rest := payload[hdrLen:]
		if len(rest) == 0 || len(rest)%2 != 0 {
			return rejectGeneric(subcmd, olcb.ErrorCodeInvalidArguments)
		}
		pairs := len(rest) / 2
		existing, ok := readSpace(n, space, addr, pairs)
		if !ok {
			return rejectGeneric(subcmd, olcb.ErrorCodeAddressSpaceUnknown)
		}
		newData := make([]byte, pairs)
		for i := 0; i < pairs; i++ {
			mask, val := rest[i*2], rest[i*2+1]
			var old byte
			if i < len(existing) {
				old = existing[i]
			}
			newData[i] = (val & mask) | (old &^ mask)
		}
		if !writeSpace(n, space, addr, newData) {
			return rejectGeneric(subcmd, olcb.ErrorCodeAddressSpaceUnknown)
		}
		return Reply{OK: true, Payload: header(nil)}
	}
	return rejectGeneric(subcmd, olcb.ErrorCodeNotImplementedSubcommandUnknown)
}
