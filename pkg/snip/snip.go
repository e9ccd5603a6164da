// Package snip builds the payloads for the Simple Node Information
// Protocol reply, Protocol Support (PIP) reply, and Verify Node ID reply
// (spec.md §2 row 12). Framing (including splitting the SNIP payload
// across multiple addressed CAN frames) is handled generically by
// pkg/canframe; this package only builds the byte payloads.
package snip

import (
	"bytes"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
)

// BuildReply encodes the Simple Node Information Protocol reply: a
// manufacturer-version byte, four null-terminated manufacturer strings,
// a user-version byte, and two null-terminated user strings read from the
// node's ACDI user-space convention (spec.md §4.10 space 0xFB).
func BuildReply(n *node.Node) []byte {
	buf := ManufacturerBytes(n)
	buf = append(buf, n.Params.UserVersion)
	name, desc := acdiUserStrings(n)
	buf = appendCString(buf, name)
	buf = appendCString(buf, desc)
	return buf
}

// ManufacturerBytes encodes just the manufacturer-owned portion of SNIP
// (version byte plus the four manufacturer strings), shared with
// pkg/memconfig's ACDI Manufacturer space (0xFC) read handler.
func ManufacturerBytes(n *node.Node) []byte {
	var buf []byte
	buf = append(buf, n.Params.SNIPVersion)
	buf = appendCString(buf, n.Params.ManufacturerName)
	buf = appendCString(buf, n.Params.ManufacturerModel)
	buf = appendCString(buf, n.Params.HardwareVersion)
	buf = appendCString(buf, n.Params.SoftwareVersion)
	return buf
}

// PIPReply encodes the 48-bit protocol-support bitmap as 6 bytes,
// big-endian, per S-9.7.3's Protocol Support Reply.
func PIPReply(n *node.Node) []byte {
	v := n.Params.ProtocolSupport
	return []byte{
		byte(v >> 40), byte(v >> 32), byte(v >> 24),
		byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// VerifiedNodeIDPayload encodes the Verified Node ID reply payload: the
// node's own 6-byte NodeID.
func VerifiedNodeIDPayload(n *node.Node) []byte {
	b := n.NodeID.Bytes()
	return b[:]
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

func acdiUserStrings(n *node.Node) (name, desc string) {
	name = cStringAt(n.ConfigMem, olcb.ACDIUserNameOffset, olcb.ACDIUserNameLength)
	desc = cStringAt(n.ConfigMem, olcb.ACDIUserDescriptionOffset, olcb.ACDIUserDescriptionLength)
	return
}

func cStringAt(mem []byte, offset, length int) string {
	if offset < 0 || offset+length > len(mem) {
		return ""
	}
	chunk := mem[offset : offset+length]
	if i := bytes.IndexByte(chunk, 0); i >= 0 {
		chunk = chunk[:i]
	}
	return string(chunk)
}
