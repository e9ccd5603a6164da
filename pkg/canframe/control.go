// Package canframe implements the CAN framing layer of spec.md §4.5/§4.6:
// building and classifying the control frames used during alias login
// (CID/RID/AMD/AME/AMR), packing/unpacking OpenLCB messages into CAN
// frames, and the RX/TX frame state machines that sit between the root
// package's raw olcb.Frame/olcb.Bus and the rest of the engine.
//
// The 29-bit CAN identifier layout used here is an internally consistent
// encoding, not a byte-for-byte reproduction of the real S-9.7.2 wire
// format: the top nibble selects a frame class, and the remaining bits are
// carved up per class below.
package canframe

import (
	olcb "github.com/openlcb-go/golcb"
)

// Frame classes, packed into bits 31:28 of the CAN identifier.
const (
	classControl  uint32 = 0x1
	classMessage  uint32 = 0x2
	classDatagram uint32 = 0x3
	classStream   uint32 = 0x4
)

const classShift = 28

func frameClass(id uint32) uint32 { return id >> classShift }

// --- Control frames (CID7/6/5/4, RID, AMD, AME, AMR, EIR) ---
//
// bits 27:16 = node-ID chunk (CID frames only, 0 otherwise)
// bits 15:12 = olcb.ControlFrameVariant
// bits 11:0  = alias

func controlID(variant olcb.ControlFrameVariant, chunk uint32, alias olcb.Alias) uint32 {
	return classControl<<classShift | (chunk&0xFFF)<<16 | uint32(variant)<<12 | uint32(alias)&0xFFF
}

// cidChunk extracts the 12-bit slice of a 48-bit NodeID for a given CID
// variant: CID7 is the most significant chunk, CID4 the least.
func cidChunk(id olcb.NodeID, variant olcb.ControlFrameVariant) uint32 {
	v := uint64(id) & 0xFFFFFFFFFFFF
	switch variant {
	case olcb.ControlFrameCID7:
		return uint32(v>>36) & 0xFFF
	case olcb.ControlFrameCID6:
		return uint32(v>>24) & 0xFFF
	case olcb.ControlFrameCID5:
		return uint32(v>>12) & 0xFFF
	case olcb.ControlFrameCID4:
		return uint32(v) & 0xFFF
	default:
		return 0
	}
}

// BuildCID builds one of the four Check-ID frames sent during alias login
// (spec.md §4.4), each carrying a 12-bit slice of the candidate NodeID plus
// the candidate alias. The frame carries no payload.
func BuildCID(variant olcb.ControlFrameVariant, id olcb.NodeID, alias olcb.Alias) olcb.Frame {
	f := olcb.Frame{}
	f.ID = controlID(variant, cidChunk(id, variant), alias)
	f.DLC = 0
	return f
}

func BuildCID7(id olcb.NodeID, alias olcb.Alias) olcb.Frame {
	return BuildCID(olcb.ControlFrameCID7, id, alias)
}
func BuildCID6(id olcb.NodeID, alias olcb.Alias) olcb.Frame {
	return BuildCID(olcb.ControlFrameCID6, id, alias)
}
func BuildCID5(id olcb.NodeID, alias olcb.Alias) olcb.Frame {
	return BuildCID(olcb.ControlFrameCID5, id, alias)
}
func BuildCID4(id olcb.NodeID, alias olcb.Alias) olcb.Frame {
	return BuildCID(olcb.ControlFrameCID4, id, alias)
}

// BuildRID builds the Reserve-ID frame: no competing CID response arrived,
// so the alias is claimed for one more step before AMD.
func BuildRID(alias olcb.Alias) olcb.Frame {
	f := olcb.Frame{}
	f.ID = controlID(olcb.ControlFrameRID, 0, alias)
	f.DLC = 0
	return f
}

// BuildAMD builds Alias Map Definition: alias now maps to id, announced to
// the bus. Payload carries the full 48-bit NodeID, big-endian.
func BuildAMD(alias olcb.Alias, id olcb.NodeID) olcb.Frame {
	f := olcb.Frame{}
	f.ID = controlID(olcb.ControlFrameAMD, 0, alias)
	f.DLC = 6
	copy(f.Data[:6], id.Bytes())
	return f
}

// BuildAME builds Alias Map Enquiry, optionally targeted at a specific
// NodeID (all-zero payload means "does anyone use this alias").
func BuildAME(alias olcb.Alias, id olcb.NodeID) olcb.Frame {
	f := olcb.Frame{}
	f.ID = controlID(olcb.ControlFrameAME, 0, alias)
	if id != 0 {
		f.DLC = 6
		copy(f.Data[:6], id.Bytes())
	}
	return f
}

// BuildAMR builds Alias Map Reset, announcing that alias no longer maps to
// id (the node is giving it up or shutting down).
func BuildAMR(alias olcb.Alias, id olcb.NodeID) olcb.Frame {
	f := olcb.Frame{}
	f.ID = controlID(olcb.ControlFrameAMR, 0, alias)
	f.DLC = 6
	copy(f.Data[:6], id.Bytes())
	return f
}

// ControlKind identifies which control frame ClassifyControl decoded.
type ControlKind uint8

const (
	ControlNone ControlKind = iota
	ControlCID
	ControlRID
	ControlAMD
	ControlAME
	ControlAMR
	ControlEIR
)

// ControlFrame is the decoded form of a received control frame.
type ControlFrame struct {
	Kind    ControlKind
	Variant olcb.ControlFrameVariant // set when Kind == ControlCID
	Alias   olcb.Alias
	NodeID  olcb.NodeID // set when the frame carries a full NodeID payload
}

// ClassifyControl decodes a raw CAN frame as a control frame, reporting
// ControlNone if it is not one (i.e. its class nibble is not classControl).
func ClassifyControl(f olcb.Frame) ControlFrame {
	if frameClass(f.ID) != classControl {
		return ControlFrame{Kind: ControlNone}
	}
	variant := olcb.ControlFrameVariant((f.ID >> 12) & 0xF)
	alias := olcb.Alias(f.ID & 0xFFF)
	out := ControlFrame{Alias: alias}
	if f.DLC >= 6 {
		out.NodeID = olcb.NodeIDFromBytes(f.Data[:6])
	}
	switch variant {
	case olcb.ControlFrameCID7, olcb.ControlFrameCID6, olcb.ControlFrameCID5, olcb.ControlFrameCID4:
		out.Kind = ControlCID
		out.Variant = variant
	case olcb.ControlFrameRID:
		out.Kind = ControlRID
	case olcb.ControlFrameAMD:
		out.Kind = ControlAMD
	case olcb.ControlFrameAME:
		out.Kind = ControlAME
	case olcb.ControlFrameAMR:
		out.Kind = ControlAMR
	case olcb.ControlFrameEIR:
		out.Kind = ControlEIR
	default:
		out.Kind = ControlNone
	}
	return out
}
