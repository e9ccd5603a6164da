package canframe

import olcb "github.com/openlcb-go/golcb"

// Datagram frame (class 3):
//
//	bits 27:16 = destination alias
//	bits 15:12 = olcb.DatagramFrameType
//	bits 11:0  = source alias
//
// Datagram frames carry no framing-flag byte; the frame-type nibble in the
// identifier itself distinguishes Only/First/Middle/Last (spec.md §4.9).
const datagramBytesPerFrame = 8

func datagramID(frameType olcb.DatagramFrameType, source, dest olcb.Alias) uint32 {
	return classDatagram<<classShift | (uint32(dest)&0xFFF)<<16 | uint32(frameType)<<12 | uint32(source)&0xFFF
}

// BuildDatagramFrames splits a 0-72 byte datagram payload into CAN frames.
func BuildDatagramFrames(source, dest olcb.Alias, payload []byte) ([]olcb.Frame, error) {
	if len(payload) > 72 {
		return nil, olcb.ErrPayloadTooLarge
	}
	if len(payload) == 0 {
		f := olcb.Frame{}
		f.ID = datagramID(olcb.DatagramFrameOnly, source, dest)
		return []olcb.Frame{f}, nil
	}

	var frames []olcb.Frame
	for offset := 0; offset < len(payload); offset += datagramBytesPerFrame {
		end := offset + datagramBytesPerFrame
		if end > len(payload) {
			end = len(payload)
		}
		chunk := payload[offset:end]

		var frameType olcb.DatagramFrameType
		switch {
		case offset == 0 && end == len(payload):
			frameType = olcb.DatagramFrameOnly
		case offset == 0:
			frameType = olcb.DatagramFrameFirst
		case end == len(payload):
			frameType = olcb.DatagramFrameLast
		default:
			frameType = olcb.DatagramFrameMiddle
		}

		f := olcb.Frame{}
		f.ID = datagramID(frameType, source, dest)
		f.DLC = uint8(copy(f.Data[:], chunk))
		frames = append(frames, f)
	}
	return frames, nil
}

// ParsedDatagramFrame is the decoded header of one datagram CAN frame.
type ParsedDatagramFrame struct {
	SourceAlias olcb.Alias
	DestAlias   olcb.Alias
	FrameType   olcb.DatagramFrameType
	Data        []byte
}

func ParseDatagramFrame(f olcb.Frame) (ParsedDatagramFrame, bool) {
	if frameClass(f.ID) != classDatagram {
		return ParsedDatagramFrame{}, false
	}
	out := ParsedDatagramFrame{
		DestAlias:   olcb.Alias((f.ID >> 16) & 0xFFF),
		FrameType:   olcb.DatagramFrameType((f.ID >> 12) & 0xF),
		SourceAlias: olcb.Alias(f.ID & 0xFFF),
	}
	if f.DLC > 0 {
		out.Data = append([]byte(nil), f.Data[:f.DLC]...)
	}
	return out, true
}
