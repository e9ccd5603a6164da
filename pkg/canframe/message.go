package canframe

import olcb "github.com/openlcb-go/golcb"

// Message frame (class 2):
//
//	bits 27:12 = MTI
//	bits 11:0  = source alias
//
// payload[0] bits 5:4 = olcb.FramingFlag. Addressed messages additionally
// carry the 12-bit destination alias in payload[0] bits 3:0 (high nibble)
// and payload[1] (low byte), leaving 6 data bytes per frame; unaddressed
// messages carry 7 data bytes per frame.
const (
	addressedBytesPerFrame   = 6
	unaddressedBytesPerFrame = 7
)

func messageID(mti olcb.MTI, source olcb.Alias) uint32 {
	return classMessage<<classShift | uint32(mti)<<12 | uint32(source)&0xFFF
}

// BuildMessageFrames splits an OpenLCB message into one or more CAN frames,
// each tagged with the correct framing flag (Only/First/Middle/Last per
// spec.md §4.6). Datagram messages are framed by BuildDatagramFrames
// instead; stream messages go through this function as well.
func BuildMessageFrames(msg olcb.Message) []olcb.Frame {
	perFrame := unaddressedBytesPerFrame
	if msg.Addressed {
		perFrame = addressedBytesPerFrame
	}

	payload := msg.Payload
	if len(payload) == 0 {
		return []olcb.Frame{buildOneFrame(msg, olcb.FramingOnly, nil)}
	}

	var frames []olcb.Frame
	for offset := 0; offset < len(payload); offset += perFrame {
		end := offset + perFrame
		if end > len(payload) {
			end = len(payload)
		}
		chunk := payload[offset:end]

		var flag olcb.FramingFlag
		switch {
		case offset == 0 && end == len(payload):
			flag = olcb.FramingOnly
		case offset == 0:
			flag = olcb.FramingFirst
		case end == len(payload):
			flag = olcb.FramingLast
		default:
			flag = olcb.FramingMiddle
		}
		frames = append(frames, buildOneFrame(msg, flag, chunk))
	}
	return frames
}

func buildOneFrame(msg olcb.Message, flag olcb.FramingFlag, chunk []byte) olcb.Frame {
	f := olcb.Frame{}
	f.ID = messageID(msg.MTI, msg.SourceAlias)

	header := byte(flag) << 4
	n := 0
	if msg.Addressed {
		header |= byte(msg.DestAlias>>8) & 0xF
		f.Data[0] = header
		f.Data[1] = byte(msg.DestAlias)
		n = copy(f.Data[2:], chunk)
		f.DLC = uint8(2 + n)
	} else {
		f.Data[0] = header
		n = copy(f.Data[1:], chunk)
		f.DLC = uint8(1 + n)
	}
	return f
}

// ParsedMessageFrame is the decoded header of one CAN frame belonging to a
// (possibly multi-frame) OpenLCB message.
type ParsedMessageFrame struct {
	MTI         olcb.MTI
	SourceAlias olcb.Alias
	DestAlias   olcb.Alias
	Addressed   bool
	Framing     olcb.FramingFlag
	Data        []byte
}

// ParseMessageFrame decodes a class-2 message frame. It decides from the
// MTI (via olcb.MTI.Addressed) whether the frame carries a
// destination-alias header; ok is false if the frame is not a message
// frame at all.
func ParseMessageFrame(f olcb.Frame) (ParsedMessageFrame, bool) {
	if frameClass(f.ID) != classMessage {
		return ParsedMessageFrame{}, false
	}
	mti := olcb.MTI((f.ID >> 12) & 0xFFFF)
	source := olcb.Alias(f.ID & 0xFFF)

	out := ParsedMessageFrame{MTI: mti, SourceAlias: source, Addressed: mti.Addressed()}
	if f.DLC == 0 {
		return out, true
	}
	header := f.Data[0]
	out.Framing = olcb.FramingFlag((header >> 4) & 0x3)
	if out.Addressed {
		dest := olcb.Alias(header&0xF)<<8 | olcb.Alias(f.Data[1])
		out.DestAlias = dest
		if f.DLC > 2 {
			out.Data = append([]byte(nil), f.Data[2:f.DLC]...)
		}
	} else {
		if f.DLC > 1 {
			out.Data = append([]byte(nil), f.Data[1:f.DLC]...)
		}
	}
	return out, true
}
