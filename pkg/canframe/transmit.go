package canframe

import (
	"github.com/sirupsen/logrus"

	olcb "github.com/openlcb-go/golcb"
)

// Transmitter is the CAN TX frame state machine of spec.md §4.6:
// send_openlcb_message builds the right frame sequence for a message's
// kind and hands each frame to the bus in order. Because the engine is
// single-threaded and cooperative (spec.md §5), a send either completes
// or fails outright; there is no concurrent sender to interleave with.
type Transmitter struct {
	bus *olcb.BusManager
	log logrus.FieldLogger
}

func NewTransmitter(bus *olcb.BusManager, log logrus.FieldLogger) *Transmitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transmitter{bus: bus, log: log}
}

// SendMessage builds and transmits the CAN frame sequence for msg.
func (t *Transmitter) SendMessage(msg olcb.Message) error {
	var frames []olcb.Frame
	if msg.Kind == olcb.KindDatagram {
		fs, err := BuildDatagramFrames(msg.SourceAlias, msg.DestAlias, msg.Payload)
		if err != nil {
			return err
		}
		frames = fs
	} else {
		frames = BuildMessageFrames(msg)
	}
	return t.sendFrames(frames)
}

// SendControl transmits a single pre-built control frame (CID/RID/AMD/
// AME/AMR), used by the login state machine.
func (t *Transmitter) SendControl(f olcb.Frame) error {
	return t.sendFrames([]olcb.Frame{f})
}

func (t *Transmitter) sendFrames(frames []olcb.Frame) error {
	for _, f := range frames {
		if err := t.bus.Send(f); err != nil {
			t.log.WithError(err).WithField("can_id", f.ID).Warn("canframe: frame send failed")
			return err
		}
	}
	return nil
}
