package virtual

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameReceiver struct {
	frames []olcb.Frame
}

func (r *frameReceiver) Handle(f olcb.Frame) { r.frames = append(r.frames, f) }

func newVcan(t *testing.T, channel string) *Bus {
	t.Helper()
	b, err := NewVirtualCanBus(channel)
	require.NoError(t, err)
	return b.(*Bus)
}

func TestSendAndSubscribeAcrossBuses(t *testing.T) {
	vcan1 := newVcan(t, t.Name())
	vcan2 := newVcan(t, t.Name())
	require.NoError(t, vcan1.Connect())
	require.NoError(t, vcan2.Connect())
	defer vcan1.Disconnect()
	defer vcan2.Disconnect()

	recv := &frameReceiver{}
	require.NoError(t, vcan2.Subscribe(recv))

	frame := olcb.Frame{ID: 0x111, DLC: 8, Data: [8]byte{0, 1, 2, 3, 4, 5, 6, 7}}
	for i := 0; i < 10; i++ {
		frame.Data[0] = byte(i)
		require.NoError(t, vcan1.Send(frame))
	}

	require.Len(t, recv.frames, 10)
	for i, f := range recv.frames {
		assert.EqualValues(t, 0x111, f.ID)
		assert.EqualValues(t, byte(i), f.Data[0])
	}
}

func TestReceiveOwnDefaultsOff(t *testing.T) {
	vcan1 := newVcan(t, t.Name())
	require.NoError(t, vcan1.Connect())
	defer vcan1.Disconnect()

	recv := &frameReceiver{}
	require.NoError(t, vcan1.Subscribe(recv))

	frame := olcb.Frame{ID: 0x111, DLC: 8}
	require.NoError(t, vcan1.Send(frame))
	assert.Empty(t, recv.frames)

	vcan1.SetReceiveOwn(true)
	require.NoError(t, vcan1.Send(frame))
	assert.Len(t, recv.frames, 1)
}

func TestDisjointChannelsDoNotSeeEachOther(t *testing.T) {
	vcan1 := newVcan(t, t.Name()+"-a")
	vcan2 := newVcan(t, t.Name()+"-b")
	require.NoError(t, vcan1.Connect())
	require.NoError(t, vcan2.Connect())
	defer vcan1.Disconnect()
	defer vcan2.Disconnect()

	recv := &frameReceiver{}
	require.NoError(t, vcan2.Subscribe(recv))
	require.NoError(t, vcan1.Send(olcb.Frame{ID: 0x111, DLC: 1}))
	assert.Empty(t, recv.frames)
}
