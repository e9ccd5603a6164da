package canframe

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/buffer"
	"github.com/openlcb-go/golcb/pkg/msgqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler() (*Assembler, *buffer.Store, *msgqueue.FIFO) {
	store := buffer.NewStore(8, 8, 2)
	list := msgqueue.NewList(4)
	fifo := msgqueue.NewFIFO(8)
	return NewAssembler(store, list, fifo, nil), store, fifo
}

func popMessage(t *testing.T, store *buffer.Store, fifo *msgqueue.FIFO) olcb.Message {
	t.Helper()
	h, ok := fifo.Pop()
	require.True(t, ok)
	msg := store.Get(h)
	require.NotNil(t, msg)
	out := *msg
	store.Free(h)
	return out
}

func TestAssemblerSingleFrameMessage(t *testing.T) {
	a, store, fifo := newTestAssembler()
	msg := olcb.Message{SourceAlias: 0x50, MTI: olcb.MTIEventLearn, Payload: []byte{0xAA}}
	frames := BuildMessageFrames(msg)
	require.Len(t, frames, 1)

	require.NoError(t, a.HandleFrame(frames[0]))
	got := popMessage(t, store, fifo)
	assert.Equal(t, msg.MTI, got.MTI)
	assert.Equal(t, []byte{0xAA}, got.Payload)
}

func TestAssemblerMultiFrameReassembly(t *testing.T) {
	a, store, fifo := newTestAssembler()
	payload := make([]byte, 15)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	msg := olcb.Message{
		SourceAlias: 0x10, DestAlias: 0x20, Addressed: true,
		MTI: olcb.MTISimpleNodeInfoReply, Payload: payload,
	}
	frames := BuildMessageFrames(msg)
	require.Greater(t, len(frames), 1)

	for _, f := range frames {
		require.NoError(t, a.HandleFrame(f))
	}
	got := popMessage(t, store, fifo)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, olcb.KindSNIP, got.Kind)
}

func TestAssemblerDropsMiddleWithoutFirst(t *testing.T) {
	a, _, fifo := newTestAssembler()
	frames, err := BuildDatagramFrames(1, 2, make([]byte, 24))
	require.NoError(t, err)

	// Feed only the middle frame; nothing should be queued.
	require.NoError(t, a.HandleFrame(frames[1]))
	_, ok := fifo.Pop()
	assert.False(t, ok)
}

func TestAssemblerDatagramReassembly(t *testing.T) {
	a, store, fifo := newTestAssembler()
	payload := make([]byte, 40)
	for i := range payload {
		payload[i] = byte(i)
	}
	frames, err := BuildDatagramFrames(0xAA, 0xBB, payload)
	require.NoError(t, err)

	for _, f := range frames {
		require.NoError(t, a.HandleFrame(f))
	}
	got := popMessage(t, store, fifo)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, olcb.KindDatagram, got.Kind)
	assert.Equal(t, olcb.Alias(0xAA), got.SourceAlias)
	assert.Equal(t, olcb.Alias(0xBB), got.DestAlias)
}
