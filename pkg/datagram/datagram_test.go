package datagram

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []olcb.Message
}

func (f *fakeSender) Send(msg olcb.Message) { f.sent = append(f.sent, msg) }

func TestHandleIncomingTwoPhaseMemConfigRead(t *testing.T) {
	n := node.New(1, node.Parameters{CDI: make([]byte, 32)})
	n.Alias = 0x123
	s := &fakeSender{}

	req := &olcb.Message{
		SourceAlias: 0x456,
		MTI:         olcb.MTIDatagram,
		Addressed:   true,
		Kind:        olcb.KindDatagram,
		Payload:     []byte{0x20, 0x43, 0, 0, 0, 0, 0x10},
	}

	HandleIncoming(s, n, req)
	require.Len(t, s.sent, 1)
	assert.Equal(t, olcb.MTIDatagramReceivedOK, s.sent[0].MTI)
	assert.True(t, n.DatagramAckSent)
	assert.True(t, req.Enumerate)

	HandleIncoming(s, n, req)
	require.Len(t, s.sent, 2)
	assert.Equal(t, olcb.MTIDatagram, s.sent[1].MTI)
	assert.Equal(t, olcb.KindDatagram, s.sent[1].Kind)
	assert.False(t, n.DatagramAckSent)
	assert.False(t, req.Enumerate)
	assert.Equal(t, byte(0x53), s.sent[1].Payload[1])

	// The reply payload itself is a sent MTI_DATAGRAM the peer may reject,
	// so it must be tracked for resend just like a client-initiated Send.
	require.NotNil(t, n.PendingDatagram)
	assert.Equal(t, olcb.MTIDatagram, n.PendingDatagram.MTI)
}

func TestHandleIncomingRejectsUnknownCommand(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.DatagramAckSent = true // simulate already past the ack phase
	s := &fakeSender{}
	req := &olcb.Message{SourceAlias: 0x456, Payload: []byte{0xFF}}

	HandleIncoming(s, n, req)
	require.Len(t, s.sent, 1)
	assert.Equal(t, olcb.MTIDatagramRejected, s.sent[0].MTI)
}

func TestSendAndRetrySemantics(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.Alias = 0x123
	s := &fakeSender{}

	Send(s, n, 0x456, 2, []byte{0x20, 0x43})
	require.NotNil(t, n.PendingDatagram)
	require.Len(t, s.sent, 1)

	temporary := &olcb.Message{Payload: []byte{byte(olcb.ErrorCodeTransferError >> 8), byte(olcb.ErrorCodeTransferError)}}
	HandleRejected(n, temporary)
	assert.True(t, n.ResendDatagram)
	assert.NotNil(t, n.PendingDatagram)

	Resend(s, n)
	assert.Len(t, s.sent, 2)
	assert.False(t, n.ResendDatagram)

	permanent := &olcb.Message{Payload: []byte{byte(olcb.ErrorCodeInvalidArguments >> 8), byte(olcb.ErrorCodeInvalidArguments)}}
	HandleRejected(n, permanent)
	assert.Nil(t, n.PendingDatagram)
}

func TestTickDiscardsAfterTimeout(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.Alias = 0x123
	s := &fakeSender{}
	Send(s, n, 0x456, 2, []byte{0x20, 0x43})

	for i := 0; i < 4; i++ {
		Tick(n, 5)
		require.NotNil(t, n.PendingDatagram)
	}
	Tick(n, 5)
	assert.Nil(t, n.PendingDatagram)
	assert.Equal(t, 0, n.DatagramTicks)
}

func TestTickDisabledWhenTimeoutIsZero(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.Alias = 0x123
	s := &fakeSender{}
	Send(s, n, 0x456, 2, []byte{0x20, 0x43})

	for i := 0; i < 100; i++ {
		Tick(n, 0)
	}
	assert.NotNil(t, n.PendingDatagram)
}

func TestHandleReceivedOKClearsPending(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.Alias = 0x123
	s := &fakeSender{}
	Send(s, n, 0x456, 2, []byte{0x20, 0x43})
	require.NotNil(t, n.PendingDatagram)

	HandleReceivedOK(n, &olcb.Message{})
	assert.Nil(t, n.PendingDatagram)
}
