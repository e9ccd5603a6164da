package memconfig

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCDIMatchesSpecScenario(t *testing.T) {
	n := node.New(1, node.Parameters{CDI: make([]byte, 64)})
	for i := range n.Params.CDI {
		n.Params.CDI[i] = byte(i)
	}

	req := []byte{0x20, 0x43, 0x00, 0x00, 0x00, 0x00, 0x20}
	reply := Handle(n, req)
	require.True(t, reply.OK)
	assert.Equal(t, byte(0x20), reply.Payload[0])
	assert.Equal(t, byte(0x53), reply.Payload[1])
	assert.Equal(t, []byte{0, 0, 0, 0}, reply.Payload[2:6])
	assert.Equal(t, n.Params.CDI[:32], reply.Payload[6:])
}

func TestWriteUnderMaskMatchesSpecScenario(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.ConfigMem[0x10] = 0xAB

	req1 := []byte{0x20, 0x88, 0x00, 0x00, 0x00, 0x10, 0xFF, 0x05}
	reply1 := Handle(n, req1)
	require.True(t, reply1.OK)
	assert.Equal(t, byte(0x05), n.ConfigMem[0x10])
	assert.Equal(t, []byte{0x20, 0x98, 0x00, 0x00, 0x00, 0x10}, reply1.Payload)

	req2 := []byte{0x20, 0x88, 0x00, 0x00, 0x00, 0x10, 0x0F, 0x07}
	reply2 := Handle(n, req2)
	require.True(t, reply2.OK)
	assert.Equal(t, byte(0x07), n.ConfigMem[0x10])
}

func TestUnknownSubcommandRejected(t *testing.T) {
	n := node.New(1, node.Parameters{})
	reply := Handle(n, []byte{0x20, 0xFF})
	assert.False(t, reply.OK)
	assert.Equal(t, olcb.ErrorCodeNotImplementedSubcommandUnknown, reply.Code)
}

func TestReadOutOfBoundsRejected(t *testing.T) {
	n := node.New(1, node.Parameters{CDI: make([]byte, 4)})
	req := []byte{0x20, 0x43, 0x00, 0x00, 0x00, 0x10, 0x04}
	reply := Handle(n, req)
	assert.False(t, reply.OK)
	assert.Equal(t, olcb.ErrorCodeOutOfBoundsInvalidAddress, reply.Code)
}

func TestReadOverrunClampsCount(t *testing.T) {
	n := node.New(1, node.Parameters{CDI: []byte{1, 2, 3, 4}})
	req := []byte{0x20, 0x43, 0x00, 0x00, 0x00, 0x02, 0x10} // addr=2, count=16, only 2 bytes remain
	reply := Handle(n, req)
	require.True(t, reply.OK)
	assert.Equal(t, []byte{3, 4}, reply.Payload[6:])
}

func TestReserveGrantsAndReleases(t *testing.T) {
	n := node.New(1, node.Parameters{})
	contender := olcb.NodeID(0xAABBCCDDEEFF)
	cb := contender.Bytes()

	req := append([]byte{0x20, olcb.ConfigMemSubCmdReserve}, cb[:]...)
	reply := Handle(n, req)
	require.True(t, reply.OK)
	assert.Equal(t, contender, n.OwnerNode)

	release := append([]byte{0x20, olcb.ConfigMemSubCmdReserve}, make([]byte, 6)...)
	reply = Handle(n, release)
	require.True(t, reply.OK)
	assert.Zero(t, n.OwnerNode)
}

func TestFactoryResetZeroesConfigMem(t *testing.T) {
	n := node.New(1, node.Parameters{})
	n.ConfigMem[5] = 0xFF
	reply := Handle(n, []byte{0x20, olcb.ConfigMemSubCmdFactoryReset})
	require.True(t, reply.OK)
	assert.Equal(t, byte(0), n.ConfigMem[5])
}

func TestFactoryResetInvokesHostDelegate(t *testing.T) {
	n := node.New(1, node.Parameters{})
	var called bool
	n.OnFactoryReset = func() { called = true }

	reply := Handle(n, []byte{0x20, olcb.ConfigMemSubCmdFactoryReset})
	require.True(t, reply.OK)
	assert.True(t, called)
}

func TestResetInvokesHostRebootDelegate(t *testing.T) {
	n := node.New(1, node.Parameters{})
	var called bool
	n.OnReboot = func() { called = true }

	reply := Handle(n, []byte{0x20, olcb.ConfigMemSubCmdReset})
	require.True(t, reply.OK)
	assert.True(t, called)
}
