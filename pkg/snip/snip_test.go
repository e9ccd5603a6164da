package snip

import (
	"testing"

	"github.com/openlcb-go/golcb/pkg/node"
	"github.com/stretchr/testify/assert"
)

func TestBuildReplyEncodesManufacturerStrings(t *testing.T) {
	n := node.New(0x010203040506, node.Parameters{
		SNIPVersion:       4,
		ManufacturerName:  "Acme",
		ManufacturerModel: "Widget",
		HardwareVersion:   "1.0",
		SoftwareVersion:   "2.0",
		UserVersion:       1,
	})
	copy(n.ConfigMem[0:], "My Node\x00")
	copy(n.ConfigMem[64:], "A test node\x00")

	reply := BuildReply(n)
	assert.Equal(t, byte(4), reply[0])
	assert.Contains(t, string(reply), "Acme\x00Widget\x00")
	assert.Contains(t, string(reply), "My Node\x00")
	assert.Contains(t, string(reply), "A test node\x00")
}

func TestPIPReplyIsSixBytesBigEndian(t *testing.T) {
	n := node.New(1, node.Parameters{ProtocolSupport: 0x0102030405})
	reply := PIPReply(n)
	assert.Len(t, reply, 6)
	assert.Equal(t, []byte{0, 0x01, 0x02, 0x03, 0x04, 0x05}, reply)
}

func TestVerifiedNodeIDPayloadIsNodeIDBytes(t *testing.T) {
	n := node.New(0xAABBCCDDEEFF, node.Parameters{})
	b := n.NodeID.Bytes()
	assert.Equal(t, b[:], VerifiedNodeIDPayload(n))
}
