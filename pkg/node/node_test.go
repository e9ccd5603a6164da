package node

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerationRangesBeforeDiscretes(t *testing.T) {
	n := New(0x010203040506, Parameters{})
	n.ProducerRanges = []EventRange{{Base: 0x100, Count: 4}}
	n.AddProducer(0x01, EventValid)
	n.AddProducer(0x02, EventUnknown)

	n.ResetProducerEnumeration()

	rng, _, isRange, done := n.NextProducerStep()
	require.False(t, done)
	assert.True(t, isRange)
	assert.Equal(t, olcb.EventID(0x100), rng.Base)

	_, entry, isRange, done := n.NextProducerStep()
	require.False(t, done)
	assert.False(t, isRange)
	assert.Equal(t, olcb.EventID(0x01), entry.ID)

	_, entry, isRange, done = n.NextProducerStep()
	require.False(t, done)
	assert.Equal(t, olcb.EventID(0x02), entry.ID)

	_, _, _, done = n.NextProducerStep()
	assert.True(t, done)
}

func TestMatchesDest(t *testing.T) {
	n := New(0xAABBCCDDEEFF, Parameters{})
	n.Alias = 0x222

	assert.True(t, n.MatchesDest(0x222, 0))
	assert.True(t, n.MatchesDest(0, 0xAABBCCDDEEFF))
	assert.False(t, n.MatchesDest(0x333, 0x112233445566))
}

func TestSetUserStrings(t *testing.T) {
	n := New(1, Parameters{})
	n.SetUserStrings("layout-one", "turntable control")

	name := string(n.ConfigMem[olcb.ACDIUserNameOffset : olcb.ACDIUserNameOffset+len("layout-one")])
	assert.Equal(t, "layout-one", name)
	assert.Equal(t, byte(0), n.ConfigMem[olcb.ACDIUserNameOffset+len("layout-one")])

	desc := string(n.ConfigMem[olcb.ACDIUserDescriptionOffset : olcb.ACDIUserDescriptionOffset+len("turntable control")])
	assert.Equal(t, "turntable control", desc)
}

func TestSetUserStringsTruncatesToFieldWidth(t *testing.T) {
	n := New(1, Parameters{})
	long := make([]byte, olcb.ACDIUserNameLength+10)
	for i := range long {
		long[i] = 'x'
	}
	n.SetUserStrings(string(long), "")

	field := n.ConfigMem[olcb.ACDIUserNameOffset : olcb.ACDIUserNameOffset+olcb.ACDIUserNameLength]
	assert.Equal(t, byte(0), field[olcb.ACDIUserNameLength-1])
}

func TestPoolLookup(t *testing.T) {
	p := NewPool(2)
	n1 := New(1, Parameters{})
	n1.Alias = 0x10
	n2 := New(2, Parameters{})
	n2.Alias = 0x20

	require.NoError(t, p.Add(n1))
	require.NoError(t, p.Add(n2))
	assert.ErrorIs(t, p.Add(New(3, Parameters{})), olcb.ErrNodePoolExhausted)

	assert.Same(t, n1, p.ByAlias(0x10))
	assert.Same(t, n2, p.ByNodeID(2))
	assert.Nil(t, p.ByAlias(0x99))
}
