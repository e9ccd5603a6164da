package login

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/stretchr/testify/assert"
)

func TestFirstAliasIsDeterministic(t *testing.T) {
	seed, a := FirstAlias(0x010203040506)
	assert.EqualValues(t, 0x010203040506, seed)
	assert.Equal(t, a, AliasFromSeed(seed))
	assert.NotZero(t, a)
}

func TestLFSRSequenceIsReproducible(t *testing.T) {
	const nodeID = olcb.NodeID(0x010203040506)

	_, first := FirstAlias(nodeID)
	seedA, aliasA := RegenerateAlias(uint64(nodeID))
	seedB, aliasB := RegenerateAlias(uint64(nodeID))

	assert.Equal(t, seedA, seedB, "LFSR must be a deterministic function of its input seed")
	assert.Equal(t, aliasA, aliasB)
	_ = first
}

func TestStepChangesSeed(t *testing.T) {
	seed := uint64(0x010203040506)
	next := Step(seed)
	assert.NotEqual(t, seed, next)
	assert.LessOrEqual(t, next, uint64(0xFFFFFFFFFFFF))
}

func TestAliasIsTwelveBits(t *testing.T) {
	for _, seed := range []uint64{0, 1, 0xFFFFFFFFFFFF, 0x0102030405} {
		a := AliasFromSeed(seed)
		assert.LessOrEqual(t, uint16(a), uint16(0x0FFF))
	}
}
