package event

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/stretchr/testify/assert"
)

func TestDecodeDiscreteEvent(t *testing.T) {
	r, isRange := Decode(0x0102030405060708)
	assert.False(t, isRange)
	assert.EqualValues(t, 1, r.Count)
}

func TestDecodeTrailingZeroRange(t *testing.T) {
	// bit 2 set, low 2 bits clear -> 4-event range starting at 0b100
	r, isRange := Decode(olcb.EventID(0b100))
	assert.True(t, isRange)
	assert.EqualValues(t, 0b100, r.Base)
	assert.EqualValues(t, 4, r.Count)
}

func TestDecodeTrailingOnesRange(t *testing.T) {
	// low 2 bits set -> range of 4 ending at this id
	r, isRange := Decode(olcb.EventID(0b1011))
	assert.True(t, isRange)
	assert.EqualValues(t, 0b1000, r.Base)
	assert.EqualValues(t, 4, r.Count)
	assert.True(t, r.Contains(olcb.EventID(0b1011)))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	base := olcb.EventID(0b1100)
	id := Encode(base, 4)
	r, isRange := Decode(id)
	assert.True(t, isRange)
	assert.Equal(t, base, r.Base)
	assert.EqualValues(t, 4, r.Count)
}

func TestDecodeZeroIsDiscrete(t *testing.T) {
	_, isRange := Decode(0)
	assert.False(t, isRange)
}
