package buffer

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateFreeRoundTrip(t *testing.T) {
	s := NewStore(2, 1, 1)

	h1, msg1, err := s.Allocate(olcb.KindBasic)
	require.NoError(t, err)
	msg1.MTI = olcb.MTIVerifiedNodeID

	h2, _, err := s.Allocate(olcb.KindBasic)
	require.NoError(t, err)

	_, _, err = s.Allocate(olcb.KindBasic)
	assert.ErrorIs(t, err, olcb.ErrBufferPoolExhausted)

	s.Free(h1)
	h3, msg3, err := s.Allocate(olcb.KindBasic)
	require.NoError(t, err)
	assert.Equal(t, olcb.MTI(0), msg3.MTI, "reallocated slot must be zeroed")

	s.Free(h2)
	s.Free(h3)
	stats := s.Stats(olcb.KindBasic)
	assert.Equal(t, 0, stats.Current)
	assert.Equal(t, 2, stats.Peak)
}

func TestFreeIsNilSafeAndIdempotent(t *testing.T) {
	s := NewStore(1, 1, 1)
	h, _, err := s.Allocate(olcb.KindBasic)
	require.NoError(t, err)

	s.Free(h)
	assert.NotPanics(t, func() { s.Free(h) })

	var stale Handle
	stale.idx = -1
	assert.NotPanics(t, func() { s.Free(stale) })
}

func TestIncRefKeepsMessageAliveUntilLastFree(t *testing.T) {
	s := NewStore(1, 1, 1)
	h, msg, err := s.Allocate(olcb.KindBasic)
	require.NoError(t, err)
	msg.Payload = []byte{1, 2, 3}

	s.IncRef(h)
	s.Free(h)
	assert.NotNil(t, s.Get(h), "message must survive one of two frees")

	s.Free(h)
	assert.Nil(t, s.Get(h), "message must be reclaimed after refcount hits zero")
}

func TestKindForPayload(t *testing.T) {
	assert.Equal(t, olcb.KindBasic, KindForPayload(8))
	assert.Equal(t, olcb.KindDatagram, KindForPayload(9))
	assert.Equal(t, olcb.KindDatagram, KindForPayload(72))
	assert.Equal(t, olcb.KindSNIP, KindForPayload(73))
}
