package msgqueue

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAddFindRelease(t *testing.T) {
	store := buffer.NewStore(4, 4, 1)
	l := NewList(2)

	h, _, err := store.Allocate(olcb.KindBasic)
	require.NoError(t, err)

	require.NoError(t, l.Add(h, 0x100, 0x200, olcb.MTIEventLearn))
	got, ok := l.Find(0x100, 0x200, olcb.MTIEventLearn)
	require.True(t, ok)
	assert.Equal(t, h, got)

	l.Release(0x100, 0x200, olcb.MTIEventLearn)
	_, ok = l.Find(0x100, 0x200, olcb.MTIEventLearn)
	assert.False(t, ok)
}

func TestListReplacesStaleFirstFrame(t *testing.T) {
	store := buffer.NewStore(4, 4, 1)
	l := NewList(1)

	h1, _, _ := store.Allocate(olcb.KindBasic)
	require.NoError(t, l.Add(h1, 1, 2, olcb.MTIEventLearn))

	h2, _, _ := store.Allocate(olcb.KindBasic)
	require.NoError(t, l.Add(h2, 1, 2, olcb.MTIEventLearn))

	got, ok := l.Find(1, 2, olcb.MTIEventLearn)
	require.True(t, ok)
	assert.Equal(t, h2, got)
}

func TestListFullReturnsError(t *testing.T) {
	store := buffer.NewStore(4, 4, 1)
	l := NewList(1)
	h1, _, _ := store.Allocate(olcb.KindBasic)
	require.NoError(t, l.Add(h1, 1, 2, olcb.MTIEventLearn))

	h2, _, _ := store.Allocate(olcb.KindBasic)
	err := l.Add(h2, 3, 4, olcb.MTIEventLearn)
	assert.ErrorIs(t, err, olcb.ErrBufferListFull)
}

func TestFIFOPriorityOrdering(t *testing.T) {
	store := buffer.NewStore(8, 8, 1)
	f := NewFIFO(8)

	lowPriority := olcb.MTI(0x0594)  // priority bit pattern with top bits 0
	highPriority := olcb.MTI(0xE000) // top 3 bits = 7

	hLow, _, _ := store.Allocate(olcb.KindBasic)
	hHigh, _, _ := store.Allocate(olcb.KindBasic)

	require.NoError(t, f.Push(hLow, lowPriority))
	require.NoError(t, f.Push(hHigh, highPriority))

	first, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, hLow, first, "lower numeric priority value must dequeue first")

	second, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, hHigh, second)

	_, ok = f.Pop()
	assert.False(t, ok)
}

func TestFIFOSamePriorityIsFIFOOrdered(t *testing.T) {
	store := buffer.NewStore(8, 8, 1)
	f := NewFIFO(8)
	mti := olcb.MTIEventLearn

	h1, _, _ := store.Allocate(olcb.KindBasic)
	h2, _, _ := store.Allocate(olcb.KindBasic)
	require.NoError(t, f.Push(h1, mti))
	require.NoError(t, f.Push(h2, mti))

	got1, _ := f.Pop()
	got2, _ := f.Pop()
	assert.Equal(t, h1, got1)
	assert.Equal(t, h2, got2)
}

func TestFIFOFullReturnsError(t *testing.T) {
	store := buffer.NewStore(2, 2, 1)
	f := NewFIFO(1)
	h1, _, _ := store.Allocate(olcb.KindBasic)
	h2, _, _ := store.Allocate(olcb.KindBasic)

	require.NoError(t, f.Push(h1, olcb.MTIEventLearn))
	err := f.Push(h2, olcb.MTIEventLearn)
	assert.ErrorIs(t, err, olcb.ErrFIFOFull)
}
