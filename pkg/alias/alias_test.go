package alias

import (
	"testing"

	olcb "github.com/openlcb-go/golcb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsDuplicateAlias(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.Register(0x123, 0x010203040506))
	err := tbl.Register(0x123, 0x0A0B0C0D0E0F)
	assert.ErrorIs(t, err, olcb.ErrAliasTableFull)
}

func TestRegisterFullTable(t *testing.T) {
	tbl := NewTable(1)
	require.NoError(t, tbl.Register(0x001, 1))
	err := tbl.Register(0x002, 2)
	assert.ErrorIs(t, err, olcb.ErrAliasTableFull)
}

func TestFindAndUnregister(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.Register(0x456, 0xAABBCCDDEEFF))

	m, ok := tbl.FindByAlias(0x456)
	require.True(t, ok)
	assert.Equal(t, olcb.NodeID(0xAABBCCDDEEFF), m.NodeID)

	m, ok = tbl.FindByNodeID(0xAABBCCDDEEFF)
	require.True(t, ok)
	assert.Equal(t, olcb.Alias(0x456), m.Alias)

	tbl.Unregister(0x456)
	_, ok = tbl.FindByAlias(0x456)
	assert.False(t, ok)
}

func TestPermittedAndDuplicateFlags(t *testing.T) {
	tbl := NewTable(2)
	require.NoError(t, tbl.Register(0x111, 1))

	tbl.SetPermitted(0x111, true)
	m, _ := tbl.FindByAlias(0x111)
	assert.True(t, m.IsPermitted)

	tbl.SetDuplicate(0x111)
	m, _ = tbl.FindByAlias(0x111)
	assert.True(t, m.IsDuplicate)

	tbl.ClearDuplicate(0x111)
	m, _ = tbl.FindByAlias(0x111)
	assert.False(t, m.IsDuplicate)
}
