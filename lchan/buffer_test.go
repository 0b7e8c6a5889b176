package lchan_test

import (
	"testing"

	"github.com/sarchlab/enbstack/lchan"
	"github.com/stretchr/testify/require"
)

func TestDLBufferReplacesNotAdds(t *testing.T) {
	t.Parallel()

	m := lchan.NewManager()
	m.Configure(lchan.Channel{LCID: 3, Direction: lchan.DirDL})

	m.DLBuffer(3, 100, 10)
	m.DLBuffer(3, 50, 0)

	require.Equal(t, uint32(50), m.PendingDLBytes())
}

func TestCEsEmittedInPushOrder(t *testing.T) {
	t.Parallel()

	m := lchan.NewManager()
	m.PushTA(5)
	m.PushConRes(0xAABBCCDDEEFF)
	m.PushSCellActivation(0b101)

	ces := m.PendingCEs()
	require.Len(t, ces, 3)
	require.Equal(t, lchan.CETimingAdvance, ces[0].Kind)
	require.Equal(t, lchan.CEContentionResolution, ces[1].Kind)
	require.Equal(t, lchan.CESCellActivation, ces[2].Kind)
}

func TestDrainCEsRemovesFromFront(t *testing.T) {
	t.Parallel()

	m := lchan.NewManager()
	m.PushTA(1)
	m.PushTA(2)
	m.PushTA(3)

	drained := m.DrainCEs(2)
	require.Len(t, drained, 2)
	require.Equal(t, uint8(1), drained[0].TAIdx)
	require.Equal(t, uint8(2), drained[1].TAIdx)

	remaining := m.PendingCEs()
	require.Len(t, remaining, 1)
	require.Equal(t, uint8(3), remaining[0].TAIdx)
}

func TestChannelsByPriorityOrdersDescendingThenLCID(t *testing.T) {
	t.Parallel()

	m := lchan.NewManager()
	m.Configure(lchan.Channel{LCID: 5, Priority: 1})
	m.Configure(lchan.Channel{LCID: 1, Priority: 5})
	m.Configure(lchan.Channel{LCID: 2, Priority: 5})

	ordered := m.ChannelsByPriority()
	require.Equal(t, []uint8{1, 2, 5}, []uint8{ordered[0].LCID, ordered[1].LCID, ordered[2].LCID})
}

func TestULBSRIndexedByLCG(t *testing.T) {
	t.Parallel()

	m := lchan.NewManager()
	m.ULBSR(2, 1024)

	bsr := m.BSR()
	require.Equal(t, uint32(1024), bsr[2])
	require.Equal(t, uint32(0), bsr[0])
}

func TestULBufferAddIsAdditive(t *testing.T) {
	t.Parallel()

	m := lchan.NewManager()
	m.Configure(lchan.Channel{LCID: 4})
	m.ULBufferAdd(4, 40)
	m.ULBufferAdd(4, 30)

	require.Equal(t, uint32(70), m.ULBytesFor(4))
}
