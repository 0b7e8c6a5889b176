package harq_test

import (
	"testing"

	"github.com/sarchlab/enbstack/harq"
	"github.com/stretchr/testify/require"
)

func TestAllocTogglesNDIOnNewData(t *testing.T) {
	t.Parallel()

	tbl := harq.NewTable(harq.Downlink, 8, 3)
	id, ok := tbl.Alloc(100, 256, 10)
	require.True(t, ok)

	snap := tbl.Snapshot()
	require.True(t, snap[id].NDI)
	require.Equal(t, uint8(0), snap[id].RV())
}

func TestRetransmitKeepsNDICyclesRV(t *testing.T) {
	t.Parallel()

	tbl := harq.NewTable(harq.Downlink, 8, 3)
	id, ok := tbl.Alloc(200, 256, 10)
	require.True(t, ok)

	ndiBefore := tbl.Snapshot()[id].NDI

	require.True(t, tbl.SetAck(200, false)) // NACK
	p, ok := tbl.GetPending(204)             // FDD delay = 4
	require.True(t, ok)
	require.Equal(t, id, p.ID)

	retx, ok := tbl.Retransmit(id, 208)
	require.True(t, ok)
	require.Equal(t, ndiBefore, retx.NDI)
	require.Equal(t, uint8(2), retx.RV()) // second tx in {0,2,3,1}
}

func TestProcessFlushedAfterMaxRetx(t *testing.T) {
	t.Parallel()

	tbl := harq.NewTable(harq.Downlink, 8, 1)
	id, ok := tbl.Alloc(0, 256, 10)
	require.True(t, ok)

	require.True(t, tbl.SetAck(0, false))
	require.True(t, tbl.SetAck(0, false))

	exceeded := tbl.Exceeded()
	require.Len(t, exceeded, 1)
	require.Equal(t, id, exceeded[0].ID)

	flushed := tbl.Flush()
	require.Len(t, flushed, 1)
	require.True(t, tbl.Snapshot()[id].IsEmpty(1))
}

func TestOldestTieBreakPicksLargestAge(t *testing.T) {
	t.Parallel()

	candidates := []harq.Process{
		{ID: 0, AssignedTTI: 50},
		{ID: 1, AssignedTTI: 90},
		{ID: 2, AssignedTTI: 10},
	}
	oldest, ok := harq.Oldest(100, candidates)
	require.True(t, ok)
	require.Equal(t, 2, oldest.ID)
}

func TestAckMarksProcessEmpty(t *testing.T) {
	t.Parallel()

	tbl := harq.NewTable(harq.Uplink, 8, 3)
	id, ok := tbl.Alloc(0, 256, 10)
	require.True(t, ok)
	require.True(t, tbl.SetAck(0, true))
	require.True(t, tbl.Snapshot()[id].IsEmpty(3))
}

func TestFlushClearsAllProcesses(t *testing.T) {
	t.Parallel()

	tbl := harq.NewTable(harq.Downlink, 2, 3)
	_, _ = tbl.Alloc(0, 1, 1)
	tbl.SetAck(0, false)

	tbl.Flush()
	for _, p := range tbl.Snapshot() {
		require.True(t, p.AckReceived)
	}
}
