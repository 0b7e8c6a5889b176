package pucch_test

import (
	"testing"

	"github.com/sarchlab/enbstack/cell"
	"github.com/sarchlab/enbstack/pucch"
	"github.com/stretchr/testify/require"
)

func testParams() cell.Params {
	return cell.Params{
		CarrierIndex: 0,
		CP:           cell.CyclicPrefixNormal,
		PUCCH: cell.PUCCHCommonConfig{
			DeltaShift: 2,
			NcsAN:      1,
		},
	}
}

func TestAllocateSRRejectsInvalidPeriod(t *testing.T) {
	t.Parallel()

	g := pucch.NewGrid(testParams(), 1, 1, []int{0}, 1, 1, []int{0})
	_, err := g.AllocateSR(7)
	require.ErrorIs(t, err, pucch.ErrInvalidPeriod)
}

func TestAllocateSRPicksLeastLoadedSlot(t *testing.T) {
	t.Parallel()

	g := pucch.NewGrid(testParams(), 2, 1, []int{0}, 1, 1, []int{0})

	h1, err := g.AllocateSR(10)
	require.NoError(t, err)
	require.Equal(t, 0, h1.PRBSlot)

	h2, err := g.AllocateSR(10)
	require.NoError(t, err)
	require.Equal(t, 1, h2.PRBSlot) // slot 0 now has a user, slot 1 is least loaded
}

func TestAllocateSRComputesISrAndNPUCCH(t *testing.T) {
	t.Parallel()

	g := pucch.NewGrid(testParams(), 1, 1, []int{2}, 1, 1, []int{0})
	h, err := g.AllocateSR(10)
	require.NoError(t, err)
	require.Equal(t, 10-5+2, h.ISr)
	require.Equal(t, uint16(1), h.NPUCCH) // 0*maxUsers + 0 users + ncs_an(1)
}

func TestAllocateCQIUsesClosedFormBandsFor32(t *testing.T) {
	t.Parallel()

	g := pucch.NewGrid(testParams(), 1, 1, []int{0}, 1, 1, []int{5})
	h, err := g.AllocateCQI(32)
	require.NoError(t, err)
	require.Equal(t, 318+5, h.PMIIndex)
}

func TestAllocateCQIRejectsCapacityExceeded(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.PUCCH.DeltaShift = 3 // max_users = 12*3/3 = 12
	g := pucch.NewGrid(p, 1, 1, []int{0}, 1, 1, []int{0})

	for i := 0; i < 13; i++ {
		_, err := g.AllocateCQI(160)
		if err != nil {
			require.ErrorIs(t, err, pucch.ErrNoCapacity)
			return
		}
	}
	t.Fatal("expected capacity exhaustion before 13 allocations")
}

func TestFreeIsIdempotent(t *testing.T) {
	t.Parallel()

	g := pucch.NewGrid(testParams(), 1, 1, []int{0}, 1, 1, []int{0})
	h, err := g.AllocateSR(10)
	require.NoError(t, err)

	require.NoError(t, g.Free(h))
	require.NoError(t, g.Free(h)) // idempotent guard
}
