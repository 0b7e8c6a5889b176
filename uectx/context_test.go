package uectx_test

import (
	"testing"

	"github.com/sarchlab/enbstack/uectx"
	"github.com/stretchr/testify/require"
)

func TestCarrierActivationLifecycle(t *testing.T) {
	t.Parallel()

	cc := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	require.Equal(t, uectx.CarrierIdle, cc.State())

	cc.OnSCellActivation()
	require.Equal(t, uectx.CarrierActivating, cc.State())

	cc.OnCQIReceived(10, 12)
	require.Equal(t, uectx.CarrierActive, cc.State())

	cc.OnDeactivation(10)
	require.Equal(t, uectx.CarrierDeactivating, cc.State())

	cc.Tick(10)
	require.Equal(t, uectx.CarrierDeactivating, cc.State())

	cc.Tick(10 + 8)
	require.Equal(t, uectx.CarrierIdle, cc.State())
}

func TestSelectDLFormatByTransmissionMode(t *testing.T) {
	t.Parallel()

	require.Equal(t, uectx.DCIFormat1, uectx.SelectDLFormat(uectx.TM2, false))
	require.Equal(t, uectx.DCIFormat1A, uectx.SelectDLFormat(uectx.TM1, true))
	require.Equal(t, uectx.DCIFormat2A, uectx.SelectDLFormat(uectx.TM3, false))
	require.Equal(t, uectx.DCIFormat2, uectx.SelectDLFormat(uectx.TM4, false))
}

func TestDCIFormatGatedByPhyConfigDedicated(t *testing.T) {
	t.Parallel()

	cc := uectx.NewCarrierContext(uectx.TM4, 8, 28, 28)
	require.Equal(t, uectx.DCIFormat1A, cc.DCIFormat())

	cc.EnablePhyConfigDedicated()
	require.Equal(t, uectx.DCIFormat2, cc.DCIFormat())
}

func TestSelectAggregationLevelPicksSmallestThatFits(t *testing.T) {
	t.Parallel()

	lvl, ok := uectx.SelectAggregationLevel(100, 8)
	require.True(t, ok)
	require.Equal(t, uectx.AggregationLevel(2), lvl)

	_, ok = uectx.SelectAggregationLevel(1000, 4)
	require.False(t, ok)
}

func TestFixedMCSULOverridesCQIDerived(t *testing.T) {
	t.Parallel()

	cc := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	cc.OnULCQI(2) // would map to a low MCS

	fixed := uint8(20)
	cc.SetFixedMCSUL(&fixed)

	_, mcs, ok := cc.ULGrant(100)
	require.True(t, ok)
	require.Equal(t, fixed, mcs)
}

func TestCQINeededRespectsPeriodAndSuppressesSameTTI(t *testing.T) {
	t.Parallel()

	cc := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	cc.ConfigureCQIPeriod(10, 0)

	require.True(t, cc.CQINeeded(20))
	require.False(t, cc.CQINeeded(21))

	cc.OnCQIReceived(20, 15)
	require.False(t, cc.CQINeeded(20))
}

func TestTPCCommandAccumulates(t *testing.T) {
	t.Parallel()

	cc := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	cc.TPCCommand(true)
	cc.TPCCommand(true)
	cc.TPCCommand(false)
	require.Equal(t, 1, cc.TPCAccumulated())
}

func TestContextTracksActiveCarriers(t *testing.T) {
	t.Parallel()

	ctx := uectx.NewContext(0x4601)
	cc1 := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	cc2 := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	ctx.AddCarrier(0, cc1)
	ctx.AddCarrier(1, cc2)

	cc1.OnSCellActivation()
	cc1.OnCQIReceived(5, 10)

	require.Equal(t, []uint8{0}, ctx.ActiveCarriers())
}
