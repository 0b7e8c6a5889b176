package mac_test

import (
	"testing"

	"github.com/sarchlab/enbstack/mac"
	"github.com/sarchlab/enbstack/uectx"
	"github.com/stretchr/testify/require"
)

func newCandidate(rnti uint16, pendingBytes uint32) mac.UserDLCandidate {
	ctx := uectx.NewContext(rnti)
	cc := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	cc.OnSCellActivation()
	cc.OnCQIReceived(0, 10)
	ctx.AddCarrier(0, cc)
	return mac.UserDLCandidate{RNTI: rnti, Ctx: ctx, CC: cc, PendingBytes: pendingBytes}
}

func TestDLScheduleRARTakesPriorityOverNewData(t *testing.T) {
	t.Parallel()

	s := mac.NewScheduler()
	candidates := []mac.UserDLCandidate{newCandidate(1, 500)}
	rars := []mac.RARRequest{{TempCRNTI: 0xFFF1, PRBs: 2, MCS: 5}}

	grants := s.DLSchedule(0, 0, 100, rars, candidates)
	require.NotEmpty(t, grants)
	require.Equal(t, mac.GrantRAR, grants[0].Kind)
}

func TestDLScheduleNewDataAllocatesHARQProcess(t *testing.T) {
	t.Parallel()

	s := mac.NewScheduler()
	candidates := []mac.UserDLCandidate{newCandidate(7, 500)}

	grants := s.DLSchedule(10, 0, 100, nil, candidates)
	require.Len(t, grants, 1)
	require.Equal(t, mac.GrantNewData, grants[0].Kind)
	require.True(t, grants[0].PRBs > 0)
}

func TestDLScheduleDefersWhenBudgetExhausted(t *testing.T) {
	t.Parallel()

	s := mac.NewScheduler()
	candidates := []mac.UserDLCandidate{newCandidate(1, 100000)}

	grants := s.DLSchedule(0, 0, 0, nil, candidates)
	require.Empty(t, grants)
}

func TestULScheduleMsg3TakesPriorityAndRespectsExclusionZones(t *testing.T) {
	t.Parallel()

	s := mac.NewScheduler()
	msg3 := []mac.Msg3Request{{TempCRNTI: 0xFFF1, PRBStart: 0, PRBs: 6}}

	grants := s.ULSchedule(0, 0, 50, msg3, nil)
	require.Len(t, grants, 1)
	require.Equal(t, mac.GrantMsg3, grants[0].Kind)
	require.GreaterOrEqual(t, grants[0].PRBStart, 4) // pucchExclusionPRBs
}

func TestULScheduleEffectiveAtFourTTIsLater(t *testing.T) {
	t.Parallel()

	s := mac.NewScheduler()
	ctx := uectx.NewContext(3)
	cc := uectx.NewCarrierContext(uectx.TM1, 8, 28, 28)
	cc.OnULCQI(10)
	ctx.AddCarrier(0, cc)

	grants := s.ULSchedule(100, 0, 50, nil, []mac.UserULCandidate{{RNTI: 3, Ctx: ctx, CC: cc, BSRBytes: 200}})
	require.Len(t, grants, 1)
	require.Equal(t, mac.ULGrantDelay, int(grants[0].EffectiveAt.Sub(100)))
}
