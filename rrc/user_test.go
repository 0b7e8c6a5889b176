package rrc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/enbstack/engine"
	"github.com/sarchlab/enbstack/pdcp"
	"github.com/sarchlab/enbstack/rrc"
)

func TestConnectionSetupHappyPath(t *testing.T) {
	t.Parallel()

	u := rrc.NewUser(0x4601, rrc.DefaultConfig())
	require.Equal(t, rrc.StateIdle, u.State())

	require.NoError(t, u.OnConnectionRequest(0))
	require.Equal(t, rrc.StateWaitSetupComplete, u.State())

	require.NoError(t, u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110}))
	require.Equal(t, rrc.StateWaitSetupComplete, u.State())

	var kEnb [32]byte
	kEnb[0] = 0xAB
	require.NoError(t, u.OnSecurityModeComplete(2, kEnb))
	require.Equal(t, rrc.StateWaitReconfComplete, u.State())

	require.NoError(t, u.OnReconfigurationComplete(3))
	require.Equal(t, rrc.StateRegistered, u.State())
}

func TestOnSecurityModeCompleteFailsWithoutCapabilityMatch(t *testing.T) {
	t.Parallel()

	u := rrc.NewUser(1, rrc.DefaultConfig())
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0, EIABitmap: 0})

	err := u.OnSecurityModeComplete(2, [32]byte{})
	require.ErrorIs(t, err, rrc.ErrNoMatchingIntegrity)
}

func TestActivityTimerExpiryTransitionsToReleaseRequested(t *testing.T) {
	t.Parallel()

	cfg := rrc.DefaultConfig()
	cfg.InactivityTimeoutMs = 10
	u := rrc.NewUser(1, cfg)
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110})
	_ = u.OnSecurityModeComplete(1, [32]byte{})
	_ = u.OnReconfigurationComplete(1)

	require.False(t, u.CheckActivityTimer(5))
	require.True(t, u.CheckActivityTimer(20))
	require.Equal(t, rrc.StateReleaseRequested, u.State())
}

func TestRLFCounterTriggersReleaseAboveThreshold(t *testing.T) {
	t.Parallel()

	cfg := rrc.DefaultConfig()
	cfg.RLFThreshold = 2
	u := rrc.NewUser(1, cfg)

	require.False(t, u.OnRLFIndication(0))
	require.False(t, u.OnRLFIndication(0))
	require.True(t, u.OnRLFIndication(0))
	require.Equal(t, rrc.StateReleaseRequested, u.State())
}

func TestActivityTimerExpiryNotifiesSignalingAndRecordsReleaseTime(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	sig := rrc.NewMockSignaling(ctrl)
	sig.EXPECT().InitialUE(gomock.Any(), gomock.Any()).Return(nil)
	sig.EXPECT().UserRelease(uint16(1), "activity-timer-expired").Return(nil)

	cfg := rrc.DefaultConfig()
	cfg.InactivityTimeoutMs = 10
	u := rrc.NewUser(1, cfg)
	u.SetSignaling(sig)
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110})
	_ = u.OnSecurityModeComplete(1, [32]byte{})
	_ = u.OnReconfigurationComplete(1)

	_, ok := u.ReleaseRequestedAt()
	require.False(t, ok)

	require.True(t, u.CheckActivityTimer(20))
	at, ok := u.ReleaseRequestedAt()
	require.True(t, ok)
	require.Equal(t, engine.TTI(20), at)
}

func TestRLFThresholdExceededNotifiesSignaling(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	sig := rrc.NewMockSignaling(ctrl)
	sig.EXPECT().UserRelease(uint16(1), "radio-link-failure").Return(nil)

	cfg := rrc.DefaultConfig()
	cfg.RLFThreshold = 1
	u := rrc.NewUser(1, cfg)
	u.SetSignaling(sig)

	require.False(t, u.OnRLFIndication(7))
	require.True(t, u.OnRLFIndication(7))
}

func TestNextTransactionIDWrapsModFour(t *testing.T) {
	t.Parallel()

	u := rrc.NewUser(1, rrc.DefaultConfig())
	var ids []uint8
	for i := 0; i < 5; i++ {
		ids = append(ids, u.NextTransactionID())
	}
	require.Equal(t, []uint8{0, 1, 2, 3, 0}, ids)
}

func TestSelectSecurityAlgorithmsPrefersFirstSupported(t *testing.T) {
	t.Parallel()

	caps := rrc.SecurityCapabilities{EEABitmap: 0b010, EIABitmap: 0b010} // supports EEA2, EIA2 only
	cipher, integ, err := rrc.SelectSecurityAlgorithms(caps, []rrc.CipherAlgo{rrc.EEA3, rrc.EEA2, rrc.EEA1}, []rrc.IntegAlgo{rrc.EIA1, rrc.EIA2})
	require.NoError(t, err)
	require.Equal(t, rrc.EEA2, cipher)
	require.Equal(t, rrc.EIA2, integ)
}

func TestSelectSecurityAlgorithmsNeverPicksNullIntegrity(t *testing.T) {
	t.Parallel()

	caps := rrc.SecurityCapabilities{EEABitmap: 0, EIABitmap: 0}
	_, _, err := rrc.SelectSecurityAlgorithms(caps, []rrc.CipherAlgo{rrc.EEA0}, []rrc.IntegAlgo{0, rrc.EIA1})
	require.ErrorIs(t, err, rrc.ErrNoMatchingIntegrity)
}

func TestOnSecurityModeCompleteWithoutPDCPIsNoop(t *testing.T) {
	t.Parallel()

	u := rrc.NewUser(1, rrc.DefaultConfig())
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110})

	require.NoError(t, u.OnSecurityModeComplete(2, [32]byte{}))
	require.Equal(t, rrc.StateWaitReconfComplete, u.State())
}

func TestOnSecurityModeCompleteActivatesPDCP(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockPDCP := pdcp.NewMockPDCP(ctrl)

	u := rrc.NewUser(0x46, rrc.DefaultConfig())
	u.SetPDCP(mockPDCP)
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110})

	mockPDCP.EXPECT().ConfigSecurity(uint16(0x46), uint8(1), gomock.Any(), int(rrc.EEA2), int(rrc.EIA2)).Return(nil)
	mockPDCP.EXPECT().EnableIntegrity(uint16(0x46), uint8(1)).Return(nil)
	mockPDCP.EXPECT().EnableEncryption(uint16(0x46), uint8(1)).Return(nil)

	require.NoError(t, u.OnSecurityModeComplete(2, [32]byte{0xAB}))
	require.Equal(t, rrc.StateWaitReconfComplete, u.State())
}

func TestOnSecurityModeCompletePropagatesPDCPError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockPDCP := pdcp.NewMockPDCP(ctrl)

	u := rrc.NewUser(0x46, rrc.DefaultConfig())
	u.SetPDCP(mockPDCP)
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110})

	wantErr := errors.New("pdcp rejected security config")
	mockPDCP.EXPECT().ConfigSecurity(uint16(0x46), uint8(1), gomock.Any(), int(rrc.EEA2), int(rrc.EIA2)).Return(wantErr)

	err := u.OnSecurityModeComplete(2, [32]byte{0xAB})
	require.ErrorIs(t, err, wantErr)
}

func TestOnERABRequestAddsBearerViaPDCP(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockPDCP := pdcp.NewMockPDCP(ctrl)

	u := rrc.NewUser(0x46, rrc.DefaultConfig())
	u.SetPDCP(mockPDCP)
	_ = u.OnConnectionRequest(0)
	_ = u.OnSetupComplete(1, rrc.SecurityCapabilities{EEABitmap: 0b110, EIABitmap: 0b110})

	mockPDCP.EXPECT().ConfigSecurity(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mockPDCP.EXPECT().EnableIntegrity(gomock.Any(), gomock.Any()).Return(nil)
	mockPDCP.EXPECT().EnableEncryption(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, u.OnSecurityModeComplete(2, [32]byte{}))
	require.NoError(t, u.OnReconfigurationComplete(3))

	mockPDCP.EXPECT().AddBearer(uint16(0x46), uint8(5), uint8(9)).Return(nil)

	require.NoError(t, u.OnERABRequest(4, rrc.ERAB{ID: 5, QCI: 9}))
}
