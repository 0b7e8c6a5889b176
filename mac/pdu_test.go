package mac_test

import (
	"testing"

	"github.com/sarchlab/enbstack/lchan"
	"github.com/sarchlab/enbstack/mac"
	"github.com/stretchr/testify/require"
)

type fakeRLC struct {
	reads   map[uint8][]byte
	written map[uint8][]byte
}

func newFakeRLC() *fakeRLC { return &fakeRLC{reads: map[uint8][]byte{}, written: map[uint8][]byte{}} }

func (f *fakeRLC) ReadPDU(rnti uint16, lcid uint8, maxBytes int) []byte {
	b := f.reads[lcid]
	if len(b) > maxBytes {
		b = b[:maxBytes]
	}
	return b
}

func (f *fakeRLC) WritePDU(rnti uint16, lcid uint8, payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	f.written[lcid] = cp
}

func TestAssembleDLPDUEmitsCEsBeforeSDUsAndPads(t *testing.T) {
	t.Parallel()

	buffers := lchan.NewManager()
	buffers.PushTA(5)

	rlc := newFakeRLC()
	rlc.reads[3] = []byte{0xAA, 0xBB, 0xCC}

	pdu := mac.AssembleDLPDU(1, 64, buffers, []lchan.Channel{{LCID: 3, Priority: 1}}, rlc)

	require.NotEmpty(t, pdu)
	require.Equal(t, uint8(28), pdu[0]&0x1F) // lcidTA header first
	require.Equal(t, 8, len(pdu))            // tbSizeBits/8
	require.Empty(t, buffers.PendingCEs())   // drained
}

func TestParseULPDUDiscardsAllZeroLCIDZero(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	// subheader: LCID=0, length field present, length=4, payload all zero
	pdu := []byte{0x80, 0x04, 0x00, 0x00, 0x00, 0x00}

	res := mac.ParseULPDU(1, pdu, rlc)
	require.False(t, res.ConResPresent)
	require.Empty(t, rlc.written)
}

func TestParseULPDUCapturesContentionResolutionFromFirstSixBytesReversed(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	pdu := []byte{0x80, 0x06}
	pdu = append(pdu, payload...)

	res := mac.ParseULPDU(1, pdu, rlc)
	require.True(t, res.ConResPresent)
	require.Equal(t, uint64(0x060504030201), res.ConResIdentity)
}

func TestParseULPDUSynthesizesBSRWhenMissingAndOverThreshold(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	payload := make([]byte, 65)
	for i := range payload {
		payload[i] = 0x11
	}
	pdu := []byte{0x80 | 4, 0x80 | byte((65>>8)&0x7F), byte(65 & 0xFF)}
	pdu = append(pdu, payload...)

	res := mac.ParseULPDU(1, pdu, rlc)
	require.True(t, res.SyntheticBSR)
	require.Equal(t, uint8(4), res.SyntheticBSRLCID)
}

func TestParseULPDUShortBSRSetsOneLCG(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	pdu := []byte{29, (2 << 6) | 10} // lcidShortBSR=29, LCG=2, index=10

	res := mac.ParseULPDU(1, pdu, rlc)
	require.True(t, res.BSRPresent)
	require.NotZero(t, res.BSR[2])
	require.Zero(t, res.BSR[0])
}

func TestParseULPDUDiscardsTruncatedShortBSR(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	pdu := []byte{29} // lcidShortBSR header with no following CE byte

	res := mac.ParseULPDU(1, pdu, rlc)
	require.False(t, res.BSRPresent)
	require.Empty(t, rlc.written)
}

func TestParseULPDUDiscardsUnrecognizedFixedSizeLCID(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	pdu := []byte{17} // no-length subheader, LCID 17 is not a recognized fixed-size CE

	res := mac.ParseULPDU(1, pdu, rlc)
	require.False(t, res.BSRPresent)
	require.False(t, res.ConResPresent)
	require.Empty(t, rlc.written)
}

func TestParseULPDUDiscardsTruncatedLengthField(t *testing.T) {
	t.Parallel()

	rlc := newFakeRLC()
	pdu := []byte{0x80 | 3, 0x06, 0xAA} // declares 6 bytes of payload, only 1 follows

	mac.ParseULPDU(1, pdu, rlc)
	require.Empty(t, rlc.written)
}
