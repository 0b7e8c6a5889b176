package mac

import (
	"encoding/binary"
	"errors"

	"github.com/sarchlab/enbstack/ctlerr"
	"github.com/sarchlab/enbstack/lchan"
	"github.com/sarchlab/enbstack/tracing"
)

var log = tracing.NewLogger("mac")

// errTruncatedPDU is the cause wrapped into a ctlerr.ProtocolViolation when
// ParseULPDU runs out of bytes mid-subheader or mid-CE (spec.md §7:
// "malformed MAC PDU ... log at error, discard the PDU, do not release the
// user").
var errTruncatedPDU = errors.New("mac: truncated PDU")

// errUnknownCE is the cause wrapped when a fixed-size subheader names a LCID
// this parser does not recognize, after which no further subheader offset in
// the PDU can be trusted.
var errUnknownCE = errors.New("mac: unrecognized control element")

// discardMalformed logs cause as a ctlerr.ProtocolViolation and returns the
// partial result accumulated so far; the caller is never released over a
// malformed PDU, only the PDU itself is dropped.
func discardMalformed(rnti uint16, res ULParseResult, cause error) ULParseResult {
	log.Error(ctlerr.Wrap(ctlerr.ProtocolViolation, cause), "discarding malformed UL PDU", "rnti", rnti)
	return res
}

// MAC subheader LCID values for control elements (spec.md §3, §4.6). These
// are internally-consistent constants for this stack's own wire format, not
// a claim of matching a specific 3GPP release's exact LCID table.
const (
	lcidPadding  uint8 = 31
	lcidConRes   uint8 = 30
	lcidSCellAct uint8 = 29
	lcidTA       uint8 = 28
)

// minSDUSize returns the minimum SDU size for lcid (spec.md §4.6: "minimum
// SDU size 1 byte for LCID 0, 2 bytes otherwise").
func minSDUSize(lcid uint8) int {
	if lcid == 0 {
		return 1
	}
	return 2
}

//go:generate mockgen -destination=mock_rlc.go -package=mac github.com/sarchlab/enbstack/mac RLC

// RLC is the narrow RLC collaborator interface the DL PDU assembler and UL
// PDU parser consume (spec.md §1: RLC's read/write/buffer-status contract
// only, segmentation itself is out of scope).
type RLC interface {
	ReadPDU(rnti uint16, lcid uint8, maxBytes int) []byte
	WritePDU(rnti uint16, lcid uint8, payload []byte)
}

// appendSubheader packs a 1-byte LCID-only header (fixed-size CE payloads) or a
// LCID+length header for a variable-size SDU.
func appendSubheader(buf []byte, lcid uint8, length int, hasLength bool) []byte {
	if !hasLength {
		return append(buf, lcid&0x1F)
	}
	if length < 128 {
		buf = append(buf, 0x80|(lcid&0x1F), byte(length))
	} else {
		e := 0x80 | (lcid & 0x1F)
		l1 := byte((length >> 8) & 0x7F)
		l2 := byte(length & 0xFF)
		buf = append(buf, e, 0x80|l1, l2)
	}
	return buf
}

// AssembleDLPDU builds one downlink transport block for rnti, following
// spec.md §4.6's four-step construction: CEs (TA, contention-resolution,
// SCell-activation) before SDUs, then pad to tbSizeBits.
func AssembleDLPDU(rnti uint16, tbSizeBits uint32, buffers *lchan.Manager, channels []lchan.Channel, rlc RLC) []byte {
	tbBytes := int(tbSizeBits / 8)
	if tbBytes <= 0 {
		return nil
	}

	pdu := make([]byte, 0, tbBytes)
	remaining := tbBytes

	pending := buffers.PendingCEs()
	drained := 0
	for _, ce := range pending {
		payload, lcid := encodeCE(ce)
		need := 1 + len(payload) // fixed-size CE: 1-byte header, no length field
		if need > remaining {
			break // failure to fit stops CE emission for this TTI
		}
		pdu = appendSubheader(pdu, lcid, 0, false)
		pdu = append(pdu, payload...)
		remaining -= need
		drained++
	}
	buffers.DrainCEs(drained)

	for _, c := range channels {
		if remaining <= minSDUSize(c.LCID) {
			continue
		}
		maxBody := remaining - headerSizeForLength(remaining)
		body := rlc.ReadPDU(rnti, c.LCID, maxBody)
		if len(body) == 0 {
			continue
		}
		headerLen := headerSizeForLength(len(body))
		if headerLen+len(body) > remaining {
			continue
		}
		pdu = appendSubheader(pdu, c.LCID, len(body), true)
		pdu = append(pdu, body...)
		remaining -= headerLen + len(body)
	}

	if remaining > 0 {
		pdu = appendSubheader(pdu, lcidPadding, 0, false)
		pdu = append(pdu, make([]byte, remaining-1)...)
	}
	return pdu
}

func headerSizeForLength(length int) int {
	if length < 128 {
		return 2
	}
	return 3
}

func encodeCE(ce lchan.CE) ([]byte, uint8) {
	switch ce.Kind {
	case lchan.CETimingAdvance:
		return []byte{ce.TAIdx & 0x3F}, lcidTA
	case lchan.CEContentionResolution:
		buf := make([]byte, 6)
		v := ce.ConRes
		for i := 5; i >= 0; i-- {
			buf[i] = byte(v & 0xFF)
			v >>= 8
		}
		return buf, lcidConRes
	case lchan.CESCellActivation:
		return []byte{ce.SCellBitmap}, lcidSCellAct
	default:
		return nil, lcidPadding
	}
}

// ULParseResult summarizes what a UL PDU parse observed, for the caller to
// fold into the user's HARQ/RRC state.
type ULParseResult struct {
	BSR               [lchan.MaxLCG]uint32
	BSRPresent        bool
	PHRdB             int
	PHRPresent        bool
	CRNTIMigrateTo    uint16
	CRNTIPresent      bool
	ConResIdentity    uint64
	ConResPresent     bool
	SyntheticBSRLCID  uint8
	SyntheticBSR      bool
}

// synthesizeBSRThreshold is the byte count above which a non-control LCID's
// SDU, arriving without an accompanying BSR, triggers a synthesized BSR
// (spec.md §4.6 step 3).
const synthesizeBSRThreshold = 64

// synthesizedBSRBytes is the fixed size of the synthesized BSR (spec.md
// §9 Open Question: kept at a fixed 256 bytes rather than echoing the
// observed SDU size, since the real BSR is unknown and a fixed starvation
// guard is simplest to reason about). ParseULPDU does not use it: its
// result carries only the SyntheticBSR flag and SyntheticBSRLCID, with no
// byte count.
const synthesizedBSRBytes = 256

// ceLengths gives the fixed payload length, in bytes, of each CE kind this
// parser recognizes (spec.md §4.6 step 2).
const (
	ceShortBSRLen = 1
	ceLongBSRLen  = 3
	cePHRLen      = 1
	ceCRNTILen    = 2
)

// shortBSR/longBSR/phr/cRNTI are this stack's internal UL-SCH LCID values
// for the control elements the parser recognizes, distinct from the
// DL-only CEs above.
const (
	lcidShortBSR uint8 = 29
	lcidLongBSR  uint8 = 30
	lcidPHR      uint8 = 28
	lcidCRNTI    uint8 = 27
)

// ParseULPDU walks subheaders in a received transport block, delivering
// SDUs to rlc and folding CEs into the returned ULParseResult (spec.md
// §4.6). header parsing here mirrors AssembleDLPDU's own encoding since
// both sides of this link are internal to this stack.
func ParseULPDU(rnti uint16, pdu []byte, rlc RLC) ULParseResult {
	var res ULParseResult
	var nonControlLCID uint8
	var nonControlBytes int
	var sawAnyBSR bool

	i := 0
	for i < len(pdu) {
		first := pdu[i]
		lcid := first & 0x1F
		hasLength := first&0x80 != 0
		i++

		if !hasLength {
			switch lcid {
			case lcidShortBSR:
				if i+ceShortBSRLen > len(pdu) {
					return discardMalformed(rnti, res, errTruncatedPDU)
				}
				lcg := (pdu[i] >> 6) & 0x3
				res.BSR[lcg] = bsrSizeFromIndex(pdu[i] & 0x3F)
				res.BSRPresent = true
				sawAnyBSR = true
				i += ceShortBSRLen
			case lcidLongBSR:
				if i+ceLongBSRLen > len(pdu) {
					return discardMalformed(rnti, res, errTruncatedPDU)
				}
				for g := 0; g < lchan.MaxLCG; g++ {
					res.BSR[g] = bsrSizeFromIndex(longBSRIndex(pdu[i:i+ceLongBSRLen], g))
				}
				res.BSRPresent = true
				sawAnyBSR = true
				i += ceLongBSRLen
			case lcidPHR:
				if i+cePHRLen > len(pdu) {
					return discardMalformed(rnti, res, errTruncatedPDU)
				}
				res.PHRdB = int(pdu[i]&0x3F) - 23 // headroom report offset
				res.PHRPresent = true
				i += cePHRLen
			case lcidCRNTI:
				if i+ceCRNTILen > len(pdu) {
					return discardMalformed(rnti, res, errTruncatedPDU)
				}
				res.CRNTIMigrateTo = binary.BigEndian.Uint16(pdu[i : i+2])
				res.CRNTIPresent = true
				i += ceCRNTILen
			case lcidPadding:
				i = len(pdu)
			default:
				// unrecognized fixed-size CE; nothing more can be parsed safely
				return discardMalformed(rnti, res, errUnknownCE)
			}
			continue
		}

		if i+1 >= len(pdu) {
			return discardMalformed(rnti, res, errTruncatedPDU)
		}
		length := int(pdu[i])
		i++
		if length&0x80 != 0 {
			if i >= len(pdu) {
				return discardMalformed(rnti, res, errTruncatedPDU)
			}
			length = (int(pdu[i-1]&0x7F) << 8) | int(pdu[i])
			i++
		}
		if i+length > len(pdu) {
			return discardMalformed(rnti, res, errTruncatedPDU)
		}
		payload := pdu[i : i+length]
		i += length

		if lcid == 0 && allZero(payload) {
			continue // LCID 0 all-zero payload is discarded (spec.md §4.6 step 1)
		}
		if lcid == 0 && len(payload) >= 6 {
			var id uint64
			for b := 0; b < 6; b++ {
				id = (id << 8) | uint64(payload[5-b])
			}
			res.ConResIdentity = id
			res.ConResPresent = true
		}
		rlc.WritePDU(rnti, lcid, payload)
		if lcid != 0 {
			nonControlLCID = lcid
			nonControlBytes += len(payload)
		}
	}

	if !sawAnyBSR && nonControlBytes > synthesizeBSRThreshold {
		res.SyntheticBSR = true
		res.SyntheticBSRLCID = nonControlLCID
	}
	return res
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// bsrSizeFromIndex maps a 6-bit BSR index to a byte count, a simplified
// monotone stand-in for the 3GPP BSR size table (numeric lookup table, out
// of scope per spec.md §1 beyond needing a believable monotone shape).
func bsrSizeFromIndex(idx uint8) uint32 {
	if idx == 0 {
		return 0
	}
	return uint32(idx) * uint32(idx) * 4
}

// longBSRIndex extracts LCG g's 6-bit index from a 3-byte long-BSR CE
// payload (4 groups packed across 3 bytes, 6 bits each... approximated
// here as one byte per group for the first three groups, with the fourth
// read from the low six bits of the last byte, the same bits as the third
// group, since the exact 3GPP bit-packing is not load-bearing for this
// stack's own round-trip).
func longBSRIndex(payload []byte, lcg int) uint8 {
	if lcg < 0 || lcg >= len(payload) {
		if lcg == 3 && len(payload) > 0 {
			return payload[len(payload)-1] & 0x3F
		}
		return 0
	}
	return payload[lcg] & 0x3F
}
