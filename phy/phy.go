// Package phy defines the FAPI-like boundary between the scheduler and the
// physical layer (spec.md §6). The physical layer itself is out of scope
// (spec.md §1); this package only carries the per-TTI call shapes the
// scheduler drives and the reports PHY delivers back.
//
// Grounded on mac.RLC (mac/pdu.go) for the "narrow collaborator interface,
// package-local report types" shape, and on mobility.SignalingLayer
// (mobility/orchestrator.go) for the same pattern applied to an external
// layer this module does not own.
package phy

import "github.com/sarchlab/enbstack/mac"

// SRReport is one scheduling-request detection for one TTI.
type SRReport struct {
	RNTI uint16
}

// RACHReport is one detected random-access preamble.
type RACHReport struct {
	Preamble    uint8
	TimeAdvance uint16
}

// CQIReport carries one TTI's channel-quality feedback for one user.
// RI and PMI are left as raw indices; their interpretation is a physical-
// layer concern (spec.md §1).
type CQIReport struct {
	RNTI uint16
	CQI  uint8
	RI   uint8
	PMI  uint8
}

// ACKReport is one HARQ-ACK/NACK report for a prior DL transmission.
type ACKReport struct {
	RNTI    uint16
	HarqPID int
	ACK     bool
}

// CRCReport is one transport-block CRC result for a prior UL grant.
type CRCReport struct {
	RNTI    uint16
	HarqPID int
	OK      bool
}

// ReceivedPDU is one uplink transport block PHY has decoded and is pushing
// up to the scheduler's PDU parser.
type ReceivedPDU struct {
	RNTI    uint16
	Payload []byte
}

// Phy is implemented by the physical layer. Station.Tick calls the Get*
// methods once per TTI to hand over the grants the scheduler decided this
// pass; PHY
// calls back through whatever transport it uses (not modeled here) to
// deliver sr_detected/rach_detected/cqi_ri_pmi_info/ack_info/crc_info/
// push_pdu, which the scheduler surfaces to Station.Tick as plain inputs
// rather than through this interface, since they originate outside the
// dispatch loop's control.
//go:generate mockgen -destination=mock_phy.go -package=phy github.com/sarchlab/enbstack/phy Phy

type Phy interface {
	// GetDLSched delivers the DL grants for tti, once the scheduler has
	// committed its decisions for that TTI, and reports a delivery error.
	GetDLSched(tti int, grants []mac.DLGrant) error
	// GetULSched delivers the UL grants for tti and reports a delivery error.
	GetULSched(tti int, grants []mac.ULGrant) error
}
