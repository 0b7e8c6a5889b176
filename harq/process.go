// Package harq implements the per-(user, carrier, direction) HARQ process
// table described in spec.md §3 and §4.1.
package harq

import "github.com/sarchlab/enbstack/engine"

// Direction distinguishes downlink from uplink HARQ processes; each has its
// own table per spec.md §3.
type Direction int

// Directions.
const (
	Downlink Direction = iota
	Uplink
)

// redundancyVersions is the fixed RV cycling order used on retransmission
// (spec.md §3, §4.1).
var redundancyVersions = [4]uint8{0, 2, 3, 1}

// Process is one HARQ process's state (spec.md §3).
type Process struct {
	ID             int
	AssignedTTI    engine.TTI
	TBSizeBits     uint32
	TxCount        uint32 // number of transmissions so far, including the first
	MCS            uint8
	NDI            bool
	AckReceived    bool
	RetxCount      uint32
	ResourceMask   uint64 // allocated RBG/PRB bitmask
}

// RV returns the redundancy version for the process's current transmission
// count, cycling through {0,2,3,1}. TxCount counts the first transmission as
// 1, so the cycle is indexed by TxCount-1: the initial transmission (TxCount
// 1) is rv=0, the first retransmission (TxCount 2) is rv=2, and so on.
func (p Process) RV() uint8 {
	return redundancyVersions[(p.TxCount-1)%4]
}

// IsEmpty reports whether the process is free to be allocated to a new
// transmission: it is empty iff it has been ACKed or has exceeded the
// configured maximum retransmission count (spec.md §3 invariant).
func (p Process) IsEmpty(maxRetx uint32) bool {
	return p.AckReceived || p.RetxCount > maxRetx
}
