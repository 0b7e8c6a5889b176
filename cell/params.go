// Package cell holds the immutable per-carrier configuration set (spec.md
// §3 "Cell parameters") plus the TTI-indexed timing constants every other
// package needs. Membership in the set is fixed after Table.Freeze.
package cell

import "fmt"

// CyclicPrefix selects normal or extended CP.
type CyclicPrefix int

// Cyclic prefix values.
const (
	CyclicPrefixNormal CyclicPrefix = iota
	CyclicPrefixExtended
)

// PRACHConfig groups the PRACH parameters fixed for a carrier.
type PRACHConfig struct {
	Index             uint8
	FreqOffset        uint8
	NumPreambles      uint8
	RARWindowSubframe uint8 // RAR response window, in subframes
	MaxMsg3Retx       uint8
}

// PUCCHCommonConfig groups the cell-wide PUCCH parameters.
type PUCCHCommonConfig struct {
	DeltaShift uint8 // delta-shift-PUCCH, in {1,2,3}
	N1PUCCHAN  uint16
	NcsAN      uint8
	NRBCQI     uint8
}

// TDDConfig is present only for TDD carriers.
type TDDConfig struct {
	Enabled           bool
	SubframeAssign    uint8
	SpecialSubframe   uint8
}

// Params is one carrier's immutable configuration.
type Params struct {
	CarrierIndex uint8
	DLEarfcn     uint32
	ULEarfcn     uint32
	NumPRB       uint16 // one of 6,15,25,50,75,100
	CP           CyclicPrefix
	NumAntennaPorts uint8 // 1, 2 or 4
	PRACH        PRACHConfig
	PUCCH        PUCCHCommonConfig
	SIBPeriodMs  []uint32
	TDD          TDDConfig
}

// validPRBCounts are the LTE bandwidth-derived PRB counts spec.md allows.
var validPRBCounts = map[uint16]bool{6: true, 15: true, 25: true, 50: true, 75: true, 100: true}

// Validate checks the static invariants of a carrier's parameters.
func (p Params) Validate() error {
	if !validPRBCounts[p.NumPRB] {
		return fmt.Errorf("cell %d: invalid PRB count %d", p.CarrierIndex, p.NumPRB)
	}
	if p.NumAntennaPorts != 1 && p.NumAntennaPorts != 2 && p.NumAntennaPorts != 4 {
		return fmt.Errorf("cell %d: invalid antenna port count %d", p.CarrierIndex, p.NumAntennaPorts)
	}
	if p.PUCCH.DeltaShift < 1 || p.PUCCH.DeltaShift > 3 {
		return fmt.Errorf("cell %d: invalid delta-shift %d", p.CarrierIndex, p.PUCCH.DeltaShift)
	}
	return nil
}

// PUCCHCapacity returns the PUCCH resource grid capacity per slot, per
// spec.md §3: (12 * (3 for normal CP else 2)) / delta-shift.
func (p Params) PUCCHCapacity() int {
	factor := 3
	if p.CP == CyclicPrefixExtended {
		factor = 2
	}
	return (12 * factor) / int(p.PUCCH.DeltaShift)
}

// sibPRBReservation is the fixed number of PRBs a SIB transmission occupies
// on a TTI where it falls, per spec.md §4.4 step (i). Paging shares the
// same periodic-reservation treatment and the same per-occurrence cost;
// spec.md does not carry a separate paging-cycle parameter, so paging is
// tied to the cell's shortest configured SIB period (SIBPeriodMs[0], the
// SIB1 repetition period in every 3GPP SI schedule this stack models).
const sibPRBReservation = 2

// ReservedDLPRBs returns the PRBs reserved for SIB and paging transmission
// on tti, which the caller subtracts from the PRB budget handed to the DL
// scheduler before RAR/CE/HARQ/new-data allocation (spec.md §4.4 step (i)).
// A carrier with no configured SIBPeriodMs reserves nothing.
func (p Params) ReservedDLPRBs(tti uint32) int {
	reserved := 0
	for _, period := range p.SIBPeriodMs {
		if period > 0 && tti%period == 0 {
			reserved += sibPRBReservation
		}
	}
	if len(p.SIBPeriodMs) > 0 && p.SIBPeriodMs[0] > 0 && tti%p.SIBPeriodMs[0] == 0 {
		reserved += sibPRBReservation // paging, piggybacked on the SIB1 cycle
	}
	return reserved
}

// Table is the fixed-after-startup set of carrier Params, keyed by carrier
// index, matching spec.md's "membership is fixed after startup".
type Table struct {
	cells  map[uint8]Params
	frozen bool
}

// NewTable creates an empty, mutable Table.
func NewTable() *Table {
	return &Table{cells: make(map[uint8]Params)}
}

// Add registers a carrier's parameters. Add panics after Freeze, matching
// the immutability invariant.
func (t *Table) Add(p Params) error {
	if t.frozen {
		panic("cell.Table: Add called after Freeze")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	t.cells[p.CarrierIndex] = p
	return nil
}

// Freeze fixes the carrier set. No further Add calls are permitted.
func (t *Table) Freeze() {
	t.frozen = true
}

// Get returns the Params for carrierIdx and whether it is configured.
func (t *Table) Get(carrierIdx uint8) (Params, bool) {
	p, ok := t.cells[carrierIdx]
	return p, ok
}

// Carriers returns the configured carrier indices in ascending order.
func (t *Table) Carriers() []uint8 {
	out := make([]uint8, 0, len(t.cells))
	for idx := range t.cells {
		out = append(out, idx)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// FDD HARQ round-trip delays, in subframes (spec.md §3, §4.1).
const (
	FDDHarqDelayDL = 4
	FDDHarqDelayUL = 4
	DLHarqProcesses = 8
	ULHarqProcesses = 8
)
