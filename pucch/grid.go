// Package pucch implements the PUCCH resource manager (spec.md §3, §4.5):
// a 2D (PRB-slot, subframe-slot) grid tracking least-loaded-slot
// scheduling-request and CQI-report allocation.
//
// Grounded on alloc_sr_resources/alloc_cqi_resources/dealloc_cqi_resources
// in original_source/srsenb's src/stack/rrc/rrc_cell_cfg.cc: the
// least-loaded-slot search, the I_sr/pmi-index closed forms, and the
// shared n_pucch formula are carried through unchanged.
package pucch

import (
	"errors"

	"github.com/sarchlab/enbstack/cell"
)

// ErrNoCapacity is returned when every candidate slot is already at
// capacity.
var ErrNoCapacity = errors.New("pucch: no free slot capacity")

// ErrInvalidPeriod is returned for a period outside the allowed set.
var ErrInvalidPeriod = errors.New("pucch: invalid period")

// ErrUnknownHandle is returned by Free for a handle this grid never issued.
var ErrUnknownHandle = errors.New("pucch: unknown handle")

var validSRPeriods = map[int]bool{5: true, 10: true, 20: true, 40: true, 80: true}

var validCQIPeriods = map[int]bool{2: true, 5: true, 10: true, 20: true, 32: true, 40: true, 64: true, 80: true, 128: true, 160: true}

// Kind distinguishes an SR handle from a CQI handle.
type Kind int

// Handle kinds.
const (
	KindSR Kind = iota
	KindCQI
)

// Handle identifies one allocated PUCCH resource.
type Handle struct {
	Kind     Kind
	PRBSlot  int
	SFSlot   int
	ISr      int // valid for KindSR
	PMIIndex int // valid for KindCQI
	NPUCCH   uint16
}

// slotGrid tracks per-slot occupancy counts for one resource kind.
type slotGrid struct {
	nofUsers [][]int
}

func newSlotGrid(prbSlots, sfSlots int) *slotGrid {
	g := &slotGrid{nofUsers: make([][]int, prbSlots)}
	for i := range g.nofUsers {
		g.nofUsers[i] = make([]int, sfSlots)
	}
	return g
}

// leastLoaded returns the (i,j) slot with the fewest users, ties broken by
// row-major scan order (matching the original's plain nested loop).
func (g *slotGrid) leastLoaded() (i, j int) {
	minUsers := -1
	for a := range g.nofUsers {
		for b := range g.nofUsers[a] {
			if minUsers == -1 || g.nofUsers[a][b] < minUsers {
				i, j, minUsers = a, b, g.nofUsers[a][b]
			}
		}
	}
	return i, j
}

// Grid is the PUCCH resource manager for one carrier.
type Grid struct {
	maxUsers int
	ncsAN    uint8

	srSFMapping  []int // subframe offset per SR slot column
	cqiSFMapping []int // subframe offset per CQI slot column

	sr  *slotGrid
	cqi *slotGrid
}

// NewGrid builds a Grid sized from p's PUCCH configuration and cyclic
// prefix, per spec.md §3's capacity formula (12 * (3 or 2) / delta-shift).
// srPRBs x srSFs and cqiPRBs x cqiSFs are the carrier's configured
// PRB/subframe resource pool shapes; srSFMapping and cqiSFMapping give each
// column's subframe offset.
func NewGrid(p cell.Params, srPRBs, srSFs int, srSFMapping []int, cqiPRBs, cqiSFs int, cqiSFMapping []int) *Grid {
	return &Grid{
		maxUsers:     p.PUCCHCapacity(),
		ncsAN:        p.PUCCH.NcsAN,
		srSFMapping:  srSFMapping,
		cqiSFMapping: cqiSFMapping,
		sr:           newSlotGrid(srPRBs, srSFs),
		cqi:          newSlotGrid(cqiPRBs, cqiSFs),
	}
}

// AllocateSR reserves a scheduling-request resource for the given period
// (spec.md §4.5). period must be in {5,10,20,40,80} ms.
func (g *Grid) AllocateSR(period int) (Handle, error) {
	if !validSRPeriods[period] {
		return Handle{}, ErrInvalidPeriod
	}

	i, j := g.sr.leastLoaded()
	if g.sr.nofUsers[i][j] >= g.maxUsers {
		return Handle{}, ErrNoCapacity
	}
	offset := g.srSFMapping[j]
	if offset >= period {
		return Handle{}, ErrInvalidPeriod
	}
	iSr := period - 5 + offset

	nPucch := uint16(i*g.maxUsers + g.sr.nofUsers[i][j])
	if g.ncsAN != 0 {
		nPucch += uint16(g.ncsAN)
	}

	g.sr.nofUsers[i][j]++
	return Handle{Kind: KindSR, PRBSlot: i, SFSlot: j, ISr: iSr, NPUCCH: nPucch}, nil
}

// AllocateCQI reserves a CQI-report resource for the given period (spec.md
// §4.5). period must be in {2,5,10,20,32,40,64,80,128,160} ms; the
// pmi-index formula uses closed-form bands at 318/350/414 for
// periods 32/64/128.
func (g *Grid) AllocateCQI(period int) (Handle, error) {
	if !validCQIPeriods[period] {
		return Handle{}, ErrInvalidPeriod
	}

	i, j := g.cqi.leastLoaded()
	if g.cqi.nofUsers[i][j] >= g.maxUsers {
		return Handle{}, ErrNoCapacity
	}
	offset := g.cqiSFMapping[j]
	if offset >= period {
		return Handle{}, ErrInvalidPeriod
	}

	var pmiIdx int
	switch period {
	case 32:
		pmiIdx = 318 + offset
	case 64:
		pmiIdx = 350 + offset
	case 128:
		pmiIdx = 414 + offset
	default:
		if period > 2 {
			pmiIdx = period - 3 + offset
		} else {
			pmiIdx = offset
		}
	}

	nPucch := uint16(i*g.maxUsers + g.cqi.nofUsers[i][j])
	if g.ncsAN != 0 {
		nPucch += uint16(g.ncsAN)
	}

	g.cqi.nofUsers[i][j]++
	return Handle{Kind: KindCQI, PRBSlot: i, SFSlot: j, PMIIndex: pmiIdx, NPUCCH: nPucch}, nil
}

// Free releases h, decrementing the owning slot's user count. Freeing an
// already-free slot's user count is guarded at zero (idempotent per
// spec.md §4.5).
func (g *Grid) Free(h Handle) error {
	var grid *slotGrid
	switch h.Kind {
	case KindSR:
		grid = g.sr
	case KindCQI:
		grid = g.cqi
	default:
		return ErrUnknownHandle
	}
	if h.PRBSlot < 0 || h.PRBSlot >= len(grid.nofUsers) || h.SFSlot < 0 || h.SFSlot >= len(grid.nofUsers[h.PRBSlot]) {
		return ErrUnknownHandle
	}
	if grid.nofUsers[h.PRBSlot][h.SFSlot] > 0 {
		grid.nofUsers[h.PRBSlot][h.SFSlot]--
	}
	return nil
}
