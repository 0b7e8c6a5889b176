// Package mac implements the time/frequency scheduler (spec.md §3, §4.4)
// and the MAC PDU assembler/parser (spec.md §4.6).
//
// Grounded on generate_dl_dci_format/generate_format0/pucch_sr_collision in
// original_source/srsenb's hdr/stack/mac/sched_ue.h for allocation order and
// tie-breaks, and on the teacher's engine.DispatchEngine run-loop
// discipline: one bounded pass per TTI, no suspension points, errors
// isolated per user rather than aborting the pass.
package mac

import (
	"sort"

	"github.com/sarchlab/enbstack/engine"
	"github.com/sarchlab/enbstack/harq"
	"github.com/sarchlab/enbstack/uectx"
)

// GrantKind classifies why a grant was issued, for logging/tracing and for
// the PDU assembler's CE-emission decision.
type GrantKind int

// Grant kinds, in scheduling priority order for DL (spec.md §4.4) and the
// analogous UL order.
const (
	GrantRAR GrantKind = iota
	GrantMsg3
	GrantCE
	GrantHARQRetx
	GrantNewData
)

// DLGrant is one downlink allocation decision for one user on one carrier.
type DLGrant struct {
	RNTI       uint16
	CarrierIdx uint8
	Kind       GrantKind
	PRBs       int
	MCS        uint8
	HarqPID    int
	NDI        bool
	RV         uint8
	TBSizeBits uint32
	AggLevel   uectx.AggregationLevel
}

// ULGrant is one uplink allocation decision, taking effect 4 TTIs after it
// is issued (spec.md §4.4 FDD timing).
type ULGrant struct {
	RNTI        uint16
	CarrierIdx  uint8
	Kind        GrantKind
	PRBStart    int
	PRBs        int
	MCS         uint8
	HarqPID     int
	NDI         bool
	RV          uint8
	TBSizeBits  uint32
	EffectiveAt engine.TTI
}

// RARRequest is an outstanding random-access response to schedule, produced
// by the RACH front end (out of scope here; spec.md §1 treats PHY as an
// external collaborator).
type RARRequest struct {
	TempCRNTI uint16
	PRBs      int
	MCS       uint8
}

// Msg3Request is an RAR-announced uplink grant for Msg3, scheduled ahead of
// any other uplink traffic (spec.md §4.4).
type Msg3Request struct {
	TempCRNTI uint16
	PRBStart  int
	PRBs      int
}

// ULGrantDelay is the FDD grant-to-effect delay (spec.md §4.4).
const ULGrantDelay = 4

// pucchExclusionPRBs is the number of PRBs reserved at each edge of the
// band for PUCCH, never handed to the PUSCH allocator (spec.md §4.4
// "PUCCH exclusion zones at the edges of the band").
const pucchExclusionPRBs = 4

// cceBudget is this carrier's per-TTI PDCCH blind-decode capacity, in CCEs
// (spec.md §4.4's "PDCCH CCE budget"). 3GPP ties this to bandwidth and CFI;
// a fixed conservative budget stands in since CFI-dependent PDCCH capacity
// computation is numeric DSP out of scope (spec.md §1).
const cceBudget = 32

// UserDLCandidate is one user's DL scheduling inputs for a single TTI pass.
type UserDLCandidate struct {
	RNTI       uint16
	Ctx        *uectx.Context
	CC         *uectx.CarrierContext
	PendingBytes uint32 // non-empty DL tx queue
	PendingCEs int
}

// Scheduler holds the round-robin cursors that persist across TTIs, one per
// carrier (spec.md §4.4 "round-robin across users").
type Scheduler struct {
	dlCursor map[uint8]uint16 // carrierIdx -> last-served RNTI
	ulCursor map[uint8]uint16
}

// NewScheduler creates a Scheduler with empty round-robin state.
func NewScheduler() *Scheduler {
	return &Scheduler{dlCursor: make(map[uint8]uint16), ulCursor: make(map[uint8]uint16)}
}

// DLSchedule allocates this TTI's downlink grants for carrierIdx, in the
// priority order RAR > pending CE > HARQ retransmission > new data
// (spec.md §4.4). availablePRBs is the carrier's PRB budget after SIB and
// paging reservations have already been subtracted by the caller.
func (s *Scheduler) DLSchedule(tti engine.TTI, carrierIdx uint8, availablePRBs int, rars []RARRequest, candidates []UserDLCandidate) []DLGrant {
	var grants []DLGrant
	budget := availablePRBs
	cceLeft := cceBudget

	for _, r := range rars {
		if budget <= 0 || r.PRBs > budget {
			continue
		}
		grants = append(grants, DLGrant{CarrierIdx: carrierIdx, Kind: GrantRAR, PRBs: r.PRBs, MCS: r.MCS})
		budget -= r.PRBs
	}

	ceUsers := make([]UserDLCandidate, 0)
	retxUsers := make([]UserDLCandidate, 0)
	newDataUsers := make([]UserDLCandidate, 0)
	for _, c := range candidates {
		switch {
		case c.PendingCEs > 0:
			ceUsers = append(ceUsers, c)
		case hasPendingRetx(c.CC.DL, tti):
			retxUsers = append(retxUsers, c)
		case c.PendingBytes > 0:
			newDataUsers = append(newDataUsers, c)
		}
	}

	sortByOldestRetx(retxUsers, tti)

	for _, c := range ceUsers {
		g, ok := s.grantCE(tti, carrierIdx, c, &budget, &cceLeft)
		if ok {
			grants = append(grants, g)
		}
	}
	for _, c := range retxUsers {
		g, ok := s.grantRetx(tti, carrierIdx, c, &budget, &cceLeft)
		if ok {
			grants = append(grants, g)
		}
	}

	newDataUsers = roundRobinOrder(newDataUsers, s.dlCursor[carrierIdx])
	for _, c := range newDataUsers {
		g, ok := s.grantNewDataDL(tti, carrierIdx, c, &budget, &cceLeft)
		if ok {
			grants = append(grants, g)
			s.dlCursor[carrierIdx] = c.RNTI
		}
		if budget <= 0 || cceLeft <= 0 {
			break
		}
	}

	return grants
}

func hasPendingRetx(tbl *harq.Table, tti engine.TTI) bool {
	_, ok := tbl.GetPending(tti)
	return ok
}

// sortByOldestRetx orders candidates by the age of their oldest pending
// HARQ process (spec.md §4.1 tie-break), oldest first.
func sortByOldestRetx(candidates []UserDLCandidate, tti engine.TTI) {
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, _ := candidates[i].CC.DL.GetPending(tti)
		pj, _ := candidates[j].CC.DL.GetPending(tti)
		if pi == nil || pj == nil {
			return false
		}
		return tti.Sub(pi.AssignedTTI) > tti.Sub(pj.AssignedTTI)
	})
}

// roundRobinOrder sorts candidates by last reported DL CQI value, highest
// first, with smaller RNTI breaking equal CQI values, then rotates the
// result to start at the first candidate in that order whose RNTI is
// greater than lastServed. The TTI at which each CQI was reported is not
// compared.
func roundRobinOrder(candidates []UserDLCandidate, lastServed uint16) []UserDLCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CC.DLCQI() != b.CC.DLCQI() {
			return a.CC.DLCQI() > b.CC.DLCQI()
		}
		return a.RNTI < b.RNTI
	})

	start := 0
	for idx, c := range candidates {
		if c.RNTI > lastServed {
			start = idx
			break
		}
	}
	return append(append([]UserDLCandidate{}, candidates[start:]...), candidates[:start]...)
}

func (s *Scheduler) grantCE(tti engine.TTI, carrierIdx uint8, c UserDLCandidate, budget, cceLeft *int) (DLGrant, bool) {
	prb, mcs, ok := c.CC.DLGrant(1) // CEs are small; a minimal grant suffices
	if !ok || prb > *budget {
		return DLGrant{}, false
	}
	lvl, fits := uectx.SelectAggregationLevel(32, 8)
	if !fits || int(lvl) > *cceLeft {
		return DLGrant{}, false
	}
	*budget -= prb
	*cceLeft -= int(lvl)
	return DLGrant{RNTI: c.RNTI, CarrierIdx: carrierIdx, Kind: GrantCE, PRBs: prb, MCS: mcs, AggLevel: lvl}, true
}

func (s *Scheduler) grantRetx(tti engine.TTI, carrierIdx uint8, c UserDLCandidate, budget, cceLeft *int) (DLGrant, bool) {
	p, ok := c.CC.DL.GetPending(tti)
	if !ok {
		return DLGrant{}, false
	}
	prb, ok := requiredPRBsForTBS(p.MCS, p.TBSizeBits)
	if !ok || prb > *budget {
		return DLGrant{}, false
	}
	lvl, fits := uectx.SelectAggregationLevel(64, 8)
	if !fits || int(lvl) > *cceLeft {
		return DLGrant{}, false
	}
	retx, ok := c.CC.DL.Retransmit(p.ID, tti)
	if !ok {
		return DLGrant{}, false
	}
	*budget -= prb
	*cceLeft -= int(lvl)
	return DLGrant{
		RNTI: c.RNTI, CarrierIdx: carrierIdx, Kind: GrantHARQRetx,
		PRBs: prb, MCS: retx.MCS, HarqPID: retx.ID, NDI: retx.NDI, RV: retx.RV(),
		TBSizeBits: retx.TBSizeBits, AggLevel: lvl,
	}, true
}

func (s *Scheduler) grantNewDataDL(tti engine.TTI, carrierIdx uint8, c UserDLCandidate, budget, cceLeft *int) (DLGrant, bool) {
	prb, mcs, ok := c.CC.DLGrant(c.PendingBytes)
	if !ok {
		return DLGrant{}, false
	}
	if prb > *budget {
		prb = *budget // greedy RBG grab until request satisfied or budget exhausted
	}
	if prb <= 0 {
		return DLGrant{}, false
	}
	lvl, fits := uectx.SelectAggregationLevel(64, 8)
	if !fits || int(lvl) > *cceLeft {
		// falling back to higher aggregation already failed; defer the user
		return DLGrant{}, false
	}
	tbBits := uint32(prb) * 8 * 12 // approximate bits carried: a fixed 96 bits per PRB, as in requiredPRBs
	pid, ok := c.CC.DL.Alloc(tti, tbBits, mcs)
	if !ok {
		return DLGrant{}, false
	}
	proc := c.CC.DL.Snapshot()[pid]
	*budget -= prb
	*cceLeft -= int(lvl)
	return DLGrant{
		RNTI: c.RNTI, CarrierIdx: carrierIdx, Kind: GrantNewData,
		PRBs: prb, MCS: mcs, HarqPID: pid, NDI: proc.NDI, RV: proc.RV(),
		TBSizeBits: tbBits, AggLevel: lvl,
	}, true
}

// requiredPRBsForTBS re-derives the PRB count a retransmission needs to
// preserve its original transport-block size (spec.md §4.4: "same PRB count
// as initial transmission" for UL; DL retransmissions likewise reuse the
// original TB size, re-fit against the current MCS if it changed).
func requiredPRBsForTBS(mcs uint8, tbBits uint32) (int, bool) {
	return requiredPRBs(mcs, tbBits)
}

// UserULCandidate is one user's UL scheduling inputs for a single TTI pass.
type UserULCandidate struct {
	RNTI uint16
	Ctx  *uectx.Context
	CC   *uectx.CarrierContext
	BSRBytes uint32
}

// ULSchedule allocates this TTI's uplink grants for carrierIdx: Msg3 first,
// then HARQ retransmissions, then new transmissions by BSR (spec.md §4.4).
// Grants take effect at tti+ULGrantDelay. totalPRBs is the carrier's
// uplink PRB count; pucchExclusionPRBs at each edge of the band are kept
// out of the allocation here.
func (s *Scheduler) ULSchedule(tti engine.TTI, carrierIdx uint8, totalPRBs int, msg3 []Msg3Request, candidates []UserULCandidate) []ULGrant {
	effectiveAt := tti.Add(ULGrantDelay)
	loEdge, hiEdge := pucchExclusionPRBs, totalPRBs-pucchExclusionPRBs
	cursor := loEdge
	var grants []ULGrant

	for _, m := range msg3 {
		if cursor+m.PRBs > hiEdge {
			continue
		}
		grants = append(grants, ULGrant{CarrierIdx: carrierIdx, Kind: GrantMsg3, PRBStart: cursor, PRBs: m.PRBs, EffectiveAt: effectiveAt})
		cursor += m.PRBs
	}

	retxUsers := make([]UserULCandidate, 0)
	newDataUsers := make([]UserULCandidate, 0)
	for _, c := range candidates {
		if hasPendingRetx(c.CC.UL, tti) {
			retxUsers = append(retxUsers, c)
		} else if c.BSRBytes > 0 {
			newDataUsers = append(newDataUsers, c)
		}
	}

	for _, c := range retxUsers {
		p, ok := c.CC.UL.GetPending(tti)
		if !ok {
			continue
		}
		prb, ok := requiredPRBsForTBS(p.MCS, p.TBSizeBits)
		if !ok || cursor+prb > hiEdge {
			continue
		}
		retx, ok := c.CC.UL.Retransmit(p.ID, tti)
		if !ok {
			continue
		}
		grants = append(grants, ULGrant{
			RNTI: c.RNTI, CarrierIdx: carrierIdx, Kind: GrantHARQRetx,
			PRBStart: cursor, PRBs: prb, MCS: retx.MCS, HarqPID: retx.ID,
			NDI: retx.NDI, RV: retx.RV(), TBSizeBits: retx.TBSizeBits, EffectiveAt: effectiveAt,
		})
		cursor += prb
	}

	newDataUsers = roundRobinOrderUL(newDataUsers, s.ulCursor[carrierIdx])
	for _, c := range newDataUsers {
		prb, mcs, ok := c.CC.ULGrant(c.BSRBytes)
		if !ok {
			continue
		}
		if cursor+prb > hiEdge {
			prb = hiEdge - cursor
		}
		if prb <= 0 {
			break
		}
		tbBits := uint32(prb) * 8 * 12
		pid, ok := c.CC.UL.Alloc(tti, tbBits, mcs)
		if !ok {
			continue
		}
		proc := c.CC.UL.Snapshot()[pid]
		grants = append(grants, ULGrant{
			RNTI: c.RNTI, CarrierIdx: carrierIdx, Kind: GrantNewData,
			PRBStart: cursor, PRBs: prb, MCS: mcs, HarqPID: pid,
			NDI: proc.NDI, RV: proc.RV(), TBSizeBits: tbBits, EffectiveAt: effectiveAt,
		})
		cursor += prb
		s.ulCursor[carrierIdx] = c.RNTI
		if cursor >= hiEdge {
			break
		}
	}

	return grants
}

func roundRobinOrderUL(candidates []UserULCandidate, lastServed uint16) []UserULCandidate {
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].RNTI < candidates[j].RNTI })
	start := 0
	for idx, c := range candidates {
		if c.RNTI > lastServed {
			start = idx
			break
		}
	}
	return append(append([]UserULCandidate{}, candidates[start:]...), candidates[:start]...)
}

// requiredPRBs runs an ascending-PRB search (spec.md §4.3) for contexts,
// like retransmission re-fitting, that only have an MCS and a target bit
// count rather than a *uectx.CarrierContext to call through. It counts a
// fixed 96 bits per PRB, the same figure the grant paths use for
// TBSizeBits, and does not use mcs; uectx's own search uses its
// MCS-dependent tbs instead.
func requiredPRBs(mcs uint8, reqBits uint32) (int, bool) {
	for prb := 1; prb <= 100; prb++ {
		if uint32(prb)*8*12 >= reqBits {
			return prb, true
		}
	}
	return 100, false
}
