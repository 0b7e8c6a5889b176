// Package station wires the cell table, user table, MAC scheduler, PUCCH
// resource grids and mobility orchestrator into the top-level eNB control
// loop (spec.md §2, §6): per-TTI scheduling, the MAC<->RRC dispatch queue,
// and the cell_gain/cell_earfcn/handover command surface.
//
// Grounded on the teacher's top-level wiring pattern in
// sarchlab-akita/monitoring/monitor.go (a registry of components the admin
// surface introspects) and akita/sim's engine-plus-component-table shape,
// generalized from a discrete-event simulation registry to a live user
// table guarded by the shared/exclusive lock discipline of spec.md §5.
package station

import (
	"errors"
	"sort"
	"sync"

	"github.com/sarchlab/enbstack/cell"
	"github.com/sarchlab/enbstack/ctlerr"
	"github.com/sarchlab/enbstack/dispatch"
	"github.com/sarchlab/enbstack/engine"
	"github.com/sarchlab/enbstack/mac"
	"github.com/sarchlab/enbstack/meas"
	"github.com/sarchlab/enbstack/mobility"
	"github.com/sarchlab/enbstack/phy"
	"github.com/sarchlab/enbstack/pucch"
	"github.com/sarchlab/enbstack/rrc"
	"github.com/sarchlab/enbstack/tracing"
	"github.com/sarchlab/enbstack/uectx"
)

var log = tracing.NewLogger("station")

// Errors returned by the command surface and user-table operations.
var (
	ErrUnknownCarrier = errors.New("station: unknown carrier")
	ErrUnknownUser    = errors.New("station: unknown user")
	ErrDuplicateUser  = errors.New("station: rnti already registered")
)

// PUCCHLayout configures one carrier's SR/CQI resource grid shape; the
// station owns no opinion on slot counts beyond what pucch.NewGrid needs
// (spec.md §3 leaves PUCCH resource dimensioning to deployment config).
type PUCCHLayout struct {
	SRPRBs, SRSFs     int
	SRSFMapping       []int
	CQIPRBs, CQISFs   int
	CQISFMapping      []int
}

// UserEntry aggregates one user's RRC state machine and MAC scheduling
// context, keyed by C-RNTI (spec.md §2's user table).
type UserEntry struct {
	RNTI uint16
	RRC  *rrc.User
	Ctx  *uectx.Context
	Meas meas.Config
}

// tableLock adapts the user table's RWMutex to dispatch.TableLock: the
// dispatch consumer takes the exclusive side for mutating operations,
// while Tick's scheduler pass takes the shared side for reads (spec.md
// §5).
type tableLock struct{ mu *sync.RWMutex }

func (l tableLock) Lock()   { l.mu.Lock() }
func (l tableLock) Unlock() { l.mu.Unlock() }

// crntiAllocator hands out C-RNTIs for intra-station handover targets from
// a fixed pool (spec.md §4.9), distinct from the random temporary C-RNTIs
// used during random access.
type crntiAllocator struct {
	mu   sync.Mutex
	next uint16
	max  uint16
}

func newCRNTIAllocator() *crntiAllocator {
	return &crntiAllocator{next: 0x0046, max: 0xFFF3}
}

func (a *crntiAllocator) Allocate() (uint16, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next > a.max {
		return 0, false
	}
	rnti := a.next
	a.next++
	return rnti, true
}

// Station is the top-level control-loop object: one per eNB.
type Station struct {
	cells *cell.Table

	mu    sync.RWMutex
	users map[uint16]*UserEntry

	gainOverride   map[uint8]float64
	earfcnOverride map[uint8][2]uint32
	overrideMu     sync.Mutex

	scheduler *mac.Scheduler
	grids     map[uint8]*pucch.Grid
	mobility  *mobility.Orchestrator
	crntiPool *crntiAllocator

	queue      *dispatch.Queue
	dispatcher *dispatch.Dispatcher

	phy phy.Phy

	signaling rrc.Signaling

	timerMu           sync.Mutex
	lastTimerCheckTTI engine.TTI
	timerChecked      bool
}

// activityTimerGraceTTIs is how long a user stays in release-requested
// before Station drops it from the table, per spec.md §4.7 "after grace
// period, remove user". 100 TTIs (100ms) mirrors the response-phase timer
// order of magnitude used elsewhere in this package.
const activityTimerGraceTTIs = 100

// SetPhy wires the physical-layer collaborator Tick delivers each TTI's
// committed grants to (spec.md §6 "get_dl_sched"/"get_ul_sched"). A nil Phy
// (the default) makes delivery a no-op, which tests without a PHY rely on.
func (s *Station) SetPhy(p phy.Phy) { s.phy = p }

// NewStation builds a Station over a frozen cell.Table, with one PUCCH
// grid per carrier per the supplied layouts, driving sig for S1-based
// handovers.
func NewStation(cells *cell.Table, layouts map[uint8]PUCCHLayout, sig mobility.SignalingLayer) (*Station, error) {
	s := &Station{
		cells:          cells,
		users:          make(map[uint16]*UserEntry),
		gainOverride:   make(map[uint8]float64),
		earfcnOverride: make(map[uint8][2]uint32),
		scheduler:      mac.NewScheduler(),
		grids:          make(map[uint8]*pucch.Grid),
		mobility:       mobility.NewOrchestrator(sig),
		crntiPool:      newCRNTIAllocator(),
		queue:          dispatch.NewQueue(),
		signaling:      sig,
	}

	for _, idx := range cells.Carriers() {
		p, _ := cells.Get(idx)
		layout, ok := layouts[idx]
		if !ok {
			continue
		}
		s.grids[idx] = pucch.NewGrid(p, layout.SRPRBs, layout.SRSFs, layout.SRSFMapping, layout.CQIPRBs, layout.CQISFs, layout.CQISFMapping)
	}

	s.dispatcher = dispatch.NewDispatcher(s.queue, tableLock{&s.mu})
	return s, nil
}

// StartDispatch runs the dispatch consumer loop on its own goroutine. Stop
// by calling Close.
func (s *Station) StartDispatch() {
	go s.dispatcher.Run()
}

// Close stops the dispatch consumer.
func (s *Station) Close() {
	s.queue.Close()
}

// Dispatch enqueues a user-table mutation to run under the exclusive lock
// (spec.md §4.10): RRC procedure steps, C-RNTI reassignment, measurement
// config updates.
func (s *Station) Dispatch(task dispatch.Task) {
	s.queue.Push(task)
}

// AddUser registers a newly admitted user (called from within a Dispatch
// task, or directly while holding no other lock).
func (s *Station) AddUser(rnti uint16, cfg rrc.Config) (*UserEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[rnti]; exists {
		return nil, ErrDuplicateUser
	}

	user := rrc.NewUser(rnti, cfg)
	if s.signaling != nil {
		user.SetSignaling(s.signaling)
	}

	entry := &UserEntry{
		RNTI: rnti,
		RRC:  user,
		Ctx:  uectx.NewContext(rnti),
	}
	s.users[rnti] = entry
	log.Info("user added", "rnti", rnti)
	return entry, nil
}

// RemoveUser drops a user from the table, e.g. on RRC release or context
// fetch failure (spec.md §5: "handovers abort... if the user is removed").
func (s *Station) RemoveUser(rnti uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, rnti)
	s.mobility.AbortHandover(rnti)
	log.Info("user removed", "rnti", rnti)
}

// User looks up a user's entry under the shared lock.
func (s *Station) User(rnti uint16) (*UserEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.users[rnti]
	return e, ok
}

// Users returns every registered RNTI in ascending order, for introspection.
func (s *Station) Users() []uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint16, 0, len(s.users))
	for rnti := range s.users {
		out = append(out, rnti)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tick runs one TTI's scheduling pass for carrierIdx under the user
// table's shared lock (spec.md §5: "per-TTI scheduler reads take the
// shared lock"), returning the DL and UL grants the PHY should transmit.
func (s *Station) Tick(tti engine.TTI, carrierIdx uint8, availablePRBs int, rars []mac.RARRequest, msg3 []mac.Msg3Request) ([]mac.DLGrant, []mac.ULGrant, error) {
	cellParams, ok := s.cells.Get(carrierIdx)
	if !ok {
		return nil, nil, ErrUnknownCarrier
	}
	ulPRBs := availablePRBs // the SIB/paging reservation is downlink-only
	availablePRBs -= cellParams.ReservedDLPRBs(uint32(tti))
	if availablePRBs < 0 {
		availablePRBs = 0
	}

	s.maybeCheckUserTimers(tti)

	s.mu.RLock()
	defer s.mu.RUnlock()

	dlCandidates := make([]mac.UserDLCandidate, 0, len(s.users))
	ulCandidates := make([]mac.UserULCandidate, 0, len(s.users))

	for _, rnti := range s.sortedRNTIsLocked() {
		entry := s.users[rnti]
		cc, ok := entry.Ctx.Carriers[carrierIdx]
		if !ok {
			continue
		}
		cc.Tick(tti)

		bsr := entry.Ctx.Buffers.BSR()
		var bsrTotal uint32
		for _, b := range bsr {
			bsrTotal += b
		}

		dlCandidates = append(dlCandidates, mac.UserDLCandidate{
			RNTI:         rnti,
			Ctx:          entry.Ctx,
			CC:           cc,
			PendingBytes: entry.Ctx.Buffers.PendingDLBytes(),
			PendingCEs:   len(entry.Ctx.Buffers.PendingCEs()),
		})
		ulCandidates = append(ulCandidates, mac.UserULCandidate{
			RNTI:     rnti,
			Ctx:      entry.Ctx,
			CC:       cc,
			BSRBytes: bsrTotal,
		})
	}

	dlGrants := s.scheduler.DLSchedule(tti, carrierIdx, availablePRBs, rars, dlCandidates)
	ulGrants := s.scheduler.ULSchedule(tti, carrierIdx, ulPRBs, msg3, ulCandidates)

	if s.phy != nil {
		if err := s.phy.GetDLSched(int(tti), dlGrants); err != nil {
			log.Error(err, "dl schedule delivery failed", "carrier", carrierIdx)
		}
		if err := s.phy.GetULSched(int(tti), ulGrants); err != nil {
			log.Error(err, "ul schedule delivery failed", "carrier", carrierIdx)
		}
	}
	return dlGrants, ulGrants, nil
}

// maybeCheckUserTimers sweeps every registered user's activity timer at most
// once per distinct TTI value, since Tick runs once per carrier per TTI and
// the sweep would otherwise repeat needlessly (spec.md §4.7: "any ->
// release-requested on activity-timer expiry or radio-link-failure threshold
// exceeded"; "after grace period, remove user").
func (s *Station) maybeCheckUserTimers(tti engine.TTI) {
	s.timerMu.Lock()
	if s.timerChecked && s.lastTimerCheckTTI == tti {
		s.timerMu.Unlock()
		return
	}
	s.timerChecked = true
	s.lastTimerCheckTTI = tti
	s.timerMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for rnti, entry := range s.users {
		entry.RRC.CheckActivityTimer(tti)
		releasedAt, released := entry.RRC.ReleaseRequestedAt()
		if !released {
			continue
		}
		if tti.Sub(releasedAt) < activityTimerGraceTTIs {
			continue
		}
		delete(s.users, rnti)
		s.mobility.AbortHandover(rnti)
		log.Info("user removed after release grace period", "rnti", rnti)
	}
}

func (s *Station) sortedRNTIsLocked() []uint16 {
	out := make([]uint16, 0, len(s.users))
	for rnti := range s.users {
		out = append(out, rnti)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetCellGain overrides carrierIdx's transmit gain, in dB (spec.md §6
// command surface). Gain is a runtime knob layered above the immutable
// cell.Table, which spec.md §3 requires fixed after startup.
func (s *Station) SetCellGain(carrierIdx uint8, gainDB float64) error {
	if _, ok := s.cells.Get(carrierIdx); !ok {
		return ErrUnknownCarrier
	}
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()
	s.gainOverride[carrierIdx] = gainDB
	log.Info("cell gain set", "carrier", carrierIdx, "gain_db", gainDB)
	return nil
}

// CellGain returns carrierIdx's current gain override, or 0 if unset.
func (s *Station) CellGain(carrierIdx uint8) float64 {
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()
	return s.gainOverride[carrierIdx]
}

// SetCellEARFCN overrides carrierIdx's DL/UL EARFCN at runtime (spec.md §6
// command surface); like gain, this is a deployment-time knob layered
// above the frozen cell.Table rather than a mutation of it.
func (s *Station) SetCellEARFCN(carrierIdx uint8, dlEarfcn, ulEarfcn uint32) error {
	if _, ok := s.cells.Get(carrierIdx); !ok {
		return ErrUnknownCarrier
	}
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()
	s.earfcnOverride[carrierIdx] = [2]uint32{dlEarfcn, ulEarfcn}
	log.Info("cell earfcn set", "carrier", carrierIdx, "dl", dlEarfcn, "ul", ulEarfcn)
	return nil
}

// CellEARFCN returns carrierIdx's effective DL/UL EARFCN: the override if
// set, else the cell.Table's configured value.
func (s *Station) CellEARFCN(carrierIdx uint8) (dlEarfcn, ulEarfcn uint32, err error) {
	p, ok := s.cells.Get(carrierIdx)
	if !ok {
		return 0, 0, ErrUnknownCarrier
	}
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()
	if ov, ok := s.earfcnOverride[carrierIdx]; ok {
		return ov[0], ov[1], nil
	}
	return p.DLEarfcn, p.ULEarfcn, nil
}

// AssignPUCCHResources reserves an SR and a CQI resource handle for rnti on
// carrierIdx and records them on the user's RRC state (spec.md §4.5, §8:
// "every user in registered has at least one SR/CQI resource handle
// assigned"). Mutates the shared grid, so it takes the exclusive lock like
// AddUser/RemoveUser (spec.md §5: "the PUCCH grid is mutated only during
// user admission/reconfiguration/release").
func (s *Station) AssignPUCCHResources(rnti uint16, carrierIdx uint8, srPeriod, cqiPeriod int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[rnti]
	if !ok {
		return ErrUnknownUser
	}
	grid, ok := s.grids[carrierIdx]
	if !ok {
		return ErrUnknownCarrier
	}

	srHandle, err := grid.AllocateSR(srPeriod)
	if err != nil {
		return ctlerr.Wrap(ctlerr.ResourceExhausted, err)
	}
	cqiHandle, err := grid.AllocateCQI(cqiPeriod)
	if err != nil {
		_ = grid.Free(srHandle)
		return ctlerr.Wrap(ctlerr.ResourceExhausted, err)
	}

	entry.RRC.SetSRHandle(srHandle)
	entry.RRC.SetCQIHandle(cqiHandle)
	return nil
}

// ReleasePUCCHResources frees rnti's SR/CQI handles on carrierIdx, returning
// the grid's per-slot counters to their pre-allocation value (spec.md §8).
// Callers release before RemoveUser drops the entry, per spec.md §3's
// "destroyed on remove-user only after the scheduler has released
// PUCCH/CQI resources".
func (s *Station) ReleasePUCCHResources(rnti uint16, carrierIdx uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[rnti]
	if !ok {
		return ErrUnknownUser
	}
	grid, ok := s.grids[carrierIdx]
	if !ok {
		return ErrUnknownCarrier
	}

	if h, ok := entry.RRC.SRHandle(); ok {
		if err := grid.Free(h); err != nil {
			return err
		}
	}
	if h, ok := entry.RRC.CQIHandle(); ok {
		if err := grid.Free(h); err != nil {
			return err
		}
	}
	entry.RRC.ClearResourceHandles()
	return nil
}

// TriggerHandover runs the mobility orchestrator's measurement-report flow
// for an already-registered user (spec.md §6 command surface, §4.9).
func (s *Station) TriggerHandover(report mobility.MeasurementReport, localCarriers map[uint16]uint8, buildContainer func(uint16) []byte) (mobility.Result, error) {
	s.mu.RLock()
	entry, ok := s.users[report.RNTI]
	s.mu.RUnlock()
	if !ok {
		return mobility.Result{}, ErrUnknownUser
	}

	res := s.mobility.HandleMeasurementReport(entry.Meas, report, localCarriers, s.crntiPool, buildContainer)
	return res, nil
}
