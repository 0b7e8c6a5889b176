// Package mobility implements the mobility orchestrator (spec.md §3,
// §4.9): measurement-report handling, intra-station handover via
// mobility-control-info reconfiguration, and S1-based handover
// preparation.
//
// Grounded on rrc_mobility handling in original_source/srsenb's
// src/stack/rrc/rrc.cc: the event flow (parse report, look up target,
// branch on already-in-progress and intra-station-vs-S1) is carried
// through unchanged; correlation IDs for handover-preparation containers
// use tracing.NewCorrelationID (rs/xid), grounded on the teacher's use of
// the same library to name trace-writer output files.
package mobility

import (
	"errors"
	"sync"

	"github.com/sarchlab/enbstack/meas"
	"github.com/sarchlab/enbstack/tracing"
)

var log = tracing.NewLogger("mobility")

// MeasurementReport is a parsed measurement report from a user (spec.md
// §4.9 step 1).
type MeasurementReport struct {
	RNTI     uint16
	ObjectID uint8
	PCI      uint16
}

// Outcome classifies what HandleMeasurementReport or
// HandoverPreparationComplete decided to do.
type Outcome int

// Outcomes.
const (
	OutcomeDroppedNoMatch Outcome = iota
	OutcomeDroppedInProgress
	OutcomeIntraStationHandover
	// OutcomeS1HandoverRequested means handover_required was sent to the
	// core and accepted for transport; the final decision arrives later,
	// out of band, via HandoverPreparationComplete (spec.md §4.9 step 5).
	OutcomeS1HandoverRequested
	// OutcomeS1HandoverPrepared means ho_preparation_complete reported
	// success: the handover-command container should be forwarded to the
	// UE (spec.md §4.9 step 5 "on handover_command response, forward the
	// container").
	OutcomeS1HandoverPrepared
	// OutcomeS1HandoverFailed means either the initial handover_required
	// send failed, or ho_preparation_complete reported failure: the user
	// remains on the source cell (spec.md §4.9 step 5 "on failure
	// response, remain on the source cell").
	OutcomeS1HandoverFailed
)

// IntraStationPlan is the reconfiguration this station sends the user for
// an intra-station handover (spec.md §4.9 step 4).
type IntraStationPlan struct {
	NewCRNTI      uint16
	TargetCarrier uint8
	TargetPCI     uint16
}

//go:generate mockgen -destination=mock_signaling.go -package=mobility github.com/sarchlab/enbstack/mobility SignalingLayer

// SignalingLayer is the narrow S1AP collaborator this package and rrc.User
// drive for the RRC <-> core-network-signaling contract (spec.md §6):
// initial_ue and write_pdu carry NAS to the core on connection
// establishment and thereafter, user_release tears the UE context down at
// the core, and handover_required requests an inter-station handover.
// handover_required's own eventual accept/reject arrives asynchronously and
// is delivered back via Orchestrator.HandoverPreparationComplete rather
// than as this call's return value, matching spec.md §4.9 step 5's
// out-of-band handover_command/failure response.
type SignalingLayer interface {
	InitialUE(rnti uint16, nasPDU []byte) error
	WritePDU(rnti uint16, nasPDU []byte) error
	UserRelease(rnti uint16, cause string) error
	HandoverRequired(rnti uint16, correlationID string, container []byte) error
}

// Result is the outcome of processing one measurement report.
type Result struct {
	Outcome       Outcome
	IntraStation  IntraStationPlan
	CorrelationID string
}

// ErrHandoverAlreadyInProgress names the step 3 case of spec.md §4.9 (a
// handover already in progress). HandleMeasurementReport does not return
// it; callers observe that case as Result.Outcome OutcomeDroppedInProgress.
var ErrHandoverAlreadyInProgress = errors.New("mobility: handover already in progress")

// Orchestrator tracks in-flight handovers per user (spec.md §4.9 step 3:
// "if a handover is already in progress for this user, drop").
type Orchestrator struct {
	mu         sync.Mutex
	inProgress map[uint16]bool
	migrated   map[uint16]bool   // RNTIs whose C-RNTI CE has already been consumed (duplicate guard)
	pendingS1  map[uint16]string // rnti -> correlationID awaiting HandoverPreparationComplete
	sig        SignalingLayer
}

// NewOrchestrator creates an Orchestrator driving sig for S1 handovers.
func NewOrchestrator(sig SignalingLayer) *Orchestrator {
	return &Orchestrator{
		inProgress: make(map[uint16]bool),
		migrated:   make(map[uint16]bool),
		pendingS1:  make(map[uint16]string),
		sig:        sig,
	}
}

// CRNTIAllocator allocates a new C-RNTI for an intra-station handover target.
// A real allocator draws from the station's free-RNTI pool (station
// package); tests and callers without that pool may pass their own.
type CRNTIAllocator interface {
	Allocate() (uint16, bool)
}

// HandleMeasurementReport runs the spec.md §4.9 event flow for one
// measurement report. localCarriers maps a PCI to this station's own
// carrier index for PCIs the station itself broadcasts (used to detect an
// intra-station target); alloc mints the new C-RNTI for an intra-station
// handover.
func (o *Orchestrator) HandleMeasurementReport(cfg meas.Config, report MeasurementReport, localCarriers map[uint16]uint8, alloc CRNTIAllocator, buildContainer func(rnti uint16) []byte) Result {
	target, ok := findNeighbor(cfg, report.ObjectID, report.PCI)
	if !ok {
		log.Info("measurement report target not found", "rnti", report.RNTI, "pci", report.PCI)
		return Result{Outcome: OutcomeDroppedNoMatch}
	}
	_ = target

	o.mu.Lock()
	if o.inProgress[report.RNTI] {
		o.mu.Unlock()
		return Result{Outcome: OutcomeDroppedInProgress}
	}
	o.inProgress[report.RNTI] = true
	o.mu.Unlock()

	if carrierIdx, isLocal := localCarriers[report.PCI]; isLocal {
		newCRNTI, ok := alloc.Allocate()
		if !ok {
			o.clearInProgress(report.RNTI)
			return Result{Outcome: OutcomeDroppedNoMatch}
		}
		return Result{
			Outcome: OutcomeIntraStationHandover,
			IntraStation: IntraStationPlan{
				NewCRNTI:      newCRNTI,
				TargetCarrier: carrierIdx,
				TargetPCI:     report.PCI,
			},
		}
	}

	correlationID := tracing.NewCorrelationID()
	container := buildContainer(report.RNTI)
	if err := o.sig.HandoverRequired(report.RNTI, correlationID, container); err != nil {
		o.clearInProgress(report.RNTI)
		return Result{Outcome: OutcomeS1HandoverFailed, CorrelationID: correlationID}
	}
	o.mu.Lock()
	o.pendingS1[report.RNTI] = correlationID
	o.mu.Unlock()
	return Result{Outcome: OutcomeS1HandoverRequested, CorrelationID: correlationID}
}

// HandoverPreparationComplete delivers the core network's asynchronous
// ho_preparation_complete response for a previously-requested S1 handover
// (spec.md §4.9 step 5). A response whose correlationID does not match the
// pending request for rnti (stale or duplicate) is ignored. On accept, the
// in-progress guard is left set until CompleteIntraStationHandover-style
// migration finishes on the target; on reject, the guard is cleared and the
// user remains on the source cell.
func (o *Orchestrator) HandoverPreparationComplete(rnti uint16, correlationID string, accept bool, container []byte) Result {
	o.mu.Lock()
	pending, ok := o.pendingS1[rnti]
	if !ok || pending != correlationID {
		o.mu.Unlock()
		return Result{Outcome: OutcomeDroppedNoMatch, CorrelationID: correlationID}
	}
	delete(o.pendingS1, rnti)
	o.mu.Unlock()

	if !accept {
		o.clearInProgress(rnti)
		return Result{Outcome: OutcomeS1HandoverFailed, CorrelationID: correlationID}
	}
	return Result{Outcome: OutcomeS1HandoverPrepared, CorrelationID: correlationID}
}

// clearInProgress ends the in-progress guard for rnti, e.g. after a failed
// handover attempt (spec.md §5: "handovers abort if the activity timer
// fires or the user is removed").
func (o *Orchestrator) clearInProgress(rnti uint16) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inProgress, rnti)
}

// CompleteIntraStationHandover finishes an intra-station handover once the
// target cell's C-RNTI CE arrives, clearing the in-progress guard and
// marking the RNTI migrated. A duplicate call for an already-migrated RNTI
// is ignored (spec.md §4.9: "Duplicate C-RNTI CE (already-migrated):
// ignore.").
func (o *Orchestrator) CompleteIntraStationHandover(rnti uint16) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.migrated[rnti] {
		return false
	}
	o.migrated[rnti] = true
	delete(o.inProgress, rnti)
	return true
}

// AbortHandover clears the in-progress guard and any pending S1 handover
// request for rnti, called on activity timer expiry or user removal
// (spec.md §5).
func (o *Orchestrator) AbortHandover(rnti uint16) {
	o.clearInProgress(rnti)
	o.mu.Lock()
	delete(o.pendingS1, rnti)
	o.mu.Unlock()
}

func findNeighbor(cfg meas.Config, objectID uint8, pci uint16) (meas.NeighborCell, bool) {
	for _, obj := range cfg.Objects {
		if obj.ObjectID != objectID {
			continue
		}
		for _, n := range obj.Neighbors {
			if n.PCI == pci {
				return n, true
			}
		}
	}
	return meas.NeighborCell{}, false
}
