package rrc

import (
	"errors"

	"github.com/sarchlab/enbstack/ctlerr"
	"github.com/sarchlab/enbstack/engine"
	"github.com/sarchlab/enbstack/pdcp"
	"github.com/sarchlab/enbstack/pucch"
	"github.com/sarchlab/enbstack/tracing"
)

// srb1LCID is the signaling radio bearer PDCP activates integrity and
// ciphering for on security-mode-complete (spec.md §6 "enable encryption
// for SRB1").
const srb1LCID uint8 = 1

var log = tracing.NewLogger("rrc")

// State is an RRC user's connection state (spec.md §3, §4.7).
type State int

// RRC states.
const (
	StateIdle State = iota
	StateWaitSetupComplete
	StateWaitReconfComplete
	StateRegistered
	StateReleaseRequested
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitSetupComplete:
		return "wait-setup-complete"
	case StateWaitReconfComplete:
		return "wait-reconf-complete"
	case StateRegistered:
		return "registered"
	case StateReleaseRequested:
		return "release-requested"
	default:
		return "unknown"
	}
}

// timerPhase names which activity-timer duration currently applies
// (spec.md §4.7).
type timerPhase int

const (
	phaseMsg3 timerPhase = iota
	phaseResponse
	phaseInactivity
)

// ERAB is one pending E-RAB's bearer context (spec.md §3).
type ERAB struct {
	ID          uint8
	QCI         uint8
	TransportIP string
	TEIDIn      uint32
	TEIDOut     uint32
	LastNAS     []byte
}

// Config holds the per-cell RRC timing and security preference
// configuration a User is constructed against.
type Config struct {
	MaxHARQMsg3Tx      uint8
	InactivityTimeoutMs uint32 // default 10000 per spec.md §4.7
	RLFThreshold       uint32
	EEAPreference      []CipherAlgo
	EIAPreference      []IntegAlgo
}

// DefaultConfig returns the spec.md §4.7 defaults.
func DefaultConfig() Config {
	return Config{
		MaxHARQMsg3Tx:       5,
		InactivityTimeoutMs: 10000,
		RLFThreshold:        10,
		EEAPreference:       []CipherAlgo{EEA2, EEA1, EEA0},
		EIAPreference:       []IntegAlgo{EIA2, EIA1},
	}
}

// User is one UE's RRC state (spec.md §3).
type User struct {
	RNTI  uint16
	cfg   Config
	state State

	cipher CipherAlgo
	integ  IntegAlgo
	caps   SecurityCapabilities

	kEnb [32]byte
	keys DerivedKeys

	transactionID uint8 // mod 4
	rlfCounter    uint32

	timerPhase    timerPhase
	timerDeadline engine.TTI

	erabs map[uint8]ERAB

	srHandle  *pucch.Handle
	cqiHandle *pucch.Handle

	pdcp       pdcp.PDCP
	signaling  Signaling
	releasedAt engine.TTI
	released   bool
}

// SetPDCP wires the packet-data collaborator this user drives on security
// activation and bearer admission (spec.md §6 "RRC <-> packet-data").
// A nil PDCP (the default) makes those calls no-ops, which test doubles
// rely on.
func (u *User) SetPDCP(p pdcp.PDCP) { u.pdcp = p }

// SetSignaling wires the core-network-signaling collaborator this user
// forwards NAS to and notifies on release (spec.md §6 "RRC <-> core-network
// signaling"). A nil Signaling (the default) makes those calls no-ops.
func (u *User) SetSignaling(sig Signaling) { u.signaling = sig }

// ReleaseRequestedAt returns the TTI this user entered release-requested,
// and whether it has (spec.md §4.7: "after grace period, remove user" —
// the grace-period clock the caller times against).
func (u *User) ReleaseRequestedAt() (engine.TTI, bool) {
	if !u.released {
		return 0, false
	}
	return u.releasedAt, true
}

// SetSRHandle records the user's allocated scheduling-request resource
// handle (spec.md §3).
func (u *User) SetSRHandle(h pucch.Handle) { u.srHandle = &h }

// SetCQIHandle records the user's allocated CQI-report resource handle.
func (u *User) SetCQIHandle(h pucch.Handle) { u.cqiHandle = &h }

// SRHandle returns the user's SR handle, if allocated.
func (u *User) SRHandle() (pucch.Handle, bool) {
	if u.srHandle == nil {
		return pucch.Handle{}, false
	}
	return *u.srHandle, true
}

// CQIHandle returns the user's CQI handle, if allocated.
func (u *User) CQIHandle() (pucch.Handle, bool) {
	if u.cqiHandle == nil {
		return pucch.Handle{}, false
	}
	return *u.cqiHandle, true
}

// ClearResourceHandles drops both handles, e.g. once the scheduler has
// freed them on remove-user (spec.md §3's "destroyed on remove-user only
// after the scheduler has released PUCCH/CQI resources").
func (u *User) ClearResourceHandles() {
	u.srHandle = nil
	u.cqiHandle = nil
}

// NewUser creates a User in the idle state.
func NewUser(rnti uint16, cfg Config) *User {
	return &User{RNTI: rnti, cfg: cfg, state: StateIdle, erabs: make(map[uint8]ERAB)}
}

// State returns the user's current RRC state.
func (u *User) State() State { return u.state }

// ErrInvalidTransition is returned when an event does not apply to the
// user's current state.
var ErrInvalidTransition = errors.New("rrc: invalid state transition")

// NextTransactionID returns and advances the 2-bit transaction-id counter
// (spec.md §4.7: "incremented per outgoing message that requires a
// reply"), mirroring rrc.cc's `(transaction_id++) % 4`.
func (u *User) NextTransactionID() uint8 {
	id := u.transactionID % 4
	u.transactionID++
	return id
}

// msg3TimeoutTTIs computes the Msg3-phase activity-timer duration, in TTIs
// (1 TTI = 1 ms), per spec.md §4.7: (max_harq_msg3_tx + 1) * 16 ms.
func (u *User) msg3TimeoutTTIs() int {
	return (int(u.cfg.MaxHARQMsg3Tx) + 1) * 16
}

const responseTimeoutTTIs = 1000

// armTimer (re)starts the activity timer for phase, from now.
func (u *User) armTimer(now engine.TTI, phase timerPhase) {
	u.timerPhase = phase
	var duration int
	switch phase {
	case phaseMsg3:
		duration = u.msg3TimeoutTTIs()
	case phaseResponse:
		duration = responseTimeoutTTIs
	case phaseInactivity:
		duration = int(u.cfg.InactivityTimeoutMs)
	}
	u.timerDeadline = now.Add(duration)
}

// RestartTimer restarts the currently-armed timer phase from now, per
// spec.md §4.7: "Timer restart on any received signaling SDU."
func (u *User) RestartTimer(now engine.TTI) {
	if u.state == StateIdle || u.state == StateReleaseRequested {
		return
	}
	u.armTimer(now, u.timerPhase)
}

// OnConnectionRequest transitions idle -> wait-setup-complete (spec.md
// §4.7), arming the Msg3-phase activity timer.
func (u *User) OnConnectionRequest(now engine.TTI) error {
	if u.state != StateIdle {
		return ErrInvalidTransition
	}
	u.state = StateWaitSetupComplete
	u.armTimer(now, phaseMsg3)
	log.Info("connection request", "rnti", u.RNTI)
	return nil
}

// OnSetupComplete records the UE's reported security capabilities and
// arms the response-phase timer while security mode is negotiated
// (spec.md §4.7: "on receipt of setup-complete (send security-mode-command...)").
func (u *User) OnSetupComplete(now engine.TTI, caps SecurityCapabilities) error {
	if u.state != StateWaitSetupComplete {
		return ErrInvalidTransition
	}
	u.caps = caps
	u.armTimer(now, phaseResponse)

	if u.signaling != nil {
		if err := u.signaling.InitialUE(u.RNTI, nil); err != nil {
			log.Error(err, "initial UE message failed", "rnti", u.RNTI)
		}
	}
	return nil
}

// OnSecurityModeComplete selects algorithms, derives keys from kEnb, and
// transitions into wait-reconf-complete (spec.md §4.7: "enable encryption
// for SRB1, send reconfiguration").
func (u *User) OnSecurityModeComplete(now engine.TTI, kEnb [32]byte) error {
	if u.state != StateWaitSetupComplete && u.state != StateWaitReconfComplete {
		return ErrInvalidTransition
	}
	cipher, integ, err := SelectSecurityAlgorithms(u.caps, u.cfg.EEAPreference, u.cfg.EIAPreference)
	if err != nil {
		return ctlerr.Wrap(ctlerr.SecurityNegotiationFailure, err)
	}
	u.cipher, u.integ = cipher, integ
	u.kEnb = kEnb
	u.keys = DeriveKeys(kEnb, cipher, integ)
	u.state = StateWaitReconfComplete
	u.armTimer(now, phaseResponse)

	if u.pdcp != nil {
		keys := pdcp.Keys{RRCEnc: u.keys.KRRCEnc, RRCInt: u.keys.KRRCInt, UPEnc: u.keys.KUPEnc, UPInt: u.keys.KUPInt}
		if err := u.pdcp.ConfigSecurity(u.RNTI, srb1LCID, keys, int(cipher), int(integ)); err != nil {
			return err
		}
		if err := u.pdcp.EnableIntegrity(u.RNTI, srb1LCID); err != nil {
			return err
		}
		if err := u.pdcp.EnableEncryption(u.RNTI, srb1LCID); err != nil {
			return err
		}
	}
	return nil
}

// OnReconfigurationComplete transitions wait-reconf-complete -> registered,
// arming the inactivity timer (spec.md §4.7).
func (u *User) OnReconfigurationComplete(now engine.TTI) error {
	if u.state != StateWaitReconfComplete {
		return ErrInvalidTransition
	}
	u.state = StateRegistered
	u.armTimer(now, phaseInactivity)
	return nil
}

// OnERABRequest transitions registered -> wait-reconf-complete to signal a
// new E-RAB setup/modify (spec.md §4.7).
func (u *User) OnERABRequest(now engine.TTI, erab ERAB) error {
	if u.state != StateRegistered {
		return ErrInvalidTransition
	}
	u.erabs[erab.ID] = erab
	u.state = StateWaitReconfComplete
	u.armTimer(now, phaseResponse)

	if u.pdcp != nil {
		if err := u.pdcp.AddBearer(u.RNTI, erab.ID, erab.QCI); err != nil {
			return err
		}
	}
	if u.signaling != nil && len(erab.LastNAS) > 0 {
		if err := u.signaling.WritePDU(u.RNTI, erab.LastNAS); err != nil {
			log.Error(err, "NAS PDU forwarding failed", "rnti", u.RNTI)
		}
	}
	return nil
}

// CheckActivityTimer transitions to release-requested if the armed timer
// has expired by now (spec.md §4.7: "any -> release-requested on
// activity-timer expiry").
func (u *User) CheckActivityTimer(now engine.TTI) bool {
	if u.state == StateIdle || u.state == StateReleaseRequested {
		return false
	}
	if now.Before(u.timerDeadline) {
		return false
	}
	u.state = StateReleaseRequested
	u.markReleaseRequested(now, "activity-timer-expired")
	log.Info("activity timer expired", "rnti", u.RNTI)
	return true
}

// OnRLFIndication increments the radio-link-failure counter (supplemented
// feature, SPEC_FULL.md), transitioning to release-requested once the
// configured threshold is exceeded (spec.md §4.7).
func (u *User) OnRLFIndication(now engine.TTI) bool {
	u.rlfCounter++
	if u.rlfCounter > u.cfg.RLFThreshold {
		u.state = StateReleaseRequested
		u.markReleaseRequested(now, "radio-link-failure")
		log.Info("RLF threshold exceeded", "rnti", u.RNTI, "count", u.rlfCounter)
		return true
	}
	return false
}

// markReleaseRequested records the grace-period clock start and notifies the
// signaling layer of the release (spec.md §4.7: "notify signaling layer;
// after grace period, remove user").
func (u *User) markReleaseRequested(now engine.TTI, cause string) {
	u.released = true
	u.releasedAt = now
	if u.signaling != nil {
		if err := u.signaling.UserRelease(u.RNTI, cause); err != nil {
			log.Error(err, "user release notification failed", "rnti", u.RNTI)
		}
	}
}

// ResetRLFCounter clears the radio-link-failure counter, e.g. on a
// successful handover or a fresh measurement report (supplemented
// feature).
func (u *User) ResetRLFCounter() {
	u.rlfCounter = 0
}

// Keys returns the derived AS key set.
func (u *User) Keys() DerivedKeys { return u.keys }

// SelectedAlgorithms returns the negotiated ciphering and integrity
// algorithms.
func (u *User) SelectedAlgorithms() (CipherAlgo, IntegAlgo) { return u.cipher, u.integ }
