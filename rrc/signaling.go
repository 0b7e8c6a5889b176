package rrc

//go:generate mockgen -destination=mock_signaling.go -package=rrc github.com/sarchlab/enbstack/rrc Signaling

// Signaling is the narrow RRC <-> core-network-signaling collaborator this
// package drives for connection establishment, NAS forwarding, and release
// (spec.md §6 "RRC <-> core-network signaling"). Any concrete
// mobility.SignalingLayer implementation (a superset that additionally
// carries handover_required) satisfies this interface structurally, so a
// station wires the same backend into both collaborators.
type Signaling interface {
	InitialUE(rnti uint16, nasPDU []byte) error
	WritePDU(rnti uint16, nasPDU []byte) error
	UserRelease(rnti uint16, cause string) error
}
