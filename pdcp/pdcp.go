// Package pdcp defines the narrow PDCP collaborator contract the RRC state
// machine drives (spec.md §1, §6): bearer setup and the security
// activation calls that follow security-mode-complete. PDCP ciphering and
// integrity primitives themselves are out of scope; only this add/
// configure/deliver surface is specified.
package pdcp

// Keys carries the four AS keys derived on security-mode-complete
// (spec.md §4.7), passed by value so this package need not depend on rrc
// and rrc can depend on this one.
type Keys struct {
	RRCEnc, RRCInt, UPEnc, UPInt [32]byte
}

//go:generate mockgen -destination=mock_pdcp.go -package=pdcp github.com/sarchlab/enbstack/pdcp PDCP

// PDCP is implemented by the packet-data layer. RRC calls it on bearer
// admission and security activation; it never calls back into RRC.
type PDCP interface {
	AddBearer(rnti uint16, lcid uint8, qci uint8) error
	ConfigSecurity(rnti uint16, lcid uint8, keys Keys, cipherAlgo, integAlgo int) error
	EnableIntegrity(rnti uint16, lcid uint8) error
	EnableEncryption(rnti uint16, lcid uint8) error
	Reestablish(rnti uint16) error
}
