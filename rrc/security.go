// Package rrc implements the per-user RRC state machine (spec.md §3, §4.7):
// connection establishment, security-mode setup, reconfiguration, release,
// activity timers, and the key-derivation chain those transitions drive.
//
// Grounded on original_source/srsenb's src/stack/rrc/rrc.cc: the state
// names, the preference-list algorithm-selection loop (rrc.cc's
// select_security_algorithms, ~lines 1930-2010), the transaction-id
// counter (`(transaction_id++) % 4`), and the activity-timer phase
// durations.
package rrc

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// CipherAlgo is a ciphering algorithm identifier (spec.md §4.7).
type CipherAlgo int

// Ciphering algorithms, in the order TS 33.401 numbers them.
const (
	EEA0 CipherAlgo = iota
	EEA1
	EEA2
	EEA3
)

// IntegAlgo is an integrity-protection algorithm identifier. EIA0 (null
// integrity) is deliberately absent: spec.md §4.7 says it is "never
// selected for signaling".
type IntegAlgo int

// Integrity algorithms this stack will select.
const (
	EIA1 IntegAlgo = iota + 1
	EIA2
	EIA3
)

// SecurityCapabilities is the UE-reported support bitmap (spec.md §3):
// bit N (1-indexed) of each bitmap indicates support for algorithm N
// (EEA1/EIA1 is bit 1, mask 1<<0), matching the original's "first bit - 128-EEAx"
// convention.
type SecurityCapabilities struct {
	EEABitmap uint8
	EIABitmap uint8
}

func (c SecurityCapabilities) supportsEEA(n int) bool {
	if n == 0 {
		return true // EEA0 (null ciphering) is always supported
	}
	return c.EEABitmap&(1<<(n-1)) != 0
}

func (c SecurityCapabilities) supportsEIA(n int) bool {
	return c.EIABitmap&(1<<(n-1)) != 0
}

// ErrNoMatchingCipher is returned when no configured ciphering preference
// intersects the reported capability bitmap.
var ErrNoMatchingCipher = errors.New("rrc: no matching ciphering algorithm")

// ErrNoMatchingIntegrity is returned when no configured integrity
// preference intersects the reported capability bitmap.
var ErrNoMatchingIntegrity = errors.New("rrc: no matching integrity algorithm")

// SelectSecurityAlgorithms intersects caps with eeaPreference and
// eiaPreference (configured preference order, most preferred first),
// returning the first algorithm in each preference list the UE supports
// (spec.md §4.7).
func SelectSecurityAlgorithms(caps SecurityCapabilities, eeaPreference []CipherAlgo, eiaPreference []IntegAlgo) (CipherAlgo, IntegAlgo, error) {
	var cipher CipherAlgo
	cipherFound := false
	for _, c := range eeaPreference {
		if caps.supportsEEA(int(c)) {
			cipher = c
			cipherFound = true
			break
		}
	}
	if !cipherFound {
		return 0, 0, ErrNoMatchingCipher
	}

	var integ IntegAlgo
	integFound := false
	for _, i := range eiaPreference {
		if i == 0 {
			continue // null integrity never selected for signaling
		}
		if caps.supportsEIA(int(i)) {
			integ = i
			integFound = true
			break
		}
	}
	if !integFound {
		return 0, 0, ErrNoMatchingIntegrity
	}

	return cipher, integ, nil
}

// DerivedKeys holds the four AS keys derived from K_eNB (spec.md §3).
type DerivedKeys struct {
	KRRCEnc [32]byte
	KRRCInt [32]byte
	KUPEnc  [32]byte
	KUPInt  [32]byte
}

// DeriveKeys computes the AS key hierarchy from kEnb. The real 3GPP KDF
// (TS 33.401 Annex A, a keyed-KDF over FC/algorithm-distinguisher/
// algorithm-type-distinguisher octets) is numeric cryptographic detail
// out of scope (spec.md §1's "any numeric DSP" non-goal extends to this);
// this uses an HMAC-SHA256-based derivation with the same per-purpose
// domain separation, which is enough to give each of the four keys a
// distinct, deterministic value derived from K_eNB and the negotiated
// algorithms.
func DeriveKeys(kEnb [32]byte, cipher CipherAlgo, integ IntegAlgo) DerivedKeys {
	derive := func(label string, algo int) [32]byte {
		mac := hmac.New(sha256.New, kEnb[:])
		mac.Write([]byte(label))
		mac.Write([]byte{byte(algo)})
		var out [32]byte
		copy(out[:], mac.Sum(nil))
		return out
	}
	return DerivedKeys{
		KRRCEnc: derive("rrc-enc", int(cipher)),
		KRRCInt: derive("rrc-int", int(integ)),
		KUPEnc:  derive("up-enc", int(cipher)),
		KUPInt:  derive("up-int", int(integ)),
	}
}
