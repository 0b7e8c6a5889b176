// Package engine provides the TTI clock and the single-consumer dispatch
// queue that every other package in this module is built on.
package engine

import "fmt"

// Hyperframe is the modulus of the LTE TTI counter: 1024 radio frames of 10
// subframes each.
const Hyperframe = 10240

// TTI is a Transmission Time Interval counter, monotonically increasing
// modulo Hyperframe. All timing comparisons between two TTI values must go
// through Sub/Before/After; raw integer comparison silently breaks at
// wraparound.
type TTI uint32

// Add returns the TTI that is delta subframes after t, wrapping at
// Hyperframe. delta may be negative.
func (t TTI) Add(delta int) TTI {
	v := (int64(t) + int64(delta)) % Hyperframe
	if v < 0 {
		v += Hyperframe
	}
	return TTI(v)
}

// Sub returns the signed distance from other to t in the modular domain,
// i.e. the smallest delta such that other.Add(delta) == t. The result is in
// (-Hyperframe/2, Hyperframe/2].
func (t TTI) Sub(other TTI) int {
	d := (int64(t) - int64(other)) % Hyperframe
	if d <= -Hyperframe/2 {
		d += Hyperframe
	} else if d > Hyperframe/2 {
		d -= Hyperframe
	}
	return int(d)
}

// Before reports whether t happens strictly before other in modular time.
func (t TTI) Before(other TTI) bool {
	return t.Sub(other) < 0
}

// After reports whether t happens strictly after other in modular time.
func (t TTI) After(other TTI) bool {
	return t.Sub(other) > 0
}

func (t TTI) String() string {
	return fmt.Sprintf("tti(%d)", uint32(t))
}
