package engine

import "sync/atomic"

// seqCounter breaks ties between events scheduled for the same TTI so the
// event heap gives a stable order. The teacher used a swappable
// module-global IDGenerator (sequential or xid-based) for this; per this
// module's design notes that pattern is replaced station-wide by explicit,
// non-singleton state — this counter is purely an internal heap tie-breaker,
// not a business identifier, so a single atomic counter is kept instead of
// threading a generator through every Schedule call. Station-visible
// correlation IDs (handover-preparation containers) come from the
// package-level function tracing.NewCorrelationID instead.
var seq uint64

func nextSeq() uint64 {
	return atomic.AddUint64(&seq, 1)
}
