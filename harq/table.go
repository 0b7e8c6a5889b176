package harq

import (
	"sync"

	"github.com/sarchlab/enbstack/engine"
)

// HarqDelay is the FDD round-trip delay, in subframes, between a DL
// transmission and its expected ACK/NACK (spec.md §3, §4.1).
const HarqDelay = 4

// Table is the ring of HARQ processes for one (user, carrier, direction).
// It is owned by the user's scheduling context and mutated only by the TTI
// path for that user (spec.md §5), so its own lock exists purely to let a
// concurrent admin/introspection read (station/admin) snapshot it safely.
type Table struct {
	mu        sync.Mutex
	dir       Direction
	maxRetx   uint32
	processes []Process
}

// NewTable creates a Table with n processes (8 for FDD DL/UL per spec.md
// §3), all initially empty.
func NewTable(dir Direction, n int, maxRetx uint32) *Table {
	t := &Table{dir: dir, maxRetx: maxRetx, processes: make([]Process, n)}
	for i := range t.processes {
		t.processes[i] = Process{ID: i, AckReceived: true}
	}
	return t
}

// Alloc reserves an empty process for a new transmission at tti, returning
// its index and false if no process is free.
func (t *Table) Alloc(tti engine.TTI, tbSize uint32, mcs uint8) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.processes {
		p := &t.processes[i]
		if !p.IsEmpty(t.maxRetx) {
			continue
		}
		ndi := !p.NDI // toggles on new data (spec.md §3 invariant)
		*p = Process{
			ID:          i,
			AssignedTTI: tti,
			TBSizeBits:  tbSize,
			MCS:         mcs,
			TxCount:     1,
			NDI:         ndi,
		}
		return i, true
	}
	return -1, false
}

// GetPending returns the process whose stored TTI plus the retransmission
// delay equals tti_tx and that has a pending NACK (spec.md §4.1). When
// multiple qualify — never more than one per table since a table holds one
// process per id — callers combine results from multiple tables and must
// tie-break by age themselves (spec.md: oldest first).
func (t *Table) GetPending(ttiTx engine.TTI) (*Process, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.processes {
		p := &t.processes[i]
		if p.AckReceived || p.RetxCount > t.maxRetx {
			continue
		}
		if p.RetxCount < p.TxCount {
			continue // no NACK received since the last transmission
		}
		expected := p.AssignedTTI.Add(HarqDelay)
		if expected == ttiTx {
			cp := *p
			return &cp, true
		}
	}
	return nil, false
}

// SetAck records an ACK/NACK for the process whose AssignedTTI matches tti.
// On NACK the process becomes eligible for GetPending at tti+delay; on ACK
// it is marked empty and its retransmission count is not advanced further.
func (t *Table) SetAck(tti engine.TTI, ack bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.processes {
		p := &t.processes[i]
		if p.AssignedTTI != tti || p.AckReceived {
			continue
		}
		if ack {
			p.AckReceived = true
		} else {
			p.RetxCount++
		}
		return true
	}
	return false
}

// Retransmit re-assigns process id to tti, bumping TxCount so RV cycles
// and keeping NDI stable (retransmission never toggles NDI, spec.md §3).
func (t *Table) Retransmit(id int, tti engine.TTI) (Process, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id < 0 || id >= len(t.processes) {
		return Process{}, false
	}
	p := &t.processes[id]
	if p.AckReceived || p.RetxCount > t.maxRetx {
		return Process{}, false
	}
	p.AssignedTTI = tti
	p.TxCount++
	return *p, true
}

// Reset clears process id back to empty.
func (t *Table) Reset(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id < 0 || id >= len(t.processes) {
		return
	}
	t.processes[id] = Process{ID: id, AckReceived: true}
}

// Flush empties every process in the table, used on carrier deactivation
// (spec.md §4.1 edge case) and when a HARQ process exceeds its maximum
// retransmission count (spec.md §8, triggers an RLF indication upstream).
func (t *Table) Flush() []Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	flushed := make([]Process, 0)
	for i := range t.processes {
		if !t.processes[i].AckReceived {
			flushed = append(flushed, t.processes[i])
		}
		t.processes[i] = Process{ID: i, AckReceived: true}
	}
	return flushed
}

// Exceeded reports which processes have exceeded the configured maximum
// retransmission count without having been reset, so the caller can emit
// the RLF indication spec.md §8 requires and then flush them.
func (t *Table) Exceeded() []Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Process, 0)
	for _, p := range t.processes {
		if !p.AckReceived && p.RetxCount > t.maxRetx {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns a copy of every process, for read-only introspection.
func (t *Table) Snapshot() []Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Process, len(t.processes))
	copy(out, t.processes)
	return out
}

// Oldest returns the process among candidates with the largest
// (tti_now - tti_stored) mod hyperframe, i.e. the oldest one, the spec.md
// §4.1 tie-break for multiple pending retransmissions.
func Oldest(now engine.TTI, candidates []Process) (Process, bool) {
	if len(candidates) == 0 {
		return Process{}, false
	}
	best := candidates[0]
	bestAge := now.Sub(best.AssignedTTI)
	for _, c := range candidates[1:] {
		age := now.Sub(c.AssignedTTI)
		if age > bestAge {
			best, bestAge = c, age
		}
	}
	return best, true
}
