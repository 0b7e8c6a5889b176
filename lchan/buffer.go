// Package lchan implements the per-user logical-channel buffer manager
// (spec.md §3, §4.2): DL RLC queue state, UL BSR state, and the pending
// downlink control-element FIFO.
package lchan

import "sync"

// LCG is a UL logical-channel group, 0-3.
type LCG uint8

// MaxLCG is the number of logical-channel groups.
const MaxLCG = 4

// CEKind tags a pending downlink control element.
type CEKind int

// Control-element kinds, emitted before SDUs in a MAC PDU (spec.md §4.2).
const (
	CETimingAdvance CEKind = iota
	CEContentionResolution
	CESCellActivation
)

// CE is a queued downlink control element.
type CE struct {
	Kind  CEKind
	TAIdx uint8  // valid when Kind == CETimingAdvance, in [0,63]
	ConRes uint64 // valid when Kind == CEContentionResolution, 48-bit identity
	SCellBitmap uint8 // valid when Kind == CESCellActivation
}

// Channel is one logical channel's state for one user.
type Channel struct {
	LCID        uint8
	Direction   Direction
	LCG         LCG
	Priority    uint8
	PBR         uint32 // prioritized bit rate, bytes/s
	Bucket      int64  // token bucket level
	DLTxBytes   uint32
	DLRetxBytes uint32
	ULBytes     uint32 // UL traffic observed via ULBufferAdd, for the synthetic-BSR guard
}

// Direction of a logical channel.
type Direction int

// Directions.
const (
	DirDL Direction = iota
	DirUL
	DirBoth
)

// Manager holds every logical channel and CE queue for one user.
type Manager struct {
	mu       sync.Mutex
	channels map[uint8]*Channel
	order    []uint8 // LCID insertion order, used for priority-order CE emission ties
	bsr      [MaxLCG]uint32
	phrDB    int
	ceQueue  []CE
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{channels: make(map[uint8]*Channel)}
}

// Configure registers or replaces lcid's static configuration.
func (m *Manager) Configure(c Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.channels[c.LCID]; !exists {
		m.order = append(m.order, c.LCID)
	}
	cp := c
	m.channels[c.LCID] = &cp
}

// RemoveChannel drops lcid's configuration.
func (m *Manager) RemoveChannel(lcid uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.channels, lcid)
	for i, l := range m.order {
		if l == lcid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// DLBuffer replaces lcid's DL tx/retx queue byte counts (spec.md §4.2:
// dl_buffer is a replace, not additive).
func (m *Manager) DLBuffer(lcid uint8, txQueue, retxQueue uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.channels[lcid]; ok {
		c.DLTxBytes = txQueue
		c.DLRetxBytes = retxQueue
	}
}

// ULBSR replaces lcg's reported buffer-status-report byte count.
func (m *Manager) ULBSR(lcg LCG, bytes uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bsr[lcg] = bytes
}

// ULPHR records the latest power-headroom report, in dB.
func (m *Manager) ULPHR(db int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phrDB = db
}

// PHR returns the last reported power headroom.
func (m *Manager) PHR() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phrDB
}

// ULBufferAdd additively increments lcid's observed UL traffic, used by
// the synthesized-BSR starvation guard (spec.md §4.6 step 3).
func (m *Manager) ULBufferAdd(lcid uint8, bytes uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.channels[lcid]; ok {
		c.ULBytes += bytes
	}
}

// ULBytesFor returns the UL bytes observed for lcid since it was configured,
// used by the synthetic-BSR starvation guard (spec.md §4.6 step 3).
func (m *Manager) ULBytesFor(lcid uint8) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.channels[lcid]; ok {
		return c.ULBytes
	}
	return 0
}

// BSR returns the current per-LCG reported buffer status.
func (m *Manager) BSR() [MaxLCG]uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bsr
}

// PendingDLBytes returns the total DL tx+retx bytes queued across all
// channels.
func (m *Manager) PendingDLBytes() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total uint32
	for _, c := range m.channels {
		total += c.DLTxBytes + c.DLRetxBytes
	}
	return total
}

// ChannelsByPriority returns configured channels in descending priority
// order (higher Priority value served first), ties broken by LCID ascending
// for determinism, as spec.md §4.6 requires "logical channel in priority
// order".
func (m *Manager) ChannelsByPriority() []Channel {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Channel, 0, len(m.channels))
	for _, lcid := range m.order {
		out = append(out, *m.channels[lcid])
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.Priority > b.Priority || (a.Priority == b.Priority && a.LCID < b.LCID) {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// PushTA enqueues a timing-advance CE, index in [0,63].
func (m *Manager) PushTA(index uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ceQueue = append(m.ceQueue, CE{Kind: CETimingAdvance, TAIdx: index})
}

// PushConRes enqueues a contention-resolution CE carrying a 48-bit
// identity.
func (m *Manager) PushConRes(identity uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ceQueue = append(m.ceQueue, CE{Kind: CEContentionResolution, ConRes: identity & 0xFFFFFFFFFFFF})
}

// PushSCellActivation enqueues an SCell-activation-bitmap CE.
func (m *Manager) PushSCellActivation(bitmap uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ceQueue = append(m.ceQueue, CE{Kind: CESCellActivation, SCellBitmap: bitmap})
}

// PendingCEs returns a copy of the pending CE FIFO, in emission order (TA,
// contention-resolution, SCell-activation per spec.md §4.6, preserved here
// as simple FIFO order since callers enqueue in that priority order).
func (m *Manager) PendingCEs() []CE {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]CE, len(m.ceQueue))
	copy(out, m.ceQueue)
	return out
}

// DrainCEs removes and returns the first n pending CEs (the ones the PDU
// assembler successfully fit into this TTI's transport block).
func (m *Manager) DrainCEs(n int) []CE {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > len(m.ceQueue) {
		n = len(m.ceQueue)
	}
	drained := make([]CE, n)
	copy(drained, m.ceQueue[:n])
	m.ceQueue = m.ceQueue[n:]
	return drained
}
