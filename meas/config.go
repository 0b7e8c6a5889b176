// Package meas implements the measurement configuration diff (spec.md §3,
// §4.8): computing the minimal add/modify/remove delta between a source
// and target var-meas-cfg, matching 3GPP TS 36.331 delta semantics.
//
// Grounded on the RRC-mobility fixtures in
// original_source/srsenb/test/rrc/rrc_mobility_test.cc, which exercise the
// measurement-object/report-config/meas-id add-modify-remove shape this
// package reproduces; tested here with ginkgo/gomega mirroring the
// teacher's own BDD-style test suites.
package meas

// NeighborCell is one neighbor-cell entry within a measurement object
// (spec.md §3), keyed by CellIndex.
type NeighborCell struct {
	CellIndex uint16
	PCI       uint16
	Offset    int8
}

// Object is a measurement object: an EARFCN plus its neighbor-cell set
// (spec.md §3), keyed by ObjectID.
type Object struct {
	ObjectID uint8
	EARFCN   uint32
	Neighbors map[uint16]NeighborCell
}

// ReportConfig is a report-configuration entry (spec.md §3), keyed by
// ReportID.
type ReportConfig struct {
	ReportID      uint8
	TriggerType   string // A1-A6
	Threshold     int32
	Hysteresis    uint8
	TimeToTrigger uint16
	MaxCells      uint8
	ReportAmount  uint8
	ReportIntervalMs uint32
}

// MeasID maps an object to a report configuration (spec.md §3), keyed by
// MeasID.
type MeasID struct {
	MeasID   uint8
	ObjectID uint8
	ReportID uint8
}

// Config is a var-meas-cfg: ordered measurement objects, report configs,
// and meas-id mappings (spec.md §3).
type Config struct {
	Objects []Object
	Reports []ReportConfig
	MeasIDs []MeasID
}

// NewConfig returns an empty configuration.
func NewConfig() Config {
	return Config{}
}

// AllocateID returns the lowest free identifier in [1,32] not present in
// used (spec.md §4.8: "assigned by lowest free index in [1, 32]").
func AllocateID(used map[uint8]bool) (uint8, bool) {
	for id := uint8(1); id <= 32; id++ {
		if !used[id] {
			return id, true
		}
	}
	return 0, false
}
