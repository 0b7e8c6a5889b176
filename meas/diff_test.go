package meas_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/enbstack/meas"
)

var _ = Describe("Diff", func() {
	var source, target meas.Config

	BeforeEach(func() {
		source = meas.Config{
			Objects: []meas.Object{{
				ObjectID: 1,
				EARFCN:   1800,
				Neighbors: map[uint16]meas.NeighborCell{
					1: {CellIndex: 1, PCI: 10, Offset: 0},
				},
			}},
			Reports: []meas.ReportConfig{{ReportID: 1, TriggerType: "A3", Threshold: 3}},
			MeasIDs: []meas.MeasID{{MeasID: 1, ObjectID: 1, ReportID: 1}},
		}
		target = source
		target.Objects = append([]meas.Object{}, source.Objects...)
		target.Reports = append([]meas.ReportConfig{}, source.Reports...)
		target.MeasIDs = append([]meas.MeasID{}, source.MeasIDs...)
	})

	It("yields an empty delta for equal configs", func() {
		target.Objects[0].Neighbors = map[uint16]meas.NeighborCell{
			1: {CellIndex: 1, PCI: 10, Offset: 0},
		}
		d := meas.Diff(source, target)
		Expect(d.IsEmpty()).To(BeTrue())
	})

	It("detects a neighbor PCI change as add-or-modify", func() {
		target.Objects[0].Neighbors = map[uint16]meas.NeighborCell{
			1: {CellIndex: 1, PCI: 99, Offset: 0},
		}
		d := meas.Diff(source, target)
		Expect(d.IsEmpty()).To(BeFalse())
		Expect(d.ObjectsAddModify).To(HaveLen(1))
		Expect(d.ObjectsAddModify[0].NeighborsAddModify).To(HaveLen(1))
		Expect(d.ObjectsAddModify[0].NeighborsAddModify[0].PCI).To(Equal(uint16(99)))
	})

	It("detects a removed neighbor by cell index", func() {
		target.Objects[0].Neighbors = map[uint16]meas.NeighborCell{}
		d := meas.Diff(source, target)
		Expect(d.ObjectsAddModify[0].NeighborsRemove).To(ConsistOf(uint16(1)))
	})

	It("detects a removed measurement object", func() {
		target.Objects = nil
		d := meas.Diff(source, target)
		Expect(d.ObjectsRemove).To(ConsistOf(uint8(1)))
	})

	It("applying the delta to the source reproduces the target", func() {
		target.Objects[0].Neighbors = map[uint16]meas.NeighborCell{
			2: {CellIndex: 2, PCI: 20, Offset: 1},
		}
		target.Reports[0].Threshold = 5

		d := meas.Diff(source, target)
		applied := source
		applied.Objects = append([]meas.Object{}, source.Objects...)
		meas.Apply(&applied, d)

		redo := meas.Diff(applied, target)
		Expect(redo.IsEmpty()).To(BeTrue())
	})
})

var _ = Describe("AllocateID", func() {
	It("picks the lowest free index in [1,32]", func() {
		used := map[uint8]bool{1: true, 2: true, 4: true}
		id, ok := meas.AllocateID(used)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(uint8(3)))
	})

	It("fails once every index is used", func() {
		used := map[uint8]bool{}
		for i := uint8(1); i <= 32; i++ {
			used[i] = true
		}
		_, ok := meas.AllocateID(used)
		Expect(ok).To(BeFalse())
	})
})
