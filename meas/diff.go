package meas

// ObjectDelta is one measurement object's change, including its own
// neighbor-cell-level delta (spec.md §4.8: "Within a meas-object: neighbor
// cells to add-or-modify... and neighbor cells to remove").
type ObjectDelta struct {
	ObjectID           uint8
	EARFCN             uint32
	NeighborsAddModify []NeighborCell
	NeighborsRemove    []uint16
}

// Delta is the minimal set of operations that takes a source Config to a
// target Config (spec.md §4.8).
type Delta struct {
	ObjectsAddModify []ObjectDelta
	ObjectsRemove    []uint8

	ReportsAddModify []ReportConfig
	ReportsRemove    []uint8

	MeasIDsAddModify []MeasID
	MeasIDsRemove    []uint8
}

// IsEmpty reports whether d carries no operations at all (spec.md §4.8:
// "producing a delta from equal configs yields an empty delta (no presence
// flags set)").
func (d Delta) IsEmpty() bool {
	return len(d.ObjectsAddModify) == 0 && len(d.ObjectsRemove) == 0 &&
		len(d.ReportsAddModify) == 0 && len(d.ReportsRemove) == 0 &&
		len(d.MeasIDsAddModify) == 0 && len(d.MeasIDsRemove) == 0
}

// Diff computes the delta from source to target (spec.md §4.8).
func Diff(source, target Config) Delta {
	var d Delta

	srcObjects := indexObjects(source.Objects)
	tgtObjects := indexObjects(target.Objects)
	for id, tgt := range tgtObjects {
		src, existed := srcObjects[id]
		if !existed {
			d.ObjectsAddModify = append(d.ObjectsAddModify, ObjectDelta{
				ObjectID:           id,
				EARFCN:             tgt.EARFCN,
				NeighborsAddModify: allNeighbors(tgt.Neighbors),
			})
			continue
		}
		nbrDelta := diffNeighbors(src.Neighbors, tgt.Neighbors)
		if src.EARFCN != tgt.EARFCN || len(nbrDelta.NeighborsAddModify) > 0 || len(nbrDelta.NeighborsRemove) > 0 {
			nbrDelta.ObjectID = id
			nbrDelta.EARFCN = tgt.EARFCN
			d.ObjectsAddModify = append(d.ObjectsAddModify, nbrDelta)
		}
	}
	for id := range srcObjects {
		if _, stillPresent := tgtObjects[id]; !stillPresent {
			d.ObjectsRemove = append(d.ObjectsRemove, id)
		}
	}

	srcReports := indexReports(source.Reports)
	tgtReports := indexReports(target.Reports)
	for id, tgt := range tgtReports {
		src, existed := srcReports[id]
		if !existed || src != tgt {
			d.ReportsAddModify = append(d.ReportsAddModify, tgt)
		}
	}
	for id := range srcReports {
		if _, stillPresent := tgtReports[id]; !stillPresent {
			d.ReportsRemove = append(d.ReportsRemove, id)
		}
	}

	srcMeasIDs := indexMeasIDs(source.MeasIDs)
	tgtMeasIDs := indexMeasIDs(target.MeasIDs)
	for id, tgt := range tgtMeasIDs {
		src, existed := srcMeasIDs[id]
		if !existed || src != tgt {
			d.MeasIDsAddModify = append(d.MeasIDsAddModify, tgt)
		}
	}
	for id := range srcMeasIDs {
		if _, stillPresent := tgtMeasIDs[id]; !stillPresent {
			d.MeasIDsRemove = append(d.MeasIDsRemove, id)
		}
	}

	return d
}

func indexObjects(objs []Object) map[uint8]Object {
	m := make(map[uint8]Object, len(objs))
	for _, o := range objs {
		m[o.ObjectID] = o
	}
	return m
}

func indexReports(reports []ReportConfig) map[uint8]ReportConfig {
	m := make(map[uint8]ReportConfig, len(reports))
	for _, r := range reports {
		m[r.ReportID] = r
	}
	return m
}

func indexMeasIDs(ids []MeasID) map[uint8]MeasID {
	m := make(map[uint8]MeasID, len(ids))
	for _, id := range ids {
		m[id.MeasID] = id
	}
	return m
}

func allNeighbors(neighbors map[uint16]NeighborCell) []NeighborCell {
	out := make([]NeighborCell, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, n)
	}
	return out
}

// diffNeighbors computes neighbor-cell adds/modifies (differ in PCI or
// offset) and removes (by cell index), per spec.md §4.8.
func diffNeighbors(src, tgt map[uint16]NeighborCell) ObjectDelta {
	var d ObjectDelta
	for idx, t := range tgt {
		s, existed := src[idx]
		if !existed || s.PCI != t.PCI || s.Offset != t.Offset {
			d.NeighborsAddModify = append(d.NeighborsAddModify, t)
		}
	}
	for idx := range src {
		if _, stillPresent := tgt[idx]; !stillPresent {
			d.NeighborsRemove = append(d.NeighborsRemove, idx)
		}
	}
	return d
}

// Apply mutates cfg in place according to d, so that for
// d = Diff(cfg, target), Diff(cfg-after-Apply, target) is empty (spec.md
// §4.8: "applying the delta to the source yields the target").
func Apply(cfg *Config, d Delta) {
	objects := indexObjects(cfg.Objects)
	for _, od := range d.ObjectsAddModify {
		obj, existed := objects[od.ObjectID]
		if !existed {
			obj = Object{ObjectID: od.ObjectID, Neighbors: make(map[uint16]NeighborCell)}
		}
		obj.EARFCN = od.EARFCN
		if obj.Neighbors == nil {
			obj.Neighbors = make(map[uint16]NeighborCell)
		}
		for _, n := range od.NeighborsAddModify {
			obj.Neighbors[n.CellIndex] = n
		}
		for _, idx := range od.NeighborsRemove {
			delete(obj.Neighbors, idx)
		}
		objects[od.ObjectID] = obj
	}
	for _, id := range d.ObjectsRemove {
		delete(objects, id)
	}
	cfg.Objects = flattenObjects(objects)

	reports := indexReports(cfg.Reports)
	for _, r := range d.ReportsAddModify {
		reports[r.ReportID] = r
	}
	for _, id := range d.ReportsRemove {
		delete(reports, id)
	}
	cfg.Reports = flattenReports(reports)

	measIDs := indexMeasIDs(cfg.MeasIDs)
	for _, m := range d.MeasIDsAddModify {
		measIDs[m.MeasID] = m
	}
	for _, id := range d.MeasIDsRemove {
		delete(measIDs, id)
	}
	cfg.MeasIDs = flattenMeasIDs(measIDs)
}

func flattenObjects(m map[uint8]Object) []Object {
	out := make([]Object, 0, len(m))
	for _, o := range m {
		out = append(out, o)
	}
	return out
}

func flattenReports(m map[uint8]ReportConfig) []ReportConfig {
	out := make([]ReportConfig, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out
}

func flattenMeasIDs(m map[uint8]MeasID) []MeasID {
	out := make([]MeasID, 0, len(m))
	for _, id := range m {
		out = append(out, id)
	}
	return out
}
