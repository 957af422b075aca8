package figuremodel

import (
	"testing"

	"github.com/plotbroker/plotbroker/pkg/wire"
)

func TestRevisionMonotonic(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	r0 := m.Revision()

	m.SetFigureTitle(id, "renamed")
	r1 := m.Revision()
	if r1 <= r0 {
		t.Fatalf("revision did not advance: %d -> %d", r0, r1)
	}

	m.SetFigureTitle(9999, "nope") // unknown figure id
	r2 := m.Revision()
	if r2 <= r1 {
		t.Fatalf("revision must still advance on a miss (matches reference setter behavior): %d -> %d", r1, r2)
	}
}

func TestSetGridNeverBumpsRevisionAndOnlyGrows(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	before := m.Revision()

	m.SetGrid(id, 2, 3)
	if m.Revision() != before {
		t.Fatalf("SetGrid must not bump revision, got %d want %d", m.Revision(), before)
	}

	m.SetGrid(id, 1, 1) // smaller on both axes: must not shrink
	cnt, ok := m.AxesCount(id)
	_ = cnt
	if !ok {
		t.Fatal("figure vanished")
	}

	m.mu.Lock()
	rows, cols := m.figures[id].state.GridRows, m.figures[id].state.GridCols
	m.mu.Unlock()
	if rows != 2 || cols != 3 {
		t.Fatalf("grid shrank: got (%d,%d), want (2,3)", rows, cols)
	}

	m.SetGrid(id, 1, 5) // cols grows, rows does not shrink
	m.mu.Lock()
	rows, cols = m.figures[id].state.GridRows, m.figures[id].state.GridCols
	m.mu.Unlock()
	if rows != 2 || cols != 5 {
		t.Fatalf("grid did not grow independently per axis: got (%d,%d), want (2,5)", rows, cols)
	}
}

func TestApplyDiffOpBumpsOnlyOnSuccess(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	m.AddAxes(id, 0, 1, 0, 1, false)
	before := m.Revision()

	ok := m.ApplyDiffOp(wire.DiffOp{Type: wire.OpSetAxisLimits, FigureID: id, AxesIndex: 0, F1: 0, F2: 5, F3: 0, F4: 5})
	if !ok {
		t.Fatal("expected apply to succeed")
	}
	if m.Revision() <= before {
		t.Fatal("successful apply must bump revision")
	}
	afterSuccess := m.Revision()

	ok = m.ApplyDiffOp(wire.DiffOp{Type: wire.OpSetAxisLimits, FigureID: id, AxesIndex: 99})
	if ok {
		t.Fatal("expected apply to fail for out-of-range axes index")
	}
	if m.Revision() != afterSuccess {
		t.Fatalf("failed apply must not bump revision: %d -> %d", afterSuccess, m.Revision())
	}

	ok = m.ApplyDiffOp(wire.DiffOp{Type: wire.OpAddFigure})
	if ok {
		t.Fatal("ADD_FIGURE must never apply via ApplyDiffOp")
	}
}

func TestLoadSnapshotPreservesIDsAndAdvancesNextFree(t *testing.T) {
	m := New()
	m.CreateFigure("existing", 0, 0) // id 1, consumed and discarded below

	snap := wire.StateSnapshotPayload{
		Figures: []wire.FigureState{
			{FigureID: 0, Title: "auto-assigned"},
			{FigureID: 7, Title: "producer-assigned"},
		},
	}
	ids := m.LoadSnapshot(snap)
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	if ids[1] != 7 {
		t.Fatalf("producer-assigned id not preserved: got %d, want 7", ids[1])
	}

	nextID := m.CreateFigure("next", 0, 0)
	if nextID <= 7 {
		t.Fatalf("next figure id %d must exceed every id seen in the snapshot (7)", nextID)
	}
}

func TestSetSeriesDataDedupSkipsRevisionOnIdenticalPayload(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	m.AddAxes(id, 0, 1, 0, 1, false)
	_, sidx, _ := m.AddSeriesWithDiff(id, "s", wire.SeriesLine, 0)

	data := []float32{1, 2, 3, 4}
	m.SetSeriesData(id, sidx, data, 0, 0)
	r1 := m.Revision()

	m.SetSeriesData(id, sidx, append([]float32{}, data...), 0, 0)
	r2 := m.Revision()
	if r2 != r1 {
		t.Fatalf("identical payload must not bump revision: %d -> %d", r1, r2)
	}

	m.SetSeriesData(id, sidx, []float32{9, 9, 9, 9}, 0, 0)
	r3 := m.Revision()
	if r3 <= r2 {
		t.Fatal("changed payload must bump revision")
	}
}

func TestSeriesPointCountBySeriesType(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	m.AddAxes(id, 0, 1, 0, 1, true)

	_, lineIdx, _ := m.AddSeriesWithDiff(id, "l", wire.SeriesLine, 0)
	m.SetSeriesData(id, lineIdx, []float32{0, 0, 1, 1, 2, 2}, 0, 0)

	_, line3DIdx, _ := m.AddSeriesWithDiff(id, "l3", wire.SeriesLine3D, 0)
	m.SetSeriesData(id, line3DIdx, []float32{0, 0, 0, 1, 1, 1}, 0, 0)

	_, surfIdx, _ := m.AddSeriesWithDiff(id, "surf", wire.SeriesSurface, 0)
	m.SetSeriesData(id, surfIdx, make([]float32, 12), 3, 4)

	snap := m.Snapshot()
	var line, line3d, surf wire.SeriesState
	for _, s := range snap.Figures[0].Series {
		switch s.Name {
		case "l":
			line = s
		case "l3":
			line3d = s
		case "surf":
			surf = s
		}
	}
	if line.PointCount != 3 {
		t.Fatalf("line point count = %d, want 3", line.PointCount)
	}
	if line3d.PointCount != 2 {
		t.Fatalf("line3d point count = %d, want 2", line3d.PointCount)
	}
	if surf.PointCount != 12 {
		t.Fatalf("surface point count = %d, want nx*ny=12", surf.PointCount)
	}
	if surf.GridNX != 3 || surf.GridNY != 4 {
		t.Fatalf("surface grid dims = (%d,%d), want (3,4)", surf.GridNX, surf.GridNY)
	}
}

func TestAppendSeriesDataBroadcastsFullArray(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	m.AddAxes(id, 0, 1, 0, 1, false)
	_, sidx, _ := m.AddSeriesWithDiff(id, "s", wire.SeriesLine, 0)

	m.SetSeriesData(id, sidx, []float32{1, 2}, 0, 0)
	op := m.AppendSeriesData(id, sidx, []float32{3, 4})

	if op.Type != wire.OpSetSeriesData {
		t.Fatalf("append diff op type = %v, want OpSetSeriesData", op.Type)
	}
	want := []float32{1, 2, 3, 4}
	if len(op.Data) != len(want) {
		t.Fatalf("append diff data = %v, want %v", op.Data, want)
	}
	for i := range want {
		if op.Data[i] != want[i] {
			t.Fatalf("append diff data = %v, want %v", op.Data, want)
		}
	}
}

func TestRemoveSeriesShiftsIndices(t *testing.T) {
	m := New()
	id := m.CreateFigure("fig", 0, 0)
	m.AddAxes(id, 0, 1, 0, 1, false)
	m.AddSeriesWithDiff(id, "a", wire.SeriesLine, 0)
	m.AddSeriesWithDiff(id, "b", wire.SeriesLine, 0)

	m.RemoveSeries(id, 0)
	cnt, ok := m.SeriesCount(id)
	if !ok || cnt != 1 {
		t.Fatalf("series count after remove = %d, want 1", cnt)
	}
	snap := m.Snapshot()
	if snap.Figures[0].Series[0].Name != "b" {
		t.Fatalf("remaining series = %q, want %q", snap.Figures[0].Series[0].Name, "b")
	}
}
