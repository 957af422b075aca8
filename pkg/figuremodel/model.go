// Package figuremodel is the broker's authoritative, mutex-guarded store
// of every figure, axes, series and knob. Every mutator locks, applies
// the change, bumps the model's revision, and returns a wire.DiffOp
// describing what happened so the broker can broadcast it.
package figuremodel

import (
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/plotbroker/plotbroker/pkg/wire"
)

type entry struct {
	state       wire.FigureState
	seriesHash  [][32]byte // parallel to state.Series, last-applied data digest
}

// Model is the authoritative figure store. Zero value is not usable;
// construct with New.
type Model struct {
	mu sync.Mutex

	revision     uint64
	nextFigureID uint64

	figures map[uint64]*entry
	order   []uint64 // insertion order, for deterministic snapshot/listing

	knobs []wire.KnobState
}

func New() *Model {
	return &Model{nextFigureID: 1, figures: make(map[uint64]*entry)}
}

func (m *Model) bumpRevision() { m.revision++ }

// CreateFigure inserts a new figure with default width/height of zero
// treated as "unset" by callers; it always succeeds and returns the new
// figure id.
func (m *Model) CreateFigure(title string, width, height uint32) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextFigureID
	m.nextFigureID++
	m.figures[id] = &entry{state: wire.FigureState{
		FigureID: id, Title: title, Width: width, Height: height,
		GridRows: 1, GridCols: 1,
	}}
	m.order = append(m.order, id)
	m.bumpRevision()
	return id
}

// RemoveFigure deletes a figure by id. Reports whether it existed.
func (m *Model) RemoveFigure(figureID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.figures[figureID]
	if ok {
		delete(m.figures, figureID)
		m.order = removeUint64(m.order, figureID)
	}
	m.bumpRevision()
	return ok
}

func removeUint64(s []uint64, v uint64) []uint64 {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// SetGrid grows a figure's subplot grid; per spec, dimensions only ever
// grow, never shrink.
func (m *Model) SetGrid(figureID uint64, rows, cols int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.figures[figureID]
	if !ok {
		return
	}
	if rows > e.state.GridRows {
		e.state.GridRows = rows
	}
	if cols > e.state.GridCols {
		e.state.GridCols = cols
	}
}

// AddAxes appends an axes entry to a figure and returns its index plus
// the ADD_AXES diff op to broadcast.
func (m *Model) AddAxes(figureID uint64, xMin, xMax, yMin, yMax float32, is3D bool) (uint32, wire.DiffOp, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.figures[figureID]
	if !ok {
		return 0, wire.DiffOp{}, false
	}
	e.state.Axes = append(e.state.Axes, wire.AxisState{
		XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax, Is3D: is3D, GridVisible: true,
	})
	idx := uint32(len(e.state.Axes) - 1)
	m.bumpRevision()

	op := wire.DiffOp{Type: wire.OpAddAxes, FigureID: figureID, AxesIndex: idx, F1: xMin, F2: xMax, F3: yMin, F4: yMax, BoolVal: is3D}
	return idx, op, true
}

// SetAxisLimits updates x/y limits, bumping the revision regardless of
// whether the target figure/axes exists (the diff op is returned either
// way, matching the reference implementation's unconditional-bump
// behavior — callers ignore an op targeting an index that never lands).
func (m *Model) SetAxisLimits(figureID uint64, axesIndex uint32, xMin, xMax, yMin, yMax float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(axesIndex) < len(e.state.Axes) {
		ax := &e.state.Axes[axesIndex]
		ax.XMin, ax.XMax, ax.YMin, ax.YMax = xMin, xMax, yMin, yMax
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetAxisLimits, FigureID: figureID, AxesIndex: axesIndex, F1: xMin, F2: xMax, F3: yMin, F4: yMax}
}

func (m *Model) SetAxisZLimits(figureID uint64, axesIndex uint32, zMin, zMax float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(axesIndex) < len(e.state.Axes) {
		ax := &e.state.Axes[axesIndex]
		ax.ZMin, ax.ZMax = zMin, zMax
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetAxisZLimits, FigureID: figureID, AxesIndex: axesIndex, F1: zMin, F2: zMax}
}

func (m *Model) SetGridVisible(figureID uint64, axesIndex uint32, visible bool) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(axesIndex) < len(e.state.Axes) {
		e.state.Axes[axesIndex].GridVisible = visible
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetGridVisible, FigureID: figureID, AxesIndex: axesIndex, BoolVal: visible}
}

func (m *Model) SetAxisXLabel(figureID uint64, axesIndex uint32, label string) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(axesIndex) < len(e.state.Axes) {
		e.state.Axes[axesIndex].XLabel = label
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetAxisXLabel, FigureID: figureID, AxesIndex: axesIndex, StrVal: label}
}

func (m *Model) SetAxisYLabel(figureID uint64, axesIndex uint32, label string) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(axesIndex) < len(e.state.Axes) {
		e.state.Axes[axesIndex].YLabel = label
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetAxisYLabel, FigureID: figureID, AxesIndex: axesIndex, StrVal: label}
}

func (m *Model) SetAxisTitle(figureID uint64, axesIndex uint32, title string) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(axesIndex) < len(e.state.Axes) {
		e.state.Axes[axesIndex].Title = title
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetAxisTitle, FigureID: figureID, AxesIndex: axesIndex, StrVal: title}
}

// AddSeries appends a series to a figure's series list and returns its
// index. Used for the plain (non-broadcast) path; AddSeriesWithDiff is
// used when the broker needs the op to fan out.
func (m *Model) AddSeries(figureID uint64, name, seriesType string) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.figures[figureID]
	if !ok {
		return 0, false
	}
	e.state.Series = append(e.state.Series, defaultSeries(name, seriesType))
	e.seriesHash = append(e.seriesHash, [32]byte{})
	m.bumpRevision()
	return uint32(len(e.state.Series) - 1), true
}

func defaultSeries(name, seriesType string) wire.SeriesState {
	return wire.SeriesState{
		Name: name, Type: seriesType,
		ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		LineWidth: 2, MarkerSize: 6, Visible: true, Opacity: 1,
	}
}

// AddSeriesWithDiff appends a series and returns the ADD_SERIES diff op
// plus the new series index.
func (m *Model) AddSeriesWithDiff(figureID uint64, name, seriesType string, axesIndex uint32) (wire.DiffOp, uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.figures[figureID]
	if !ok {
		return wire.DiffOp{}, 0, false
	}
	e.state.Series = append(e.state.Series, defaultSeries(name, seriesType))
	e.seriesHash = append(e.seriesHash, [32]byte{})
	idx := uint32(len(e.state.Series) - 1)
	m.bumpRevision()

	return wire.DiffOp{Type: wire.OpAddSeries, FigureID: figureID, AxesIndex: axesIndex, SeriesIndex: idx, StrVal: seriesType}, idx, true
}

func (m *Model) SetSeriesColor(figureID uint64, seriesIndex uint32, r, g, b, a float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		s := &e.state.Series[seriesIndex]
		s.ColorR, s.ColorG, s.ColorB, s.ColorA = r, g, b, a
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetSeriesColor, FigureID: figureID, SeriesIndex: seriesIndex, F1: r, F2: g, F3: b, F4: a}
}

func (m *Model) SetSeriesVisible(figureID uint64, seriesIndex uint32, visible bool) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		e.state.Series[seriesIndex].Visible = visible
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetSeriesVisible, FigureID: figureID, SeriesIndex: seriesIndex, BoolVal: visible}
}

func (m *Model) SetLineWidth(figureID uint64, seriesIndex uint32, width float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		e.state.Series[seriesIndex].LineWidth = width
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetLineWidth, FigureID: figureID, SeriesIndex: seriesIndex, F1: width}
}

func (m *Model) SetMarkerSize(figureID uint64, seriesIndex uint32, size float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		e.state.Series[seriesIndex].MarkerSize = size
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetMarkerSize, FigureID: figureID, SeriesIndex: seriesIndex, F1: size}
}

func (m *Model) SetOpacity(figureID uint64, seriesIndex uint32, opacity float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		e.state.Series[seriesIndex].Opacity = opacity
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetOpacity, FigureID: figureID, SeriesIndex: seriesIndex, F1: opacity}
}

func (m *Model) SetSeriesLabel(figureID uint64, seriesIndex uint32, label string) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		e.state.Series[seriesIndex].Name = label
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetSeriesLabel, FigureID: figureID, SeriesIndex: seriesIndex, StrVal: label}
}

// RemoveSeries deletes a series from a figure's series list.
func (m *Model) RemoveSeries(figureID uint64, seriesIndex uint32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok && int(seriesIndex) < len(e.state.Series) {
		e.state.Series = append(e.state.Series[:seriesIndex], e.state.Series[seriesIndex+1:]...)
		e.seriesHash = append(e.seriesHash[:seriesIndex], e.seriesHash[seriesIndex+1:]...)
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpRemoveSeries, FigureID: figureID, SeriesIndex: seriesIndex}
}

// pointCount derives the point count reported in a series's snapshot
// state from its type and raw payload length: 2D series interleave x,y
// (divide by 2), 3D point series interleave x,y,z (divide by 3), and
// surface series report the grid cell count directly.
func pointCount(seriesType string, data []float32, nx, ny uint32) uint32 {
	switch seriesType {
	case wire.SeriesSurface:
		return nx * ny
	case wire.SeriesLine3D, wire.SeriesScatter3D:
		return uint32(len(data) / 3)
	default:
		return uint32(len(data) / 2)
	}
}

// SetSeriesData replaces a series's data outright. If the incoming data
// is byte-identical (by content hash) to what's already stored, the
// model skips the mutation and returns the prior diff op unchanged —
// see DESIGN.md for why this dedup exists and why it is not a security
// mechanism.
func (m *Model) SetSeriesData(figureID uint64, seriesIndex uint32, data []float32, nx, ny uint32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	op := wire.DiffOp{Type: wire.OpSetSeriesData, FigureID: figureID, SeriesIndex: seriesIndex, Data: data}

	e, ok := m.figures[figureID]
	if !ok || int(seriesIndex) >= len(e.state.Series) {
		m.bumpRevision()
		return op
	}

	digest := hashFloats(data)
	if e.seriesHash[seriesIndex] == digest {
		return op
	}

	s := &e.state.Series[seriesIndex]
	s.Data = data
	s.PointCount = pointCount(s.Type, data, nx, ny)
	if s.Type == wire.SeriesSurface {
		s.GridNX, s.GridNY = nx, ny
	}
	e.seriesHash[seriesIndex] = digest

	m.bumpRevision()
	return op
}

// AppendSeriesData appends to a series's existing data and returns a
// diff carrying the full updated payload (simpler than a partial-append
// op and avoids ordering issues on the receiving end, matching the
// reference implementation's own rationale). The same content-hash
// dedup as SetSeriesData applies to the resulting full payload.
func (m *Model) AppendSeriesData(figureID uint64, seriesIndex uint32, data []float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.figures[figureID]
	if !ok || int(seriesIndex) >= len(e.state.Series) {
		m.bumpRevision()
		return wire.DiffOp{Type: wire.OpSetSeriesData, FigureID: figureID, SeriesIndex: seriesIndex}
	}

	s := &e.state.Series[seriesIndex]
	merged := append(append([]float32{}, s.Data...), data...)
	digest := hashFloats(merged)
	if e.seriesHash[seriesIndex] == digest {
		return wire.DiffOp{Type: wire.OpSetSeriesData, FigureID: figureID, SeriesIndex: seriesIndex, Data: s.Data}
	}

	s.Data = merged
	s.PointCount = pointCount(s.Type, merged, s.GridNX, s.GridNY)
	e.seriesHash[seriesIndex] = digest

	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetSeriesData, FigureID: figureID, SeriesIndex: seriesIndex, Data: merged}
}

func hashFloats(data []float32) [32]byte {
	w := wire.NewPayloadWriter()
	w.PutFloatArray(0, data)
	return blake2b.Sum256(w.Bytes())
}

func (m *Model) SetFigureTitle(figureID uint64, title string) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.figures[figureID]; ok {
		e.state.Title = title
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetFigureTitle, FigureID: figureID, StrVal: title}
}

// LoadSnapshot wipes the current figure set and reinserts every figure
// from an incoming snapshot, preserving producer-assigned ids (or
// allocating fresh ones for zero ids) and bumping next-free-id above
// the largest id seen. Returns the ids of every figure now present.
func (m *Model) LoadSnapshot(snap wire.StateSnapshotPayload) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.figures = make(map[uint64]*entry)
	m.order = nil
	m.knobs = snap.Knobs

	ids := make([]uint64, 0, len(snap.Figures))
	for _, fig := range snap.Figures {
		id := fig.FigureID
		if id == wire.InvalidID {
			id = m.nextFigureID
			m.nextFigureID++
		} else if id >= m.nextFigureID {
			m.nextFigureID = id + 1
		}
		fig.FigureID = id
		e := &entry{state: fig, seriesHash: make([][32]byte, len(fig.Series))}
		for i, s := range fig.Series {
			e.seriesHash[i] = hashFloats(s.Data)
		}
		m.figures[id] = e
		m.order = append(m.order, id)
		ids = append(ids, id)
	}
	m.bumpRevision()
	return ids
}

// ApplyDiffOp replays a single op into the model (the renderer→broker
// direction, e.g. a knob change echoed back). Structural ops
// (ADD_FIGURE/REMOVE_FIGURE) are rejected here — those go through
// CreateFigure/RemoveFigure directly. Reports whether the op applied.
func (m *Model) ApplyDiffOp(op wire.DiffOp) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if op.Type == wire.OpSetKnobValue {
		for i := range m.knobs {
			if m.knobs[i].Name == op.StrVal {
				m.knobs[i].Value = op.F1
				m.bumpRevision()
				return true
			}
		}
		return false
	}

	e, ok := m.figures[op.FigureID]
	if !ok {
		return false
	}

	switch op.Type {
	case wire.OpSetAxisLimits:
		if int(op.AxesIndex) >= len(e.state.Axes) {
			return false
		}
		ax := &e.state.Axes[op.AxesIndex]
		ax.XMin, ax.XMax, ax.YMin, ax.YMax = op.F1, op.F2, op.F3, op.F4
	case wire.OpSetAxisZLimits:
		if int(op.AxesIndex) >= len(e.state.Axes) {
			return false
		}
		ax := &e.state.Axes[op.AxesIndex]
		ax.ZMin, ax.ZMax = op.F1, op.F2
	case wire.OpSetSeriesColor:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		s := &e.state.Series[op.SeriesIndex]
		s.ColorR, s.ColorG, s.ColorB, s.ColorA = op.F1, op.F2, op.F3, op.F4
	case wire.OpSetSeriesVisible:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		e.state.Series[op.SeriesIndex].Visible = op.BoolVal
	case wire.OpSetFigureTitle:
		e.state.Title = op.StrVal
	case wire.OpSetGridVisible:
		if int(op.AxesIndex) >= len(e.state.Axes) {
			return false
		}
		e.state.Axes[op.AxesIndex].GridVisible = op.BoolVal
	case wire.OpSetLineWidth:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		e.state.Series[op.SeriesIndex].LineWidth = op.F1
	case wire.OpSetMarkerSize:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		e.state.Series[op.SeriesIndex].MarkerSize = op.F1
	case wire.OpSetOpacity:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		e.state.Series[op.SeriesIndex].Opacity = op.F1
	case wire.OpSetSeriesData:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		s := &e.state.Series[op.SeriesIndex]
		s.Data = op.Data
		s.PointCount = pointCount(s.Type, op.Data, s.GridNX, s.GridNY)
		e.seriesHash[op.SeriesIndex] = hashFloats(op.Data)
	case wire.OpSetAxisXLabel:
		if int(op.AxesIndex) >= len(e.state.Axes) {
			return false
		}
		e.state.Axes[op.AxesIndex].XLabel = op.StrVal
	case wire.OpSetAxisYLabel:
		if int(op.AxesIndex) >= len(e.state.Axes) {
			return false
		}
		e.state.Axes[op.AxesIndex].YLabel = op.StrVal
	case wire.OpSetAxisTitle:
		if int(op.AxesIndex) >= len(e.state.Axes) {
			return false
		}
		e.state.Axes[op.AxesIndex].Title = op.StrVal
	case wire.OpSetSeriesLabel:
		if int(op.SeriesIndex) >= len(e.state.Series) {
			return false
		}
		e.state.Series[op.SeriesIndex].Name = op.StrVal
	case wire.OpAddFigure, wire.OpRemoveFigure:
		return false
	default:
		return false
	}

	m.bumpRevision()
	return true
}

func (m *Model) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

func (m *Model) FigureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.figures)
}

func (m *Model) AllFigureIDs() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint64, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Model) HasFigure(figureID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.figures[figureID]
	return ok
}

func (m *Model) GetAxisLimits(figureID uint64, axesIndex uint32) (xMin, xMax, yMin, yMax float32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.figures[figureID]
	if !found || int(axesIndex) >= len(e.state.Axes) {
		return 0, 0, 0, 0, false
	}
	ax := e.state.Axes[axesIndex]
	return ax.XMin, ax.XMax, ax.YMin, ax.YMax, true
}

// AxesCount reports how many axes a figure has, or 0/false if the
// figure doesn't exist.
func (m *Model) AxesCount(figureID uint64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.figures[figureID]
	if !ok {
		return 0, false
	}
	return len(e.state.Axes), true
}

// SeriesCount reports how many series a figure has, or 0/false if the
// figure doesn't exist.
func (m *Model) SeriesCount(figureID uint64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.figures[figureID]
	if !ok {
		return 0, false
	}
	return len(e.state.Series), true
}

// Snapshot emits every figure and knob.
func (m *Model) Snapshot() wire.StateSnapshotPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(m.order)
}

// SnapshotFiltered emits only the named figures (in the given order),
// skipping any id that no longer exists.
func (m *Model) SnapshotFiltered(figureIDs []uint64) wire.StateSnapshotPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(figureIDs)
}

func (m *Model) snapshotLocked(ids []uint64) wire.StateSnapshotPayload {
	snap := wire.StateSnapshotPayload{Revision: m.revision, SessionID: 1}
	for _, id := range ids {
		e, ok := m.figures[id]
		if !ok {
			continue
		}
		snap.Figures = append(snap.Figures, e.state)
	}
	snap.Knobs = append(snap.Knobs, m.knobs...)
	return snap
}

// SetKnobs replaces the knob set wholesale (used when a producer pushes
// a full snapshot that includes knob definitions).
func (m *Model) SetKnobs(knobs []wire.KnobState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.knobs = knobs
}

// SetKnobValue updates a single knob's value by name, returning the
// matching diff op. Unknown knob names still bump the revision and
// return the op (same unconditional-bump convention as every other
// setter here), leaving it to the caller to decide whether to
// broadcast an op that named nothing real.
func (m *Model) SetKnobValue(name string, value float32) wire.DiffOp {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.knobs {
		if m.knobs[i].Name == name {
			m.knobs[i].Value = value
			break
		}
	}
	m.bumpRevision()
	return wire.DiffOp{Type: wire.OpSetKnobValue, StrVal: name, F1: value}
}
