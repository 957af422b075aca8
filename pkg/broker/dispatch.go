package broker

import (
	"os"
	"time"

	"github.com/plotbroker/plotbroker/pkg/plog"
	"github.com/plotbroker/plotbroker/pkg/transport"
	"github.com/plotbroker/plotbroker/pkg/wire"
)

func processID() int { return os.Getpid() }

func (b *Broker) sendTo(conn *transport.Conn, msg wire.Message) {
	conn.QueueSend(msg)
	if err := conn.FlushSend(); err != nil {
		b.dropClient(conn.FD())
	}
}

func msgFor(typ uint16, windowID uint64, payload []byte) wire.Message {
	return wire.Message{Header: wire.Header{Type: typ, WindowID: windowID}, Payload: payload}
}

func cmdCloseWindow(windowID uint64, reason string) wire.Message {
	return msgFor(wire.TypeCmdCloseWindow, windowID, wire.EncodeCmdCloseWindow(wire.CmdCloseWindowPayload{WindowID: windowID, Reason: reason}))
}

// dispatch routes one decoded message to its handler based on the
// handshake/class state of the connection it arrived on.
func (b *Broker) dispatch(st *clientState, msg wire.Message) {
	if !st.handshakeDone {
		if msg.Header.Type != wire.TypeHello {
			b.dropClient(st.conn.FD())
			return
		}
		b.handleHello(st, msg)
		return
	}

	switch msg.Header.Type {
	case wire.TypeReqCreateWindow, wire.TypeReqCloseWindow, wire.TypeReqDetachFigure:
		b.handleRendererRequest(st, msg)
	case wire.TypeEvtInput, wire.TypeEvtWindow, wire.TypeEvtHeartbeat:
		b.handleRendererEvent(st, msg)
	case wire.TypeStateDiff:
		b.handleRendererDiff(st, msg)
	case wire.TypeStateSnapshot:
		b.handleProducerSnapshot(st, msg)
	default:
		b.handleProducerRequest(st, msg)
	}
}

// ─── Handshake ──────────────────────────────────────────────────────────

func (b *Broker) handleHello(st *clientState, msg wire.Message) {
	hello := wire.DecodeHello(msg.Payload)
	class := classifyClient(hello.ClientType, hello.AgentBuild)
	st.handshakeDone = true
	st.class = class

	var windowID uint64
	if class == classRenderer {
		windowID = b.claimOrCreateWindow(st.conn)
		st.windowID = windowID
		b.hb.Touch(windowID, time.Now())
		b.hadAgents = true
	}

	codec := wire.NegotiateCodec(supportedCodecs, wire.CompressionCodec(hello.Capabilities))
	st.conn.SetPeerCodec(codec)

	welcome := wire.WelcomePayload{
		SessionID:    fixedSessionID,
		WindowID:     windowID,
		ProcessID:    uint64(processID()),
		HeartbeatMs:  b.heartbeatMs(),
		Mode:         "multiproc",
		Capabilities: uint32(codec),
	}
	b.sendTo(st.conn, msgFor(wire.TypeWelcome, windowID, wire.EncodeWelcome(welcome)))

	if class == classRenderer {
		b.assignAndResync(windowID)
	}
}

// claimOrCreateWindow binds conn to the first pending window slot
// (one whose conn is still nil), or creates a fresh one if none exists.
func (b *Broker) claimOrCreateWindow(conn *transport.Conn) uint64 {
	for _, w := range b.windows {
		if w.pending() {
			w.conn = conn
			w.alive = true
			return w.windowID
		}
	}
	id := b.newWindowSlot()
	b.windows[id].conn = conn
	b.windows[id].alive = true
	return id
}

func (b *Broker) newWindowSlot() uint64 {
	id := b.nextWindowID
	b.nextWindowID++
	b.windows[id] = &windowEntry{windowID: id}
	return id
}

// ─── Assignment + resync tail (shared by spawn and attach paths) ────────

func (b *Broker) assignAndResync(windowID uint64) {
	w, ok := b.windows[windowID]
	if !ok || w.conn == nil {
		return
	}
	assign := wire.CmdAssignFiguresPayload{WindowID: windowID, FigureIDs: append([]uint64{}, w.figures...), ActiveFigureID: w.activeFigure}
	b.sendTo(w.conn, msgFor(wire.TypeCmdAssignFigures, windowID, wire.EncodeCmdAssignFigures(assign)))

	snap := b.model.SnapshotFiltered(w.figures)
	b.sendTo(w.conn, msgFor(wire.TypeStateSnapshot, windowID, wire.EncodeStateSnapshot(snap)))
}

// ─── Producer bulk push ─────────────────────────────────────────────────

func (b *Broker) handleProducerSnapshot(st *clientState, msg wire.Message) {
	snap := wire.DecodeStateSnapshot(msg.Payload)
	ids := b.model.LoadSnapshot(snap)

	groups := make(map[uint32][]uint64)
	solo := []uint64{}
	byID := make(map[uint64]wire.FigureState, len(snap.Figures))
	for i, f := range snap.Figures {
		byID[ids[i]] = f
	}
	for _, id := range ids {
		f := byID[id]
		if f.WindowGroup == 0 {
			solo = append(solo, id)
		} else {
			groups[f.WindowGroup] = append(groups[f.WindowGroup], id)
		}
	}

	for _, figID := range solo {
		b.spawnGroupWindow([]uint64{figID})
	}
	for _, figs := range groups {
		b.spawnGroupWindow(figs)
	}
}

func (b *Broker) spawnGroupWindow(figureIDs []uint64) {
	windowID := b.newWindowSlot()
	w := b.windows[windowID]
	w.figures = figureIDs
	if len(figureIDs) > 0 {
		w.activeFigure = figureIDs[0]
	}
	for _, id := range figureIDs {
		b.figureWindow[id] = windowID
	}

	pid, err := b.sup.Spawn(b.cfg.SocketPath, windowID)
	if err != nil {
		delete(b.windows, windowID)
		for _, id := range figureIDs {
			delete(b.figureWindow, id)
		}
		return
	}
	w.pid = pid
}

// ─── Producer incremental requests ──────────────────────────────────────

func (b *Broker) handleProducerRequest(st *clientState, msg wire.Message) {
	reqID := msg.Header.RequestID

	switch msg.Header.Type {
	case wire.TypeReqCreateFigure:
		p := wire.DecodeReqCreateFigure(msg.Payload)
		id := b.model.CreateFigure(p.Title, p.Width, p.Height)
		b.sendTo(st.conn, msgFor(wire.TypeRespFigureCreated, 0, wire.EncodeRespFigureCreated(wire.RespFigureCreatedPayload{RequestID: reqID, FigureID: id})))

	case wire.TypeReqDestroyFigure:
		p := wire.DecodeReqDestroyFigure(msg.Payload)
		if !b.model.HasFigure(p.FigureID) {
			b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
			return
		}
		b.model.RemoveFigure(p.FigureID)
		b.unassignFigure(p.FigureID)
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))

	case wire.TypeReqCreateAxes:
		p := wire.DecodeReqCreateAxes(msg.Payload)
		base := b.model.Revision()
		idx, op, ok := b.model.AddAxes(p.FigureID, 0, 1, 0, 1, p.Is3D)
		if !ok {
			b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
			return
		}
		b.sendTo(st.conn, msgFor(wire.TypeRespAxesCreated, 0, wire.EncodeRespAxesCreated(wire.RespAxesCreatedPayload{RequestID: reqID, AxesIndex: idx})))
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.TypeReqAddSeries:
		p := wire.DecodeReqAddSeries(msg.Payload)
		base := b.model.Revision()
		op, idx, ok := b.model.AddSeriesWithDiff(p.FigureID, p.Label, p.SeriesType, p.AxesIndex)
		if !ok {
			b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
			return
		}
		b.sendTo(st.conn, msgFor(wire.TypeRespSeriesAdded, 0, wire.EncodeRespSeriesAdded(wire.RespSeriesAddedPayload{RequestID: reqID, SeriesIndex: idx})))
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.TypeReqSetData:
		p := wire.DecodeReqSetData(msg.Payload)
		if !b.model.HasFigure(p.FigureID) {
			b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
			return
		}
		base := b.model.Revision()
		op := b.model.SetSeriesData(p.FigureID, p.SeriesIndex, p.Data, p.GridNX, p.GridNY)
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.TypeReqAppendData:
		p := wire.DecodeReqAppendData(msg.Payload)
		if !b.model.HasFigure(p.FigureID) {
			b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
			return
		}
		base := b.model.Revision()
		op := b.model.AppendSeriesData(p.FigureID, p.SeriesIndex, p.Data)
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.TypeReqRemoveSeries:
		p := wire.DecodeReqRemoveSeries(msg.Payload)
		if !b.model.HasFigure(p.FigureID) {
			b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
			return
		}
		base := b.model.Revision()
		op := b.model.RemoveSeries(p.FigureID, p.SeriesIndex)
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.TypeReqUpdateProperty:
		p := wire.DecodeReqUpdateProperty(msg.Payload)
		base := b.model.Revision()
		op, ok := b.applyProperty(p)
		if !ok {
			b.replyErr(st, reqID, wire.ErrCodeBadPayload, "unknown property: "+p.Property)
			return
		}
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.TypeReqUpdateBatch:
		p := wire.DecodeReqUpdateBatch(msg.Payload)
		base := b.model.Revision()
		var ops []wire.DiffOp
		for _, u := range p.Updates {
			if op, ok := b.applyProperty(u); ok {
				ops = append(ops, op)
			}
		}
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
		b.broadcastDiff(base, b.model.Revision(), ops...)

	case wire.TypeReqShow:
		b.handleReqShow(st, reqID, wire.DecodeReqShow(msg.Payload))

	case wire.TypeReqCloseFigure:
		p := wire.DecodeReqCloseFigure(msg.Payload)
		if windowID, ok := b.figureWindow[p.FigureID]; ok {
			if w, found := b.windows[windowID]; found && w.conn != nil {
				b.sendTo(w.conn, msgFor(wire.TypeCmdRemoveFigure, windowID, wire.EncodeCmdRemoveFigure(wire.CmdRemoveFigurePayload{WindowID: windowID, FigureID: p.FigureID})))
			}
		}
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))

	case wire.TypeReqGetSnapshot:
		p := wire.DecodeReqGetSnapshot(msg.Payload)
		var snap wire.StateSnapshotPayload
		if len(p.FigureIDs) == 0 {
			snap = b.model.Snapshot()
		} else {
			snap = b.model.SnapshotFiltered(p.FigureIDs)
		}
		b.sendTo(st.conn, msgFor(wire.TypeRespSnapshot, 0, wire.EncodeRespSnapshot(wire.RespSnapshotPayload{RequestID: reqID, Snapshot: snap})))

	case wire.TypeReqListFigures:
		b.sendTo(st.conn, msgFor(wire.TypeRespFigureList, 0, wire.EncodeRespFigureList(wire.RespFigureListPayload{RequestID: reqID, FigureIDs: b.model.AllFigureIDs()})))

	case wire.TypeReqReconnect:
		p := wire.DecodeReqReconnect(msg.Payload)
		if p.SessionID != 0 && p.SessionID != fixedSessionID {
			b.replyErr(st, reqID, wire.ErrCodeSessionMismatch, "session id mismatch")
			return
		}
		// Always substitute a fresh snapshot rather than replay an
		// unacked diff log; see DESIGN.md for why.
		snap := b.model.Snapshot()
		b.sendTo(st.conn, msgFor(wire.TypeRespSnapshot, 0, wire.EncodeRespSnapshot(wire.RespSnapshotPayload{RequestID: reqID, Snapshot: snap})))

	case wire.TypeReqDisconnect:
		b.dropClient(st.conn.FD())

	default:
		b.replyErr(st, reqID, wire.ErrCodeBadPayload, "unrecognized request type")
	}
}

func (b *Broker) replyErr(st *clientState, reqID uint64, code uint32, message string) {
	b.sendTo(st.conn, msgFor(wire.TypeRespErr, 0, wire.EncodeRespErr(wire.RespErrPayload{RequestID: reqID, Code: code, Message: message})))
}

// applyProperty dispatches a REQ_UPDATE_PROPERTY (or one entry of a
// REQ_UPDATE_BATCH) to the matching model setter. Property names are
// fixed by the protocol; legend/legend_visible are accepted but cause
// no model change (no legend concept exists in this model).
func (b *Broker) applyProperty(p wire.ReqUpdatePropertyPayload) (wire.DiffOp, bool) {
	switch p.Property {
	case "color":
		return b.model.SetSeriesColor(p.FigureID, p.SeriesIndex, p.F1, p.F2, p.F3, p.F4), true
	case "xlim":
		_, _, yMin, yMax, ok := b.model.GetAxisLimits(p.FigureID, p.AxesIndex)
		if !ok {
			yMin, yMax = 0, 1
		}
		return b.model.SetAxisLimits(p.FigureID, p.AxesIndex, p.F1, p.F2, yMin, yMax), true
	case "ylim":
		xMin, xMax, _, _, _ := b.model.GetAxisLimits(p.FigureID, p.AxesIndex)
		return b.model.SetAxisLimits(p.FigureID, p.AxesIndex, xMin, xMax, p.F1, p.F2), true
	case "zlim":
		return b.model.SetAxisZLimits(p.FigureID, p.AxesIndex, p.F1, p.F2), true
	case "title":
		return b.model.SetFigureTitle(p.FigureID, p.StrVal), true
	case "grid":
		return b.model.SetGridVisible(p.FigureID, p.AxesIndex, p.BoolVal), true
	case "visible":
		return b.model.SetSeriesVisible(p.FigureID, p.SeriesIndex, p.BoolVal), true
	case "line_width":
		return b.model.SetLineWidth(p.FigureID, p.SeriesIndex, p.F1), true
	case "marker_size":
		return b.model.SetMarkerSize(p.FigureID, p.SeriesIndex, p.F1), true
	case "opacity":
		return b.model.SetOpacity(p.FigureID, p.SeriesIndex, p.F1), true
	case "xlabel":
		return b.model.SetAxisXLabel(p.FigureID, p.AxesIndex, p.StrVal), true
	case "ylabel":
		return b.model.SetAxisYLabel(p.FigureID, p.AxesIndex, p.StrVal), true
	case "axes_title":
		return b.model.SetAxisTitle(p.FigureID, p.AxesIndex, p.StrVal), true
	case "label":
		return b.model.SetSeriesLabel(p.FigureID, p.SeriesIndex, p.StrVal), true
	case "legend", "legend_visible":
		return wire.DiffOp{}, true
	default:
		return wire.DiffOp{}, false
	}
}

func (b *Broker) handleReqShow(st *clientState, reqID uint64, p wire.ReqShowPayload) {
	if !b.model.HasFigure(p.FigureID) {
		b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown figure")
		return
	}

	if p.WindowID == 0 {
		windowID := b.newWindowSlot()
		w := b.windows[windowID]
		w.figures = []uint64{p.FigureID}
		w.activeFigure = p.FigureID
		b.figureWindow[p.FigureID] = windowID

		pid, err := b.sup.Spawn(b.cfg.SocketPath, windowID)
		if err != nil {
			delete(b.windows, windowID)
			delete(b.figureWindow, p.FigureID)
			b.replyErr(st, reqID, wire.ErrCodeSpawnFailure, "failed to spawn renderer")
			return
		}
		w.pid = pid
		b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
		return
	}

	w, ok := b.windows[p.WindowID]
	if !ok {
		b.replyErr(st, reqID, wire.ErrCodeNotFound, "unknown window")
		return
	}
	w.figures = append(w.figures, p.FigureID)
	w.activeFigure = p.FigureID
	b.figureWindow[p.FigureID] = p.WindowID
	b.sendTo(st.conn, msgFor(wire.TypeRespOk, 0, wire.EncodeRespOk(wire.RespOkPayload{RequestID: reqID})))
	b.assignAndResync(p.WindowID)
}

// ─── Renderer-originated requests ────────────────────────────────────────

func (b *Broker) handleRendererRequest(st *clientState, msg wire.Message) {
	switch msg.Header.Type {
	case wire.TypeReqCreateWindow:
		windowID := b.newWindowSlot()
		pid, err := b.sup.Spawn(b.cfg.SocketPath, windowID)
		if err != nil {
			delete(b.windows, windowID)
			return
		}
		b.windows[windowID].pid = pid

	case wire.TypeReqCloseWindow:
		p := wire.DecodeReqCloseWindow(msg.Payload)
		b.removeWindow(p.WindowID)

	case wire.TypeReqDetachFigure:
		p := wire.DecodeReqDetachFigure(msg.Payload)
		b.detachFigure(p)
	}
}

func (b *Broker) detachFigure(p wire.ReqDetachFigurePayload) {
	src, ok := b.windows[p.SourceWindowID]
	if !ok {
		return
	}
	src.removeFigure(p.FigureID)
	if src.conn != nil {
		b.sendTo(src.conn, msgFor(wire.TypeCmdRemoveFigure, p.SourceWindowID, wire.EncodeCmdRemoveFigure(wire.CmdRemoveFigurePayload{WindowID: p.SourceWindowID, FigureID: p.FigureID})))
	}

	newWindowID := b.newWindowSlot()
	w := b.windows[newWindowID]
	w.figures = []uint64{p.FigureID}
	w.activeFigure = p.FigureID
	b.figureWindow[p.FigureID] = newWindowID

	pid, err := b.sup.Spawn(b.cfg.SocketPath, newWindowID)
	if err != nil {
		delete(b.windows, newWindowID)
		return
	}
	w.pid = pid
}

func (b *Broker) handleRendererEvent(st *clientState, msg wire.Message) {
	switch msg.Header.Type {
	case wire.TypeEvtHeartbeat:
		p := wire.DecodeEvtHeartbeat(msg.Payload)
		windowID := p.WindowID
		if windowID == 0 {
			windowID = st.windowID
		}
		if w, ok := b.windows[windowID]; ok {
			w.lastHeartbeat = time.Now()
			b.hb.Touch(windowID, w.lastHeartbeat)
		}

	case wire.TypeEvtWindow:
		p := wire.DecodeEvtWindow(msg.Payload)
		b.removeWindowAndNotify(p.WindowID, p.Reason)

	case wire.TypeEvtInput:
		b.handleInput(wire.DecodeEvtInput(msg.Payload))
	}
}

const (
	scrollZoomFactorPerUnit = 0.1
	scrollZoomMin           = 0.1
	scrollZoomMax           = 10.0
	keyLowerG               = 'g'
	keyUpperG               = 'G'
)

// handleInput interprets a raw renderer input event per the fixed
// scroll-zoom and grid-toggle rules; all other input types are
// reserved and ignored.
func (b *Broker) handleInput(p wire.EvtInputPayload) {
	switch p.InputType {
	case wire.InputScroll:
		xMin, xMax, yMin, yMax, ok := b.model.GetAxisLimits(p.FigureID, p.AxesIndex)
		if !ok {
			return
		}
		factor := float32(1 - scrollZoomFactorPerUnit*p.Y)
		if factor < scrollZoomMin {
			factor = scrollZoomMin
		}
		if factor > scrollZoomMax {
			factor = scrollZoomMax
		}
		nxMin, nxMax := zoomAround(xMin, xMax, factor)
		nyMin, nyMax := zoomAround(yMin, yMax, factor)

		base := b.model.Revision()
		op := b.model.SetAxisLimits(p.FigureID, p.AxesIndex, nxMin, nxMax, nyMin, nyMax)
		b.broadcastDiff(base, b.model.Revision(), op)

	case wire.InputKeyPress:
		if p.Key == keyLowerG || p.Key == keyUpperG {
			if !b.model.HasFigure(p.FigureID) {
				return
			}
			base := b.model.Revision()
			vis := b.currentGridVisible(p.FigureID, p.AxesIndex)
			op := b.model.SetGridVisible(p.FigureID, p.AxesIndex, !vis)
			b.broadcastDiff(base, b.model.Revision(), op)
		}
	}
}

func (b *Broker) currentGridVisible(figureID uint64, axesIndex uint32) bool {
	snap := b.model.SnapshotFiltered([]uint64{figureID})
	if len(snap.Figures) == 0 || int(axesIndex) >= len(snap.Figures[0].Axes) {
		return true
	}
	return snap.Figures[0].Axes[axesIndex].GridVisible
}

func zoomAround(lo, hi, factor float32) (float32, float32) {
	center := (lo + hi) / 2
	halfSpan := (hi - lo) / 2 * factor
	return center - halfSpan, center + halfSpan
}

// handleRendererDiff applies a renderer-originated STATE_DIFF (e.g. a
// knob changed through its UI) to the model and forwards it to
// producers only, never back out to other renderers.
func (b *Broker) handleRendererDiff(st *clientState, msg wire.Message) {
	diff := wire.DecodeStateDiff(msg.Payload)
	var applied []wire.DiffOp
	for _, op := range diff.Ops {
		if b.model.ApplyDiffOp(op) {
			applied = append(applied, op)
		}
	}
	if len(applied) == 0 {
		return
	}
	out := wire.StateDiffPayload{BaseRevision: diff.BaseRevision, NewRevision: b.model.Revision(), Ops: applied}
	payload := wire.EncodeStateDiff(out)
	for _, cs := range b.clients {
		if isProducerLike(cs.class) {
			b.sendTo(cs.conn, msgFor(wire.TypeStateDiff, 0, payload))
		}
	}
}

// ─── Diff fanout + session-graph maintenance ─────────────────────────────

func (b *Broker) broadcastDiff(base, newRev uint64, ops ...wire.DiffOp) {
	var real []wire.DiffOp
	for _, op := range ops {
		if op.Type != 0 {
			real = append(real, op)
		}
	}
	if len(real) == 0 {
		return
	}
	payload := wire.EncodeStateDiff(wire.StateDiffPayload{BaseRevision: base, NewRevision: newRev, Ops: real})
	for _, w := range b.windows {
		if w.conn != nil {
			b.sendTo(w.conn, msgFor(wire.TypeStateDiff, w.windowID, payload))
		}
	}
}

func (b *Broker) unassignFigure(figureID uint64) {
	if windowID, ok := b.figureWindow[figureID]; ok {
		if w, found := b.windows[windowID]; found {
			w.removeFigure(figureID)
		}
		delete(b.figureWindow, figureID)
	}
}

// removeWindow tears down a window entry, redistributing its figures to
// the first remaining window (if any) and resyncing it, without telling
// producers why — used for plain disconnects, read failures, stale-agent
// timeouts, and REQ_CLOSE_WINDOW, none of which emit EVT_WINDOW_CLOSED.
func (b *Broker) removeWindow(windowID uint64) {
	orphans := b.teardownWindow(windowID)
	b.redistribute(orphans)
}

// removeWindowAndNotify is the same teardown, but additionally emits
// EVT_WINDOW_CLOSED (carrying reason) to every producer for each
// orphaned figure. This is reached only from the renderer-originated
// EVT_WINDOW path — the one case the protocol actually defines that
// notification for.
func (b *Broker) removeWindowAndNotify(windowID uint64, reason string) {
	orphans := b.teardownWindow(windowID)
	for _, id := range orphans {
		b.notifyProducersFigureWindowClosed(id, windowID, reason)
	}
	b.redistribute(orphans)
}

// teardownWindow removes windowID from the session graph and returns
// the figures it was holding, for the caller to notify (or not) and
// redistribute.
func (b *Broker) teardownWindow(windowID uint64) []uint64 {
	w, ok := b.windows[windowID]
	if !ok {
		return nil
	}
	delete(b.windows, windowID)
	b.hb.Remove(windowID)
	if w.conn != nil {
		_ = w.conn.Close()
		for fd, st := range b.clients {
			if st.windowID == windowID {
				delete(b.clients, fd)
			}
		}
	}
	return w.figures
}

// redistribute reassigns orphaned figures to the first remaining window
// (if any) and resyncs it.
func (b *Broker) redistribute(orphans []uint64) {
	var target *windowEntry
	for _, candidate := range b.windows {
		target = candidate
		break
	}
	if target == nil || len(orphans) == 0 {
		return
	}
	target.figures = append(target.figures, orphans...)
	if target.activeFigure == 0 && len(target.figures) > 0 {
		target.activeFigure = target.figures[0]
	}
	for _, id := range orphans {
		b.figureWindow[id] = target.windowID
	}
	b.assignAndResync(target.windowID)
}

func (b *Broker) notifyProducersFigureWindowClosed(figureID, windowID uint64, reason string) {
	payload := wire.EncodeEvtWindowClosed(wire.EvtWindowClosedPayload{FigureID: figureID, WindowID: windowID, Reason: reason})
	for _, cs := range b.clients {
		if isProducerLike(cs.class) {
			b.sendTo(cs.conn, msgFor(wire.TypeEvtWindowClosed, 0, payload))
		}
	}
}

func (b *Broker) checkStaleAgents(now time.Time) {
	cutoff := now.Add(-3 * b.cfg.HeartbeatInterval)
	for _, windowID := range b.hb.StaleBefore(cutoff) {
		b.log.Log(plog.LogLevelWarn, "stale renderer, culling", "window_id", windowID)
		b.removeWindow(windowID)
	}
}
