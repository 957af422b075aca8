package wire

// This file defines the typed payload for every message in the protocol
// and its Encode/Decode pair. Every Decode* tolerates entries in any
// order and unknown tags (forward compatibility); absent entries keep
// the default the Decode* function presets, which is the zero value of
// the field unless that function sets another one first.

// ─── Handshake ────────────────────────────────────────────────────────────

type HelloPayload struct {
	ProtocolMajor uint16
	ProtocolMinor uint16
	AgentBuild    string
	Capabilities  uint32
	ClientType    string
}

func EncodeHello(p HelloPayload) []byte {
	w := NewPayloadWriter()
	w.PutU16(tagProtocolMajor, p.ProtocolMajor)
	w.PutU16(tagProtocolMinor, p.ProtocolMinor)
	w.PutString(tagAgentBuild, p.AgentBuild)
	w.PutU32(tagCapabilities, p.Capabilities)
	w.PutString(tagClientType, p.ClientType)
	return w.Bytes()
}

func DecodeHello(buf []byte) HelloPayload {
	p := HelloPayload{ProtocolMajor: ProtocolMajor, ProtocolMinor: ProtocolMinor}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagProtocolMajor:
			p.ProtocolMajor = r.U16()
		case tagProtocolMinor:
			p.ProtocolMinor = r.U16()
		case tagAgentBuild:
			p.AgentBuild = r.String()
		case tagCapabilities:
			p.Capabilities = r.U32()
		case tagClientType:
			p.ClientType = r.String()
		}
	}
	return p
}

type WelcomePayload struct {
	SessionID   uint64
	WindowID    uint64
	ProcessID   uint64
	HeartbeatMs uint32
	Mode        string

	// Capabilities carries the broker's negotiated CompressionCodec
	// (see NegotiateCodec): the single codec, if any, that both sides'
	// HelloPayload.Capabilities/WelcomePayload.Capabilities bitmasks
	// have in common. The client must compress/decompress large
	// payloads with exactly this codec from here on.
	Capabilities uint32
}

func EncodeWelcome(p WelcomePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagSessionID, p.SessionID)
	w.PutU64(tagWindowID, p.WindowID)
	w.PutU64(tagProcessID, p.ProcessID)
	w.PutU32(tagHeartbeatMs, p.HeartbeatMs)
	w.PutString(tagMode, p.Mode)
	w.PutU32(tagCapabilities, p.Capabilities)
	return w.Bytes()
}

func DecodeWelcome(buf []byte) WelcomePayload {
	var p WelcomePayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagSessionID:
			p.SessionID = r.U64()
		case tagWindowID:
			p.WindowID = r.U64()
		case tagProcessID:
			p.ProcessID = r.U64()
		case tagHeartbeatMs:
			p.HeartbeatMs = r.U32()
		case tagMode:
			p.Mode = r.String()
		case tagCapabilities:
			p.Capabilities = r.U32()
		}
	}
	return p
}

// ─── Generic responses ────────────────────────────────────────────────────

type RespOkPayload struct {
	RequestID uint64
}

func EncodeRespOk(p RespOkPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	return w.Bytes()
}

func DecodeRespOk(buf []byte) RespOkPayload {
	var p RespOkPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagRequestID {
			p.RequestID = r.U64()
		}
	}
	return p
}

type RespErrPayload struct {
	RequestID uint64
	Code      uint32
	Message   string
}

// Protocol error codes, fixed by spec.
const (
	ErrCodeBadPayload     = 400
	ErrCodeNotFound       = 404
	ErrCodeSessionMismatch = 409
	ErrCodeSpawnFailure   = 500
)

func EncodeRespErr(p RespErrPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	w.PutU32(tagErrorCode, p.Code)
	w.PutString(tagErrorMessage, p.Message)
	return w.Bytes()
}

func DecodeRespErr(buf []byte) RespErrPayload {
	var p RespErrPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRequestID:
			p.RequestID = r.U64()
		case tagErrorCode:
			p.Code = r.U32()
		case tagErrorMessage:
			p.Message = r.String()
		}
	}
	return p
}

// ─── Renderer -> broker control ───────────────────────────────────────────

type ReqCreateWindowPayload struct {
	TemplateWindowID uint64
}

func EncodeReqCreateWindow(p ReqCreateWindowPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagTemplateWin, p.TemplateWindowID)
	return w.Bytes()
}

func DecodeReqCreateWindow(buf []byte) ReqCreateWindowPayload {
	var p ReqCreateWindowPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagTemplateWin {
			p.TemplateWindowID = r.U64()
		}
	}
	return p
}

type ReqCloseWindowPayload struct {
	WindowID uint64
	Reason   string
}

func EncodeReqCloseWindow(p ReqCloseWindowPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutString(tagReason, p.Reason)
	return w.Bytes()
}

func DecodeReqCloseWindow(buf []byte) ReqCloseWindowPayload {
	var p ReqCloseWindowPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagReason:
			p.Reason = r.String()
		}
	}
	return p
}

type ReqDetachFigurePayload struct {
	SourceWindowID uint64
	FigureID       uint64
	Width, Height  uint32
	ScreenX        int32
	ScreenY        int32
}

func EncodeReqDetachFigure(p ReqDetachFigurePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagSourceWindow, p.SourceWindowID)
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagWidth, p.Width)
	w.PutU32(tagHeight, p.Height)
	w.PutU32(tagScreenX, uint32(p.ScreenX))
	w.PutU32(tagScreenY, uint32(p.ScreenY))
	return w.Bytes()
}

func DecodeReqDetachFigure(buf []byte) ReqDetachFigurePayload {
	p := ReqDetachFigurePayload{Width: 800, Height: 600}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagSourceWindow:
			p.SourceWindowID = r.U64()
		case tagFigureID:
			p.FigureID = r.U64()
		case tagWidth:
			p.Width = r.U32()
		case tagHeight:
			p.Height = r.U32()
		case tagScreenX:
			p.ScreenX = int32(r.U32())
		case tagScreenY:
			p.ScreenY = int32(r.U32())
		}
	}
	return p
}

// ─── Broker -> renderer control ───────────────────────────────────────────

type CmdAssignFiguresPayload struct {
	WindowID       uint64
	FigureIDs      []uint64
	ActiveFigureID uint64
}

func EncodeCmdAssignFigures(p CmdAssignFiguresPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutU64Array(tagFigureIDs, p.FigureIDs)
	w.PutU64(tagActiveFigure, p.ActiveFigureID)
	return w.Bytes()
}

func DecodeCmdAssignFigures(buf []byte) CmdAssignFiguresPayload {
	var p CmdAssignFiguresPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagFigureIDs:
			p.FigureIDs = r.U64Array()
		case tagActiveFigure:
			p.ActiveFigureID = r.U64()
		}
	}
	return p
}

type CmdRemoveFigurePayload struct {
	WindowID uint64
	FigureID uint64
}

func EncodeCmdRemoveFigure(p CmdRemoveFigurePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutU64(tagFigureID, p.FigureID)
	return w.Bytes()
}

func DecodeCmdRemoveFigure(buf []byte) CmdRemoveFigurePayload {
	var p CmdRemoveFigurePayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagFigureID:
			p.FigureID = r.U64()
		}
	}
	return p
}

type CmdSetActivePayload struct {
	WindowID uint64
	FigureID uint64
}

func EncodeCmdSetActive(p CmdSetActivePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutU64(tagFigureID, p.FigureID)
	return w.Bytes()
}

func DecodeCmdSetActive(buf []byte) CmdSetActivePayload {
	var p CmdSetActivePayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagFigureID:
			p.FigureID = r.U64()
		}
	}
	return p
}

type CmdCloseWindowPayload struct {
	WindowID uint64
	Reason   string
}

func EncodeCmdCloseWindow(p CmdCloseWindowPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutString(tagReason, p.Reason)
	return w.Bytes()
}

func DecodeCmdCloseWindow(buf []byte) CmdCloseWindowPayload {
	var p CmdCloseWindowPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagReason:
			p.Reason = r.String()
		}
	}
	return p
}

// ─── State sync composite entities ───────────────────────────────────────

type AxisState struct {
	XMin, XMax float32
	YMin, YMax float32
	ZMin, ZMax float32
	GridVisible bool
	Is3D        bool
	XLabel      string
	YLabel      string
	Title       string
}

func encodeAxisState(a AxisState) []byte {
	w := NewPayloadWriter()
	w.PutF32(tagXMin, a.XMin)
	w.PutF32(tagXMax, a.XMax)
	w.PutF32(tagYMin, a.YMin)
	w.PutF32(tagYMax, a.YMax)
	w.PutF32(tagAxisZMin, a.ZMin)
	w.PutF32(tagAxisZMax, a.ZMax)
	w.PutBool(tagGridVisible, a.GridVisible)
	w.PutBool(tagIs3D, a.Is3D)
	w.PutString(tagXLabel, a.XLabel)
	w.PutString(tagYLabel, a.YLabel)
	w.PutString(tagTitle, a.Title)
	return w.Bytes()
}

func decodeAxisState(buf []byte) AxisState {
	a := AxisState{XMax: 1, YMax: 1, ZMax: 1, GridVisible: true}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagXMin:
			a.XMin = r.F32()
		case tagXMax:
			a.XMax = r.F32()
		case tagYMin:
			a.YMin = r.F32()
		case tagYMax:
			a.YMax = r.F32()
		case tagAxisZMin:
			a.ZMin = r.F32()
		case tagAxisZMax:
			a.ZMax = r.F32()
		case tagGridVisible:
			a.GridVisible = r.Bool()
		case tagIs3D:
			a.Is3D = r.Bool()
		case tagXLabel:
			a.XLabel = r.String()
		case tagYLabel:
			a.YLabel = r.String()
		case tagTitle:
			a.Title = r.String()
		}
	}
	return a
}

type SeriesState struct {
	Name        string
	Type        string
	ColorR      float32
	ColorG      float32
	ColorB      float32
	ColorA      float32
	LineWidth   float32
	MarkerSize  float32
	Visible     bool
	Opacity     float32
	PointCount  uint32
	AxesIndex   uint32
	Data        []float32
	GridNX      uint32 // only meaningful when Type == SeriesSurface
	GridNY      uint32
}

func encodeSeriesState(s SeriesState) []byte {
	w := NewPayloadWriter()
	w.PutString(tagSeriesName, s.Name)
	w.PutString(tagSeriesType, s.Type)
	w.PutF32(tagColorR, s.ColorR)
	w.PutF32(tagColorG, s.ColorG)
	w.PutF32(tagColorB, s.ColorB)
	w.PutF32(tagColorA, s.ColorA)
	w.PutF32(tagLineWidth, s.LineWidth)
	w.PutF32(tagMarkerSize, s.MarkerSize)
	w.PutBool(tagVisible, s.Visible)
	w.PutF32(tagOpacity, s.Opacity)
	w.PutU32(tagPointCount, s.PointCount)
	w.PutU32(tagAxesIndex, s.AxesIndex)
	w.PutFloatArray(tagSeriesData, s.Data)
	if s.Type == SeriesSurface {
		w.PutU32(tagGridNX, s.GridNX)
		w.PutU32(tagGridNY, s.GridNY)
	}
	return w.Bytes()
}

func decodeSeriesState(buf []byte) SeriesState {
	s := SeriesState{ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1, LineWidth: 2, MarkerSize: 6, Visible: true, Opacity: 1}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagSeriesName:
			s.Name = r.String()
		case tagSeriesType:
			s.Type = r.String()
		case tagColorR:
			s.ColorR = r.F32()
		case tagColorG:
			s.ColorG = r.F32()
		case tagColorB:
			s.ColorB = r.F32()
		case tagColorA:
			s.ColorA = r.F32()
		case tagLineWidth:
			s.LineWidth = r.F32()
		case tagMarkerSize:
			s.MarkerSize = r.F32()
		case tagVisible:
			s.Visible = r.Bool()
		case tagOpacity:
			s.Opacity = r.F32()
		case tagPointCount:
			s.PointCount = r.U32()
		case tagAxesIndex:
			s.AxesIndex = r.U32()
		case tagSeriesData:
			s.Data = r.FloatArray()
		case tagGridNX:
			s.GridNX = r.U32()
		case tagGridNY:
			s.GridNY = r.U32()
		}
	}
	return s
}

type FigureState struct {
	FigureID    uint64
	Title       string
	Width       uint32
	Height      uint32
	GridRows    int32
	GridCols    int32
	WindowGroup uint32
	Axes        []AxisState
	Series      []SeriesState
}

func encodeFigureState(f FigureState) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, f.FigureID)
	w.PutString(tagTitle, f.Title)
	w.PutU32(tagWidth, f.Width)
	w.PutU32(tagHeight, f.Height)
	w.PutU32(tagGridRows, uint32(f.GridRows))
	w.PutU32(tagGridCols, uint32(f.GridCols))
	w.PutU32(tagWindowGroup, f.WindowGroup)
	for _, a := range f.Axes {
		w.PutBlob(tagAxisBlob, encodeAxisState(a))
	}
	for _, s := range f.Series {
		w.PutBlob(tagSeriesBlob, encodeSeriesState(s))
	}
	return w.Bytes()
}

func decodeFigureState(buf []byte) FigureState {
	f := FigureState{Width: 1280, Height: 720, GridRows: 1, GridCols: 1}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			f.FigureID = r.U64()
		case tagTitle:
			f.Title = r.String()
		case tagWidth:
			f.Width = r.U32()
		case tagHeight:
			f.Height = r.U32()
		case tagGridRows:
			f.GridRows = int32(r.U32())
		case tagGridCols:
			f.GridCols = int32(r.U32())
		case tagWindowGroup:
			f.WindowGroup = r.U32()
		case tagAxisBlob:
			f.Axes = append(f.Axes, decodeAxisState(r.Blob()))
		case tagSeriesBlob:
			f.Series = append(f.Series, decodeSeriesState(r.Blob()))
		}
	}
	return f
}

type KnobState struct {
	Name    string
	Type    KnobType
	Value   float32
	MinVal  float32
	MaxVal  float32
	Step    float32
	Choices []string
}

func encodeKnobState(k KnobState) []byte {
	w := NewPayloadWriter()
	w.PutString(tagKnobName, k.Name)
	w.PutU16(tagKnobType, uint16(k.Type))
	w.PutF32(tagKnobValue, k.Value)
	w.PutF32(tagKnobMin, k.MinVal)
	w.PutF32(tagKnobMax, k.MaxVal)
	w.PutF32(tagKnobStep, k.Step)
	for _, c := range k.Choices {
		w.PutString(tagKnobChoice, c)
	}
	return w.Bytes()
}

func decodeKnobState(buf []byte) KnobState {
	k := KnobState{MaxVal: 1}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagKnobName:
			k.Name = r.String()
		case tagKnobType:
			k.Type = KnobType(r.U16())
		case tagKnobValue:
			k.Value = r.F32()
		case tagKnobMin:
			k.MinVal = r.F32()
		case tagKnobMax:
			k.MaxVal = r.F32()
		case tagKnobStep:
			k.Step = r.F32()
		case tagKnobChoice:
			k.Choices = append(k.Choices, r.String())
		}
	}
	return k
}

type StateSnapshotPayload struct {
	Revision  uint64
	SessionID uint64
	Figures   []FigureState
	Knobs     []KnobState
}

func EncodeStateSnapshot(p StateSnapshotPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRevision, p.Revision)
	w.PutU64(tagSessionID, p.SessionID)
	for _, f := range p.Figures {
		w.PutBlob(tagFigureBlob, encodeFigureState(f))
	}
	for _, k := range p.Knobs {
		w.PutBlob(tagKnobBlob, encodeKnobState(k))
	}
	return w.Bytes()
}

func DecodeStateSnapshot(buf []byte) StateSnapshotPayload {
	var p StateSnapshotPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRevision:
			p.Revision = r.U64()
		case tagSessionID:
			p.SessionID = r.U64()
		case tagFigureBlob:
			p.Figures = append(p.Figures, decodeFigureState(r.Blob()))
		case tagKnobBlob:
			p.Knobs = append(p.Knobs, decodeKnobState(r.Blob()))
		}
	}
	return p
}

type DiffOp struct {
	Type        DiffOpType
	FigureID    uint64
	AxesIndex   uint32
	SeriesIndex uint32
	F1, F2, F3, F4 float32
	BoolVal     bool
	StrVal      string
	Data        []float32
}

func encodeDiffOp(op DiffOp) []byte {
	w := NewPayloadWriter()
	w.PutU16(tagOpType, uint16(op.Type))
	w.PutU64(tagFigureID, op.FigureID)
	w.PutU32(tagAxesIndex, op.AxesIndex)
	w.PutU32(tagSeriesIndex, op.SeriesIndex)
	w.PutF32(tagF1, op.F1)
	w.PutF32(tagF2, op.F2)
	w.PutF32(tagF3, op.F3)
	w.PutF32(tagF4, op.F4)
	w.PutBool(tagBoolVal, op.BoolVal)
	w.PutString(tagStrVal, op.StrVal)
	w.PutFloatArray(tagOpData, op.Data)
	return w.Bytes()
}

func decodeDiffOp(buf []byte) DiffOp {
	var op DiffOp
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagOpType:
			op.Type = DiffOpType(r.U16())
		case tagFigureID:
			op.FigureID = r.U64()
		case tagAxesIndex:
			op.AxesIndex = r.U32()
		case tagSeriesIndex:
			op.SeriesIndex = r.U32()
		case tagF1:
			op.F1 = r.F32()
		case tagF2:
			op.F2 = r.F32()
		case tagF3:
			op.F3 = r.F32()
		case tagF4:
			op.F4 = r.F32()
		case tagBoolVal:
			op.BoolVal = r.Bool()
		case tagStrVal:
			op.StrVal = r.String()
		case tagOpData:
			op.Data = r.FloatArray()
		}
	}
	return op
}

type StateDiffPayload struct {
	BaseRevision uint64
	NewRevision  uint64
	Ops          []DiffOp
}

func EncodeStateDiff(p StateDiffPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagBaseRevision, p.BaseRevision)
	w.PutU64(tagNewRevision, p.NewRevision)
	for _, op := range p.Ops {
		w.PutBlob(tagDiffOpBlob, encodeDiffOp(op))
	}
	return w.Bytes()
}

func DecodeStateDiff(buf []byte) StateDiffPayload {
	var p StateDiffPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagBaseRevision:
			p.BaseRevision = r.U64()
		case tagNewRevision:
			p.NewRevision = r.U64()
		case tagDiffOpBlob:
			p.Ops = append(p.Ops, decodeDiffOp(r.Blob()))
		}
	}
	return p
}

type AckStatePayload struct {
	Revision uint64
}

func EncodeAckState(p AckStatePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRevision, p.Revision)
	return w.Bytes()
}

func DecodeAckState(buf []byte) AckStatePayload {
	var p AckStatePayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagRevision {
			p.Revision = r.U64()
		}
	}
	return p
}

// ─── Input/window events (renderer -> broker) ─────────────────────────────

type EvtInputPayload struct {
	WindowID  uint64
	InputType InputType
	Key       int32
	Mods      int32
	X, Y      float64
	FigureID  uint64
	AxesIndex uint32
}

func EncodeEvtInput(p EvtInputPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutU16(tagInputType, uint16(p.InputType))
	w.PutU32(tagKeyCode, uint32(p.Key))
	w.PutU32(tagMods, uint32(p.Mods))
	w.PutF64(tagCursorX, p.X)
	w.PutF64(tagCursorY, p.Y)
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagAxesIndex, p.AxesIndex)
	return w.Bytes()
}

func DecodeEvtInput(buf []byte) EvtInputPayload {
	var p EvtInputPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagInputType:
			p.InputType = InputType(r.U16())
		case tagKeyCode:
			p.Key = int32(r.U32())
		case tagMods:
			p.Mods = int32(r.U32())
		case tagCursorX:
			p.X = r.F64()
		case tagCursorY:
			p.Y = r.F64()
		case tagFigureID:
			p.FigureID = r.U64()
		case tagAxesIndex:
			p.AxesIndex = r.U32()
		}
	}
	return p
}

type EvtWindowPayload struct {
	WindowID uint64
	Reason   string
}

func EncodeEvtWindow(p EvtWindowPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	w.PutString(tagReason, p.Reason)
	return w.Bytes()
}

func DecodeEvtWindow(buf []byte) EvtWindowPayload {
	var p EvtWindowPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagWindowID:
			p.WindowID = r.U64()
		case tagReason:
			p.Reason = r.String()
		}
	}
	return p
}

type EvtHeartbeatPayload struct {
	WindowID uint64
}

func EncodeEvtHeartbeat(p EvtHeartbeatPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagWindowID, p.WindowID)
	return w.Bytes()
}

func DecodeEvtHeartbeat(buf []byte) EvtHeartbeatPayload {
	var p EvtHeartbeatPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagWindowID {
			p.WindowID = r.U64()
		}
	}
	return p
}

// ─── Producer -> broker requests ──────────────────────────────────────────

type ReqCreateFigurePayload struct {
	Title  string
	Width  uint32
	Height uint32
}

func EncodeReqCreateFigure(p ReqCreateFigurePayload) []byte {
	w := NewPayloadWriter()
	w.PutString(tagTitle, p.Title)
	w.PutU32(tagWidth, p.Width)
	w.PutU32(tagHeight, p.Height)
	return w.Bytes()
}

func DecodeReqCreateFigure(buf []byte) ReqCreateFigurePayload {
	p := ReqCreateFigurePayload{Width: 1280, Height: 720}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagTitle:
			p.Title = r.String()
		case tagWidth:
			p.Width = r.U32()
		case tagHeight:
			p.Height = r.U32()
		}
	}
	return p
}

type ReqDestroyFigurePayload struct {
	FigureID uint64
}

func EncodeReqDestroyFigure(p ReqDestroyFigurePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	return w.Bytes()
}

func DecodeReqDestroyFigure(buf []byte) ReqDestroyFigurePayload {
	var p ReqDestroyFigurePayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagFigureID {
			p.FigureID = r.U64()
		}
	}
	return p
}

type ReqCreateAxesPayload struct {
	FigureID  uint64
	GridRows  int32
	GridCols  int32
	GridIndex int32
	Is3D      bool
}

func EncodeReqCreateAxes(p ReqCreateAxesPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagGridRows, uint32(p.GridRows))
	w.PutU32(tagGridCols, uint32(p.GridCols))
	w.PutU32(tagAxesIndex, uint32(p.GridIndex))
	w.PutBool(tagIs3D, p.Is3D)
	return w.Bytes()
}

func DecodeReqCreateAxes(buf []byte) ReqCreateAxesPayload {
	p := ReqCreateAxesPayload{GridRows: 1, GridCols: 1, GridIndex: 1}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagGridRows:
			p.GridRows = int32(r.U32())
		case tagGridCols:
			p.GridCols = int32(r.U32())
		case tagAxesIndex:
			p.GridIndex = int32(r.U32())
		case tagIs3D:
			p.Is3D = r.Bool()
		}
	}
	return p
}

type ReqAddSeriesPayload struct {
	FigureID   uint64
	AxesIndex  uint32
	SeriesType string
	Label      string
}

func EncodeReqAddSeries(p ReqAddSeriesPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagAxesIndex, p.AxesIndex)
	w.PutString(tagSeriesType, p.SeriesType)
	w.PutString(tagSeriesName, p.Label)
	return w.Bytes()
}

func DecodeReqAddSeries(buf []byte) ReqAddSeriesPayload {
	p := ReqAddSeriesPayload{SeriesType: SeriesLine}
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagAxesIndex:
			p.AxesIndex = r.U32()
		case tagSeriesType:
			p.SeriesType = r.String()
		case tagSeriesName:
			p.Label = r.String()
		}
	}
	return p
}

type ReqRemoveSeriesPayload struct {
	FigureID    uint64
	SeriesIndex uint32
}

func EncodeReqRemoveSeries(p ReqRemoveSeriesPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagSeriesIndex, p.SeriesIndex)
	return w.Bytes()
}

func DecodeReqRemoveSeries(buf []byte) ReqRemoveSeriesPayload {
	var p ReqRemoveSeriesPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagSeriesIndex:
			p.SeriesIndex = r.U32()
		}
	}
	return p
}

type ReqSetDataPayload struct {
	FigureID    uint64
	SeriesIndex uint32
	DType       uint8 // 0=float32, 1=float64 (wire always carries float32; DType documents source precision)
	Data        []float32
	GridNX      uint32 // grid width for surface series; 0 for every other series type
	GridNY      uint32 // grid height for surface series; 0 for every other series type
}

func EncodeReqSetData(p ReqSetDataPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagSeriesIndex, p.SeriesIndex)
	w.PutU16(tagDType, uint16(p.DType))
	w.PutFloatArray(tagSeriesData, p.Data)
	if p.GridNX != 0 || p.GridNY != 0 {
		w.PutU32(tagGridNX, p.GridNX)
		w.PutU32(tagGridNY, p.GridNY)
	}
	return w.Bytes()
}

func DecodeReqSetData(buf []byte) ReqSetDataPayload {
	var p ReqSetDataPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagSeriesIndex:
			p.SeriesIndex = r.U32()
		case tagDType:
			p.DType = uint8(r.U16())
		case tagSeriesData:
			p.Data = r.FloatArray()
		case tagGridNX:
			p.GridNX = r.U32()
		case tagGridNY:
			p.GridNY = r.U32()
		}
	}
	return p
}

type ReqAppendDataPayload struct {
	FigureID    uint64
	SeriesIndex uint32
	Data        []float32
}

func EncodeReqAppendData(p ReqAppendDataPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagSeriesIndex, p.SeriesIndex)
	w.PutFloatArray(tagSeriesData, p.Data)
	return w.Bytes()
}

func DecodeReqAppendData(buf []byte) ReqAppendDataPayload {
	var p ReqAppendDataPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagSeriesIndex:
			p.SeriesIndex = r.U32()
		case tagSeriesData:
			p.Data = r.FloatArray()
		}
	}
	return p
}

// ReqUpdatePropertyPayload's Property names are fixed by the protocol: color,
// xlim, ylim, zlim, title, grid, visible, line_width, marker_size, opacity,
// xlabel, ylabel, axes_title, label, legend / legend_visible.
type ReqUpdatePropertyPayload struct {
	FigureID    uint64
	AxesIndex   uint32
	SeriesIndex uint32
	Property    string
	F1, F2, F3, F4 float32
	BoolVal     bool
	StrVal      string
}

func EncodeReqUpdateProperty(p ReqUpdatePropertyPayload) []byte {
	w := NewPayloadWriter()
	encodeUpdatePropertyInto(w, p)
	return w.Bytes()
}

func encodeUpdatePropertyInto(w *PayloadWriter, p ReqUpdatePropertyPayload) {
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU32(tagAxesIndex, p.AxesIndex)
	w.PutU32(tagSeriesIndex, p.SeriesIndex)
	w.PutString(tagProperty, p.Property)
	w.PutF32(tagF1, p.F1)
	w.PutF32(tagF2, p.F2)
	w.PutF32(tagF3, p.F3)
	w.PutF32(tagF4, p.F4)
	w.PutBool(tagBoolVal, p.BoolVal)
	w.PutString(tagStrVal, p.StrVal)
}

func DecodeReqUpdateProperty(buf []byte) ReqUpdatePropertyPayload {
	r := NewPayloadReader(buf)
	return decodeUpdatePropertyFrom(r)
}

func decodeUpdatePropertyFrom(r *PayloadReader) ReqUpdatePropertyPayload {
	var p ReqUpdatePropertyPayload
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagAxesIndex:
			p.AxesIndex = r.U32()
		case tagSeriesIndex:
			p.SeriesIndex = r.U32()
		case tagProperty:
			p.Property = r.String()
		case tagF1:
			p.F1 = r.F32()
		case tagF2:
			p.F2 = r.F32()
		case tagF3:
			p.F3 = r.F32()
		case tagF4:
			p.F4 = r.F32()
		case tagBoolVal:
			p.BoolVal = r.Bool()
		case tagStrVal:
			p.StrVal = r.String()
		}
	}
	return p
}

type ReqUpdateBatchPayload struct {
	Updates []ReqUpdatePropertyPayload
}

func EncodeReqUpdateBatch(p ReqUpdateBatchPayload) []byte {
	w := NewPayloadWriter()
	for _, u := range p.Updates {
		nested := NewPayloadWriter()
		encodeUpdatePropertyInto(nested, u)
		w.PutNested(tagUpdateBlob, nested)
	}
	return w.Bytes()
}

func DecodeReqUpdateBatch(buf []byte) ReqUpdateBatchPayload {
	var p ReqUpdateBatchPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagUpdateBlob {
			p.Updates = append(p.Updates, decodeUpdatePropertyFrom(r.Nested()))
		}
	}
	return p
}

type ReqShowPayload struct {
	FigureID uint64
	WindowID uint64
}

func EncodeReqShow(p ReqShowPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU64(tagWindowID, p.WindowID)
	return w.Bytes()
}

func DecodeReqShow(buf []byte) ReqShowPayload {
	var p ReqShowPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagWindowID:
			p.WindowID = r.U64()
		}
	}
	return p
}

type ReqCloseFigurePayload struct {
	FigureID uint64
}

func EncodeReqCloseFigure(p ReqCloseFigurePayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	return w.Bytes()
}

func DecodeReqCloseFigure(buf []byte) ReqCloseFigurePayload {
	var p ReqCloseFigurePayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagFigureID {
			p.FigureID = r.U64()
		}
	}
	return p
}

type ReqGetSnapshotPayload struct {
	FigureIDs []uint64 // empty means "all figures"
}

func EncodeReqGetSnapshot(p ReqGetSnapshotPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64Array(tagFigureIDs, p.FigureIDs)
	return w.Bytes()
}

func DecodeReqGetSnapshot(buf []byte) ReqGetSnapshotPayload {
	var p ReqGetSnapshotPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagFigureIDs {
			p.FigureIDs = r.U64Array()
		}
	}
	return p
}

type ReqListFiguresPayload struct{}

func EncodeReqListFigures(ReqListFiguresPayload) []byte { return nil }
func DecodeReqListFigures([]byte) ReqListFiguresPayload { return ReqListFiguresPayload{} }

type ReqReconnectPayload struct {
	SessionID    uint64
	SessionToken string
}

func EncodeReqReconnect(p ReqReconnectPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagSessionID, p.SessionID)
	w.PutString(tagSessionTok, p.SessionToken)
	return w.Bytes()
}

func DecodeReqReconnect(buf []byte) ReqReconnectPayload {
	var p ReqReconnectPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagSessionID:
			p.SessionID = r.U64()
		case tagSessionTok:
			p.SessionToken = r.String()
		}
	}
	return p
}

type ReqDisconnectPayload struct {
	Reason string
}

func EncodeReqDisconnect(p ReqDisconnectPayload) []byte {
	w := NewPayloadWriter()
	w.PutString(tagReason, p.Reason)
	return w.Bytes()
}

func DecodeReqDisconnect(buf []byte) ReqDisconnectPayload {
	var p ReqDisconnectPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		if r.Tag() == tagReason {
			p.Reason = r.String()
		}
	}
	return p
}

// ─── Broker -> producer responses/events ──────────────────────────────────

type RespFigureCreatedPayload struct {
	RequestID uint64
	FigureID  uint64
}

func EncodeRespFigureCreated(p RespFigureCreatedPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	w.PutU64(tagFigureID, p.FigureID)
	return w.Bytes()
}

func DecodeRespFigureCreated(buf []byte) RespFigureCreatedPayload {
	var p RespFigureCreatedPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRequestID:
			p.RequestID = r.U64()
		case tagFigureID:
			p.FigureID = r.U64()
		}
	}
	return p
}

type RespAxesCreatedPayload struct {
	RequestID uint64
	AxesIndex uint32
}

func EncodeRespAxesCreated(p RespAxesCreatedPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	w.PutU32(tagAxesIndex, p.AxesIndex)
	return w.Bytes()
}

func DecodeRespAxesCreated(buf []byte) RespAxesCreatedPayload {
	var p RespAxesCreatedPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRequestID:
			p.RequestID = r.U64()
		case tagAxesIndex:
			p.AxesIndex = r.U32()
		}
	}
	return p
}

type RespSeriesAddedPayload struct {
	RequestID   uint64
	SeriesIndex uint32
}

func EncodeRespSeriesAdded(p RespSeriesAddedPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	w.PutU32(tagSeriesIndex, p.SeriesIndex)
	return w.Bytes()
}

func DecodeRespSeriesAdded(buf []byte) RespSeriesAddedPayload {
	var p RespSeriesAddedPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRequestID:
			p.RequestID = r.U64()
		case tagSeriesIndex:
			p.SeriesIndex = r.U32()
		}
	}
	return p
}

type RespSnapshotPayload struct {
	RequestID uint64
	Snapshot  StateSnapshotPayload
}

func EncodeRespSnapshot(p RespSnapshotPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	w.PutBlob(tagSnapshotBlob, EncodeStateSnapshot(p.Snapshot))
	return w.Bytes()
}

// DecodeRespSnapshot decodes a RESP_SNAPSHOT payload. The snapshot is
// nested under the same tag used to wrap it on encode.
func DecodeRespSnapshot(buf []byte) RespSnapshotPayload {
	var p RespSnapshotPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRequestID:
			p.RequestID = r.U64()
		case tagSnapshotBlob:
			p.Snapshot = DecodeStateSnapshot(r.Blob())
		}
	}
	return p
}

type RespFigureListPayload struct {
	RequestID uint64
	FigureIDs []uint64
}

func EncodeRespFigureList(p RespFigureListPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagRequestID, p.RequestID)
	w.PutU64Array(tagFigureIDs, p.FigureIDs)
	return w.Bytes()
}

func DecodeRespFigureList(buf []byte) RespFigureListPayload {
	var p RespFigureListPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagRequestID:
			p.RequestID = r.U64()
		case tagFigureIDs:
			p.FigureIDs = r.U64Array()
		}
	}
	return p
}

type EvtWindowClosedPayload struct {
	FigureID uint64
	WindowID uint64
	Reason   string
}

func EncodeEvtWindowClosed(p EvtWindowClosedPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutU64(tagWindowID, p.WindowID)
	w.PutString(tagReason, p.Reason)
	return w.Bytes()
}

func DecodeEvtWindowClosed(buf []byte) EvtWindowClosedPayload {
	var p EvtWindowClosedPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagWindowID:
			p.WindowID = r.U64()
		case tagReason:
			p.Reason = r.String()
		}
	}
	return p
}

type EvtFigureDestroyedPayload struct {
	FigureID uint64
	Reason   string
}

func EncodeEvtFigureDestroyed(p EvtFigureDestroyedPayload) []byte {
	w := NewPayloadWriter()
	w.PutU64(tagFigureID, p.FigureID)
	w.PutString(tagReason, p.Reason)
	return w.Bytes()
}

func DecodeEvtFigureDestroyed(buf []byte) EvtFigureDestroyedPayload {
	var p EvtFigureDestroyedPayload
	r := NewPayloadReader(buf)
	for r.Next() {
		switch r.Tag() {
		case tagFigureID:
			p.FigureID = r.U64()
		case tagReason:
			p.Reason = r.String()
		}
	}
	return p
}
