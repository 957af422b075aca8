package wire

// TLV field tags. Numbering follows the reference implementation's own
// codec exactly, so that a renderer built against that numbering remains
// wire-compatible; the spec itself does not fix concrete tag values.
const (
	// HelloPayload
	tagProtocolMajor = 0x10
	tagProtocolMinor = 0x11
	tagAgentBuild    = 0x12
	tagCapabilities  = 0x13
	tagClientType    = 0x14

	// WelcomePayload
	tagSessionID   = 0x20
	tagWindowID    = 0x21
	tagProcessID   = 0x22
	tagHeartbeatMs = 0x23
	tagMode        = 0x24

	// RespErrPayload / RespOkPayload
	tagRequestID    = 0x30
	tagErrorCode    = 0x31
	tagErrorMessage = 0x32

	// Figure/window control payloads
	tagFigureID     = 0x40
	tagFigureIDs    = 0x41 // repeated u64
	tagActiveFigure = 0x42
	tagTemplateWin  = 0x43
	tagReason       = 0x44
	tagFigureCount  = 0x45
	tagSourceWindow = 0x46
	tagScreenX      = 0x47
	tagScreenY      = 0x48

	// State sync envelope
	tagRevision     = 0x50
	tagBaseRevision = 0x51
	tagNewRevision  = 0x52
	tagFigureBlob   = 0x53 // nested TLV for a figure
	tagAxisBlob     = 0x54 // nested TLV for an axis
	tagSeriesBlob   = 0x55 // nested TLV for a series
	tagDiffOpBlob   = 0x56 // nested TLV for a diff op

	// Figure/axis/series sub-fields. TAG_TITLE is reused inside both the
	// figure blob (figure title) and the axis blob (axes title) — each
	// blob is its own TLV namespace, matching the reference codec.
	tagTitle       = 0x60
	tagWidth       = 0x61
	tagHeight      = 0x62
	tagGridRows    = 0x63
	tagGridCols    = 0x64
	tagXMin        = 0x65
	tagXMax        = 0x66
	tagYMin        = 0x67
	tagYMax        = 0x68
	tagGridVisible = 0x69
	tagXLabel      = 0x6A
	tagYLabel      = 0x6B
	tagSeriesName  = 0x6C
	tagSeriesType  = 0x6D
	tagColorR      = 0x6E
	tagColorG      = 0x6F
	tagColorB      = 0x70
	tagColorA      = 0x71
	tagLineWidth   = 0x72
	tagMarkerSize  = 0x73
	tagVisible     = 0x74
	tagOpacity     = 0x75
	tagPointCount  = 0x76
	tagSeriesData  = 0x77 // raw float array
	tagWindowGroup = 0x78

	// Knob blob
	tagKnobBlob   = 0x79
	tagKnobName   = 0x7A
	tagKnobType   = 0x7B
	tagKnobValue  = 0x7C
	tagKnobMin    = 0x7D
	tagKnobMax    = 0x7E
	tagKnobStep   = 0x7F
	tagKnobChoice = 0xA0 // repeated string

	// DiffOp sub-fields
	tagOpType      = 0x80
	tagAxesIndex   = 0x81
	tagSeriesIndex = 0x82
	tagF1          = 0x83
	tagF2          = 0x84
	tagF3          = 0x85
	tagF4          = 0x86
	tagBoolVal     = 0x87
	tagStrVal      = 0x88
	tagOpData      = 0x89

	// EVT_INPUT fields
	tagInputType = 0x90
	tagKeyCode   = 0x91
	tagMods      = 0x92
	tagCursorX   = 0x93
	tagCursorY   = 0x94

	// Additions beyond the reference codec (documented in SPEC_FULL.md /
	// DESIGN.md): 3D axis support, the surface grid-shape open question,
	// and a handful of scalar fields the reference codec's truncated
	// tag listing omitted but its message structs require.
	tagIs3D       = 0x95
	tagAxisZMin   = 0x96
	tagAxisZMax   = 0x97
	tagGridNX     = 0x98
	tagGridNY     = 0x99
	tagDType      = 0x9A // ReqSetDataPayload.DType
	tagProperty   = 0x9B // ReqUpdatePropertyPayload.Property
	tagUpdateBlob = 0x9C // nested TLV: one ReqUpdatePropertyPayload within ReqUpdateBatchPayload
	tagSessionTok = 0x9D // ReqReconnectPayload.SessionToken
	tagSnapshotBlob = 0x9E // nested TLV: whole StateSnapshotPayload wrapped inside RespSnapshotPayload

	// tagCompressedBody wraps an entire otherwise-TLV payload as a single
	// field: one codec byte followed by that codec's compressed bytes.
	// A payload carrying only this one tag is transport-level compressed
	// and must be unwrapped (see WrapCompressed/UnwrapCompressed) before
	// any other Decode* function sees it.
	tagCompressedBody = 0x9F
)
