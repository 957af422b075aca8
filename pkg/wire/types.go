package wire

// Message type constants, partitioned into the ranges fixed by the protocol.
const (
	// 0x0001-0x0002 handshake
	TypeHello   uint16 = 0x0001
	TypeWelcome uint16 = 0x0002

	// 0x0010-0x0011 generic responses
	TypeRespOk  uint16 = 0x0010
	TypeRespErr uint16 = 0x0011

	// 0x0100-0x01FF requests from renderer -> broker
	TypeReqCreateWindow uint16 = 0x0100
	TypeReqCloseWindow  uint16 = 0x0101
	TypeReqDetachFigure uint16 = 0x0102

	// 0x0200-0x02FF commands from broker -> renderer
	TypeCmdAssignFigures uint16 = 0x0200
	TypeCmdRemoveFigure  uint16 = 0x0201
	TypeCmdSetActive     uint16 = 0x0202
	TypeCmdCloseWindow   uint16 = 0x0203

	// 0x0300-0x03FF state sync
	TypeStateSnapshot uint16 = 0x0300
	TypeStateDiff     uint16 = 0x0301
	TypeAckState      uint16 = 0x0302

	// 0x0400-0x04FF events from renderer -> broker
	TypeEvtInput     uint16 = 0x0400
	TypeEvtWindow    uint16 = 0x0401
	TypeEvtTabDrag   uint16 = 0x0402
	TypeEvtHeartbeat uint16 = 0x0403

	// 0x0500-0x053F requests from producer -> broker
	TypeReqCreateFigure   uint16 = 0x0500
	TypeReqDestroyFigure  uint16 = 0x0501
	TypeReqCreateAxes     uint16 = 0x0502
	TypeReqAddSeries      uint16 = 0x0503
	TypeReqRemoveSeries   uint16 = 0x0504
	TypeReqSetData        uint16 = 0x0505
	TypeReqUpdateProperty uint16 = 0x0506
	TypeReqShow           uint16 = 0x0507
	TypeReqCloseFigure    uint16 = 0x0508
	TypeReqAppendData     uint16 = 0x0509
	TypeReqUpdateBatch    uint16 = 0x050A

	TypeReqGetSnapshot uint16 = 0x0510
	TypeReqListFigures uint16 = 0x0511

	TypeReqReconnect  uint16 = 0x0530
	TypeReqDisconnect uint16 = 0x0531

	// 0x0540-0x05FF responses and events broker -> producer
	TypeRespFigureCreated uint16 = 0x0540
	TypeRespAxesCreated   uint16 = 0x0541
	TypeRespSeriesAdded   uint16 = 0x0542
	TypeRespSnapshot      uint16 = 0x0543
	TypeRespFigureList    uint16 = 0x0544

	TypeEvtWindowClosed    uint16 = 0x0550
	TypeEvtFigureDestroyed uint16 = 0x0552
)

// DiffOp type discriminants, carried in the TagOpType sub-field of a
// nested diff-op blob.
type DiffOpType uint8

const (
	OpSetAxisLimits    DiffOpType = 1
	OpSetSeriesColor   DiffOpType = 2
	OpSetSeriesVisible DiffOpType = 3
	OpSetFigureTitle   DiffOpType = 4
	OpSetGridVisible   DiffOpType = 5
	OpSetLineWidth     DiffOpType = 6
	OpSetMarkerSize    DiffOpType = 7
	OpSetOpacity       DiffOpType = 8
	OpAddFigure        DiffOpType = 10
	OpRemoveFigure     DiffOpType = 11
	OpSetSeriesData    DiffOpType = 12
	OpSetAxisXLabel    DiffOpType = 13
	OpSetAxisYLabel    DiffOpType = 14
	OpSetAxisTitle     DiffOpType = 15
	OpSetSeriesLabel   DiffOpType = 16
	OpRemoveSeries     DiffOpType = 17
	OpSetKnobValue     DiffOpType = 20
	OpSetAxisZLimits   DiffOpType = 21
	OpAddSeries        DiffOpType = 22
	OpAddAxes          DiffOpType = 23
)

// ClientType strings recognized in HelloPayload.ClientType.
const (
	ClientTypePython = "python"
	ClientTypeAgent  = "agent"
)

// ProtocolMajor/Minor are the minimum protocol version advertised in HELLO.
const (
	ProtocolMajor uint16 = 1
	ProtocolMinor uint16 = 0
)

// SeriesType tags recognized for series.Type.
const (
	SeriesLine      = "line"
	SeriesScatter   = "scatter"
	SeriesLine3D    = "line3d"
	SeriesScatter3D = "scatter3d"
	SeriesSurface   = "surface"
	SeriesMesh      = "mesh"
)

// InputType discriminants for EvtInputPayload.InputType.
type InputType uint8

const (
	InputKeyPress InputType = iota + 1
	InputKeyRelease
	InputMouseButton
	InputMouseMove
	InputScroll
)

// KnobType discriminants for KnobState.Type.
type KnobType uint8

const (
	KnobFloat KnobType = iota
	KnobInt
	KnobBool
	KnobChoice
)

// Reserved identifier value meaning "invalid/none" for every ID type.
const InvalidID uint64 = 0
