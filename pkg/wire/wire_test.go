package wire

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Type: TypeHello, PayloadLen: 7, Seq: 42, RequestID: 9, SessionID: 1234, WindowID: 5}
	buf := h.Encode()
	if len(buf) != HeaderSize {
		t.Fatalf("encoded header length = %d, want %d", len(buf), HeaderSize)
	}
	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Fatalf("header round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	if err != ErrShortBuffer {
		t.Fatalf("got err = %v, want ErrShortBuffer", err)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	h := Header{Type: TypeHello}
	buf := h.Encode()
	buf[0] = 'X'
	_, err := DecodeHeader(buf)
	if err != ErrBadMagic {
		t.Fatalf("got err = %v, want ErrBadMagic", err)
	}
}

func TestDecodeHeaderPayloadTooLarge(t *testing.T) {
	h := Header{Type: TypeHello, PayloadLen: MaxPayloadSize + 1}
	buf := h.Encode()
	_, err := DecodeHeader(buf)
	if err != ErrPayloadTooLarge {
		t.Fatalf("got err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	m := Message{
		Header:  Header{Type: TypeHello, Seq: 1, SessionID: 99},
		Payload: EncodeHello(HelloPayload{ProtocolMajor: 1, ProtocolMinor: 0, AgentBuild: "v1.2.3", ClientType: ClientTypePython}),
	}
	buf := m.Encode()
	got, err := DecodeMessage(buf)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	// Encode stamps the payload length into the header it writes.
	want := m
	want.Header.PayloadLen = uint32(len(m.Payload))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("message round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMessageShort(t *testing.T) {
	m := Message{Header: Header{Type: TypeHello}, Payload: []byte("hello world")}
	buf := m.Encode()
	_, err := DecodeMessage(buf[:HeaderSize+3])
	if err != ErrShortBuffer {
		t.Fatalf("got err = %v, want ErrShortBuffer", err)
	}
}

func TestTLVPrimitivesRoundTrip(t *testing.T) {
	w := NewPayloadWriter()
	w.PutU16(tagProtocolMajor, 7)
	w.PutU32(tagCapabilities, 0xDEADBEEF)
	w.PutU64(tagSessionID, 1<<40)
	w.PutF32(tagXMin, -1.5)
	w.PutF64(tagCursorX, 3.14159265)
	w.PutBool(tagGridVisible, true)
	w.PutString(tagTitle, "plot window")
	w.PutFloatArray(tagSeriesData, []float32{1, 2, 3.5, -4})
	w.PutU64Array(tagFigureIDs, []uint64{10, 20, 30})

	r := NewPayloadReader(w.Bytes())

	want := []byte{tagProtocolMajor, tagCapabilities, tagSessionID, tagXMin, tagCursorX, tagGridVisible, tagTitle, tagSeriesData, tagFigureIDs}
	var got []byte
	for r.Next() {
		got = append(got, r.Tag())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tag order mismatch (-want +got):\n%s", diff)
	}

	r = NewPayloadReader(w.Bytes())
	r.Next()
	if v := r.U16(); v != 7 {
		t.Fatalf("U16 = %d, want 7", v)
	}
	r.Next()
	if v := r.U32(); v != 0xDEADBEEF {
		t.Fatalf("U32 = %x, want deadbeef", v)
	}
	r.Next()
	if v := r.U64(); v != 1<<40 {
		t.Fatalf("U64 = %d", v)
	}
	r.Next()
	if v := r.F32(); v != -1.5 {
		t.Fatalf("F32 = %v", v)
	}
	r.Next()
	if v := r.F64(); v != 3.14159265 {
		t.Fatalf("F64 = %v", v)
	}
	r.Next()
	if v := r.Bool(); !v {
		t.Fatalf("Bool = false, want true")
	}
	r.Next()
	if v := r.String(); v != "plot window" {
		t.Fatalf("String = %q", v)
	}
	r.Next()
	if diff := cmp.Diff([]float32{1, 2, 3.5, -4}, r.FloatArray()); diff != "" {
		t.Fatalf("FloatArray mismatch (-want +got):\n%s", diff)
	}
	r.Next()
	if diff := cmp.Diff([]uint64{10, 20, 30}, r.U64Array()); diff != "" {
		t.Fatalf("U64Array mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadReaderUnknownTagTolerated(t *testing.T) {
	w := NewPayloadWriter()
	w.PutString(tagTitle, "known")
	w.entry(0xFF, []byte("from a newer build, meaning unclear to us"))
	w.PutU32(tagWidth, 640)

	r := NewPayloadReader(w.Bytes())
	var sawTitle, sawWidth bool
	for r.Next() {
		switch r.Tag() {
		case tagTitle:
			sawTitle = true
		case tagWidth:
			sawWidth = true
			if r.U32() != 640 {
				t.Fatalf("width mismatch")
			}
		}
	}
	if !sawTitle || !sawWidth {
		t.Fatalf("expected to see both known tags around the unknown one, sawTitle=%v sawWidth=%v", sawTitle, sawWidth)
	}
}

func TestPayloadReaderTruncatedEntryStopsCleanly(t *testing.T) {
	buf := []byte{tagTitle, 0x05, 0x00, 0x00, 0x00, 'a', 'b'} // declares len 5, only 2 bytes present
	r := NewPayloadReader(buf)
	if r.Next() {
		t.Fatalf("Next() should report no entries over a truncated buffer")
	}
}

func TestHelloWelcomeRoundTrip(t *testing.T) {
	hp := HelloPayload{ProtocolMajor: 1, ProtocolMinor: 0, AgentBuild: "renderer-0.9", Capabilities: uint32(CompressionSnappy), ClientType: ClientTypeAgent}
	got := DecodeHello(EncodeHello(hp))
	if diff := cmp.Diff(hp, got); diff != "" {
		t.Fatalf("hello round trip mismatch (-want +got):\n%s", diff)
	}

	wp := WelcomePayload{SessionID: 1, WindowID: 2, ProcessID: 99, HeartbeatMs: 2000, Mode: "agent"}
	gotW := DecodeWelcome(EncodeWelcome(wp))
	if diff := cmp.Diff(wp, gotW); diff != "" {
		t.Fatalf("welcome round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFigureStateRoundTripWithSurfaceSeries(t *testing.T) {
	fs := FigureState{
		FigureID:    1,
		Title:       "demo",
		Width:       1280,
		Height:      720,
		GridRows:    1,
		GridCols:    1,
		WindowGroup: 0,
		Axes: []AxisState{
			{XMin: 0, XMax: 1, YMin: 0, YMax: 1, ZMin: 0, ZMax: 1, GridVisible: true, Is3D: true, XLabel: "x", YLabel: "y", Title: "axes 1"},
		},
		Series: []SeriesState{
			{
				Name: "z", Type: SeriesSurface,
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
				LineWidth: 1, MarkerSize: 1, Visible: true, Opacity: 1,
				PointCount: 6, AxesIndex: 0,
				Data:   []float32{0, 1, 2, 3, 4, 5},
				GridNX: 2, GridNY: 3,
			},
		},
	}
	got := decodeFigureState(encodeFigureState(fs))
	if diff := cmp.Diff(fs, got); diff != "" {
		t.Fatalf("figure state round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStateSnapshotRoundTrip(t *testing.T) {
	snap := StateSnapshotPayload{
		Revision:  42,
		SessionID: 7,
		Figures: []FigureState{
			{FigureID: 1, Title: "fig1", Width: 640, Height: 480, GridRows: 1, GridCols: 1},
		},
		Knobs: []KnobState{
			{Name: "gain", Type: KnobFloat, Value: 0.5, MinVal: 0, MaxVal: 1, Step: 0.01},
			{Name: "mode", Type: KnobChoice, Choices: []string{"a", "b", "c"}},
		},
	}
	got := DecodeStateSnapshot(EncodeStateSnapshot(snap))
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("snapshot round trip mismatch (-want +got):\n%s\nfull got value:\n%s", diff, spew.Sdump(got))
	}
}

func TestStateDiffRoundTrip(t *testing.T) {
	sd := StateDiffPayload{
		BaseRevision: 10,
		NewRevision:  11,
		Ops: []DiffOp{
			{Type: OpSetAxisLimits, FigureID: 1, AxesIndex: 0, F1: -1, F2: 1, F3: -2, F4: 2},
			{Type: OpSetSeriesData, FigureID: 1, SeriesIndex: 0, Data: []float32{1, 2, 3}},
			{Type: OpSetFigureTitle, FigureID: 1, StrVal: "renamed"},
		},
	}
	got := DecodeStateDiff(EncodeStateDiff(sd))
	if diff := cmp.Diff(sd, got); diff != "" {
		t.Fatalf("diff round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateBatchRoundTrip(t *testing.T) {
	batch := ReqUpdateBatchPayload{
		Updates: []ReqUpdatePropertyPayload{
			{FigureID: 1, AxesIndex: 0, Property: "xlim", F1: -1, F2: 1},
			{FigureID: 1, SeriesIndex: 2, Property: "visible", BoolVal: false},
		},
	}
	got := DecodeReqUpdateBatch(EncodeReqUpdateBatch(batch))
	if diff := cmp.Diff(batch, got); diff != "" {
		t.Fatalf("update batch round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRespSnapshotRoundTrip(t *testing.T) {
	rp := RespSnapshotPayload{
		RequestID: 5,
		Snapshot: StateSnapshotPayload{
			Revision: 1,
			Figures:  []FigureState{{FigureID: 1, Width: 100, Height: 100, GridRows: 1, GridCols: 1}},
		},
	}
	got := DecodeRespSnapshot(EncodeRespSnapshot(rp))
	if diff := cmp.Diff(rp, got); diff != "" {
		t.Fatalf("resp snapshot round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNegotiateCodecPrefersSnappy(t *testing.T) {
	ours := CompressionSnappy | CompressionLZ4 | CompressionFlate
	theirs := CompressionLZ4 | CompressionFlate
	if got := NegotiateCodec(ours, theirs); got != CompressionLZ4 {
		t.Fatalf("NegotiateCodec = %v, want LZ4 (snappy not shared)", got)
	}
	if got := NegotiateCodec(ours, ours); got != CompressionSnappy {
		t.Fatalf("NegotiateCodec = %v, want snappy when both support it", got)
	}
	if got := NegotiateCodec(CompressionFlate, CompressionSnappy); got != CompressionNone {
		t.Fatalf("NegotiateCodec = %v, want none with disjoint sets", got)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	payload := make([]byte, 0, 4096)
	for i := 0; i < 4096; i++ {
		payload = append(payload, byte(i%251))
	}
	for _, codec := range []CompressionCodec{CompressionNone, CompressionSnappy, CompressionLZ4, CompressionFlate} {
		packed, err := Compress(codec, payload)
		if err != nil {
			t.Fatalf("Compress(%v): %v", codec, err)
		}
		unpacked, err := Decompress(codec, packed)
		if err != nil {
			t.Fatalf("Decompress(%v): %v", codec, err)
		}
		if diff := cmp.Diff(payload, unpacked); diff != "" {
			t.Fatalf("codec %v round trip mismatch (-want +got):\n%s", codec, diff)
		}
	}
}
