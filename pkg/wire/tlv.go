package wire

import (
	"encoding/binary"
	"math"
)

// PayloadWriter builds a TLV-encoded payload: repeated
// [tag:u8][len:u32 LE][bytes].
type PayloadWriter struct {
	buf []byte
}

func NewPayloadWriter() *PayloadWriter { return &PayloadWriter{} }

func (w *PayloadWriter) entry(tag byte, val []byte) {
	w.buf = append(w.buf, tag)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(val)))
	w.buf = append(w.buf, lenBuf[:]...)
	w.buf = append(w.buf, val...)
}

func (w *PayloadWriter) PutU16(tag byte, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.entry(tag, b[:])
}

func (w *PayloadWriter) PutU32(tag byte, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.entry(tag, b[:])
}

func (w *PayloadWriter) PutU64(tag byte, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.entry(tag, b[:])
}

func (w *PayloadWriter) PutF32(tag byte, v float32) {
	w.PutU32(tag, math.Float32bits(v))
}

func (w *PayloadWriter) PutF64(tag byte, v float64) {
	w.PutU64(tag, math.Float64bits(v))
}

func (w *PayloadWriter) PutBool(tag byte, v bool) {
	if v {
		w.PutU16(tag, 1)
	} else {
		w.PutU16(tag, 0)
	}
}

func (w *PayloadWriter) PutString(tag byte, v string) {
	w.entry(tag, []byte(v))
}

func (w *PayloadWriter) PutBlob(tag byte, v []byte) {
	w.entry(tag, v)
}

// PutNested encodes a sub-payload writer's buffer as a blob-typed entry,
// the convention used for composite entities (figures, axes, series, diff
// ops, knobs).
func (w *PayloadWriter) PutNested(tag byte, nested *PayloadWriter) {
	w.PutBlob(tag, nested.Bytes())
}

func (w *PayloadWriter) PutFloatArray(tag byte, vals []float32) {
	out := make([]byte, 4+4*len(vals))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(vals)))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4+4*i:8+4*i], math.Float32bits(v))
	}
	w.entry(tag, out)
}

func (w *PayloadWriter) PutU64Array(tag byte, vals []uint64) {
	out := make([]byte, 4+8*len(vals))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(vals)))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[4+8*i:12+8*i], v)
	}
	w.entry(tag, out)
}

func (w *PayloadWriter) Bytes() []byte { return w.buf }

// PayloadReader walks TLV entries in order. Callers must check Tag()
// before interpreting a value; decoders must tolerate entries in any
// order and skip tags they do not recognize.
type PayloadReader struct {
	buf []byte
	pos int

	tag byte
	val []byte
}

func NewPayloadReader(buf []byte) *PayloadReader {
	return &PayloadReader{buf: buf}
}

// Next advances to the next entry, returning false when exhausted or on a
// truncated entry (in which case remaining data is abandoned rather than
// failing the whole payload — the surrounding decode still succeeds with
// whatever fields were read so far, per the unknown-tag tolerance policy).
func (r *PayloadReader) Next() bool {
	if r.pos+5 > len(r.buf) {
		return false
	}
	tag := r.buf[r.pos]
	length := binary.LittleEndian.Uint32(r.buf[r.pos+1 : r.pos+5])
	start := r.pos + 5
	end := start + int(length)
	if end > len(r.buf) || end < start {
		return false
	}
	r.tag = tag
	r.val = r.buf[start:end]
	r.pos = end
	return true
}

func (r *PayloadReader) Tag() byte    { return r.tag }
func (r *PayloadReader) Len() int     { return len(r.val) }
func (r *PayloadReader) Raw() []byte  { return r.val }

func (r *PayloadReader) U16() uint16 {
	if len(r.val) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(r.val)
}

func (r *PayloadReader) U32() uint32 {
	if len(r.val) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(r.val)
}

func (r *PayloadReader) U64() uint64 {
	if len(r.val) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(r.val)
}

func (r *PayloadReader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *PayloadReader) F64() float64 {
	return math.Float64frombits(r.U64())
}

func (r *PayloadReader) Bool() bool {
	return r.U16() != 0
}

func (r *PayloadReader) String() string {
	return string(r.val)
}

func (r *PayloadReader) Blob() []byte {
	return r.val
}

// Nested returns a PayloadReader over a blob-typed entry's bytes, for
// decoding a composite entity.
func (r *PayloadReader) Nested() *PayloadReader {
	return NewPayloadReader(r.val)
}

func (r *PayloadReader) FloatArray() []float32 {
	if len(r.val) < 4 {
		return nil
	}
	n := binary.LittleEndian.Uint32(r.val[0:4])
	want := 4 + 4*int(n)
	if want > len(r.val) {
		// Truncated array: decode as many complete elements as present.
		n = uint32((len(r.val) - 4) / 4)
	}
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		off := 4 + 4*i
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.val[off : off+4]))
	}
	return out
}

func (r *PayloadReader) U64Array() []uint64 {
	if len(r.val) < 4 {
		return nil
	}
	n := binary.LittleEndian.Uint32(r.val[0:4])
	want := 4 + 8*int(n)
	if want > len(r.val) {
		n = uint32((len(r.val) - 4) / 8)
	}
	out := make([]uint64, n)
	for i := range out {
		off := 4 + 8*i
		out[i] = binary.LittleEndian.Uint64(r.val[off : off+8])
	}
	return out
}
