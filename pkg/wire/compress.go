package wire

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"
)

// CompressionCodec identifies an optional whole-payload compression scheme
// negotiated via HelloPayload.Capabilities. Negotiating compression is
// purely a transport-level optimization for large STATE_SNAPSHOT / bulk
// SET_SERIES_DATA payloads — it is invisible to the TLV format itself and
// to every round-trip contract in the spec, which all operate on the
// decompressed payload bytes.
type CompressionCodec uint32

const (
	CompressionNone CompressionCodec = 0

	// CompressionFlate uses klauspost/compress's flate implementation,
	// grounded on the teacher's dependency of the same name (there used
	// to compress Kafka record batches).
	CompressionFlate CompressionCodec = 1 << 0

	// CompressionSnappy uses golang/snappy, grounded on the teacher's
	// dependency of the same name.
	CompressionSnappy CompressionCodec = 1 << 1

	// CompressionLZ4 uses pierrec/lz4, grounded on the teacher's
	// dependency of the same name.
	CompressionLZ4 CompressionCodec = 1 << 2
)

// CompressThreshold is the minimum payload size (bytes) at which
// compression is worth attempting; below it, the fixed per-frame overhead
// of a compression format outweighs any savings.
const CompressThreshold = 8 * 1024

// Compress encodes buf using the given codec. CompressionNone returns buf
// unchanged.
func Compress(codec CompressionCodec, buf []byte) ([]byte, error) {
	switch codec {
	case CompressionNone:
		return buf, nil
	case CompressionSnappy:
		return snappy.Encode(nil, buf), nil
	case CompressionLZ4:
		var out bytes.Buffer
		w := lz4.NewWriter(&out)
		if _, err := w.Write(buf); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	case CompressionFlate:
		var out bytes.Buffer
		w, err := flate.NewWriter(&out, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(buf); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	default:
		return nil, ErrUnknownCodec
	}
}

// Decompress reverses Compress.
func Decompress(codec CompressionCodec, buf []byte) ([]byte, error) {
	switch codec {
	case CompressionNone:
		return buf, nil
	case CompressionSnappy:
		return snappy.Decode(nil, buf)
	case CompressionLZ4:
		r := lz4.NewReader(bytes.NewReader(buf))
		return io.ReadAll(r)
	case CompressionFlate:
		r := flate.NewReader(bytes.NewReader(buf))
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, ErrUnknownCodec
	}
}

// WrapCompressed compresses payload with codec and returns a new,
// transparent TLV payload carrying only tagCompressedBody. Below
// CompressThreshold, or for CompressionNone, it returns payload
// unchanged — compressing a small payload never pays for its own
// per-frame overhead.
func WrapCompressed(codec CompressionCodec, payload []byte) ([]byte, error) {
	if codec == CompressionNone || len(payload) < CompressThreshold {
		return payload, nil
	}
	packed, err := Compress(codec, payload)
	if err != nil {
		return nil, err
	}
	w := NewPayloadWriter()
	body := make([]byte, 0, 1+len(packed))
	body = append(body, byte(codec))
	body = append(body, packed...)
	w.PutBlob(tagCompressedBody, body)
	return w.Bytes(), nil
}

// UnwrapCompressed reverses WrapCompressed. It reports ok=false when buf
// is not a compressed envelope (the common case), in which case buf
// should be used as-is.
func UnwrapCompressed(buf []byte) (out []byte, ok bool, err error) {
	r := NewPayloadReader(buf)
	if !r.Next() || r.Tag() != tagCompressedBody {
		return buf, false, nil
	}
	body := r.Blob()
	if len(body) < 1 {
		return nil, true, ErrShortBuffer
	}
	codec := CompressionCodec(body[0])
	out, err = Decompress(codec, body[1:])
	return out, true, err
}

// NegotiateCodec picks the first codec both sides advertise, preferring
// the order snappy > lz4 > flate (snappy trades ratio for the least CPU,
// appropriate for a local socket where bandwidth is not the bottleneck).
func NegotiateCodec(ours, theirs CompressionCodec) CompressionCodec {
	for _, c := range []CompressionCodec{CompressionSnappy, CompressionLZ4, CompressionFlate} {
		if ours&c != 0 && theirs&c != 0 {
			return c
		}
	}
	return CompressionNone
}
