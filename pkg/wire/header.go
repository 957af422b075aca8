package wire

import "encoding/binary"

// HeaderSize is the fixed, little-endian on-wire header size in bytes.
const HeaderSize = 40

// MaxPayloadSize bounds a single message's payload to guard memory use.
const MaxPayloadSize = 256 * 1024 * 1024

const (
	magic0 = 'S'
	magic1 = 'P'
)

// Header is the fixed 40-byte envelope preceding every message payload.
type Header struct {
	Type       uint16
	PayloadLen uint32
	Seq        uint64 // advisory; not interpreted by the broker
	RequestID  uint64 // zero unless part of a request/response pair
	SessionID  uint64
	WindowID   uint64
}

// Encode serializes the header into exactly HeaderSize bytes.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	buf[0], buf[1] = magic0, magic1
	binary.LittleEndian.PutUint16(buf[2:4], h.Type)
	binary.LittleEndian.PutUint32(buf[4:8], h.PayloadLen)
	binary.LittleEndian.PutUint64(buf[8:16], h.Seq)
	binary.LittleEndian.PutUint64(buf[16:24], h.RequestID)
	binary.LittleEndian.PutUint64(buf[24:32], h.SessionID)
	binary.LittleEndian.PutUint64(buf[32:40], h.WindowID)
	return buf
}

// DecodeHeader reads a header from the first HeaderSize bytes of buf;
// any bytes after them are ignored.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortBuffer
	}
	if buf[0] != magic0 || buf[1] != magic1 {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Type:       binary.LittleEndian.Uint16(buf[2:4]),
		PayloadLen: binary.LittleEndian.Uint32(buf[4:8]),
		Seq:        binary.LittleEndian.Uint64(buf[8:16]),
		RequestID:  binary.LittleEndian.Uint64(buf[16:24]),
		SessionID:  binary.LittleEndian.Uint64(buf[24:32]),
		WindowID:   binary.LittleEndian.Uint64(buf[32:40]),
	}
	if h.PayloadLen > MaxPayloadSize {
		return Header{}, ErrPayloadTooLarge
	}
	return h, nil
}
