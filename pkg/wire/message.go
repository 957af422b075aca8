package wire

// Message is a full wire message: header plus already-TLV-encoded payload
// bytes. Callers build the payload with a typed Encode* function (or
// PayloadWriter directly) before wrapping it here.
type Message struct {
	Header  Header
	Payload []byte
}

// Encode serializes header and payload back-to-back.
func (m Message) Encode() []byte {
	hdr := m.Header
	hdr.PayloadLen = uint32(len(m.Payload))
	out := make([]byte, 0, HeaderSize+len(m.Payload))
	out = append(out, hdr.Encode()...)
	out = append(out, m.Payload...)
	return out
}

// DecodeMessage decodes a full message from a buffer containing at least
// one complete header and its declared payload length.
func DecodeMessage(buf []byte) (Message, error) {
	hdr, err := DecodeHeader(buf)
	if err != nil {
		return Message{}, err
	}
	end := HeaderSize + int(hdr.PayloadLen)
	if len(buf) < end {
		return Message{}, ErrShortBuffer
	}
	payload := make([]byte, hdr.PayloadLen)
	copy(payload, buf[HeaderSize:end])
	return Message{Header: hdr, Payload: payload}, nil
}
