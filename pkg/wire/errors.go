package wire

import "errors"

// Framing errors. Per spec, decoding fails only on missing/short bytes,
// wrong magic, or a declared payload length above MaxPayloadSize. Unknown
// TLV tags inside a well-formed payload are skipped, never an error.
var (
	ErrShortBuffer     = errors.New("wire: buffer shorter than required")
	ErrBadMagic        = errors.New("wire: bad magic bytes")
	ErrPayloadTooLarge = errors.New("wire: payload length exceeds cap")
	ErrTruncatedValue  = errors.New("wire: truncated TLV value")
	ErrUnknownCodec    = errors.New("wire: unknown compression codec")
)
