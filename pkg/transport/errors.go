package transport

import "errors"

// ErrConnectionLost is returned by Conn.Send/Recv-style calls for every
// way a connection can die: EOF, a short read/write, or a header
// declaring a payload above wire.MaxPayloadSize. Callers don't need to
// distinguish the cause; they just drop the connection.
var ErrConnectionLost = errors.New("transport: connection lost")

// ErrWouldBlock names the "nothing to do right now" outcome of a
// non-blocking operation. No function in this package returns it:
// AcceptNonBlocking reports that case with ok=false, and FlushSend and
// ReadMessages treat EAGAIN as success.
var ErrWouldBlock = errors.New("transport: operation would block")
