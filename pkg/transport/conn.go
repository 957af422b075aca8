package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/plotbroker/plotbroker/pkg/wire"
)

const readChunkSize = 64 * 1024

// Conn is one peer connection: a raw, non-blocking file descriptor plus
// the inbound/outbound byte accumulators needed to frame wire.Message
// values across partial reads and writes. Conn is not goroutine-safe —
// by contract, every Conn is owned and driven serially by the broker's
// single poll loop, the same way the teacher's brokerCxn documents
// itself as "managed serially" rather than adding locks it doesn't need.
type Conn struct {
	fd   int
	conn net.Conn // kept alive so the fd isn't finalized out from under us

	inbound  []byte
	outbound []byte

	// peerCodec is the compression codec negotiated for this connection
	// during the HELLO/WELCOME exchange (CompressionNone until then).
	// QueueSend wraps outgoing payloads with it; ReadMessages unwraps
	// incoming ones, both transparently to callers.
	peerCodec wire.CompressionCodec

	closed bool
}

// SetPeerCodec records the compression codec negotiated for this
// connection. Called once, right after HELLO/WELCOME completes.
func (c *Conn) SetPeerCodec(codec wire.CompressionCodec) { c.peerCodec = codec }

func newConn(nc net.Conn) (*Conn, error) {
	fd, err := rawFD(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &Conn{fd: fd, conn: nc}, nil
}

// rawFD extracts the underlying file descriptor from a net.Conn whose
// concrete type supports SyscallConn (*net.UnixConn does). The fd is
// already non-blocking, since that's how the Go runtime's netpoller
// requires it to be — we simply stop letting the netpoller touch it and
// drive reads/writes ourselves from the poll loop instead.
func rawFD(nc net.Conn) (int, error) {
	sc, err := nc.(syscall.Conn).SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	ctrlErr := sc.Control(func(p uintptr) { fd = int(p) })
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}

// FD returns the raw descriptor for registering this connection with Poll.
func (c *Conn) FD() int { return c.fd }

// HasPendingWrites reports whether QueueSend has buffered bytes not yet
// flushed to the socket; the poll loop should register WantWrite for
// this connection's fd until it returns false.
func (c *Conn) HasPendingWrites() bool { return len(c.outbound) > 0 }

// QueueSend appends an encoded message to the outbound buffer. It never
// blocks or writes directly; call FlushSend once the fd is writable.
// Payloads at or above wire.CompressThreshold are transparently wrapped
// with the negotiated peer codec, if any.
func (c *Conn) QueueSend(msg wire.Message) {
	if c.peerCodec != wire.CompressionNone {
		if packed, err := wire.WrapCompressed(c.peerCodec, msg.Payload); err == nil {
			msg.Payload = packed
		}
	}
	c.outbound = append(c.outbound, msg.Encode()...)
}

// FlushSend writes the outbound buffer without blocking, repeating the
// write until the buffer is empty or the kernel reports EAGAIN, and trims
// whatever was accepted off the front of the buffer.
func (c *Conn) FlushSend() error {
	for len(c.outbound) > 0 {
		n, err := unix.Write(c.fd, c.outbound)
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return ErrConnectionLost
		}
		if n <= 0 {
			return ErrConnectionLost
		}
		c.outbound = c.outbound[n:]
	}
	return nil
}

// ReadMessages performs one non-blocking read attempt and decodes as
// many complete wire.Message frames as are now available, leaving any
// partial trailing frame buffered for the next call. A closed peer
// (read returns 0) or any short-read/bad-header condition surfaces as
// ErrConnectionLost, matching spec.md's framing-failure contract.
func (c *Conn) ReadMessages() ([]wire.Message, error) {
	var chunk [readChunkSize]byte
	n, err := unix.Read(c.fd, chunk[:])
	if err != nil {
		if err == unix.EAGAIN {
			return c.drainComplete()
		}
		return nil, ErrConnectionLost
	}
	if n == 0 {
		return nil, ErrConnectionLost
	}
	c.inbound = append(c.inbound, chunk[:n]...)
	return c.drainComplete()
}

func (c *Conn) drainComplete() ([]wire.Message, error) {
	var out []wire.Message
	for {
		if len(c.inbound) < wire.HeaderSize {
			return out, nil
		}
		hdr, err := wire.DecodeHeader(c.inbound)
		if err != nil {
			return out, ErrConnectionLost
		}
		total := wire.HeaderSize + int(hdr.PayloadLen)
		if len(c.inbound) < total {
			return out, nil
		}
		msg, err := wire.DecodeMessage(c.inbound[:total])
		if err != nil {
			return out, ErrConnectionLost
		}
		if unwrapped, wasWrapped, uerr := wire.UnwrapCompressed(msg.Payload); wasWrapped {
			if uerr != nil {
				return out, ErrConnectionLost
			}
			msg.Payload = unwrapped
		}
		out = append(out, msg)
		c.inbound = c.inbound[total:]
	}
}

// Close releases the underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
