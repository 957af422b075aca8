package transport

import (
	"golang.org/x/sys/unix"
)

// Interest describes which readiness events a caller wants reported for
// a file descriptor in the next Poll call.
type Interest struct {
	FD          int
	WantRead    bool
	WantWrite   bool
}

// Ready reports which events fired for a polled file descriptor.
type Ready struct {
	FD       int
	Readable bool
	Writable bool
	// HangUp is set when the peer closed or the descriptor otherwise
	// errored; callers should treat the connection as lost regardless
	// of Readable/Writable.
	HangUp bool
}

// Poll wraps unix.Poll: it blocks for at most timeoutMs milliseconds
// waiting for any of the given interests to become ready, and reports
// which fired. This is the one place the broker's event loop yields the
// OS thread, keeping the whole process single-threaded in the sense the
// spec requires (no per-connection goroutines parked on the Go
// netpoller).
func Poll(interests []Interest, timeoutMs int) ([]Ready, error) {
	if len(interests) == 0 {
		return nil, nil
	}
	fds := make([]unix.PollFd, len(interests))
	for i, in := range interests {
		var events int16
		if in.WantRead {
			events |= unix.POLLIN
		}
		if in.WantWrite {
			events |= unix.POLLOUT
		}
		fds[i] = unix.PollFd{Fd: int32(in.FD), Events: events}
	}

	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	out := make([]Ready, 0, n)
	for i, pf := range fds {
		if pf.Revents == 0 {
			continue
		}
		out = append(out, Ready{
			FD:       interests[i].FD,
			Readable: pf.Revents&(unix.POLLIN|unix.POLLHUP) != 0,
			Writable: pf.Revents&unix.POLLOUT != 0,
			HangUp:   pf.Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0,
		})
	}
	return out, nil
}
