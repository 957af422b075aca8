package transport

import (
	"net"
	"os"

	"golang.org/x/sys/unix"
)

const listenBacklog = 8

// Server listens on a Unix domain socket and hands out Conn values
// through a non-blocking accept, for use inside a poll-driven event
// loop rather than a blocking Accept goroutine.
type Server struct {
	path     string
	listener *net.UnixListener
	fd       int
}

// Listen removes any stale socket file at path, binds a new Unix
// socket, restricts it to owner-only access, and starts listening.
func Listen(path string) (*Server, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	ul := ln.(*net.UnixListener)
	if err := os.Chmod(path, 0o700); err != nil {
		ul.Close()
		return nil, err
	}
	sc, err := ul.SyscallConn()
	if err != nil {
		ul.Close()
		return nil, err
	}
	var fd int
	if ctrlErr := sc.Control(func(p uintptr) { fd = int(p) }); ctrlErr != nil {
		ul.Close()
		return nil, ctrlErr
	}
	if lErr := unix.Listen(fd, listenBacklog); lErr != nil {
		ul.Close()
		return nil, lErr
	}
	return &Server{path: path, listener: ul, fd: fd}, nil
}

// FD returns the listening socket's descriptor, for registering read
// interest with Poll.
func (s *Server) FD() int { return s.fd }

// AcceptNonBlocking accepts one pending connection without blocking. ok
// is false (err nil) when nothing is pending yet.
func (s *Server) AcceptNonBlocking() (c *Conn, ok bool, err error) {
	nfd, _, acceptErr := unix.Accept4(s.fd, unix.SOCK_NONBLOCK)
	if acceptErr != nil {
		if acceptErr == unix.EAGAIN || acceptErr == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		return nil, false, acceptErr
	}
	f := os.NewFile(uintptr(nfd), "plotbroker-client")
	nc, fileErr := net.FileConn(f)
	f.Close()
	if fileErr != nil {
		unix.Close(nfd)
		return nil, false, fileErr
	}
	conn, connErr := newConn(nc)
	if connErr != nil {
		return nil, false, connErr
	}
	return conn, true, nil
}

// Close stops listening and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	os.Remove(s.path)
	return err
}

// Dial connects to a broker's Unix socket as a client (a renderer or
// producer).
func Dial(path string) (*Conn, error) {
	nc, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}
	return newConn(nc)
}
