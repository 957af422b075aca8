package transport

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/plotbroker/plotbroker/pkg/wire"
)

func acceptEventually(t *testing.T, s *Server) *Conn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c, ok, err := s.AcceptNonBlocking()
		if err != nil {
			t.Fatalf("AcceptNonBlocking: %v", err)
		}
		if ok {
			return c
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a pending connection")
	return nil
}

func readEventually(t *testing.T, c *Conn, want int) []wire.Message {
	t.Helper()
	var all []wire.Message
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msgs, err := c.ReadMessages()
		if err != nil {
			t.Fatalf("ReadMessages: %v", err)
		}
		all = append(all, msgs...)
		if len(all) >= want {
			return all
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages, got %d", want, len(all))
	return nil
}

func flushEventually(t *testing.T, c *Conn) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := c.FlushSend(); err != nil {
			t.Fatalf("FlushSend: %v", err)
		}
		if !c.HasPendingWrites() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out flushing outbound buffer")
}

func TestServerAcceptAndRoundTripMessage(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "plotbroker.sock")
	srv, err := Listen(sockPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	clientDone := make(chan *Conn, 1)
	go func() {
		c, dialErr := Dial(sockPath)
		if dialErr != nil {
			t.Errorf("Dial: %v", dialErr)
			clientDone <- nil
			return
		}
		clientDone <- c
	}()

	serverSide := acceptEventually(t, srv)
	defer serverSide.Close()

	clientSide := <-clientDone
	if clientSide == nil {
		t.Fatal("dial failed")
	}
	defer clientSide.Close()

	hello := wire.Message{
		Header:  wire.Header{Type: wire.TypeHello},
		Payload: wire.EncodeHello(wire.HelloPayload{ProtocolMajor: 1, ProtocolMinor: 0, ClientType: wire.ClientTypePython}),
	}
	clientSide.QueueSend(hello)
	flushEventually(t, clientSide)

	got := readEventually(t, serverSide, 1)
	if got[0].Header.Type != wire.TypeHello {
		t.Fatalf("got type %x, want TypeHello", got[0].Header.Type)
	}
	decoded := wire.DecodeHello(got[0].Payload)
	if decoded.ClientType != wire.ClientTypePython {
		t.Fatalf("ClientType = %q, want python", decoded.ClientType)
	}
}

func TestConnReadAfterPeerCloseIsConnectionLost(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "plotbroker.sock")
	srv, err := Listen(sockPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	clientDone := make(chan *Conn, 1)
	go func() {
		c, dialErr := Dial(sockPath)
		if dialErr != nil {
			clientDone <- nil
			return
		}
		clientDone <- c
	}()

	serverSide := acceptEventually(t, srv)
	defer serverSide.Close()
	clientSide := <-clientDone
	if clientSide == nil {
		t.Fatal("dial failed")
	}
	clientSide.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, err := serverSide.ReadMessages()
		if err == ErrConnectionLost {
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected ErrConnectionLost after peer closed")
}

func TestPollReportsListenerReadable(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "plotbroker.sock")
	srv, err := Listen(sockPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		c, dialErr := Dial(sockPath)
		if dialErr == nil {
			c.Close()
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ready, pollErr := Poll([]Interest{{FD: srv.FD(), WantRead: true}}, 50)
		if pollErr != nil {
			t.Fatalf("Poll: %v", pollErr)
		}
		for _, r := range ready {
			if r.FD == srv.FD() && r.Readable {
				return
			}
		}
	}
	t.Fatal("timed out waiting for listener to become readable")
}
