package broker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/plotbroker/plotbroker/pkg/plog"
	"github.com/plotbroker/plotbroker/pkg/transport"
	"github.com/plotbroker/plotbroker/pkg/wire"
)

func dialEventually(t *testing.T, path string) *transport.Conn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		c, err := transport.Dial(path)
		if err == nil {
			return c
		}
		lastErr = err
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("dial failed: %v", lastErr)
	return nil
}

// pendingMsgs holds the messages a single ReadMessages call decoded after
// the one readOneEventually returned, so later calls yield them in order.
var pendingMsgs = map[*transport.Conn][]wire.Message{}

func readOneEventually(t *testing.T, c *transport.Conn) wire.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if q := pendingMsgs[c]; len(q) > 0 {
			pendingMsgs[c] = q[1:]
			return q[0]
		}
		msgs, err := c.ReadMessages()
		if err != nil {
			t.Fatalf("ReadMessages: %v", err)
		}
		if len(msgs) > 0 {
			pendingMsgs[c] = msgs[1:]
			return msgs[0]
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a message")
	return wire.Message{}
}

func sendAndFlush(t *testing.T, c *transport.Conn, msg wire.Message) {
	t.Helper()
	c.QueueSend(msg)
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
	t.Fatal("timed out flushing")
}

func newTestBroker(t *testing.T) (*Broker, string) {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "plotbroker-test.sock")
	b, err := New(WithSocketPath(sockPath), WithLogger(plog.Nop{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, sockPath
}

func TestProducerHandshakeGetsWelcomeWithoutWindow(t *testing.T) {
	b, sockPath := newTestBroker(t)
	done := make(chan error, 1)
	go func() { done <- b.Run() }()

	c := dialEventually(t, sockPath)
	defer c.Close()

	sendAndFlush(t, c, wire.Message{
		Header:  wire.Header{Type: wire.TypeHello},
		Payload: wire.EncodeHello(wire.HelloPayload{ClientType: wire.ClientTypePython}),
	})

	welcome := readOneEventually(t, c)
	if welcome.Header.Type != wire.TypeWelcome {
		t.Fatalf("got type %x, want TypeWelcome", welcome.Header.Type)
	}
	w := wire.DecodeWelcome(welcome.Payload)
	if w.WindowID != 0 {
		t.Fatalf("producer-lite client must not get a window, got %d", w.WindowID)
	}
	if w.SessionID != fixedSessionID {
		t.Fatalf("SessionID = %d, want %d", w.SessionID, fixedSessionID)
	}

	c.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broker did not shut down after producer disconnected")
	}
}

func TestCreateFigureRoundTripAndRevisionBump(t *testing.T) {
	b, sockPath := newTestBroker(t)
	done := make(chan error, 1)
	go func() { done <- b.Run() }()
	defer func() {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("broker never shut down")
		}
	}()

	c := dialEventually(t, sockPath)
	defer c.Close()

	sendAndFlush(t, c, wire.Message{
		Header:  wire.Header{Type: wire.TypeHello},
		Payload: wire.EncodeHello(wire.HelloPayload{ClientType: wire.ClientTypePython}),
	})
	readOneEventually(t, c) // welcome

	before := b.model.Revision()
	sendAndFlush(t, c, wire.Message{
		Header:  wire.Header{Type: wire.TypeReqCreateFigure, RequestID: 42},
		Payload: wire.EncodeReqCreateFigure(wire.ReqCreateFigurePayload{Title: "plot 1"}),
	})

	resp := readOneEventually(t, c)
	if resp.Header.Type != wire.TypeRespFigureCreated {
		t.Fatalf("got type %x, want TypeRespFigureCreated", resp.Header.Type)
	}
	created := wire.DecodeRespFigureCreated(resp.Payload)
	if created.RequestID != 42 {
		t.Fatalf("RequestID = %d, want 42", created.RequestID)
	}
	if created.FigureID == wire.InvalidID {
		t.Fatal("FigureID must not be the invalid sentinel")
	}
	if !b.model.HasFigure(created.FigureID) {
		t.Fatal("model does not have the created figure")
	}
	if after := b.model.Revision(); after <= before {
		t.Fatalf("revision did not advance on figure creation: %d -> %d", before, after)
	}

	c.Close()
}

func TestRendererDisconnectKeepsBrokerRunningUntilLastWindowCloses(t *testing.T) {
	b, sockPath := newTestBroker(t)
	done := make(chan error, 1)
	go func() { done <- b.Run() }()

	helloAgent := func() wire.Message {
		return wire.Message{
			Header:  wire.Header{Type: wire.TypeHello},
			Payload: wire.EncodeHello(wire.HelloPayload{ClientType: wire.ClientTypeAgent}),
		}
	}

	r1 := dialEventually(t, sockPath)
	sendAndFlush(t, r1, helloAgent())
	w1 := wire.DecodeWelcome(readOneEventually(t, r1).Payload)
	readOneEventually(t, r1) // CMD_ASSIGN_FIGURES
	readOneEventually(t, r1) // STATE_SNAPSHOT
	if w1.WindowID == 0 {
		t.Fatal("renderer must get a non-zero window id")
	}

	r2 := dialEventually(t, sockPath)
	sendAndFlush(t, r2, helloAgent())
	w2 := wire.DecodeWelcome(readOneEventually(t, r2).Payload)
	readOneEventually(t, r2)
	readOneEventually(t, r2)
	if w2.WindowID == w1.WindowID {
		t.Fatal("each renderer must get a distinct window id")
	}

	r1.Close()
	// Window 1 disconnecting alone must not end the session: window 2 is
	// still live, so the loop should keep running rather than shut down.
	select {
	case <-done:
		t.Fatal("broker shut down after only one of two renderer windows closed")
	case <-time.After(100 * time.Millisecond):
	}

	r2.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broker should shut down once every renderer window is gone")
	}
}
