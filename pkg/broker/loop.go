package broker

import (
	"time"

	"github.com/plotbroker/plotbroker/pkg/plog"
	"github.com/plotbroker/plotbroker/pkg/transport"
)

// Run executes the broker's event loop until a producer disconnect (or
// the last renderer leaving after at least one renderer had connected)
// sets the shutdown flag.
func (b *Broker) Run() error {
	now := time.Now()
	b.lastStaleCheck = now
	b.lastReap = now

	for !b.shutdown {
		b.flushPending()

		interests := make([]transport.Interest, 0, len(b.clients)+1)
		interests = append(interests, transport.Interest{FD: b.server.FD(), WantRead: true})
		for fd := range b.clients {
			interests = append(interests, transport.Interest{FD: fd, WantRead: true})
		}

		ready, err := transport.Poll(interests, pollTimeoutMs)
		if err != nil {
			return err
		}

		for _, r := range ready {
			if r.FD == b.server.FD() {
				b.acceptPending()
				continue
			}
			st, ok := b.clients[r.FD]
			if !ok {
				continue
			}
			if r.HangUp || r.Readable {
				b.handleReadable(r.FD, st)
			}
		}

		nowTick := time.Now()
		if nowTick.Sub(b.lastStaleCheck) >= staleCheckInterval {
			b.checkStaleAgents(nowTick)
			b.lastStaleCheck = nowTick
		}
		if nowTick.Sub(b.lastReap) >= reapInterval {
			b.sup.Reap()
			b.lastReap = nowTick
		}

		if b.hadAgents && len(b.windows) == 0 {
			b.shutdown = true
		}
	}

	b.sup.TerminateAll()
	return nil
}

func (b *Broker) flushPending() {
	for _, st := range b.clients {
		if st.conn.HasPendingWrites() {
			if err := st.conn.FlushSend(); err != nil {
				b.dropClient(st.conn.FD())
			}
		}
	}
}

func (b *Broker) acceptPending() {
	for {
		conn, ok, err := b.server.AcceptNonBlocking()
		if err != nil {
			b.log.Log(plog.LogLevelWarn, "accept failed", "err", err)
			return
		}
		if !ok {
			return
		}
		b.clients[conn.FD()] = &clientState{conn: conn}
	}
}

func (b *Broker) handleReadable(fd int, st *clientState) {
	msgs, err := st.conn.ReadMessages()
	if err != nil {
		b.dropClient(fd)
		return
	}
	for _, msg := range msgs {
		b.dispatch(st, msg)
	}
}

// dropClient treats a connection as dead: producers take down the
// whole broker, renderers get their figures redistributed.
func (b *Broker) dropClient(fd int) {
	st, ok := b.clients[fd]
	if !ok {
		return
	}
	delete(b.clients, fd)
	_ = st.conn.Close()

	if isProducerLike(st.class) {
		b.log.Log(plog.LogLevelInfo, "producer disconnected, shutting down")
		for _, w := range b.windows {
			if w.conn != nil {
				b.sendTo(w.conn, cmdCloseWindow(w.windowID, "producer disconnected"))
				_ = w.conn.FlushSend()
			}
		}
		b.shutdown = true
		return
	}

	if st.windowID != 0 {
		b.removeWindow(st.windowID)
	}
}
