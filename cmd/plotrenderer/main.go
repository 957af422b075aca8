// Command plotrenderer is a headless renderer agent: it speaks the
// broker's wire protocol well enough to hold a window's assigned
// figures up to date (applying snapshots and diffs into a local
// figuremodel.Model) and to participate in the heartbeat/shutdown
// protocol, without ever actually drawing anything. It exists so the
// broker has a real process to spawn and supervise in this module, and
// as a reference client for anything else that wants to embed the
// protocol without a GUI toolchain.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/plotbroker/plotbroker/pkg/figuremodel"
	"github.com/plotbroker/plotbroker/pkg/plog"
	"github.com/plotbroker/plotbroker/pkg/transport"
	"github.com/plotbroker/plotbroker/pkg/wire"
)

const pollTimeoutMs = 50

func main() {
	var (
		socketPath = flag.String("socket", "", "unix domain socket to connect to (required)")
		agentBuild = flag.String("agent-build", "plotrenderer-headless", "agent_build string sent in HELLO")
		logLevel   = flag.String("log-level", "warn", "one of: none, error, warn, info, debug")
	)
	flag.Parse()

	if *socketPath == "" {
		fmt.Fprintln(os.Stderr, "plotrenderer: -socket is required")
		os.Exit(1)
	}

	level := plog.LogLevelWarn
	switch *logLevel {
	case "none":
		level = plog.LogLevelNone
	case "error":
		level = plog.LogLevelError
	case "info":
		level = plog.LogLevelInfo
	case "debug":
		level = plog.LogLevelDebug
	}
	logger := plog.NewStderrLogger(level)

	conn, err := transport.Dial(*socketPath)
	if err != nil {
		logger.Log(plog.LogLevelError, "dial failed", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	a := &agent{
		conn:   conn,
		log:    logger,
		model:  figuremodel.New(),
		hello:  wire.HelloPayload{ProtocolMajor: wire.ProtocolMajor, ProtocolMinor: wire.ProtocolMinor, ClientType: wire.ClientTypeAgent, AgentBuild: *agentBuild, Capabilities: uint32(wire.CompressionSnappy | wire.CompressionLZ4 | wire.CompressionFlate)},
		lastHB: time.Now(),
	}
	if err := a.run(); err != nil {
		logger.Log(plog.LogLevelError, "renderer exited with error", "err", err)
		os.Exit(1)
	}
}

type agent struct {
	conn  *transport.Conn
	log   plog.Logger
	model *figuremodel.Model

	hello    wire.HelloPayload
	windowID uint64
	figures  []uint64
	active   uint64

	heartbeatInterval time.Duration
	lastHB            time.Time
	closed            bool
}

func (a *agent) run() error {
	a.send(wire.Message{Header: wire.Header{Type: wire.TypeHello}, Payload: wire.EncodeHello(a.hello)})

	for !a.closed {
		if err := a.flush(); err != nil {
			return err
		}

		ready, err := transport.Poll([]transport.Interest{{FD: a.conn.FD(), WantRead: true}}, pollTimeoutMs)
		if err != nil {
			return err
		}
		for _, r := range ready {
			if r.HangUp {
				return nil
			}
			if r.Readable {
				if err := a.handleReadable(); err != nil {
					return err
				}
			}
		}

		a.maybeHeartbeat()
	}
	return nil
}

func (a *agent) handleReadable() error {
	msgs, err := a.conn.ReadMessages()
	if err != nil {
		if err == transport.ErrConnectionLost {
			a.closed = true
			return nil
		}
		return err
	}
	for _, msg := range msgs {
		a.dispatch(msg)
	}
	return nil
}

func (a *agent) dispatch(msg wire.Message) {
	switch msg.Header.Type {
	case wire.TypeWelcome:
		w := wire.DecodeWelcome(msg.Payload)
		a.windowID = w.WindowID
		a.heartbeatInterval = time.Duration(w.HeartbeatMs) * time.Millisecond
		a.conn.SetPeerCodec(wire.CompressionCodec(w.Capabilities))
		a.log.Log(plog.LogLevelInfo, "welcomed", "window_id", w.WindowID, "heartbeat_ms", w.HeartbeatMs)

	case wire.TypeCmdAssignFigures:
		p := wire.DecodeCmdAssignFigures(msg.Payload)
		a.figures = p.FigureIDs
		a.active = p.ActiveFigureID
		a.log.Log(plog.LogLevelDebug, "figures assigned", "count", len(a.figures), "active", a.active)

	case wire.TypeCmdRemoveFigure:
		p := wire.DecodeCmdRemoveFigure(msg.Payload)
		a.removeFigure(p.FigureID)

	case wire.TypeCmdSetActive:
		p := wire.DecodeCmdSetActive(msg.Payload)
		a.active = p.FigureID

	case wire.TypeCmdCloseWindow:
		p := wire.DecodeCmdCloseWindow(msg.Payload)
		a.log.Log(plog.LogLevelInfo, "window closed by broker", "reason", p.Reason)
		a.closed = true

	case wire.TypeStateSnapshot:
		snap := wire.DecodeStateSnapshot(msg.Payload)
		a.model.LoadSnapshot(snap)
		a.send(wire.Message{Header: wire.Header{Type: wire.TypeAckState, WindowID: a.windowID}, Payload: wire.EncodeAckState(wire.AckStatePayload{Revision: a.model.Revision()})})

	case wire.TypeStateDiff:
		diff := wire.DecodeStateDiff(msg.Payload)
		for _, op := range diff.Ops {
			a.model.ApplyDiffOp(op)
		}
		a.send(wire.Message{Header: wire.Header{Type: wire.TypeAckState, WindowID: a.windowID}, Payload: wire.EncodeAckState(wire.AckStatePayload{Revision: a.model.Revision()})})

	case wire.TypeRespErr:
		e := wire.DecodeRespErr(msg.Payload)
		a.log.Log(plog.LogLevelWarn, "broker error", "code", e.Code, "message", e.Message)
	}
}

func (a *agent) removeFigure(figureID uint64) {
	out := a.figures[:0]
	for _, id := range a.figures {
		if id != figureID {
			out = append(out, id)
		}
	}
	a.figures = out
	if a.active == figureID {
		a.active = 0
		if len(a.figures) > 0 {
			a.active = a.figures[0]
		}
	}
}

func (a *agent) maybeHeartbeat() {
	if a.heartbeatInterval <= 0 || a.windowID == 0 {
		return
	}
	if time.Since(a.lastHB) < a.heartbeatInterval {
		return
	}
	a.send(wire.Message{Header: wire.Header{Type: wire.TypeEvtHeartbeat, WindowID: a.windowID}, Payload: wire.EncodeEvtHeartbeat(wire.EvtHeartbeatPayload{WindowID: a.windowID})})
	a.lastHB = time.Now()
}

func (a *agent) send(msg wire.Message) {
	a.conn.QueueSend(msg)
}

func (a *agent) flush() error {
	if !a.conn.HasPendingWrites() {
		return nil
	}
	if err := a.conn.FlushSend(); err != nil {
		if err == transport.ErrConnectionLost {
			a.closed = true
			return nil
		}
		return err
	}
	return nil
}
