// Package broker implements the single-threaded event loop that
// mediates between producer and renderer clients: handshake and
// classification, the session graph of windows and figure assignment,
// the figure model, and the renderer process supervisor.
package broker

import (
	"time"

	"github.com/plotbroker/plotbroker/pkg/figuremodel"
	"github.com/plotbroker/plotbroker/pkg/plog"
	"github.com/plotbroker/plotbroker/pkg/transport"
	"github.com/plotbroker/plotbroker/pkg/wire"
)

const (
	fixedSessionID           = 1
	defaultHeartbeatInterval = 5 * time.Second
	staleCheckInterval       = 5 * time.Second
	reapInterval             = 2 * time.Second
	pollTimeoutMs            = 1

	pendingWindowFD = -1 // unused by windowEntry, which marks a pending slot with a nil conn (see pending)
)

// supportedCodecs is every compression codec this broker build can
// speak; it is ANDed against each client's advertised HelloPayload
// capabilities to negotiate the codec for that connection's large
// STATE_SNAPSHOT / STATE_DIFF payloads.
const supportedCodecs = wire.CompressionSnappy | wire.CompressionLZ4 | wire.CompressionFlate

// Config configures a Broker. Construct with defaults and apply Opts,
// matching the teacher's own functional-options config pattern.
type Config struct {
	SocketPath        string
	RendererPath      string
	HeartbeatInterval time.Duration
	Logger            plog.Logger
}

// Opt mutates a Config during construction.
type Opt func(*Config)

func WithSocketPath(path string) Opt        { return func(c *Config) { c.SocketPath = path } }
func WithRendererPath(path string) Opt      { return func(c *Config) { c.RendererPath = path } }
func WithLogger(l plog.Logger) Opt          { return func(c *Config) { c.Logger = l } }
func WithHeartbeatInterval(d time.Duration) Opt {
	return func(c *Config) { c.HeartbeatInterval = d }
}

func defaultConfig() Config {
	return Config{HeartbeatInterval: defaultHeartbeatInterval, Logger: plog.Nop{}}
}

// windowEntry is one slot in the session graph: a renderer that either
// holds a live connection or is still pending (spawned but not yet
// connected, or pre-created ahead of a spawn).
type windowEntry struct {
	windowID      uint64
	pid           int
	conn          *transport.Conn // nil while pending
	figures       []uint64
	activeFigure  uint64
	lastHeartbeat time.Time
	alive         bool
}

func (w *windowEntry) pending() bool { return w.conn == nil }

func (w *windowEntry) removeFigure(figureID uint64) {
	out := w.figures[:0]
	for _, id := range w.figures {
		if id != figureID {
			out = append(out, id)
		}
	}
	w.figures = out
	if w.activeFigure == figureID {
		w.activeFigure = 0
		if len(w.figures) > 0 {
			w.activeFigure = w.figures[0]
		}
	}
}

// clientState is the broker's per-connection bookkeeping, keyed by fd.
type clientState struct {
	conn          *transport.Conn
	handshakeDone bool
	class         clientClass
	windowID      uint64 // 0 until a renderer claims/creates a window slot
}

// Broker is the single-threaded event loop and all its owned state.
type Broker struct {
	cfg Config
	log plog.Logger

	server *transport.Server
	model  *figuremodel.Model
	sup    *supervisor
	hb     *heartbeatIndex

	nextWindowID uint64

	windows      map[uint64]*windowEntry
	figureWindow map[uint64]uint64 // figureID -> windowID, 0 = unassigned

	clients map[int]*clientState // keyed by fd

	hadAgents bool
	shutdown  bool

	lastStaleCheck time.Time
	lastReap       time.Time
}

// New binds the listen socket and constructs a Broker ready for Run.
func New(opts ...Opt) (*Broker, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = defaultSocketPath()
	}

	srv, err := transport.Listen(cfg.SocketPath)
	if err != nil {
		return nil, err
	}

	return &Broker{
		cfg:          cfg,
		log:          cfg.Logger,
		server:       srv,
		model:        figuremodel.New(),
		sup:          newSupervisor(cfg.RendererPath, cfg.Logger),
		hb:           newHeartbeatIndex(),
		nextWindowID: 1,
		windows:      make(map[uint64]*windowEntry),
		figureWindow: make(map[uint64]uint64),
		clients:      make(map[int]*clientState),
	}, nil
}

// Close releases the listen socket.
func (b *Broker) Close() error { return b.server.Close() }

func (b *Broker) heartbeatMs() uint32 {
	return uint32(b.cfg.HeartbeatInterval / time.Millisecond)
}
