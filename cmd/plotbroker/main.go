// Command plotbroker runs the out-of-process plotting broker: the
// single long-lived daemon that producers connect to in order to
// create figures, and that spawns and supervises a plotrenderer
// process per window.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plotbroker/plotbroker/pkg/broker"
	"github.com/plotbroker/plotbroker/pkg/plog"
)

const version = "0.1.0"

func main() {
	var (
		socketPath   = flag.String("socket", "", "unix domain socket path (default: $XDG_RUNTIME_DIR/plotbroker-<pid>.sock)")
		rendererPath = flag.String("renderer", "", "path to the plotrenderer binary (default: sibling of this binary, then $PATH)")
		heartbeatMs  = flag.Int("heartbeat-ms", 5000, "renderer heartbeat interval advertised in WELCOME")
		logLevel     = flag.String("log-level", "info", "one of: none, error, warn, info, debug")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("plotbroker", version)
		return
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "plotbroker:", err)
		os.Exit(1)
	}
	logger := plog.NewStderrLogger(level)

	b, err := broker.New(
		broker.WithSocketPath(*socketPath),
		broker.WithRendererPath(*rendererPath),
		broker.WithHeartbeatInterval(time.Duration(*heartbeatMs)*time.Millisecond),
		broker.WithLogger(logger),
	)
	if err != nil {
		logger.Log(plog.LogLevelError, "failed to start broker", "err", err)
		os.Exit(1)
	}
	defer b.Close()

	var signaled bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		signaled = true
		logger.Log(plog.LogLevelInfo, "received shutdown signal")
		b.Close()
	}()

	if err := b.Run(); err != nil && !signaled {
		logger.Log(plog.LogLevelError, "broker exited with error", "err", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) (plog.LogLevel, error) {
	switch s {
	case "none":
		return plog.LogLevelNone, nil
	case "error":
		return plog.LogLevelError, nil
	case "warn":
		return plog.LogLevelWarn, nil
	case "info":
		return plog.LogLevelInfo, nil
	case "debug":
		return plog.LogLevelDebug, nil
	default:
		return plog.LogLevelNone, fmt.Errorf("unrecognized -log-level %q", s)
	}
}
