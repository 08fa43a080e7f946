package ditaflag

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync/atomic"
)

var logLevel slog.LevelVar

func init() {
	h := &slogHandler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelError)

	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")
}

var hadSlogError atomic.Bool

// ExitError exits non zero if anything was logged at error level during the
// run. Deferred first thing in main.
func ExitError() {
	if hadSlogError.Load() {
		os.Exit(1)
	}
	os.Exit(0)
}

type slogHandler struct {
	slog.Handler
}

func (n *slogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelError {
		hadSlogError.Store(true)
	}
	return n.Handler.Handle(ctx, r)
}
