// Command oxy-morph displays gridded datasets as extruded boxes on a globe and morphs
// between them.
//
//	oxy-morph view <manifest.toml>
//	oxy-morph inspect <manifest.toml>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
)

func init() {
	// GLFW and the WebGPU surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(newLogger())
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newLogger logs text to stderr. OXY_MORPH_LOG=debug enables debug output, including
// frame statistics.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("OXY_MORPH_LOG"), "debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
