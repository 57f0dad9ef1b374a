package build

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
)

// LogWriter is a stub io.Writer that lets the bridge attach its own
// subsystem loggers before a concrete output (file, stderr, …) has been
// selected by the embedding application. Writes are forwarded to whatever
// io.Writer has been installed in the Output field, defaulting to stderr.
type LogWriter struct {
	Output io.Writer
}

// Write implements io.Writer.
func (w *LogWriter) Write(b []byte) (int, error) {
	if w.Output == nil {
		return os.Stderr.Write(b)
	}
	return w.Output.Write(b)
}

// NewSubLogger creates a new btclog.Logger for the given subsystem tag,
// backed by the shared backend. Every package in this module that logs
// declares its own subsystem tag this way, mirroring the teacher daemon's
// per-subsystem logger table.
func NewSubLogger(tag string, backend *btclog.Backend) btclog.Logger {
	logger := backend.Logger(tag)
	logger.SetLevel(btclog.LevelInfo)
	return logger
}
