// Package debug provides a file-backed logger for diagnosing streaming and
// storage issues without polluting terminal output.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

const defaultLogFile = "/tmp/promptdeck-debug.log"

var (
	once   sync.Once
	logger *slog.Logger
)

// GetLogger returns the process-wide debug logger. It writes to the path in
// PROMPTDECK_DEBUG_LOG, or /tmp/promptdeck-debug.log when unset. If the file
// cannot be opened, logging is disabled rather than crashing the tool.
func GetLogger() *slog.Logger {
	once.Do(func() {
		path := os.Getenv("PROMPTDECK_DEBUG_LOG")
		if path == "" {
			path = defaultLogFile
		}
		var w io.Writer
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			w = io.Discard
		} else {
			w = f
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
	})
	return logger
}
