package logging

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the time format used by the console appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. Any `zapcore.Core`, such as the test observer, is an Appender.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// NewWriterAppender returns an appender writing the console encoding of NewLoggerConfig to w.
func NewWriterAppender(w io.Writer) Appender {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(NewLoggerConfig().EncoderConfig),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
}

// callerToString returns "<dir>/<file>:<line>", e.g. "cli/app.go:42".
func callerToString(caller *zapcore.EntryCaller) string {
	dir, file := filepath.Split(caller.File)
	return fmt.Sprintf("%s/%s:%d", filepath.Base(dir), file, caller.Line)
}
