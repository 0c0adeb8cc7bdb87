// Package logger wires the process-wide zerolog logger: human-readable
// console output plus a size-rotated log file.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the root logger. logFile may be empty to log to the console only.
func New(level string, logFile string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var out io.Writer = console
	if logFile != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
