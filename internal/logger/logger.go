package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"heartwave/dating-app/internal/config"
)

// New builds the application logger. Console output is always on;
// a rotating file writer is added when a filename is configured.
func New(cfg config.LogConfig) zerolog.Logger {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Stamp}}

	if cfg.Filename != "" {
		writers = append(writers, &lumberjack.Logger{Filename: cfg.Filename})
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
}
