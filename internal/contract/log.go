package contract

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// logger writes human readable diagnostics to stderr so stdout stays clean for results.
var logger = NewLogger(os.Stderr, zerolog.InfoLevel)

// NewLogger creates a console logger at the given level.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// SetLogLevel changes the level of the shared logger.
func SetLogLevel(level zerolog.Level) {
	logger = logger.Level(level)
}

// Logger returns the shared logger.
func Logger() *zerolog.Logger {
	return &logger
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.Fatal().Err(err).Msg(msg)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	logger.Warn().Err(err).Msg(msg)
}

// LogDebug logs a debug message with key/value context.
func LogDebug(msg string, fields map[string]any) {
	logger.Debug().Fields(fields).Msg(msg)
}
