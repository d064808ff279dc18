package log

import (
	"io"
	"os"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// SetupLogger installs a JSON zerolog logger on stderr as the process-wide
// logger and routes errors.Warn through it.
func SetupLogger(loglevel string) error {
	return SetupLoggerTo(os.Stderr, loglevel)
}

// SetupLoggerTo is SetupLogger with an explicit destination.
func SetupLoggerTo(w io.Writer, loglevel string) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	logger := NewZerologLogger(w, level)
	SetLogger(logger)
	errors.SetZerologWarnFunc(func(warning error) {
		logger.Warn(warning.Error(), ErrorTypeKey, errorType(warning), "warning", warning)
	})
	return nil
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch level {
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}
