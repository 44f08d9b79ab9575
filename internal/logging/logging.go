package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/log"
)

// DefaultLevel keeps the report on stdout free of chatter unless asked for
const DefaultLevel = "warn"

const shutdownTimeout = 2 * time.Second

// New creates a logger that writes to stderr only; stdout is reserved for the report
func New(level string) (*log.Logger, error) {
	levelValue, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := log.NewLogger()
	if err := logger.InitWithDefaults(
		fmt.Sprintf("level=%d", levelValue),
		"disable_file=true",
		"enable_stdout=true",
		"stdout_target=stderr",
	); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// Shutdown flushes pending entries
func Shutdown(logger *log.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Shutdown(shutdownTimeout)
}

// ParseLevel maps a level name to the logger's numeric level
func ParseLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "", "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
