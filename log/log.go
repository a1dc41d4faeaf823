package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leadsight/leadsight/config"
)

// Logger is the process-wide structured logger. Init must run before any
// other package uses it; until then it is a no-op logger so tests don't
// have to set it up.
var Logger = zap.NewNop()

// Init builds the global logger from the log configuration.
func Init(cfg config.LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return err
	}

	Logger = l
	return nil
}

// Sync flushes buffered log entries. Safe to call on shutdown.
func Sync() {
	_ = Logger.Sync()
}
