package logx

import (
	"errors"
	"log"
	"syscall"

	"go.uber.org/zap"
)

var Logger *zap.SugaredLogger = zap.NewNop().Sugar()

func NewLogger() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf(`level=error msg="%s" desc="%s"`, err.Error(), "could not create new zap instance")
	}

	Use(logger)
}

// NewProductionLogger switches to JSON output at info level.
func NewProductionLogger() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf(`level=error msg="%s" desc="%s"`, err.Error(), "could not create new zap instance")
	}

	Use(logger)
}

// NewNopLogger silences all output. Used by tests.
func NewNopLogger() {
	Logger = zap.NewNop().Sugar()
}

// Sync flushes any buffered entries.
func Sync() {
	err := Logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		// https://github.com/uber-go/zap/issues/328
		return
	}
	if err != nil {
		log.Printf(`level=error msg="%s" desc="%s"`, err.Error(), "could not sync (flush) logger")
	}
}

// Use installs logger as the global logger.
func Use(logger *zap.Logger) {
	Logger = logger.Sugar()
}
