package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide logger. Init must run before anything logs.
var Log *zap.SugaredLogger

func Init() {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
