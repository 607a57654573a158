// Package telemetry carries the ambient logging and metrics concerns the
// teacher gets for free from the Nakama host (runtime.Logger,
// runtime.NakamaModule) but a standalone map-server/orchestrator process
// must set up itself.
package telemetry

import (
	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Debug-level tick
// logging is opt-in via SERVER_TICK_LOG (config.Config.TickLog), mirroring
// the commented-out `logger.Debug` tick lines in game.go and
// physics_engine.go.
func NewLogger(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
