package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func build(level int) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.Level(level))
	zapCfg.EncoderConfig.CallerKey = "ln"
	zapCfg.EncoderConfig.FunctionKey = ""
	zapCfg.EncoderConfig.LevelKey = "severity"
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout is reserved for the MCP stdio transport, so logs always go to stderr
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

// New builds the process logger at the given zap level (-1 debug .. 2 error)
// and installs it as the global logger. The returned func restores the
// previous globals and flushes.
func New(level int) (*zap.Logger, func()) {
	lg, err := build(level)
	if err != nil {
		log.Fatalf("fail to init logger, error: %v", err)
	}

	undo := zap.ReplaceGlobals(lg)

	return lg, func() {
		undo()
		_ = lg.Sync()
	}
}
