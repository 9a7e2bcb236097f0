package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	once   sync.Once
	logger *zap.Logger
	sugar  *zap.SugaredLogger
)

// Init builds the process-wide logger. The console core is always on; when
// logFile is non-empty a rotated JSON file core is added alongside it.
// Only the first call wins, later calls are no-ops.
func Init(debug bool, logFile string) {
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.LevelKey = "level"
		encoderCfg.MessageKey = "message"
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}

		cores := []zapcore.Core{
			zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stderr), level),
		}

		if logFile != "" {
			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    50,
				MaxBackups: 7,
				MaxAge:     30,
				Compress:   true,
			})
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileWriter, level))
		}

		logger = zap.New(zapcore.NewTee(cores...),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.Fields(zap.String("app", "scangate")),
		)
		sugar = logger.Sugar()
	})
}

// GetSugaredLogger returns the shared sugared logger, initializing the
// defaults if Init has not run yet
func GetSugaredLogger() *zap.SugaredLogger {
	Init(false, "")
	return sugar
}

// Sync flushes buffered log entries; called once on process exit
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
