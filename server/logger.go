package server

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"blobarena/config"
)

// Log 是全局可用的 SugaredLogger，用于统一日志输出到文件
var Log = zap.NewNop().Sugar()

// InitLogger 初始化 zap 日志到本地文件（支持滚动），可选同时输出到 stderr
func InitLogger(cfg config.LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   cfg.Compress,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)
	core := zapcore.NewCore(encoder, zapcore.AddSync(lj), level)
	if cfg.Stderr {
		core = zapcore.NewTee(core, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(core, zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
