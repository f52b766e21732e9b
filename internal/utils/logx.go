package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"server_kagero/internal/dataType"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogxManager struct {
	basePath string
	logger   *zap.Logger
}

var (
	defaultManager *LogxManager
	managerOnce    sync.Once
)

// InitLogx sets up the shared logger. Safe to call once from main; callers
// before init fall back to stdout.
func InitLogx(basePath string) {
	managerOnce.Do(func() {
		defaultManager = newManager(basePath)
	})
}

func newManager(base string) *LogxManager {
	m := &LogxManager{basePath: base}

	encCfg := zapcore.EncoderConfig{MessageKey: "msg", LineEnding: zapcore.DefaultLineEnding}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	var out zapcore.WriteSyncer
	if base == "" {
		out = zapcore.AddSync(os.Stdout)
	} else {
		if err := os.MkdirAll(base, 0744); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log dir %s: %v\n", base, err)
			out = zapcore.AddSync(os.Stdout)
		} else {
			out = zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(base, "kagero.log"),
				MaxSize:    50, // megabytes
				MaxBackups: 5,
				MaxAge:     30, // days
			})
		}
	}

	core := zapcore.NewCore(encoder, out, zapcore.DebugLevel)
	m.logger = zap.New(core)
	return m
}

func getManager() *LogxManager {
	managerOnce.Do(func() {
		defaultManager = newManager("")
	})
	return defaultManager
}

func logLine(reqData dataType.VisitorRequest, msg, msg2 string) string {
	return fmt.Sprintf("%s - - [%s] %s %s %s %s %s",
		reqData.RemoteIP,
		time.Now().Format("02/Jan/2006:15:04:05 -0700"),
		msg,
		reqData.Host,
		reqData.Country,
		reqData.UserAgent,
		msg2,
	)
}

func LogInfo(reqData dataType.VisitorRequest, msg, msg2 string) {
	getManager().logger.Info(logLine(reqData, msg, msg2))
}

func LogError(reqData dataType.VisitorRequest, msg, msg2 string) {
	getManager().logger.Error(logLine(reqData, msg, msg2))
}

func LogDebug(reqData dataType.VisitorRequest, msg, msg2 string) {
	getManager().logger.Debug(logLine(reqData, msg, msg2))
}
