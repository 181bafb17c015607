package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数，对应配置文件中的 logger 段
type LogOption struct {
	Format   string // console / json
	LogDir   string // 为空时仅输出到 stdout
	Level    string // debug / info / warn / error
	Compress bool   // 轮转文件是否 gzip 压缩
}

const (
	logFileName   = "parser.log"
	maxSizeMB     = 256
	maxBackups    = 20
	maxAgeDays    = 7
	callerSkipped = 1
)

var sugar atomic.Pointer[zap.SugaredLogger]

func init() {
	// 未调用 Init 时使用 stdout 开发配置，保证单元测试与工具命令可直接打印
	sugar.Store(newSugar(zapcore.AddSync(os.Stdout), LogOption{Format: "console", Level: "info"}))
}

// Init 根据配置替换全局 logger，可重复调用
func Init(opt LogOption) error {
	var ws zapcore.WriteSyncer
	if opt.LogDir == "" {
		ws = zapcore.AddSync(os.Stdout)
	} else {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return err
		}
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, logFileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   opt.Compress,
			LocalTime:  true,
		})
	}
	sugar.Store(newSugar(ws, opt))
	return nil
}

func newSugar(ws zapcore.WriteSyncer, opt LogOption) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(opt.Format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(parseLevel(opt.Level)))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(callerSkipped)).Sugar()
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Sync 刷新缓冲，进程退出前调用
func Sync() {
	_ = sugar.Load().Sync()
}

func Debugf(format string, args ...any) { sugar.Load().Debugf(format, args...) }
func Infof(format string, args ...any)  { sugar.Load().Infof(format, args...) }
func Warnf(format string, args ...any)  { sugar.Load().Warnf(format, args...) }
func Errorf(format string, args ...any) { sugar.Load().Errorf(format, args...) }
