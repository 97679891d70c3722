package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const FileName = "apivengers.log"

var Logger *zap.Logger

// InitLogger installs a global logger writing coloured text to stdout and
// JSON to a rotated file under <dataDir>/logs.
func InitLogger(dataDir string) error {
	// Ensure logs directory exists
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	// Rotate the file log with lumberjack
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    5, // MB
		MaxBackups: 7,
		MaxAge:     30, // days
		Compress:   true,
		LocalTime:  true,
	}

	Logger = New(zapcore.Lock(os.Stdout), zapcore.AddSync(rotator), level())
	zap.ReplaceGlobals(Logger)
	return nil
}

// New builds the console+JSON tee used by InitLogger on arbitrary writers.
func New(console, file zapcore.WriteSyncer, lvl zapcore.Level) *zap.Logger {
	enc := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder, // Colored level for console
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	// No colors in the file
	fileEnc := enc
	fileEnc.EncodeLevel = zapcore.CapitalLevelEncoder

	// Console gets text, the file gets JSON
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(enc), console, lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), file, lvl),
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func level() zapcore.Level {
	if os.Getenv("DEBUG") != "" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// GetLogWriter returns an io.Writer that logs each write at Info level. It
// falls back to the global logger before InitLogger runs.
func GetLogWriter() io.Writer {
	return &logWriter{}
}

type logWriter struct{}

func (w *logWriter) Write(p []byte) (n int, err error) {
	l := Logger
	if l == nil {
		l = zap.L()
	}
	l.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
