// Package logging provides the leveled logger used across fsindex.
//
// Until Init is called every call is a no-op, so library code can log freely.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	maxLogSize      = 10 * 1024 * 1024 // 10MB
	maxLogRotations = 5
)

// Config controls where and how much is logged.
type Config struct {
	Level string // debug, info, warn, error
	// File is the log file path. Empty uses os.TempDir()/fsindex-logs/fsindex.log,
	// "stderr" logs to the console.
	File string
}

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
	file  *os.File
)

// Init opens the log destination and installs the global logger.
func Init(cfg Config) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var (
		ws  zapcore.WriteSyncer
		out *os.File
	)
	if cfg.File == "stderr" {
		ws = zapcore.Lock(os.Stderr)
	} else {
		path := cfg.File
		if path == "" {
			path = filepath.Join(os.TempDir(), "fsindex-logs", "fsindex.log")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		rotateLogFile(path)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
		ws = zapcore.AddSync(f)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	old := file
	sugar = logger.Sugar()
	file = out
	mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Close flushes pending entries and closes the log file, reverting to no-op
// logging.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	_ = sugar.Sync()
	sugar = zap.NewNop().Sugar()

	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// rotateLogFile shifts path to path.1, path.1 to path.2 and so on once it
// grows past maxLogSize.
func rotateLogFile(path string) {
	fi, err := os.Stat(path)
	if err != nil || fi.Size() <= maxLogSize {
		return
	}
	for i := maxLogRotations - 1; i > 0; i-- {
		os.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}
	os.Rename(path, path+".1")
}

func logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debugf writes a debug message to the log
func Debugf(format string, args ...interface{}) {
	logger().Debugf(format, args...)
}

// Infof writes an info message to the log
func Infof(format string, args ...interface{}) {
	logger().Infof(format, args...)
}

// Warnf writes a warning to the log
func Warnf(format string, args ...interface{}) {
	logger().Warnf(format, args...)
}

// Errorf writes an error message to the log
func Errorf(format string, args ...interface{}) {
	logger().Errorf(format, args...)
}
