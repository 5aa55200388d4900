// Package debug writes the diagnostic log. The terminal belongs to the UI, so
// nothing is logged until Enable points the logger at a file.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  = zap.NewNop()
	sink    *os.File
	enabled bool
)

// Enable starts debug logging to path, truncating it.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	sink = f
	logger = zap.New(zapcore.NewCore(encoder(), zapcore.AddSync(f), zapcore.DebugLevel))
	enabled = true

	logger.Named("debug").Info("=== Debug logging started ===")
	return nil
}

func encoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}

// Disable flushes and stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	_ = logger.Sync()
	sink.Close()
	sink = nil
	logger = zap.NewNop()
	enabled = false
}

// Enabled reports whether Log writes anywhere.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// L returns the current logger for structured fields.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a message to the debug log under category
func Log(category, format string, args ...any) {
	l := L()
	if ce := l.Check(zapcore.DebugLevel, ""); ce == nil {
		return
	}
	l.Named(category).Debug(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n > 0 && count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
