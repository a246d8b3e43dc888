// Package log provides structured logging for r55vm using zap.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with r55vm-specific helpers.
type Logger struct {
	*zap.Logger
	onSyscall func(pc uint64, depth int, name, detail string) // trace callback for serviced syscalls
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	// Shorter timestamps in development
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fallback to no-op if config fails
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// SetOnSyscall sets the trace callback invoked whenever the bridge
// services a syscall.
func (l *Logger) SetOnSyscall(fn func(pc uint64, depth int, name, detail string)) {
	l.onSyscall = fn
}

// Syscall logs a serviced syscall and calls the trace callback if set.
// This is the primary method internal/bridge's driver uses to report
// activity.
func (l *Logger) Syscall(pc uint64, depth int, name, detail string) {
	if l.onSyscall != nil {
		l.onSyscall(pc, depth, name, detail)
	}

	l.Debug("syscall",
		zap.String("name", name),
		zap.String("detail", detail),
		zap.Int("depth", depth),
		zap.Uint64("pc", pc),
	)
}

// Frame logs frame lifecycle events (create, suspend, resume, pop).
func (l *Logger) Frame(event string, depth int, target string) {
	l.Debug("frame",
		zap.String("event", event),
		zap.Int("depth", depth),
		zap.String("target", target),
	)
}

// HostDenied logs a syscall the Host refused (e.g. SLoad on an
// unrecognized contract).
func (l *Logger) HostDenied(name string, pc uint64) {
	l.Warn("host denied",
		zap.String("name", name),
		zap.Uint64("pc", pc),
	)
}

// WithDepth returns a logger with the frame depth field preset.
func (l *Logger) WithDepth(depth int) *Logger {
	return &Logger{
		Logger:    l.Logger.With(zap.Int("depth", depth)),
		onSyscall: l.onSyscall,
	}
}

// Hex formats a uint64 as hex string for logging.
func Hex(addr uint64) string {
	return "0x" + hexString(addr)
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Field helpers for common patterns.

// Addr creates an address field.
func Addr(addr uint64) zap.Field {
	return zap.String("addr", Hex(addr))
}

// Size creates a size field.
func Size(size uint64) zap.Field {
	return zap.Uint64("size", size)
}

// PC creates a program-counter field.
func PC(pc uint64) zap.Field {
	return zap.String("pc", Hex(pc))
}

// Fn creates a syscall-name field.
func Fn(name string) zap.Field {
	return zap.String("fn", name)
}
