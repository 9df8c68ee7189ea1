package voxelfusion

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Logger is the logging surface the Dispatcher accepts. The kernels take no
// Logger: numerical no-ops (pixel out of frame, ambiguous Marching Cubes
// cube, zero weight) return without logging.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.mu.Lock()
	dbg := l.debug
	l.mu.Unlock()
	if !dbg {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

// CallLogger scopes a Logger to one Dispatcher.Execute call, stamping every
// message with a call id and op code so log lines from interleaved
// concurrent calls stay attributable to the call that produced them.
type CallLogger struct {
	Logger
	CallID string
	Op     OpCode
}

// NewCallLogger wraps base with a fresh call id for op.
func NewCallLogger(base Logger, op OpCode) CallLogger {
	return CallLogger{Logger: base, CallID: uuid.New().String(), Op: op}
}

func (l CallLogger) prefix(format string) string {
	return fmt.Sprintf("call=%s op=%s %s", l.CallID, l.Op, format)
}

func (l CallLogger) Debugf(format string, args ...any) {
	l.Logger.Debugf(l.prefix(format), args...)
}

func (l CallLogger) Infof(format string, args ...any) {
	l.Logger.Infof(l.prefix(format), args...)
}

func (l CallLogger) Warnf(format string, args ...any) {
	l.Logger.Warnf(l.prefix(format), args...)
}

func (l CallLogger) Errorf(format string, args ...any) {
	l.Logger.Errorf(l.prefix(format), args...)
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything. Used as the
// default when a caller does not supply one.
func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
