// Package logging wraps logrus behind the small interface every worker and
// peripheral driver depends on, following the teacher's constructor-
// injected logger handle idiom instead of a package-level global.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of logging operations a worker or peripheral driver
// needs. Any *logrus.Entry satisfies it via the entry adapter below.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
}

// entry adapts *logrus.Entry to Logger.
type entry struct {
	*logrus.Entry
}

func (e entry) WithField(key string, value interface{}) Logger {
	return entry{e.Entry.WithField(key, value)}
}

// Config controls the base logrus logger's level and output.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Output io.Writer
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{Level: "info", Output: os.Stderr}
}

// New builds a root Logger from Config, defaulting to info level on
// stderr when config is nil.
func New(config *Config) Logger {
	if config == nil {
		config = DefaultConfig()
	}
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return entry{logrus.NewEntry(l)}
}

// ForWorker tags every message from base with the owning worker's name
// (primary/network/indicator), generalizing the teacher's per-queue
// Debugf prefixing to per-process tagging.
func ForWorker(base Logger, worker string) Logger {
	return base.WithField("worker", worker)
}

var (
	defaultLogger Logger
	mu            sync.RWMutex
)

// Default returns the default logger, creating it if necessary.
func Default() Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Noop returns a logger that discards everything, the safe zero-value
// default a nil *Error-free call site can pass around.
func Noop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return entry{logrus.NewEntry(l)}
}
