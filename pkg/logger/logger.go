package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"video-pipeline-service/pkg/config"
)

// Logger wraps a configured logrus logger.
type Logger struct {
	entry *logrus.Logger
	file  io.Closer
}

var (
	globalMu sync.RWMutex
	global   = &Logger{entry: logrus.StandardLogger()}
)

// NewLogger builds a logger from service configuration.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger := &Logger{entry: l}
	if cfg.Log.Output == "file" && cfg.Log.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Filename), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				l.SetOutput(f)
				logger.file = f
			}
		}
	}
	return logger
}

// SetGlobalLogger installs the logger used by the package-level helpers.
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// Close releases the log file, if any.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func current() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global.entry
}

func Debug(msg string, fields map[string]interface{}) {
	current().WithFields(fields).Debug(msg)
}

func Info(msg string, fields map[string]interface{}) {
	current().WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	current().WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]interface{}) {
	current().WithFields(fields).Error(msg)
}

func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { current().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// Fatal logs the message and exits.
func Fatal(msg string) {
	current().Fatal(msg)
}
