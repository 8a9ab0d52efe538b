// Package logging provides leveled, named loggers for the engine and its
// embedders. Loggers are cheap to look up by component name and share one
// output format.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Log Levels
// --------------------------------------------------------------------------

type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

// ParseLogLevel converts a string level to a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger Interface
// --------------------------------------------------------------------------

// ILogger is the minimal leveled logging capability used across the
// engine.
type ILogger interface {
	SetLevel(level LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// --------------------------------------------------------------------------
// Implementation
// --------------------------------------------------------------------------

// namedLogger implements ILogger with custom formatting.
type namedLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *namedLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *namedLogger) Debugf(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.log("DEBUG", format, args...)
	}
}

func (l *namedLogger) Infof(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.log("INFO", format, args...)
	}
}

func (l *namedLogger) Warningf(format string, args ...interface{}) {
	if l.level >= LevelWarning {
		l.log("WARN", format, args...)
	}
}

func (l *namedLogger) Errorf(format string, args ...interface{}) {
	if l.level >= LevelError {
		l.log("ERROR", format, args...)
	}
}

// log formats and writes a log message. this internal helper is used by
// the public methods
func (l *namedLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Registry
// --------------------------------------------------------------------------

var loggers = xsync.NewMapOf[string, *namedLogger]()

// GetLogger returns the shared logger for a component name, creating it
// at INFO level on first use.
func GetLogger(name string) ILogger {
	l, _ := loggers.LoadOrStore(name, &namedLogger{
		name:   name,
		level:  LevelInfo,
		logger: log.New(os.Stdout, "", log.Ldate|log.Ltime),
	})
	return l
}

// SetLevelAll applies a level to every logger created so far.
func SetLevelAll(level LogLevel) {
	loggers.Range(func(_ string, l *namedLogger) bool {
		l.SetLevel(level)
		return true
	})
}
