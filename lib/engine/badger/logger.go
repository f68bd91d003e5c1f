package badger

import (
	"fmt"
	"log"
	"os"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// --------------------------------------------------------------------------
// Custom Logger (implements badger's Logger interface)
// --------------------------------------------------------------------------

type logLevel int

const (
	levelError logLevel = iota
	levelWarn
	levelInfo
	levelDebug
)

// engineLogger implements the badgerdb.Logger interface with custom formatting
type engineLogger struct {
	level  logLevel
	logger *log.Logger
}

func (l *engineLogger) Errorf(format string, args ...interface{}) {
	if l.level >= levelError {
		l.log("ERROR", format, args...)
	}
}

func (l *engineLogger) Warningf(format string, args ...interface{}) {
	if l.level >= levelWarn {
		l.log("WARN", format, args...)
	}
}

func (l *engineLogger) Infof(format string, args ...interface{}) {
	if l.level >= levelInfo {
		l.log("INFO", format, args...)
	}
}

func (l *engineLogger) Debugf(format string, args ...interface{}) {
	if l.level >= levelDebug {
		l.log("DEBUG", format, args...)
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *engineLogger) log(levelStr string, format string, args ...interface{}) {
	// badger terminates its own messages with a newline
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.logger.Printf("%-5s | %-15s | %s", levelStr, "engine/badger", message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// newLogger creates a leveled logger for the badger engine. The level string
// is one of "debug", "info", "warn", "error"; anything else falls back to
// "warn".
func newLogger(level string) badgerdb.Logger {
	return &engineLogger{
		level:  parseLogLevel(level),
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime),
	}
}

// parseLogLevel converts a string level to the internal log level
func parseLogLevel(level string) logLevel {
	switch strings.ToLower(level) {
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warning", "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelWarn
	}
}
