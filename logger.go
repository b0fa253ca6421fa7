package relic

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// LogLevel is the three-tier severity the LOG_LEVEL environment variable
// selects (§6), ordered so a logger only prints messages at or above its
// configured floor.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogWarning
	LogError
)

func parseLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LogDebug, nil
	case "WARNING":
		return LogWarning, nil
	case "ERROR":
		return LogError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}

// logger is a very simple logger: prints to the terminal, colored by
// severity, gated by a level read once from LOG_LEVEL (default ERROR).
type logger struct {
	mu    sync.Mutex
	level LogLevel
}

var defaultLogger = newLogger()

func newLogger() *logger {
	level := LogError
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := parseLogLevel(s); err == nil {
			level = parsed
		}
	}
	return &logger{level: level}
}

func (l *logger) write(prefix, color_ string, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	colorFn := color.New(colorAttr(color_)).SprintFunc()
	fmt.Fprintln(os.Stderr, colorFn(fmt.Sprintf("[%s] %s", prefix, msg)))
}

func colorAttr(name string) color.Attribute {
	switch name {
	case "blue":
		return color.FgBlue
	case "yellow":
		return color.FgYellow
	case "red":
		return color.FgRed
	default:
		return color.Reset
	}
}

func (l *logger) debug(msg string) {
	if l.level <= LogDebug {
		l.write("DEBUG", "blue", msg)
	}
}

func (l *logger) warning(msg string) {
	if l.level <= LogWarning {
		l.write("WARNING", "yellow", msg)
	}
}

func (l *logger) error(msg string) {
	if l.level <= LogError {
		l.write("ERROR", "red", msg)
	}
}

func logDebug(format string, args ...any)   { defaultLogger.debug(fmt.Sprintf(format, args...)) }
func logWarning(format string, args ...any) { defaultLogger.warning(fmt.Sprintf(format, args...)) }
func logError(format string, args ...any)   { defaultLogger.error(fmt.Sprintf(format, args...)) }
