// Package logging provides the shared logging system for systune. Every
// outcome is mirrored to the console and to an append-only log file, with a
// separate summary log that records one line per completed optimization
// category.
//
// Basic usage:
//
//	cfg := logging.Config{
//	    Level: "info",
//	    Path:  logging.DefaultLogPath(),
//	}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("tuning")
//	logger.Info("governor set", "governor", "performance")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the detailed log file path. Empty uses DefaultLogPath().
	Path string

	// SummaryPath is the summary log file path. Empty uses DefaultSummaryPath().
	SummaryPath string

	// Rotation configures log file rotation for the detailed log.
	Rotation RotationConfig

	// Components maps component names to their log levels, allowing
	// per-component overrides.
	Components map[string]string

	// ConsoleLevel sets the level mirrored to stderr. Empty defaults to
	// "info": this tool talks to a human operator, so console output is on
	// unless explicitly silenced with "none".
	ConsoleLevel string
}

// Logger wraps charmbracelet/log with component identification.
// It writes to both the log file and the console.
type Logger struct {
	file      *log.Logger // always present, io.Discard before Init
	console   *log.Logger // nil when console output is disabled
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// log writes a message to the file and, if configured, the console.
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	logTo(l.file, level, msg, args...)
	if l.console != nil {
		logTo(l.console, level, msg, args...)
	}
}

// logTo writes a log message to the given logger at the specified level.
func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// With returns a new logger with additional context.
func (l *Logger) With(args ...interface{}) *Logger {
	newLogger := &Logger{
		file:      l.file.With(args...),
		component: l.component,
	}
	if l.console != nil {
		newLogger.console = l.console.With(args...)
	}
	return newLogger
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	summary     *SummaryWriter
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger

	consoleEnabled bool
	consoleLevel   Level
}

var globalState = &state{
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

// Init initializes the logging system with the given configuration.
// It must be called before any logging operations. Before Init() is called,
// all loggers write to io.Discard (silent).
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.initialized {
		if globalState.writer != nil {
			if err := globalState.writer.Close(); err != nil {
				return fmt.Errorf("closing existing writer: %w", err)
			}
		}
		if globalState.summary != nil {
			if err := globalState.summary.Close(); err != nil {
				return fmt.Errorf("closing existing summary writer: %w", err)
			}
		}
		globalState.loggers = make(map[string]*Logger)
		globalState.components = make(map[string]Level)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	globalState.level = level

	for comp, lvl := range cfg.Components {
		parsedLevel, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		globalState.components[comp] = parsedLevel
	}

	globalState.consoleEnabled = true
	globalState.consoleLevel = LevelInfo
	switch cfg.ConsoleLevel {
	case "":
	case "none":
		globalState.consoleEnabled = false
	default:
		consoleLevel, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		globalState.consoleLevel = consoleLevel
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}

	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}
	globalState.writer = writer

	summaryPath := cfg.SummaryPath
	if summaryPath == "" {
		summaryPath = DefaultSummaryPath()
	}

	summary, err := NewSummaryWriter(summaryPath)
	if err != nil {
		return fmt.Errorf("creating summary writer: %w", err)
	}
	globalState.summary = summary

	globalState.initialized = true

	// Recreate existing loggers with the new configuration.
	for component := range globalState.loggers {
		globalState.loggers[component] = createLogger(component)
	}

	return nil
}

// Get returns a logger for the given component. If the component has a level
// override in the config, that level is used; otherwise the default applies.
// Before Init() is called, loggers write to io.Discard (silent).
func Get(component string) *Logger {
	globalState.mu.RLock()
	if logger, ok := globalState.loggers[component]; ok {
		globalState.mu.RUnlock()
		return logger
	}
	globalState.mu.RUnlock()

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := createLogger(component)
	globalState.loggers[component] = logger
	return logger
}

// createLogger builds a Logger for a component using the current global
// state. Caller must hold globalState.mu.
func createLogger(component string) *Logger {
	level := globalState.level
	if override, ok := globalState.components[component]; ok {
		level = override
	}

	var fileWriter io.Writer = io.Discard
	if globalState.initialized && globalState.writer != nil {
		fileWriter = globalState.writer
	}

	fileLogger := log.NewWithOptions(fileWriter, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          component,
	})
	fileLogger.SetLevel(level.toCharmLevel())

	logger := &Logger{
		file:      fileLogger,
		component: component,
	}

	if globalState.initialized && globalState.consoleEnabled {
		consoleLogger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
		consoleLevel := globalState.consoleLevel
		if level > consoleLevel {
			consoleLevel = level
		}
		consoleLogger.SetLevel(consoleLevel.toCharmLevel())
		logger.console = consoleLogger
	}

	return logger
}

// Summary records one line for a completed optimization category. The line is
// appended to the summary log and echoed to stdout. Before Init() it is a
// no-op.
func Summary(category, msg string) {
	globalState.mu.RLock()
	summary := globalState.summary
	initialized := globalState.initialized
	globalState.mu.RUnlock()

	if !initialized || summary == nil {
		return
	}
	if err := summary.Record(category, msg); err != nil {
		Get("logging").Error("failed to write summary line", "category", category, "error", err)
	}
}

// Close flushes and closes the log files.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	var errs []error
	if globalState.writer != nil {
		if err := globalState.writer.Close(); err != nil {
			errs = append(errs, err)
		}
		globalState.writer = nil
	}
	if globalState.summary != nil {
		if err := globalState.summary.Close(); err != nil {
			errs = append(errs, err)
		}
		globalState.summary = nil
	}
	globalState.initialized = false
	return errors.Join(errs...)
}

// DefaultLogPath returns the default detailed log path: /var/log when running
// as root (the normal mode for this tool), otherwise the user's XDG state
// directory.
func DefaultLogPath() string {
	if os.Geteuid() == 0 {
		return "/var/log/systune.log"
	}
	path, err := xdg.StateFile("systune/systune.log")
	if err != nil {
		return filepath.Join(os.TempDir(), "systune.log")
	}
	return path
}

// DefaultSummaryPath returns the default summary log path.
func DefaultSummaryPath() string {
	if os.Geteuid() == 0 {
		return "/var/log/systune-summary.log"
	}
	path, err := xdg.StateFile("systune/summary.log")
	if err != nil {
		return filepath.Join(os.TempDir(), "systune-summary.log")
	}
	return path
}
