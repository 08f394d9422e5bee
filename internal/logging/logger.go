// Package logging provides structured logging for shears.
// Runs log to a timestamped file under the project's .shears/logs
// directory; old files are rotated out by count and age.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

// Severities, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name as it appears in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// slogLevel converts our Level to the slog equivalent.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logFilePrefix and logFileSuffix frame the timestamped log file names.
// The timestamp sorts lexically, so name order is chronological order.
const (
	logFilePrefix = "shears_"
	logFileSuffix = ".log"
)

// Config controls where and how much gets logged.
type Config struct {
	// Level is the lowest severity written.
	Level Level
	// LogDir is where log files land, ".shears/logs" normally.
	LogDir string
	// MaxLogFiles caps how many rotated files survive cleanup.
	MaxLogFiles int
	// MaxLogAge is how old a file may grow before cleanup takes it.
	MaxLogAge time.Duration
	// Console mirrors entries to stderr as well as the file.
	Console bool
	// JSONFormat switches entries from key=value text to JSON.
	JSONFormat bool
}

// DefaultConfig returns the stock logging settings.
func DefaultConfig() *Config {
	return &Config{
		Level:       LevelInfo,
		LogDir:      ".shears/logs",
		MaxLogFiles: 10,
		MaxLogAge:   7 * 24 * time.Hour,
		Console:     true,
		JSONFormat:  false,
	}
}

// Logger is a structured logger for shears.
type Logger struct {
	slog    *slog.Logger
	cfg     *Config
	logFile *os.File
	logPath string
	mu      sync.Mutex
}

// New creates a logger writing to a fresh timestamped file in the
// configured log directory.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logFile, logPath, err := openLogFile(cfg.LogDir)
	if err != nil {
		return nil, err
	}

	sink := io.Writer(logFile)
	if cfg.Console {
		sink = io.MultiWriter(logFile, os.Stderr)
	}

	logger := &Logger{
		slog:    slog.New(newHandler(sink, cfg)),
		cfg:     cfg,
		logFile: logFile,
		logPath: logPath,
	}

	// Rotate out stale files from earlier runs.
	go logger.Cleanup()

	return logger, nil
}

// openLogFile creates the log directory and a timestamped file in it.
func openLogFile(dir string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	name := logFilePrefix + time.Now().Format("20060102_150405") + logFileSuffix
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log file: %w", err)
	}
	return f, path, nil
}

// newHandler builds the slog handler for the configured format.
func newHandler(w io.Writer, cfg *Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel()}
	if cfg.JSONFormat {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// NewNoop returns a logger that discards everything. It stands in
// wherever a nil logger would otherwise get passed around.
func NewNoop() *Logger {
	return &Logger{
		slog: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:  DefaultConfig(),
	}
}

// LogPath reports the file this logger writes to.
func (l *Logger) LogPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logPath
}

// Close releases the underlying log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// logAt dispatches a message at a runtime-chosen level.
func (l *Logger) logAt(level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		l.slog.Debug(msg, args...)
	case LevelWarn:
		l.slog.Warn(msg, args...)
	case LevelError:
		l.slog.Error(msg, args...)
	default:
		l.slog.Info(msg, args...)
	}
}

// With returns a logger that attaches args to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:    l.slog.With(args...),
		cfg:     l.cfg,
		logFile: l.logFile,
		logPath: l.logPath,
	}
}

// Writer adapts the logger into an io.Writer that emits one entry per
// line. Subprocess output pipes through this.
func (l *Logger) Writer(level Level) io.Writer {
	return &lineWriter{logger: l, level: level}
}

// lineWriter buffers writes and logs one entry per complete line.
type lineWriter struct {
	logger *Logger
	level  Level
	buf    []byte
}

// Write buffers p and logs every complete line in it.
func (w *lineWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		w.logger.logAt(w.level, string(w.buf[:idx]))
		w.buf = w.buf[idx+1:]
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *lineWriter) Flush() {
	if len(w.buf) == 0 {
		return
	}
	w.logger.logAt(w.level, string(w.buf))
	w.buf = nil
}

// Cleanup prunes rotated log files past the count and age limits. The
// file currently being written is always kept.
func (l *Logger) Cleanup() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg.LogDir == "" {
		return nil
	}

	entries, err := os.ReadDir(l.cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, logFileSuffix) {
			names = append(names, name)
		}
	}

	// Newest first. The embedded timestamp makes name order reliable
	// where modification times would collide within a second.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	now := time.Now()
	var removed int
	for i, name := range names {
		path := filepath.Join(l.cfg.LogDir, name)
		if path == l.logPath {
			continue
		}

		stale := l.cfg.MaxLogFiles > 0 && i >= l.cfg.MaxLogFiles
		if !stale && l.cfg.MaxLogAge > 0 {
			if info, err := os.Stat(path); err == nil && now.Sub(info.ModTime()) > l.cfg.MaxLogAge {
				stale = true
			}
		}
		if !stale {
			continue
		}

		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	if removed > 0 {
		l.slog.Debug("cleaned up old log files", "count", removed)
	}

	return nil
}
