// Package logging provides structured logging for shears.
// This file provides the process-wide logger instance.
package logging

import (
	"sync"
)

var (
	globalMu  sync.RWMutex
	global    = NewNoop()
	globalSet bool
)

// Global returns the global logger. Before InitGlobal it is a no-op
// logger, so callers never need a nil check.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal replaces the global logger instance.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
	globalSet = true
}

// Debug logs through the global logger at debug level.
func Debug(msg string, args ...any) {
	Global().Debug(msg, args...)
}

// Info logs through the global logger at info level.
func Info(msg string, args ...any) {
	Global().Info(msg, args...)
}

// Warn logs through the global logger at warn level.
func Warn(msg string, args ...any) {
	Global().Warn(msg, args...)
}

// Error logs through the global logger at error level.
func Error(msg string, args ...any) {
	Global().Error(msg, args...)
}

// With returns the global logger with args attached.
func With(args ...any) *Logger {
	return Global().With(args...)
}

// InitGlobal builds a logger from cfg and installs it process-wide.
// A nil cfg means defaults.
func InitGlobal(cfg *Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// CloseGlobal closes the global log file and falls back to the no-op
// logger. Safe to call more than once.
func CloseGlobal() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if !globalSet {
		return nil
	}
	err := global.Close()
	global = NewNoop()
	globalSet = false
	return err
}
