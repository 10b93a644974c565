// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger defines the interface for leveled logging
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields ...Field)

	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Debug does nothing (no-op implementation)
func (n *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing (no-op implementation)
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing (no-op implementation)
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing (no-op implementation)
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// ANSI color codes used for console log levels
const (
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"
)

// ConsoleLogger writes colored "LEVEL: message" lines, one per call.
// Debug output is suppressed unless Verbose is set.
type ConsoleLogger struct {
	Out     io.Writer
	Verbose bool
	Color   bool

	mu sync.Mutex
}

// NewConsoleLogger creates a console logger writing to stderr
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{Out: os.Stderr, Verbose: verbose, Color: true}
}

// Debug logs debug-level messages when Verbose is set
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if !c.Verbose {
		return
	}
	c.log(colorBlue, "DEBUG", msg, fields)
}

// Info logs informational messages
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(colorGreen, "INFO", msg, fields)
}

// Warn logs warning messages
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(colorYellow, "WARNING", msg, fields)
}

// Error logs error messages
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(colorRed, "ERROR", msg, fields)
}

func (c *ConsoleLogger) log(color, level, msg string, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := level + ": " + msg
	for _, f := range fields {
		line += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	if c.Color {
		line = color + line + colorReset
	}
	fmt.Fprintln(c.Out, line)
}
