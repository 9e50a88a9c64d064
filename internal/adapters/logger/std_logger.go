package logger

import (
	"io"
	"os"

	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
	"github.com/baditaflorin/l"
)

// StdLogger adapts the l.Logger to the ports.Logger interface.
type StdLogger struct {
	logger l.Logger
}

// DefaultConfig is the logger configuration used when the caller supplies none.
func DefaultConfig(output io.Writer, jsonFormat bool) l.Config {
	if output == nil {
		output = os.Stdout
	}
	return l.Config{
		Output:      output,
		JsonFormat:  jsonFormat,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,      // 1MB buffer
		MaxFileSize: 10 * 1024 * 1024, // 10MB max file size
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	}
}

// NewStdLogger creates a new standard logger adapter with default configuration.
func NewStdLogger() (ports.Logger, error) {
	return NewCustomStdLogger(DefaultConfig(os.Stdout, false))
}

// NewCustomStdLogger creates a new standard logger with custom configuration.
func NewCustomStdLogger(config l.Config) (ports.Logger, error) {
	logger, err := l.NewStandardFactory().CreateLogger(config)
	if err != nil {
		return nil, err
	}

	return &StdLogger{logger: logger}, nil
}

// Debug logs a debug message.
func (s *StdLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.logger.Debug(msg, keysAndValues...)
}

// Info logs an info message.
func (s *StdLogger) Info(msg string, keysAndValues ...interface{}) {
	s.logger.Info(msg, keysAndValues...)
}

// Warn logs a warning message.
func (s *StdLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.logger.Warn(msg, keysAndValues...)
}

// Error logs an error message.
func (s *StdLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logger.Error(msg, keysAndValues...)
}

// Close flushes and closes the underlying logger.
func (s *StdLogger) Close() error {
	return s.logger.Close()
}

// FromExisting creates a new StdLogger from an existing l.Logger.
func FromExisting(logger l.Logger) ports.Logger {
	return &StdLogger{logger: logger}
}
