// Package logger provides context-aware structured logging on top of logrus.
// Diagnostics go to stderr so machine-readable output on stdout stays clean.
package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	// G is a convenience alias for GetLogger.
	G = GetLogger
	// L is the global logger entry used as a fallback when no logger is found in context.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger attaches a logger entry to the given context, making it retrievable via GetLogger.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	e := logger.WithContext(ctx)
	return context.WithValue(ctx, loggerKey{}, e)
}

// GetLogger retrieves the logger entry from the context. If no logger is found,
// it returns the global logger L with the context attached.
func GetLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(loggerKey{})
	if logger == nil {
		return L.WithContext(ctx)
	}
	return logger.(*logrus.Entry)
}

// SetVerbose switches the global logger between the default warn level and
// debug level. The CLI calls this once before running any command.
func SetVerbose(verbose bool) {
	if verbose {
		L.Logger.SetLevel(logrus.DebugLevel)
		return
	}
	L.Logger.SetLevel(logrus.WarnLevel)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
	}
	return l
}
