package logger

import corelogger "github.com/FilipeDoria/genetic-load-manager/core/logger"

// Logger aliases the core interface so callers wiring infra packages do
// not need a second import.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Infow(string, map[string]any)  {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component. The output format follows
// the APP_ENV environment variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
