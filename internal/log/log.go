// Package log wraps a *zap.Logger for the driver's informational log
// lines: one on each successful init/read/write/close, plus the cache
// and latency statistics summary emitted at close.
package log

import "go.uber.org/zap"

// T is the logger the driver writes its informational lines through.
type T struct {
	z *zap.Logger
}

// New builds a T in production mode (JSON, info level and above).
func New() (*T, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &T{z: z}, nil
}

// NewDevelopment builds a T in development mode (console-friendly,
// debug level and above).
func NewDevelopment() (*T, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &T{z: z}, nil
}

// Nop returns a T that discards everything, for callers that don't want
// logging (e.g. unit tests).
func Nop() *T { return &T{z: zap.NewNop()} }

func (t *T) Info(msg string, fields ...zap.Field)  { t.z.Info(msg, fields...) }
func (t *T) Warn(msg string, fields ...zap.Field)  { t.z.Warn(msg, fields...) }
func (t *T) Error(msg string, fields ...zap.Field) { t.z.Error(msg, fields...) }
func (t *T) Debug(msg string, fields ...zap.Field) { t.z.Debug(msg, fields...) }

// Sync flushes any buffered log entries.
func (t *T) Sync() error { return t.z.Sync() }
