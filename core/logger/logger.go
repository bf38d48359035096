// Package logger defines the logging interface the core packages depend on.
// Adapters live in infra/logger so the solver itself stays free of any
// logging backend.
package logger

// Logger exposes logging methods for common severity levels. Debugw carries
// structured fields; the optimizer uses it for per-run summaries.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
