package loader

import (
	"time"

	"go.uber.org/zap"
)

// DefaultLoadTimeout bounds a single module load.
const DefaultLoadTimeout = 30 * time.Second

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithLoadTimeout bounds each load attempt. Non-positive values keep the default.
func WithLoadTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.loadTimeout = d
		}
	}
}

// WithMetrics reports lifecycle and operation metrics to m.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// ModuleSpec is descriptive metadata kept with a registered module.
type ModuleSpec struct {
	Kind   string // "native" or "wasm"
	Source string // where the module binary comes from, if any
	Level  int    // default compression level, 0 = codec default
}

// ModuleOption configures a registered module.
type ModuleOption func(*ModuleSpec)

// WithLevel sets the level Compress uses for this module.
func WithLevel(level int) ModuleOption {
	return func(s *ModuleSpec) { s.Level = level }
}

func WithKind(kind string) ModuleOption {
	return func(s *ModuleSpec) { s.Kind = kind }
}

func WithSource(source string) ModuleOption {
	return func(s *ModuleSpec) { s.Source = source }
}
