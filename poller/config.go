package poller

import (
	"time"

	"go.uber.org/zap"
)

// Config controls polling cadence and diagnostics.
type Config struct {
	// InitialBackoff is the first wait between iterations.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential growth of the wait.
	MaxBackoff time.Duration

	// Logger is optional; nil discards diagnostics.
	Logger *zap.Logger
	// Recorder is optional; nil discards metrics.
	Recorder Recorder
}

// DefaultConfig returns the recommended polling cadence.
func DefaultConfig() Config {
	return Config{
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

// ApplyDefaults normalizes zero or negative values using defaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}
}
