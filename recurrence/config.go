package recurrence

import (
	"io"
	"log/slog"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// MaxInstances is used when GenerateInstances receives maxInstances <= 0.
	MaxInstances int
	// MaxIterations bounds the number of candidates examined per call,
	// including the fast-forward to rangeStart.
	MaxIterations int
	// Logger receives debug output about truncated expansions. Nil discards.
	Logger *slog.Logger
}

// DefaultEngineConfig provides sensible defaults for production use
var DefaultEngineConfig = EngineConfig{
	MaxInstances:  1000,
	MaxIterations: 500000, // over a thousand years of daily candidates
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.MaxInstances <= 0 {
		config.MaxInstances = DefaultEngineConfig.MaxInstances
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultEngineConfig.MaxIterations
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		config: config,
		logger: logger,
	}
}
