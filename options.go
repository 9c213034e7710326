package uieval

import (
	"log/slog"
	"runtime"
)

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	threshold float64
	policy    Policy
	workers   int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		threshold: DefaultThreshold,
		policy:    FirstFit,
		workers:   runtime.NumCPU(),
		logger:    slog.Default(),
	}
}

// WithThreshold sets the minimum overlap for a match (default: 0.5).
func WithThreshold(t float64) Option {
	return func(c *config) {
		c.threshold = t
	}
}

// WithPolicy sets the matching policy (default: FirstFit).
func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithWorkers sets how many files are evaluated concurrently (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
