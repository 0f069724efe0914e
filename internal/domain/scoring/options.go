package scoring

import "math"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDefaultAgeMonths sets the age assumed when a caller supplies neither an
// age nor an age category.
func WithDefaultAgeMonths(months float64) Option {
	return func(e *Engine) {
		if months >= 0 && !math.IsInf(months, 0) {
			e.defaultAge = months
		}
	}
}

// WithScorer registers an additional scorer or replaces a bundled one.
func WithScorer(s Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.register(s)
		}
	}
}
