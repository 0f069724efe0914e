package service

import (
	"time"

	"github.com/okian/pediscore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines. It also bounds the
// concurrency of synchronous batches.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the assessment queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of history shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithHistoryLimit caps the assessments kept per patient. Zero keeps all.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.historyLimit = n
		}
	}
}

// WithMaxBatchSize caps the number of requests in a synchronous batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithDefaultAgeMonths sets the age assumed when a request carries none.
func WithDefaultAgeMonths(months float64) Option {
	return func(s *Service) {
		if months >= 0 {
			s.defaultAgeMonths = &months
		}
	}
}

// WithCompositeWeights overrides composite risk weights by score type name.
func WithCompositeWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.weights = s.weights.Merge(weights)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the time source used to stamp assessments.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
