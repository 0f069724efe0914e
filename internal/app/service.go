// Package service wires the scoring engine to the queue, worker pool and
// assessment history, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pediscore/internal/adapters/mq/queue"
	workerpool "github.com/okian/pediscore/internal/adapters/mq/worker"
	"github.com/okian/pediscore/internal/adapters/repository"
	"github.com/okian/pediscore/internal/domain/composite"
	"github.com/okian/pediscore/internal/domain/dedupe"
	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/scoring"
	"github.com/okian/pediscore/internal/domain/types"
	"github.com/okian/pediscore/pkg/logger"
	"github.com/okian/pediscore/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize    = 10000
	defaultDedupeSize   = 50000
	defaultShardCount   = 16
	defaultHistoryLimit = 500
	defaultMaxBatchSize = 100
)

// Receipt acknowledges a queued assessment.
type Receipt struct {
	AssessmentID string
	Duplicate    bool
}

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine  *scoring.Engine
	store   *repository.MemStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	shardCount       int
	historyLimit     int
	maxBatchSize     int
	defaultAgeMonths *float64
	weights          composite.Weights
	now              func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a new Service. The engine is ready immediately; history and
// the queue exist only between Start and Stop.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		shardCount:   defaultShardCount,
		historyLimit: defaultHistoryLimit,
		maxBatchSize: defaultMaxBatchSize,
		weights:      composite.DefaultWeights(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	var engineOpts []scoring.Option
	if s.defaultAgeMonths != nil {
		engineOpts = append(engineOpts, scoring.WithDefaultAgeMonths(*s.defaultAgeMonths))
	}
	s.engine = scoring.New(engineOpts...)
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting scoring service...")

	s.store = repository.NewMemStore(ctx,
		repository.WithShardCount(s.shardCount),
		repository.WithHistoryLimit(s.historyLimit),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("historyLimit", s.historyLimit),
	)
	return nil
}

// Stop drains the queue and shuts the workers down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping scoring service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// Score computes one result synchronously. When the request names a patient
// and the score succeeds, the assessment is added to that patient's history.
func (s *Service) Score(ctx context.Context, req model.ScoreRequest) (model.Assessment, error) { //nolint:gocritic // hugeParam: request is a value type
	res := s.compute(req)
	a := req.Job(uuid.NewString(), s.now()).Assessment(res)
	if req.PatientID == "" || !a.Scored() {
		return a, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return a, ErrNotStarted
	}
	if err := s.store.Save(ctx, a); err != nil {
		return a, fmt.Errorf("store assessment: %w", err)
	}
	metrics.RecordAssessmentStored()
	return a, nil
}

func (s *Service) compute(req model.ScoreRequest) types.Result { //nolint:gocritic // hugeParam: request is a value type
	start := time.Now()
	res := s.engine.Compute(req.ScoreType, req.Input, req.Patient)
	workerpool.RecordOutcome(res, time.Since(start))
	return res
}

// ScoreBatch scores reqs concurrently and returns the assessments in request
// order. Engine failures stay inside each result.
func (s *Service) ScoreBatch(ctx context.Context, reqs []model.ScoreRequest) ([]model.Assessment, error) {
	if len(reqs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(reqs), s.maxBatchSize)
	}

	out := make([]model.Assessment, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, req := range reqs {
		g.Go(func() error {
			a, err := s.Score(gctx, req)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Submit queues req for asynchronous scoring. A repeated RequestID returns
// the original assessment ID with Duplicate set.
func (s *Service) Submit(ctx context.Context, req model.ScoreRequest) (Receipt, error) { //nolint:gocritic // hugeParam: request is a value type
	if req.PatientID == "" {
		return Receipt{}, fmt.Errorf("%w: patientId is required", ErrInvalidRequest)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Receipt{}, ErrNotStarted
	}

	id := uuid.NewString()
	if req.RequestID != "" {
		if original, seen := s.deduper.SeenAndRecord(ctx, req.RequestID, id); seen {
			metrics.RecordAssessmentDuplicate()
			s.logger.Debug(ctx, "duplicate request", logger.String("requestID", req.RequestID))
			return Receipt{AssessmentID: original, Duplicate: true}, nil
		}
	}

	if err := s.queue.Enqueue(ctx, req.Job(id, s.now())); err != nil {
		if req.RequestID != "" {
			s.deduper.Unrecord(ctx, req.RequestID)
		}
		if errors.Is(err, queue.ErrFull) {
			return Receipt{}, fmt.Errorf("%w: %w", ErrQueueFull, err)
		}
		return Receipt{}, fmt.Errorf("enqueue assessment: %w", err)
	}
	return Receipt{AssessmentID: id}, nil
}

// Get returns a stored assessment. Queued assessments are not found until
// a worker has scored them.
func (s *Service) Get(ctx context.Context, id string) (model.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Assessment{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// History returns a patient's assessments oldest first. scoreType may be
// empty to include every type.
func (s *Service) History(ctx context.Context, patientID, scoreType string) ([]model.Assessment, error) {
	var t types.ScoreType
	if scoreType != "" {
		parsed, err := parseType(scoreType)
		if err != nil {
			return nil, err
		}
		t = parsed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.History(ctx, patientID, t)
}

// Risk returns the composite risk of a patient. A patient without history
// is not found.
func (s *Service) Risk(ctx context.Context, patientID string) (composite.Summary, error) {
	history, err := s.patientHistory(ctx, patientID)
	if err != nil {
		return composite.Summary{}, err
	}
	return composite.Risk(history, s.weights), nil
}

// Trend returns the chronological series of one score type for a patient.
func (s *Service) Trend(ctx context.Context, patientID, scoreType string) (composite.Series, error) {
	if scoreType == "" {
		return composite.Series{}, fmt.Errorf("%w: scoreType is required", ErrInvalidRequest)
	}
	t, err := parseType(scoreType)
	if err != nil {
		return composite.Series{}, err
	}
	history, err := s.patientHistory(ctx, patientID)
	if err != nil {
		return composite.Series{}, err
	}
	return composite.Trend(history, t), nil
}

func (s *Service) patientHistory(ctx context.Context, patientID string) ([]model.Assessment, error) {
	history, err := s.History(ctx, patientID, "")
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no assessments for patient %s", ErrNotFound, patientID)
	}
	return history, nil
}

// Schemas returns the input schema of every score type.
func (s *Service) Schemas() []scoring.Schema { return s.engine.Schemas() }

// Schema returns the input schema of one score type.
func (s *Service) Schema(scoreType string) (scoring.Schema, error) {
	schema, err := s.engine.Schema(types.ScoreType(scoreType))
	if err != nil {
		return scoring.Schema{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return schema, nil
}

// Weights returns the composite risk weights in effect.
func (s *Service) Weights() composite.Weights { return s.weights.Merge(nil) }

func parseType(name string) (types.ScoreType, error) {
	t, ok := types.ParseScoreType(name)
	if !ok {
		return "", fmt.Errorf("%w: %w %q", ErrInvalidRequest, scoring.ErrUnknownScoreType, name)
	}
	return t, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"historyLimit": s.historyLimit,
		"maxBatchSize": s.maxBatchSize,
		"scoreTypes":   s.engine.Types(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		assessments := s.store.Count(ctx)
		patients := s.store.Patients(ctx)

		stats["queueLength"] = queueLen
		stats["assessments"] = assessments
		stats["patients"] = patients
		stats["processed"] = s.pool.Processed()
		stats["activeWorkers"] = s.pool.Active()
		stats["requestIds"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateAssessmentsTotal(assessments)
		metrics.UpdatePatientsTotal(patients)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}
