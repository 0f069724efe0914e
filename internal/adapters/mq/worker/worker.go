// Package worker scores queued assessments and writes them to history.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pediscore/internal/adapters/mq/queue"
	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/scoring"
	"github.com/okian/pediscore/internal/domain/types"
	"github.com/okian/pediscore/pkg/logger"
	"github.com/okian/pediscore/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU(); scoring is CPU bound
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Scorer computes a result. It never fails; errors come back in the result.
type Scorer interface {
	Compute(t types.ScoreType, raw scoring.RawInput, pc types.PatientContext) types.Result
}

// Saver stores a completed assessment.
type Saver interface {
	Save(ctx context.Context, a model.Assessment) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its queue closes or it is shut down.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	scorer Scorer
	saver  Saver
	name   string

	// processed and active are shared with the owning pool, if any.
	processed *atomic.Int64
	active    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		scorer:    scorer,
		saver:     saver,
		name:      "worker",
		processed: &atomic.Int64{},
		active:    &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing score job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of jobs this worker completed.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	scoreStart := time.Now()
	res := w.scorer.Compute(j.ScoreType, j.Input, j.Patient)
	RecordOutcome(res, time.Since(scoreStart))

	if res.Failed() {
		w.logger.Warn(ctx, "assessment did not score",
			logger.String("assessmentID", j.AssessmentID),
			logger.String("scoreType", string(j.ScoreType)),
			logger.String("errorKind", string(res.ErrorKind)),
			logger.String("error", res.Error),
		)
	}

	// Failed results are kept too so the submitter can read the error.
	if err := w.saver.Save(ctx, j.Assessment(res)); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "save_error")
		return fmt.Errorf("save assessment %s: %w", j.AssessmentID, err)
	}
	metrics.RecordAssessmentStored()
	w.processed.Add(1)
	return nil
}

// RecordOutcome publishes the metrics of one engine result.
func RecordOutcome(res types.Result, took time.Duration) {
	st := string(res.ScoreType)
	metrics.RecordScoringLatency(st, float64(took.Microseconds())/1000)
	outcome := "ok"
	if res.Failed() {
		outcome = string(res.ErrorKind)
	}
	metrics.RecordScoreComputed(st, outcome)
	if res.ErrorKind == types.KindValidation {
		metrics.RecordValidationFailure(st)
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed atomic.Int64
	active    atomic.Int64
	logger    logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below 1 picks a
// default from the number of CPUs.
func NewPool(workerCount int, q Queue, scorer Scorer, saver Saver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, scorer, saver, WithName("worker-"+strconv.Itoa(i)))
		w.processed = &p.processed
		w.active = &p.active
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs the pool completed.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Active returns the number of workers currently scoring.
func (p *Pool) Active() int64 { return p.active.Load() }

// Shutdown closes the queue, lets workers drain it and waits for them to
// exit or the timeout to pass.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
