package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
	"github.com/okian/pediscore/pkg/metrics"
)

// shard owns the histories of the patients hashed to it.
type shard struct {
	mu        sync.RWMutex
	byPatient map[string][]model.Assessment // oldest first
	count     int
}

// MemStore is an in-memory Store sharded by patient ID. Each patient's
// history is kept sorted by CreatedAt.
type MemStore struct {
	shards                []*shard
	shardCount            int
	historyLimit          int
	metricsUpdateInterval time.Duration

	// index maps assessment ID to patient ID.
	indexMu sync.RWMutex
	index   map[string]string

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMemStore constructs a store and starts its metrics updater, which runs
// until ctx is done or Close is called.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount:            16,
		historyLimit:          500,
		metricsUpdateInterval: 5 * time.Second,
		index:                 make(map[string]string),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{byPatient: make(map[string][]model.Assessment)}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)
	s.startMetricsUpdater(ctx)
	return s
}

func (s *MemStore) shardFor(patientID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(patientID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Save implements Store.Save.
func (s *MemStore) Save(_ context.Context, a model.Assessment) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if a.ID == "" || a.PatientID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_assessment")
		return fmt.Errorf("%w: id %q, patient %q", ErrInvalidAssessment, a.ID, a.PatientID)
	}

	// Another patient may already own the ID; move it.
	s.indexMu.Lock()
	previousOwner, existed := s.index[a.ID]
	s.index[a.ID] = a.PatientID
	s.indexMu.Unlock()
	if existed && previousOwner != a.PatientID {
		s.shardFor(previousOwner).remove(previousOwner, a.ID)
	}

	sh := s.shardFor(a.PatientID)
	sh.mu.Lock()
	history := sh.byPatient[a.PatientID]
	replaced := false
	for i := range history {
		if history[i].ID == a.ID {
			history[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, a)
		sh.count++
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].CreatedAt.Before(history[j].CreatedAt) })

	var dropped []model.Assessment
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		excess := len(history) - s.historyLimit
		dropped = append(dropped, history[:excess]...)
		history = append([]model.Assessment(nil), history[excess:]...)
		sh.count -= excess
	}
	sh.byPatient[a.PatientID] = history
	sh.mu.Unlock()

	if len(dropped) > 0 {
		s.indexMu.Lock()
		for _, d := range dropped {
			if s.index[d.ID] == a.PatientID {
				delete(s.index, d.ID)
			}
		}
		s.indexMu.Unlock()
	}
	return nil
}

func (sh *shard) remove(patientID, id string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	history := sh.byPatient[patientID]
	for i := range history {
		if history[i].ID == id {
			sh.byPatient[patientID] = append(history[:i:i], history[i+1:]...)
			sh.count--
			break
		}
	}
	if len(sh.byPatient[patientID]) == 0 {
		delete(sh.byPatient, patientID)
	}
}

// Get implements Store.Get.
func (s *MemStore) Get(_ context.Context, id string) (model.Assessment, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.indexMu.RLock()
	patientID, ok := s.index[id]
	s.indexMu.RUnlock()
	if ok {
		sh := s.shardFor(patientID)
		sh.mu.RLock()
		defer sh.mu.RUnlock()
		for _, a := range sh.byPatient[patientID] {
			if a.ID == id {
				return a, nil
			}
		}
	}
	metrics.RecordErrorByComponent("repository", "not_found")
	return model.Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// History implements Store.History.
func (s *MemStore) History(_ context.Context, patientID string, t types.ScoreType) ([]model.Assessment, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	out := make([]model.Assessment, 0, len(sh.byPatient[patientID]))
	for _, a := range sh.byPatient[patientID] {
		if t == "" || a.ScoreType == t {
			out = append(out, a)
		}
	}
	return out, nil
}

// Count implements Store.Count.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += sh.count
		sh.mu.RUnlock()
	}
	return total
}

// Patients implements Store.Patients.
func (s *MemStore) Patients(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.byPatient)
		sh.mu.RUnlock()
	}
	return total
}

// Close stops the metrics updater.
func (s *MemStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemStore) updateMetrics() {
	total, patients := 0, 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n, p := sh.count, len(sh.byPatient)
		sh.mu.RUnlock()
		metrics.UpdateRepositoryRecordsPerShard(fmt.Sprintf("shard_%d", i), n)
		total += n
		patients += p
	}
	metrics.UpdateAssessmentsTotal(total)
	metrics.UpdatePatientsTotal(patients)
}
