package execution

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/codecampus/gradebox/internal/adapter/crypto"
	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/ports/secondary"
	"github.com/codecampus/gradebox/internal/core/services/language"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/metrics"
	"github.com/codecampus/gradebox/internal/static/errs"
)

var _ IExecutionService = (*ExecutionService)(nil)

// execTask carries one submission through the queue to a worker. The
// reply channels are buffered so a worker never blocks on a caller that
// already gave up.
type execTask struct {
	ctx    context.Context
	spec   domain.LanguageSpec
	req    *domain.ExecutionRequest
	result chan *domain.ExecutionResult
	err    chan error
}

// ExecutionService implements the ExecutionService interface
type ExecutionService struct {
	registry language.IRegistryService
	sandbox  secondary.Sandbox
	cache    secondary.ExecutionCache // nil disables result caching
	logger   primary.Logger

	limits  domain.SandboxLimits
	workers int
	tasks   chan *execTask
	busy    atomic.Int32
	wg      sync.WaitGroup
}

// NewExecutionService creates a new execution service
func NewExecutionService(registry language.IRegistryService, sandbox secondary.Sandbox, cache secondary.ExecutionCache, logger primary.Logger, limits domain.SandboxLimits, workers, queueSize int) *ExecutionService {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &ExecutionService{
		registry: registry,
		sandbox:  sandbox,
		cache:    cache,
		logger:   logger,
		limits:   limits,
		workers:  workers,
		tasks:    make(chan *execTask, queueSize),
	}
}

// Start launches the worker pool
func (s *ExecutionService) Start(ctx context.Context) {
	s.logger.Info("Starting execution workers", "workers", s.workers, "queueSize", cap(s.tasks))
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited
func (s *ExecutionService) Wait() {
	s.wg.Wait()
}

// Stats reports a point-in-time view of the pool
func (s *ExecutionService) Stats() domain.PoolStats {
	return domain.PoolStats{
		Workers:       s.workers,
		Busy:          int(s.busy.Load()),
		QueueDepth:    len(s.tasks),
		QueueCapacity: cap(s.tasks),
	}
}

// Execute runs one submission and blocks until its result is ready
func (s *ExecutionService) Execute(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	s.logger.Debug("Executing submission", "language", req.Language)

	// Resolve before any queueing or filesystem work
	spec, err := s.registry.Resolve(req.Language)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = crypto.SubmissionFingerprint(req, s.limits)
		cached, cerr := s.cache.Get(ctx, cacheKey)
		switch {
		case cerr != nil:
			s.logger.Warn("Execution cache lookup failed", "error", cerr)
		case cached != nil:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			s.logger.Debug("Execution cache hit", "language", req.Language)
			return cached, nil
		default:
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		}
	}

	task := &execTask{
		ctx:    ctx,
		spec:   spec,
		req:    req,
		result: make(chan *domain.ExecutionResult, 1),
		err:    make(chan error, 1),
	}

	select {
	case s.tasks <- task:
		metrics.QueueDepth.Set(float64(len(s.tasks)))
	default:
		s.logger.Warn("Execution queue full, rejecting submission", "language", req.Language)
		return nil, errs.Busy
	}

	select {
	case result := <-task.result:
		s.storeInCache(ctx, cacheKey, result)
		return result, nil
	case err := <-task.err:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ExecutionService) storeInCache(ctx context.Context, key string, result *domain.ExecutionResult) {
	if s.cache == nil || key == "" || result.Status == domain.StatusInternalError {
		return
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		s.logger.Warn("Execution cache store failed", "error", err)
	}
}

func (s *ExecutionService) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	s.logger.Debug("Execution worker started", "workerId", id)
	for {
		select {
		case task := <-s.tasks:
			metrics.QueueDepth.Set(float64(len(s.tasks)))
			s.busy.Add(1)
			metrics.BusyWorkers.Inc()
			s.process(task)
			s.busy.Add(-1)
			metrics.BusyWorkers.Dec()
		case <-ctx.Done():
			s.logger.Debug("Execution worker stopping", "workerId", id)
			return
		}
	}
}

func (s *ExecutionService) process(task *execTask) {
	result, err := s.sandbox.Run(task.ctx, task.spec, task.req, s.limits)
	if err != nil {
		// Cancellation is the caller hanging up, not a sandbox fault
		if task.ctx.Err() == nil {
			s.logger.Error("Sandbox run failed", "language", task.spec.ID, "error", err)
			metrics.ExecutionsTotal.WithLabelValues(task.spec.ID, string(domain.StatusInternalError)).Inc()
		}
		task.err <- err
		return
	}

	metrics.ExecutionsTotal.WithLabelValues(task.spec.ID, string(result.Status)).Inc()
	if result.CompileTimeMs > 0 {
		metrics.ExecutionDuration.WithLabelValues(task.spec.ID, "compile").Observe(float64(result.CompileTimeMs))
	}
	metrics.ExecutionDuration.WithLabelValues(task.spec.ID, "run").Observe(float64(result.ExecutionTimeMs))
	if result.MemoryUsedKB > 0 {
		metrics.MemoryUsage.WithLabelValues(task.spec.ID).Observe(float64(result.MemoryUsedKB))
	}

	task.result <- result
}
