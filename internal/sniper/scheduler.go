// Package sniper implements the retry scheduler and order-fulfillment
// state machine: task lifecycle, probe cadence, availability and option
// matching, and recovery from partial purchase failure.
package sniper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/observability"
)

// TickInterval is the fixed scheduling granularity. Coarser than any
// sane taskInterval, which keeps eligibility decisions centralized
// instead of spawning a timer per task.
const TickInterval = 5 * time.Second

// DefaultMaxConcurrent caps simultaneous order workflows; the provider
// client is not safe for unlimited parallel in-flight requests.
const DefaultMaxConcurrent = 4

// Scheduler owns the periodic eligibility scan. Each eligible task gets
// one asynchronous workflow execution; the tick loop never blocks on
// network I/O.
type Scheduler struct {
	mgr      *Manager
	workflow *Workflow
	runtime  *Runtime
	log      *zap.Logger
	interval time.Duration
	slots    chan struct{}

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewScheduler(mgr *Manager, workflow *Workflow, runtime *Runtime, maxConcurrent int, log *zap.Logger) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Scheduler{
		mgr:      mgr,
		workflow: workflow,
		runtime:  runtime,
		log:      log,
		interval: TickInterval,
		slots:    make(chan struct{}, maxConcurrent),
		inflight: make(map[string]struct{}),
	}
}

// Run ticks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("scheduler started", zap.Duration("tick", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick scans the task table once and dispatches every eligible task.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	for _, task := range s.mgr.Tasks() {
		if task.Status != core.TaskPending && task.Status != core.TaskError {
			continue
		}
		if task.RetriesExhausted() {
			s.mgr.MarkRetriesExhausted(task.ID)
			continue
		}
		if !task.Due(now) {
			continue
		}
		s.dispatch(ctx, task.ID, now)
	}
}

// dispatch claims the task's in-flight slot atomically with the
// decision to run it. Relying on status==running alone would race when
// two ticks straddle a slow network call, so the set is authoritative.
func (s *Scheduler) dispatch(ctx context.Context, taskID string, now time.Time) {
	s.mu.Lock()
	if _, busy := s.inflight[taskID]; busy {
		s.mu.Unlock()
		return
	}
	s.inflight[taskID] = struct{}{}
	s.mu.Unlock()

	snapshot, ok := s.mgr.BeginAttempt(taskID, now)
	if !ok {
		s.release(taskID)
		return
	}
	observability.TaskRetryTotal.Inc()

	if s.runtime.Client() == nil {
		// Local dispatch error: nothing to execute against. Re-queue.
		s.log.Warn("dispatch failed, provider client not configured",
			zap.String("task_id", taskID))
		s.mgr.UpdateStatus(taskID, core.TaskError,
			"cannot start order workflow: provider client not configured")
		s.release(taskID)
		return
	}

	s.log.Debug("dispatching order workflow",
		zap.String("task_id", taskID),
		zap.Int("attempt", snapshot.RetryCount),
	)
	go func(task core.Task) {
		defer s.release(task.ID)

		// The concurrency cap is taken here so a full pool delays the
		// workflow, never the tick.
		select {
		case s.slots <- struct{}{}:
		case <-ctx.Done():
			s.mgr.UpdateStatus(task.ID, core.TaskError, "shutdown before workflow start")
			return
		}
		defer func() { <-s.slots }()

		observability.InFlightWorkflows.Inc()
		defer observability.InFlightWorkflows.Dec()

		s.workflow.Execute(ctx, task)
	}(snapshot)
}

func (s *Scheduler) release(taskID string) {
	s.mu.Lock()
	delete(s.inflight, taskID)
	s.mu.Unlock()
}

// InFlight reports whether a workflow execution is active for taskID.
func (s *Scheduler) InFlight(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[taskID]
	return busy
}
