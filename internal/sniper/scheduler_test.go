package sniper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

func newTestScheduler(t *testing.T, h *workflowHarness) *Scheduler {
	t.Helper()
	return NewScheduler(h.mgr, h.workflow, h.runtime, 4, zap.NewNop())
}

// waitIdle blocks until the task left running state and its in-flight
// claim is released.
func waitIdle(t *testing.T, h *workflowHarness, s *Scheduler, taskID string) core.Task {
	t.Helper()
	var got core.Task
	require.Eventually(t, func() bool {
		task, ok := h.mgr.Task(taskID)
		if !ok {
			return false
		}
		got = task
		return task.Status != core.TaskRunning && !s.InFlight(taskID)
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestSchedulerExhaustsRetries(t *testing.T) {
	h := newWorkflowHarness(t)
	s := newTestScheduler(t, h)
	task := h.createTask(t) // maxRetries 3

	// Every probe reports no stock, so each attempt is a soft miss.
	h.caller.getFn = func(path string, out interface{}) error {
		return respond(out, availabilityResponse("24ska01", "gra", "unavailable"))
	}

	ctx := context.Background()
	for attempt := 1; attempt <= 3; attempt++ {
		now := time.Now().Add(time.Duration(attempt) * time.Hour)
		s.Tick(ctx, now)
		got := waitIdle(t, h, s, task.ID)
		assert.Equal(t, core.TaskPending, got.Status)
		assert.Equal(t, attempt, got.RetryCount)
	}

	// The budget is spent: the next tick parks the task instead of
	// dispatching, and later ticks leave it alone.
	s.Tick(ctx, time.Now().Add(4*time.Hour))
	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskMaxRetriesReached, got.Status)
	assert.Equal(t, 3, got.RetryCount)
	assert.Nil(t, got.NextRetryAt)

	s.Tick(ctx, time.Now().Add(5*time.Hour))
	got, _ = h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskMaxRetriesReached, got.Status)
	assert.Equal(t, 3, got.RetryCount)
	assert.Empty(t, h.mgr.Orders())
}

func TestSchedulerSingleInFlightExecution(t *testing.T) {
	h := newWorkflowHarness(t)
	s := newTestScheduler(t, h)
	task := h.createTask(t)

	// The probe parks until released, simulating a slow provider call
	// that straddles several ticks.
	block := make(chan struct{})
	h.caller.getFn = func(path string, out interface{}) error {
		<-block
		return respond(out, availabilityResponse("24ska01", "gra", "unavailable"))
	}

	ctx := context.Background()
	s.Tick(ctx, time.Now().Add(time.Hour))
	require.Eventually(t, func() bool { return s.InFlight(task.ID) }, 2*time.Second, 5*time.Millisecond)

	// Ticks arriving mid-call must not dispatch a second execution.
	s.Tick(ctx, time.Now().Add(2*time.Hour))
	s.Tick(ctx, time.Now().Add(3*time.Hour))
	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, 1, got.RetryCount)
	assert.Len(t, h.caller.gets(), 1)

	close(block)
	got = waitIdle(t, h, s, task.ID)
	assert.Equal(t, core.TaskPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
}

func TestSchedulerSkipsIneligibleTasks(t *testing.T) {
	h := newWorkflowHarness(t)
	s := newTestScheduler(t, h)
	task := h.createTask(t)
	h.routeSuccess()

	ctx := context.Background()

	// Not yet due: the first-check delay keeps the task parked.
	s.Tick(ctx, time.Now())
	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, 0, got.RetryCount)

	s.Tick(ctx, time.Now().Add(time.Hour))
	got = waitIdle(t, h, s, task.ID)
	assert.Equal(t, core.TaskCompleted, got.Status)

	// Completed tasks are never redispatched.
	s.Tick(ctx, time.Now().Add(2*time.Hour))
	got, _ = h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskCompleted, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Len(t, h.mgr.Orders(), 1)
}

func TestSchedulerDispatchWithoutClient(t *testing.T) {
	h := newWorkflowHarness(t)
	s := newTestScheduler(t, h)
	task := h.createTask(t)
	h.runtime.SetClient(nil)

	s.Tick(context.Background(), time.Now().Add(time.Hour))

	// The failure is local: no workflow ran, the attempt still counts,
	// and the task is re-armed for when credentials show up.
	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskError, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Contains(t, got.Message, "not configured")
	require.NotNil(t, got.NextRetryAt)
	assert.False(t, s.InFlight(task.ID))
	assert.Empty(t, h.mgr.Orders())

	// Credentials arrive: the same task completes on a later tick.
	caller := newFakeCaller()
	h.caller = caller
	h.runtime.SetClient(caller)
	h.routeSuccess()

	s.Tick(context.Background(), time.Now().Add(2*time.Hour))
	got = waitIdle(t, h, s, task.ID)
	assert.Equal(t, core.TaskCompleted, got.Status)
	assert.Equal(t, 2, got.RetryCount)
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	h := newWorkflowHarness(t)
	s := newTestScheduler(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

// Guard against the probe path changing without the fakes noticing:
// routeSuccess routes on this prefix.
func TestProbePathStable(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	h.workflow.Execute(context.Background(), task)

	gets := h.caller.gets()
	require.NotEmpty(t, gets)
	assert.True(t, strings.HasPrefix(gets[0], "/dedicated/server/datacenter/availabilities"))
	assert.Contains(t, gets[0], "planCode=24ska01")
}
