package sniper

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/observability"
	"github.com/imagehubcc/titan-sniper/internal/store"
)

// firstCheckDelay is how long a freshly created task waits before its
// first probe: long enough for the next scheduler tick to pick it up.
const firstCheckDelay = 5 * time.Second

// Manager owns the task table and the order history. Every mutation
// serializes through its lock, persists the affected document, and
// publishes a lifecycle event. Readers get copy-on-read snapshots.
type Manager struct {
	mu     sync.Mutex
	tasks  map[string]*core.Task
	orders []core.OrderRecord

	store  *store.Store
	broker *events.Broker
	log    *zap.Logger
}

func NewManager(st *store.Store, broker *events.Broker, log *zap.Logger) *Manager {
	return &Manager{
		tasks:  make(map[string]*core.Task),
		store:  st,
		broker: broker,
		log:    log,
	}
}

// Load restores tasks and orders from the store. Load errors leave the
// affected collection empty rather than failing startup.
func (m *Manager) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks, err := m.store.LoadTasks()
	if err != nil {
		m.log.Error("loading tasks failed", zap.Error(err))
	}
	for i := range tasks {
		t := tasks[i]
		m.tasks[t.ID] = &t
	}

	orders, err := m.store.LoadOrders()
	if err != nil {
		m.log.Error("loading orders failed", zap.Error(err))
	}
	m.orders = orders

	m.log.Info("state restored",
		zap.Int("tasks", len(m.tasks)),
		zap.Int("orders", len(m.orders)),
	)
	m.updateTaskMetricsLocked()
}

// CreateTask builds a pending task from a normalized config and arms it
// for the next tick.
func (m *Manager) CreateTask(cfg core.ServerConfig) core.Task {
	now := time.Now()
	next := now.Add(firstCheckDelay)
	task := core.Task{
		ID:           core.NewID(),
		Name:         cfg.Name,
		PlanCode:     cfg.PlanCode,
		Datacenter:   cfg.Datacenter,
		Quantity:     cfg.Quantity,
		OS:           cfg.OS,
		Duration:     cfg.Duration,
		Options:      cfg.Options,
		Status:       core.TaskPending,
		CreatedAt:    now,
		LastChecked:  &now,
		MaxRetries:   cfg.MaxRetries,
		TaskInterval: cfg.TaskInterval,
		NextRetryAt:  &next,
		Message:      "task created, waiting for execution",
	}

	m.mu.Lock()
	m.tasks[task.ID] = &task
	m.persistTasksLocked()
	m.mu.Unlock()

	m.log.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("plan_code", task.PlanCode),
		zap.String("datacenter", task.Datacenter),
		zap.Int("max_retries", task.MaxRetries),
		zap.Int("interval_seconds", task.TaskInterval),
		zap.Int("options", len(task.Options)),
	)
	m.broker.Publish(events.EventTaskCreated, task)
	return task
}

// Tasks returns a snapshot of all tasks ordered by creation time.
func (m *Manager) Tasks() []core.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]core.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Task returns a snapshot of one task.
func (m *Manager) Task(id string) (core.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return core.Task{}, false
	}
	return *t, true
}

// DeleteTask removes a task. An in-flight workflow for it becomes an
// orphan whose eventual status update is a no-op.
func (m *Manager) DeleteTask(id string) bool {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if ok {
		delete(m.tasks, id)
		m.persistTasksLocked()
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.log.Info("task deleted", zap.String("task_id", id), zap.String("name", t.Name))
	m.broker.Publish(events.EventTaskDeleted, map[string]string{"id": id})
	return true
}

// ClearTasks removes every task and returns how many were dropped.
func (m *Manager) ClearTasks() int {
	m.mu.Lock()
	count := len(m.tasks)
	m.tasks = make(map[string]*core.Task)
	m.persistTasksLocked()
	m.mu.Unlock()

	m.log.Info("tasks cleared", zap.Int("count", count))
	m.broker.Publish(events.EventTasksCleared, map[string]int{"count": count})
	return count
}

// ResetTask manually resets a task in error or max_retries_reached back
// to pending with a zeroed retry counter. The only path that ever
// decreases retryCount.
func (m *Manager) ResetTask(id string) (core.Task, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return core.Task{}, core.NewAppError(core.ErrNotFound, fmt.Sprintf("task %s not found", id))
	}
	if t.Status != core.TaskError && t.Status != core.TaskMaxRetriesReached {
		snapshot := *t
		m.mu.Unlock()
		return snapshot, core.NewAppError(core.ErrBadRequest,
			fmt.Sprintf("task %s is %s, nothing to reset", id, t.Status))
	}
	t.RetryCount = 0
	m.applyStatusLocked(t, core.TaskPending, "task manually reset, will retry")
	snapshot := *t
	m.mu.Unlock()

	m.log.Info("task reset", zap.String("task_id", id))
	m.broker.Publish(events.EventTaskUpdated, snapshot)
	return snapshot, nil
}

// BeginAttempt advances the retry counter and moves the task to running
// ahead of a dispatch. Returns false when the task vanished or is no
// longer eligible, so a stale scheduler decision cannot double-dispatch.
func (m *Manager) BeginAttempt(id string, now time.Time) (core.Task, bool) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok || (t.Status != core.TaskPending && t.Status != core.TaskError) || !t.Due(now) {
		m.mu.Unlock()
		return core.Task{}, false
	}
	t.RetryCount++
	msg := fmt.Sprintf("starting attempt %d", t.RetryCount)
	if t.MaxRetries > 0 {
		msg = fmt.Sprintf("starting attempt %d/%d", t.RetryCount, t.MaxRetries)
	}
	m.applyStatusLocked(t, core.TaskRunning, msg)
	snapshot := *t
	m.mu.Unlock()

	m.broker.Publish(events.EventTaskUpdated, snapshot)
	return snapshot, true
}

// MarkRetriesExhausted transitions a task to its terminal retry state.
// Idempotent: an already-terminal task is left untouched, unlogged.
func (m *Manager) MarkRetriesExhausted(id string) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok || t.Status == core.TaskMaxRetriesReached {
		m.mu.Unlock()
		return
	}
	m.applyStatusLocked(t, core.TaskMaxRetriesReached,
		fmt.Sprintf("reached maximum retries (%d)", t.MaxRetries))
	snapshot := *t
	m.mu.Unlock()

	m.log.Info("task retries exhausted",
		zap.String("task_id", id),
		zap.Int("max_retries", snapshot.MaxRetries),
	)
	m.broker.Publish(events.EventTaskUpdated, snapshot)
}

// UpdateStatus records a transition reported by the scheduler or an
// order workflow. Updates for deleted tasks are silently dropped: an
// orphaned workflow completion must not resurrect state.
func (m *Manager) UpdateStatus(id string, status core.TaskStatus, message string) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		m.log.Warn("status update for unknown task dropped",
			zap.String("task_id", id),
			zap.String("status", string(status)),
		)
		return
	}
	m.applyStatusLocked(t, status, message)
	snapshot := *t
	m.mu.Unlock()

	m.broker.Publish(events.EventTaskUpdated, snapshot)
}

// applyStatusLocked is the single place a task's status, message, and
// retry arming change. nextRetryAt is non-nil only for pending/error,
// always now + taskInterval; no backoff by design.
func (m *Manager) applyStatusLocked(t *core.Task, status core.TaskStatus, message string) {
	now := time.Now()
	t.Status = status
	if message != "" {
		t.Message = message
	}
	t.LastChecked = &now

	switch status {
	case core.TaskPending, core.TaskError:
		next := now.Add(time.Duration(t.TaskInterval) * time.Second)
		t.NextRetryAt = &next
	default:
		t.NextRetryAt = nil
	}
	m.persistTasksLocked()
}

// AddOrder appends a terminal workflow outcome to the history, applying
// the upsert rule: an existing record with the same plan code,
// datacenter (case-insensitive), and status is replaced in place so
// repeated identical outcomes cannot grow the history unboundedly.
func (m *Manager) AddOrder(rec core.OrderRecord) {
	m.mu.Lock()
	replaced := false
	for i := range m.orders {
		if rec.Supersedes(&m.orders[i]) {
			m.orders[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		m.orders = append(m.orders, rec)
	}
	m.persistOrdersLocked()
	m.mu.Unlock()

	if replaced {
		m.log.Info("order record replaced", zap.String("order_record_id", rec.ID))
	} else {
		m.log.Info("order record added", zap.String("order_record_id", rec.ID))
	}
}

// Orders returns a snapshot of the order history.
func (m *Manager) Orders() []core.OrderRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]core.OrderRecord, len(m.orders))
	copy(out, m.orders)
	return out
}

// DeleteOrder removes one history record by id.
func (m *Manager) DeleteOrder(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			m.persistOrdersLocked()
			return true
		}
	}
	return false
}

// ClearOrders drops the whole history and returns how many records went.
func (m *Manager) ClearOrders() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.orders)
	m.orders = nil
	m.persistOrdersLocked()
	return count
}

func (m *Manager) persistTasksLocked() {
	tasks := make([]core.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	if err := m.store.SaveTasks(tasks); err != nil {
		m.log.Error("persisting tasks failed", zap.Error(err))
	}
	m.updateTaskMetricsLocked()
}

func (m *Manager) persistOrdersLocked() {
	if err := m.store.SaveOrders(m.orders); err != nil {
		m.log.Error("persisting orders failed", zap.Error(err))
	}
}

func (m *Manager) updateTaskMetricsLocked() {
	counts := map[core.TaskStatus]int{
		core.TaskPending: 0, core.TaskRunning: 0, core.TaskCompleted: 0,
		core.TaskError: 0, core.TaskMaxRetriesReached: 0,
	}
	for _, t := range m.tasks {
		counts[t.Status]++
	}
	for status, n := range counts {
		observability.TasksByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}
