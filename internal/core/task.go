package core

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskPending           TaskStatus = "pending"
	TaskRunning           TaskStatus = "running"
	TaskCompleted         TaskStatus = "completed"
	TaskError             TaskStatus = "error"
	TaskMaxRetriesReached TaskStatus = "max_retries_reached"
)

// AddonOption is one user-selected add-on axis (memory, storage, ...).
// Immutable once attached to a Task or an OrderRecord.
type AddonOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
}

// Task is the unit of scheduling. Mutated only by the scheduler and the
// order workflow, through the manager's lock.
type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	PlanCode     string        `json:"planCode"`
	Datacenter   string        `json:"datacenter"`
	Quantity     int           `json:"quantity"`
	OS           string        `json:"os"`
	Duration     string        `json:"duration"`
	Options      []AddonOption `json:"options"`
	Status       TaskStatus    `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastChecked  *time.Time    `json:"lastChecked,omitempty"`
	RetryCount   int           `json:"retryCount"`
	MaxRetries   int           `json:"maxRetries"`
	TaskInterval int           `json:"taskInterval"`
	NextRetryAt  *time.Time    `json:"nextRetryAt,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// RetriesExhausted reports whether the task hit its retry budget.
// MaxRetries <= 0 means unlimited.
func (t *Task) RetriesExhausted() bool {
	return t.MaxRetries > 0 && t.RetryCount >= t.MaxRetries
}

// Due reports whether the task is ready for another dispatch at now.
func (t *Task) Due(now time.Time) bool {
	return t.NextRetryAt == nil || !now.Before(*t.NextRetryAt)
}

// WantedOptionValues returns the set of non-empty requested option values.
func (t *Task) WantedOptionValues() []string {
	values := make([]string, 0, len(t.Options))
	for _, opt := range t.Options {
		if opt.Value != "" {
			values = append(values, opt.Value)
		}
	}
	return values
}

// ServerConfig is the task-creation request: what to buy and how hard to try.
type ServerConfig struct {
	PlanCode     string        `json:"planCode"`
	Datacenter   string        `json:"datacenter"`
	Quantity     int           `json:"quantity"`
	OS           string        `json:"os"`
	Duration     string        `json:"duration"`
	Options      []AddonOption `json:"options"`
	Name         string        `json:"name"`
	MaxRetries   int           `json:"maxRetries"`
	TaskInterval int           `json:"taskInterval"`
}

// Normalize fills defaults and enforces minimums before a Task is built.
func (c *ServerConfig) Normalize(defaultOS, defaultDuration string) {
	c.Datacenter = strings.TrimSpace(c.Datacenter)
	if c.Quantity < 1 {
		c.Quantity = 1
	}
	if c.OS == "" {
		c.OS = defaultOS
	}
	if c.Duration == "" {
		c.Duration = defaultDuration
	}
	if c.TaskInterval < 1 {
		c.TaskInterval = 60
	}
}
