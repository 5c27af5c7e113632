// Package store persists the task list, order history, and API
// configuration as three independent JSON documents. Each document is
// rewritten wholesale on every mutation; there is no cross-document
// transaction.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

const (
	tasksFile  = "tasks.json"
	ordersFile = "orders.json"
	configFile = "config.json"
)

type Store struct {
	dir string
	log *zap.Logger

	// Serializes writers per file; readers go through the same lock
	// since documents are small.
	mu sync.Mutex
}

func New(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// LoadTasks reads the persisted task list. A missing file is an empty list.
func (s *Store) LoadTasks() ([]core.Task, error) {
	var tasks []core.Task
	if err := s.load(tasksFile, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveTasks replaces the persisted task list.
func (s *Store) SaveTasks(tasks []core.Task) error {
	return s.save(tasksFile, tasks)
}

// LoadOrders reads the persisted order history. A missing file is an
// empty history.
func (s *Store) LoadOrders() ([]core.OrderRecord, error) {
	var orders []core.OrderRecord
	if err := s.load(ordersFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrders replaces the persisted order history.
func (s *Store) SaveOrders(orders []core.OrderRecord) error {
	return s.save(ordersFile, orders)
}

// LoadConfig reads the persisted API configuration. A missing file
// yields the defaults.
func (s *Store) LoadConfig() (core.ApiConfig, error) {
	cfg := core.DefaultApiConfig()
	if err := s.load(configFile, &cfg); err != nil {
		return core.DefaultApiConfig(), err
	}
	return cfg, nil
}

// SaveConfig replaces the persisted API configuration.
func (s *Store) SaveConfig(cfg core.ApiConfig) error {
	return s.save(configFile, cfg)
}

func (s *Store) load(name string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) save(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.log.Debug("document saved", zap.String("file", name), zap.Int("bytes", len(b)))
	return nil
}
