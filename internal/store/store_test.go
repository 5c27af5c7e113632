package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLoadTasksMissingFile(t *testing.T) {
	s := newTestStore(t)
	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSaveLoadTasks(t *testing.T) {
	s := newTestStore(t)
	created := time.Date(2025, 4, 18, 12, 0, 0, 0, time.UTC)
	next := created.Add(10 * time.Second)

	in := []core.Task{{
		ID:           "t1",
		Name:         "KS-A",
		PlanCode:     "24ska01",
		Datacenter:   "gra",
		Quantity:     1,
		OS:           "none_64.en",
		Duration:     "P1M",
		Options:      []core.AddonOption{{Label: "memory", Value: "ram64"}},
		Status:       core.TaskPending,
		CreatedAt:    created,
		MaxRetries:   -1,
		TaskInterval: 10,
		NextRetryAt:  &next,
		Message:      "task created, waiting for execution",
	}}
	require.NoError(t, s.SaveTasks(in))

	out, err := s.LoadTasks()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, in[0].Options, out[0].Options)
	require.NotNil(t, out[0].NextRetryAt)
	assert.True(t, out[0].NextRetryAt.Equal(next))
}

func TestSaveLoadOrders(t *testing.T) {
	s := newTestStore(t)
	in := []core.OrderRecord{{
		ID:         "o1",
		PlanCode:   "24ska01",
		Name:       "KS-A",
		Datacenter: "GRA",
		OrderTime:  time.Now().UTC().Truncate(time.Second),
		Status:     core.OrderSuccess,
		OrderID:    "123456",
		OrderURL:   "https://www.ovh.com/order/123456",
	}}
	require.NoError(t, s.SaveOrders(in))

	out, err := s.LoadOrders()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, core.OrderSuccess, out[0].Status)
	assert.Equal(t, "123456", out[0].OrderID)
}

func TestLoadConfigDefaults(t *testing.T) {
	s := newTestStore(t)
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ovh-eu", cfg.Endpoint)
	assert.Equal(t, "IE", cfg.Zone)
	assert.False(t, cfg.HasCredentials())
}

func TestSaveLoadConfig(t *testing.T) {
	s := newTestStore(t)
	cfg := core.DefaultApiConfig()
	cfg.AppKey = "ak"
	cfg.AppSecret = "as"
	cfg.ConsumerKey = "ck"
	cfg.TgToken = "token"
	cfg.TgChatID = "chat"
	require.NoError(t, s.SaveConfig(cfg))

	out, err := s.LoadConfig()
	require.NoError(t, err)
	assert.True(t, out.HasCredentials())
	assert.True(t, out.HasTelegram())
}

func TestLoadCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0o644))
	_, err = s.LoadTasks()
	assert.Error(t, err)
}
