package sniper

import (
	"sync"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/notify"
	"github.com/imagehubcc/titan-sniper/internal/provider"
)

// Runtime holds the pieces that change when credentials are updated at
// runtime: the provider client, the notifier, and the active ApiConfig.
// Workflow executions snapshot it once at dispatch; a reconfiguration
// mid-flight does not affect calls already in progress.
type Runtime struct {
	mu       sync.RWMutex
	client   provider.Caller
	notifier notify.Notifier
	cfg      core.ApiConfig
	log      *zap.Logger
}

func NewRuntime(log *zap.Logger) *Runtime {
	return &Runtime{
		notifier: notify.Nop{},
		cfg:      core.DefaultApiConfig(),
		log:      log,
	}
}

// Configure rebuilds the provider client and notifier from cfg. Missing
// credentials leave the client nil (dispatches fail locally and requeue)
// rather than erroring: the service runs unconfigured until the first
// config update arrives.
func (r *Runtime) Configure(cfg core.ApiConfig) error {
	var client provider.Caller
	if cfg.HasCredentials() {
		c, err := provider.New(cfg, r.log)
		if err != nil {
			return err
		}
		client = c
	} else {
		r.log.Warn("provider credentials not set, order workflows disabled")
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.HasTelegram() {
		notifier = notify.NewTelegram(cfg.TgToken, cfg.TgChatID, r.log)
	}

	r.mu.Lock()
	r.client = client
	r.notifier = notifier
	r.cfg = cfg
	r.mu.Unlock()
	return nil
}

// Client returns the active provider client, nil when unconfigured.
func (r *Runtime) Client() provider.Caller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Snapshot returns the client, notifier, and config as one consistent view.
func (r *Runtime) Snapshot() (provider.Caller, notify.Notifier, core.ApiConfig) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client, r.notifier, r.cfg
}

// Config returns the active ApiConfig.
func (r *Runtime) Config() core.ApiConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// SetClient swaps in a bare client; used by tests.
func (r *Runtime) SetClient(c provider.Caller) {
	r.mu.Lock()
	r.client = c
	r.mu.Unlock()
}

// SetNotifier swaps in a bare notifier; used by tests.
func (r *Runtime) SetNotifier(n notify.Notifier) {
	r.mu.Lock()
	r.notifier = n
	r.mu.Unlock()
}
