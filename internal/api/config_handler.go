package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

// GetConfig returns the active configuration with secrets masked.
func (a *API) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, a.runtime.Config().Sanitized())
}

// UpdateOVHConfig patches the provider credentials and rebuilds the
// signed client. Fields absent from the patch keep their current value.
func (a *API) UpdateOVHConfig(w http.ResponseWriter, r *http.Request) {
	patch, ok := a.decodePatch(w, r)
	if !ok {
		return
	}

	cfg := a.runtime.Config()
	cfg.UpdateAPIPart(patch)

	if err := a.applyConfig(cfg); err != nil {
		a.log.Error("applying provider config failed", zap.Error(err))
		WriteError(w, core.NewAppError(core.ErrProviderError, "provider client rebuild failed: "+err.Error()))
		return
	}
	a.log.Info("provider config updated", zap.String("endpoint", cfg.Endpoint), zap.String("zone", cfg.Zone))
	WriteJSON(w, http.StatusOK, cfg.Sanitized())
}

// UpdateTelegramConfig patches the notification channel and sends a
// test message so a typo'd token fails loudly, not at order time.
func (a *API) UpdateTelegramConfig(w http.ResponseWriter, r *http.Request) {
	patch, ok := a.decodePatch(w, r)
	if !ok {
		return
	}

	cfg := a.runtime.Config()
	cfg.UpdateTelegramPart(patch)

	if err := a.applyConfig(cfg); err != nil {
		WriteError(w, core.NewAppError(core.ErrInternal, "applying config failed"))
		return
	}

	tested := false
	if cfg.HasTelegram() {
		_, notifier, _ := a.runtime.Snapshot()
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		tested = notifier.Send(ctx, "Telegram notification configured successfully")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"config":    cfg.Sanitized(),
		"testSent":  tested,
		"hasConfig": cfg.HasTelegram(),
	})
}

func (a *API) decodePatch(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var patch map[string]string
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return nil, false
	}
	if len(patch) == 0 {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "empty config patch"))
		return nil, false
	}
	return patch, true
}

// applyConfig rebuilds the runtime and persists the merged config.
func (a *API) applyConfig(cfg core.ApiConfig) error {
	if err := a.runtime.Configure(cfg); err != nil {
		return err
	}
	if err := a.store.SaveConfig(cfg); err != nil {
		a.log.Error("persisting config failed", zap.Error(err))
	}
	return nil
}
