package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/provider"
)

// ListServers proxies the provider's public eco catalog for the
// configured subsidiary. No credentials needed.
func (a *API) ListServers(w http.ResponseWriter, r *http.Request) {
	catalog, err := provider.FetchCatalog(r.Context(), a.runtime.Config().Zone)
	if err != nil {
		a.log.Error("fetching catalog failed", zap.Error(err))
		WriteError(w, core.NewAppError(core.ErrProviderError, "failed to fetch server catalog"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(catalog)
}

// GetAvailability runs a one-off availability probe for a plan code.
func (a *API) GetAvailability(w http.ResponseWriter, r *http.Request) {
	a.probe(w, r, nil)
}

// CheckAvailability probes with requested add-on options forwarded as
// query filters.
func (a *API) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Options []core.AddonOption `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	a.probe(w, r, body.Options)
}

func (a *API) probe(w http.ResponseWriter, r *http.Request, options []core.AddonOption) {
	planCode := chi.URLParam(r, "plan_code")

	client := a.runtime.Client()
	if client == nil {
		WriteError(w, core.NewAppError(core.ErrNotConfigured, "provider credentials not configured"))
		return
	}

	entries, err := provider.Probe(r.Context(), client, planCode, options, a.log)
	if err != nil {
		a.log.Error("availability probe failed",
			zap.String("plan_code", planCode),
			zap.Error(err),
		)
		WriteError(w, core.NewAppError(core.ErrProviderError, "availability probe failed"))
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}
