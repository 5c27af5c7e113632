package api

import (
	"net/http"
	"time"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

// StatusResponse is the service dashboard summary.
type StatusResponse struct {
	Configured    bool           `json:"configured"`
	Telegram      bool           `json:"telegram"`
	Zone          string         `json:"zone"`
	Endpoint      string         `json:"endpoint"`
	UptimeSeconds int64          `json:"uptimeSeconds"`
	Tasks         map[string]int `json:"tasks"`
	Orders        map[string]int `json:"orders"`
	Subscribers   int            `json:"subscribers"`
}

// GetStatus summarizes service health: configuration state, task and
// order counts, and stream subscribers.
func (a *API) GetStatus(w http.ResponseWriter, r *http.Request) {
	cfg := a.runtime.Config()

	tasks := map[string]int{}
	for _, t := range a.mgr.Tasks() {
		tasks[string(t.Status)]++
	}
	orders := map[string]int{}
	for _, o := range a.mgr.Orders() {
		orders[string(o.Status)]++
	}

	WriteJSON(w, http.StatusOK, StatusResponse{
		Configured:    cfg.HasCredentials(),
		Telegram:      cfg.HasTelegram(),
		Zone:          cfg.Zone,
		Endpoint:      cfg.Endpoint,
		UptimeSeconds: int64(time.Since(a.started) / time.Second),
		Tasks:         tasks,
		Orders:        orders,
		Subscribers:   a.broker.SubscriberCount(),
	})
}

// GetLogs returns the buffered log history, oldest first.
func (a *API) GetLogs(w http.ResponseWriter, r *http.Request) {
	if a.logs == nil {
		WriteError(w, core.NewAppError(core.ErrInternal, "log buffer not configured"))
		return
	}
	WriteJSON(w, http.StatusOK, a.logs.Entries())
}
