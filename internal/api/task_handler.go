package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

// ListTasks returns every task ordered by creation time.
func (a *API) ListTasks(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, a.mgr.Tasks())
}

// CreateTask validates a server config and enqueues a new snipe task.
func (a *API) CreateTask(w http.ResponseWriter, r *http.Request) {
	var cfg core.ServerConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	if cfg.PlanCode == "" {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "planCode is required"))
		return
	}
	if cfg.Datacenter == "" {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "datacenter is required"))
		return
	}
	cfg.Normalize(a.defaultOS, a.defaultDuration)

	task := a.mgr.CreateTask(cfg)
	WriteJSON(w, http.StatusCreated, task)
}

// GetTask returns one task by id.
func (a *API) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	task, ok := a.mgr.Task(taskID)
	if !ok {
		WriteError(w, core.NewAppError(core.ErrNotFound, "task not found"))
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// DeleteTask removes one task by id.
func (a *API) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	if !a.mgr.DeleteTask(taskID) {
		WriteError(w, core.NewAppError(core.ErrNotFound, "task not found"))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": taskID, "status": "deleted"})
}

// ClearTasks removes every task.
func (a *API) ClearTasks(w http.ResponseWriter, r *http.Request) {
	count := a.mgr.ClearTasks()
	WriteJSON(w, http.StatusOK, map[string]int{"cleared": count})
}

// RetryTask resets a failed or exhausted task back to pending.
func (a *API) RetryTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	task, err := a.mgr.ResetTask(taskID)
	if err != nil {
		var appErr *core.AppError
		if errors.As(err, &appErr) {
			WriteError(w, appErr)
			return
		}
		WriteError(w, core.NewAppError(core.ErrInternal, "failed to reset task"))
		return
	}
	WriteJSON(w, http.StatusOK, task)
}
