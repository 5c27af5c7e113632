package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/api/middleware"
	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/observability"
	"github.com/imagehubcc/titan-sniper/internal/sniper"
	"github.com/imagehubcc/titan-sniper/internal/store"
)

type API struct {
	mgr     *sniper.Manager
	runtime *sniper.Runtime
	store   *store.Store
	broker  *events.Broker
	logs    *observability.LogBuffer
	log     *zap.Logger

	defaultOS       string
	defaultDuration string
	started         time.Time
}

func NewAPI(mgr *sniper.Manager, runtime *sniper.Runtime, st *store.Store, broker *events.Broker, logs *observability.LogBuffer, cfg Config, log *zap.Logger) *API {
	return &API{
		mgr:             mgr,
		runtime:         runtime,
		store:           st,
		broker:          broker,
		logs:            logs,
		log:             log,
		defaultOS:       cfg.DefaultOS,
		defaultDuration: cfg.DefaultDuration,
		started:         time.Now(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(a.log))
	r.Use(middleware.Logger)

	// Health endpoints
	r.Get("/healthz", a.HealthHandler)
	r.Get("/readyz", a.ReadyHandler)

	// Live event stream; mounted outside the content-type guard because
	// the upgrade request carries no body.
	r.Get("/ws", a.WebSocketHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Tasks
		r.Get("/tasks", a.ListTasks)
		r.Post("/tasks", a.CreateTask)
		r.Delete("/tasks", a.ClearTasks)
		r.Get("/tasks/{task_id}", a.GetTask)
		r.Delete("/tasks/{task_id}", a.DeleteTask)
		r.Post("/tasks/{task_id}/retry", a.RetryTask)

		// Compatibility alias for the old queue-style creation endpoint.
		r.Post("/queue/new", a.CreateTask)

		// Orders
		r.Get("/orders", a.ListOrders)
		r.Delete("/orders", a.ClearOrders)
		r.Delete("/orders/{order_id}", a.DeleteOrder)

		// Configuration
		r.Get("/config", a.GetConfig)
		r.Post("/config/ovh", a.UpdateOVHConfig)
		r.Post("/config/telegram", a.UpdateTelegramConfig)

		// Catalog and availability passthrough
		r.Get("/servers", a.ListServers)
		r.Get("/servers/{plan_code}/availability", a.GetAvailability)
		r.Post("/servers/{plan_code}/availability", a.CheckAvailability)

		// Service state
		r.Get("/status", a.GetStatus)
		r.Get("/logs", a.GetLogs)
	})

	return r
}
