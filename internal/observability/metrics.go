package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// sniper-api HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sniper_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sniper_active_requests",
		Help: "Current in-flight requests",
	})

	// scheduler / workflow metrics
	WorkflowTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_workflow_total",
		Help: "Order workflow outcomes",
	}, []string{"outcome"})

	WorkflowDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sniper_workflow_duration_seconds",
		Help:    "Order workflow end-to-end duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"outcome"})

	InFlightWorkflows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sniper_inflight_workflows",
		Help: "Currently executing order workflows",
	})

	TaskRetryTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sniper_task_retry_total",
		Help: "Task dispatch attempts",
	})

	TasksByStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sniper_tasks",
		Help: "Tasks by status",
	}, []string{"status"})

	// provider metrics
	ProviderCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sniper_provider_call_duration_seconds",
		Help:    "Provider API call latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method"})

	ProviderCallErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_provider_call_errors_total",
		Help: "Provider API call failures",
	}, []string{"method"})

	ProbeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_probe_total",
		Help: "Availability probe results",
	}, []string{"result"})

	// event / notification metrics
	EventSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sniper_event_subscribers",
		Help: "Active event-stream subscribers",
	})

	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_notifications_total",
		Help: "Outbound notifications by result",
	}, []string{"result"})
)

func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, ActiveRequests,
		WorkflowTotal, WorkflowDuration, InFlightWorkflows,
		TaskRetryTotal, TasksByStatus,
		ProviderCallDuration, ProviderCallErrors, ProbeTotal,
		EventSubscribers, NotificationsTotal,
	)
}
