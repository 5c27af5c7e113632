package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/imagehubcc/titan-sniper/internal/api"
	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/observability"
	"github.com/imagehubcc/titan-sniper/internal/sniper"
	"github.com/imagehubcc/titan-sniper/internal/store"
)

func main() {
	var cfg api.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	broker := events.NewBroker()
	logBuffer := observability.NewLogBuffer(observability.DefaultLogBufferSize)

	// Every log line is mirrored into the ring buffer and the event
	// stream so the dashboard can tail the service.
	log, _ := observability.NewLogger(cfg.LogLevel, zap.Hooks(func(e zapcore.Entry) error {
		entry := logBuffer.Record(e)
		broker.Publish(events.EventLog, entry)
		return nil
	}))
	defer log.Sync()

	// Replace global logger
	zap.ReplaceGlobals(log)

	reg := prometheus.DefaultRegisterer
	observability.RegisterAll(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(cfg.DataDir, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}

	broker.Start()
	defer broker.Stop()

	mgr := sniper.NewManager(st, broker, log)
	mgr.Load()

	runtime := sniper.NewRuntime(log)
	apiCfg, err := st.LoadConfig()
	if err != nil {
		log.Error("loading config failed, starting unconfigured", zap.Error(err))
	}
	if err := runtime.Configure(apiCfg); err != nil {
		log.Error("provider client init failed, starting unconfigured", zap.Error(err))
	}

	workflow := sniper.NewWorkflow(mgr, runtime, broker, log)
	scheduler := sniper.NewScheduler(mgr, workflow, runtime, cfg.MaxConcurrent, log)
	go scheduler.Run(ctx)

	// Main API server. No write timeout: /ws holds long-lived streams.
	apiHandler := api.NewAPI(mgr, runtime, st, broker, logBuffer, cfg, log)
	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     apiHandler.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: mux,
	}

	go func() {
		log.Info("metrics server starting", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		log.Info("API server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("API server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down API server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("API server stopped")
}
