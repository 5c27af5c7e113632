package api

import "time"

type Config struct {
	HTTPAddr        string        `envconfig:"SNIPER_HTTP_ADDR" default:"0.0.0.0:8080"`
	MetricsAddr     string        `envconfig:"SNIPER_METRICS_ADDR" default:"0.0.0.0:9090"`
	LogLevel        string        `envconfig:"SNIPER_LOG_LEVEL" default:"info"`
	DataDir         string        `envconfig:"SNIPER_DATA_DIR" default:"data"`
	MaxConcurrent   int           `envconfig:"SNIPER_MAX_CONCURRENT" default:"4"`
	DefaultOS       string        `envconfig:"SNIPER_DEFAULT_OS" default:"none_64.en"`
	DefaultDuration string        `envconfig:"SNIPER_DEFAULT_DURATION" default:"P1M"`
	ShutdownTimeout time.Duration `envconfig:"SNIPER_SHUTDOWN_TIMEOUT" default:"30s"`
}
