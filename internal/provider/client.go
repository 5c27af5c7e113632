// Package provider wraps the OVH API: signed transport, typed endpoint
// calls for the order flow, and classification of provider errors into
// soft-unavailability versus hard failure.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ovh/go-ovh/ovh"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/observability"
)

// DefaultCallTimeout bounds any provider call whose context carries no
// deadline of its own.
const DefaultCallTimeout = 30 * time.Second

// Caller is the minimal provider transport the workflow depends on.
// The real implementation signs requests; test fakes route on path.
type Caller interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, payload, out interface{}) error
}

// Client is a Caller over the signed OVH API with per-call logging.
type Client struct {
	ovh *ovh.Client
	log *zap.Logger
}

// New builds a signed client from the persisted API configuration.
func New(cfg core.ApiConfig, log *zap.Logger) (*Client, error) {
	if !cfg.HasCredentials() {
		return nil, errors.New("provider credentials not configured")
	}
	oc, err := ovh.NewClient(cfg.Endpoint, cfg.AppKey, cfg.AppSecret, cfg.ConsumerKey)
	if err != nil {
		return nil, err
	}
	return &Client{ovh: oc, log: log}, nil
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.call(ctx, "GET", path, func(ctx context.Context) error {
		return c.ovh.GetWithContext(ctx, path, out)
	})
}

func (c *Client) Post(ctx context.Context, path string, payload, out interface{}) error {
	return c.call(ctx, "POST", path, func(ctx context.Context) error {
		return c.ovh.PostWithContext(ctx, path, payload, out)
	})
}

func (c *Client) call(ctx context.Context, method, path string, fn func(context.Context) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	requestID := uuid.New().String()[:8]
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	observability.ProviderCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		observability.ProviderCallErrors.WithLabelValues(method).Inc()
		c.log.Warn("provider call failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return err
	}
	c.log.Debug("provider call",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("duration", elapsed),
	)
	return nil
}
