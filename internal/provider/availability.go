package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/observability"
)

const availabilitiesPath = "/dedicated/server/datacenter/availabilities"

// Probe queries inventory status for a plan code. Requested options are
// forwarded as option.<label>=<value> query parameters. An empty result
// is not an error; individual malformed entries are logged and skipped.
func Probe(ctx context.Context, c Caller, planCode string, options []core.AddonOption, log *zap.Logger) ([]AvailabilityEntry, error) {
	q := url.Values{}
	q.Set("planCode", planCode)
	for _, opt := range options {
		if opt.Label != "" && opt.Value != "" {
			q.Set("option."+opt.Label, opt.Value)
		}
	}

	var raw []json.RawMessage
	if err := c.Get(ctx, availabilitiesPath+"?"+q.Encode(), &raw); err != nil {
		observability.ProbeTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("probe %s: %w", planCode, err)
	}

	entries := make([]AvailabilityEntry, 0, len(raw))
	for i, msg := range raw {
		var entry AvailabilityEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			log.Warn("skipping malformed availability entry",
				zap.String("plan_code", planCode),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		observability.ProbeTotal.WithLabelValues("empty").Inc()
	} else {
		observability.ProbeTotal.WithLabelValues("ok").Inc()
	}
	return entries, nil
}
