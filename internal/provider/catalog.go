package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const catalogBaseURL = "https://eu.api.ovh.com/v1/order/catalog/public/eco"

var catalogClient = &http.Client{Timeout: 30 * time.Second}

// FetchCatalog downloads the public eco product catalog for a subsidiary.
// The endpoint is unauthenticated, so it bypasses the signed client.
func FetchCatalog(ctx context.Context, subsidiary string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("ovhSubsidiary", subsidiary)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}

	resp, err := catalogClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return json.RawMessage(body), nil
}
