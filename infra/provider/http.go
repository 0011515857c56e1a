package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/feescope/pkg/provider"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 1 << 20

// httpClient is the shared GET-JSON client of the upstream providers.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// newHTTPClient returns a client allowing requestsPerMinute upstream calls
// with the given burst. A non-positive requestsPerMinute disables limiting.
func newHTTPClient(timeout time.Duration, requestsPerMinute, burst int, logger *slog.Logger) *httpClient {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

func (c *httpClient) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("Upstream request", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d: %s",
			provider.ErrProviderUnavailable, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	const n = 200
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
