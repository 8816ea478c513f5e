package sources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/scholarforge/scholarforge/pkg/agent"
)

// rateLimits holds a source's published request limits.
type rateLimits struct {
	PerSecond float64
	PerMinute float64
}

// restClient is the shared HTTP machinery for connectors: token-bucket
// rate limiting (per-second and per-minute), bounded retries with
// exponential backoff, and health accounting.
type restClient struct {
	name        string
	client      *http.Client
	perSecond   *rate.Limiter
	perMinute   *rate.Limiter
	maxAttempts int
	retryBase   time.Duration

	mu          sync.Mutex
	requests    int64
	failures    int64
	lastSuccess time.Time
	lastError   string
}

func newRESTClient(name string, limits rateLimits, timeout time.Duration, maxAttempts int) *restClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &restClient{
		name:        name,
		client:      &http.Client{Timeout: timeout},
		perSecond:   rate.NewLimiter(rate.Limit(limits.PerSecond), 1),
		perMinute:   rate.NewLimiter(rate.Limit(limits.PerMinute/60.0), int(limits.PerMinute)),
		maxAttempts: maxAttempts,
		retryBase:   500 * time.Millisecond,
	}
}

// getJSON fetches url and decodes the body into dest. Transient failures
// (429, 5xx, network errors) are retried up to maxAttempts; definitive
// statuses surface as permanent errors.
func (c *restClient) getJSON(ctx context.Context, url string, header http.Header, dest any) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.perSecond.Wait(ctx); err != nil {
			return err
		}
		if err := c.perMinute.Wait(ctx); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, url, header, dest)
		if lastErr == nil {
			c.recordSuccess()
			return nil
		}
		c.recordFailure(lastErr)

		if !agent.IsRetryable(lastErr) || attempt == c.maxAttempts {
			break
		}
		select {
		case <-time.After(c.retryBase << (attempt - 1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *restClient) doOnce(ctx context.Context, url string, header http.Header, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return agent.Internalf(err, "build %s request", c.name)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return agent.Transientf(err, "%s request failed", c.name)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return agent.Transientf(err, "read %s response", c.name)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return agent.Transientf(nil, "%s status %d", c.name, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return agent.Permanentf(nil, "%s: not found", c.name)
	default:
		return agent.Permanentf(nil, "%s status %d: %.200s", c.name, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return agent.Permanentf(err, "decode %s response", c.name)
	}
	return nil
}

func (c *restClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	c.lastSuccess = time.Now()
	c.lastError = ""
}

func (c *restClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	c.failures++
	c.lastError = err.Error()
}

func (c *restClient) health() *Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Health{
		Name:        c.name,
		Healthy:     c.lastError == "",
		LastSuccess: c.lastSuccess,
		LastError:   c.lastError,
		Requests:    c.requests,
		Failures:    c.failures,
	}
}
