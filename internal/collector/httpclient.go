// Package collector polls each registered kit's /drones, /signals, and
// /status endpoints, normalizes whatever comes back, and hands batches to
// the Storage layer under upsert semantics. One fast task and one slow task
// run per enabled kit; a supervisor reacts to registry events so new kits
// are picked up within one fast tick without a restart.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
)

// perHostRate and perHostBurst bound the request rate against a single kit so
// one slow or misbehaving host cannot starve HTTP round trips to the rest.
const (
	perHostRate  = 5
	perHostBurst = 5
)

// Client is the collector's shared HTTP surface: one keep-alive connection
// pool for every kit, with a per-base-URL rate limiter layered on top.
type Client struct {
	http           *http.Client
	requestTimeout time.Duration
	maxRetries     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient builds a Client whose Transport is tuned for many small hosts:
// each kit gets its own keep-alive connection, but none is allowed to hold
// the pool open indefinitely.
func NewClient(requestTimeout time.Duration, maxRetries int) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		MaxConnsPerHost:     8,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http:           &http.Client{Transport: transport},
		requestTimeout: requestTimeout,
		maxRetries:     maxRetries,
		limiters:       make(map[string]*rate.Limiter),
	}
}

func (c *Client) limiterFor(baseURL string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[baseURL]; ok {
		return l
	}
	l := rate.NewLimiter(perHostRate, perHostBurst)
	c.limiters[baseURL] = l
	return l
}

// GetJSON performs GET baseURL+path, decoding the response body as JSON
// into out. Per spec: a hard requestTimeout (10s by default) per attempt, up to maxRetries
// retries with linear backoff (1s, 2s, 3s, ...) between attempts, retried
// only for transport errors and 5xx; 4xx fails fast without a retry.
func (c *Client) GetJSON(ctx context.Context, baseURL, path string, out interface{}) error {
	limiter := c.limiterFor(baseURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		body, status, err := c.doOnce(ctx, baseURL+path)
		if err != nil {
			lastErr = apperr.New(apperr.KindUpstreamTransient, fmt.Sprintf("requesting %s", path), err)
			continue
		}
		if status >= 400 && status < 500 {
			return apperr.New(apperr.KindUpstreamFatal, fmt.Sprintf("%s returned status %d", path, status), nil)
		}
		if status >= 500 {
			lastErr = apperr.New(apperr.KindUpstreamTransient, fmt.Sprintf("%s returned status %d", path, status), nil)
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return apperr.New(apperr.KindUpstreamFatal, fmt.Sprintf("decoding %s response", path), err)
		}
		return nil
	}

	return apperr.New(apperr.KindUpstreamTransient, fmt.Sprintf("%s failed after %d attempts", path, c.maxRetries+1), lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
