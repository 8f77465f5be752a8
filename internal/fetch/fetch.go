// Package fetch downloads source PDFs over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	UserAgent  string
	Timeout    time.Duration // per attempt
	Retries    int           // attempts after the first
	RetryDelay time.Duration // base delay, doubled per attempt
	MaxBytes   int64
	Stats      *Stats
	HTTPClient *http.Client
}

const (
	DefaultUserAgent  = "docbind/1.0 (+https://github.com/dgallion1/docbind)"
	DefaultTimeout    = 30 * time.Second
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultMaxBytes   = 100 << 20
)

// Client fetches PDFs, retrying transient failures.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	maxBytes   int64
	stats      *Stats
	log        *slog.Logger
}

func NewClient(opts Options, log *slog.Logger) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		retries:    max(opts.Retries, 0),
		retryDelay: opts.RetryDelay,
		maxBytes:   opts.MaxBytes,
		stats:      opts.Stats,
		log:        log,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.maxBytes <= 0 {
		c.maxBytes = DefaultMaxBytes
	}
	if c.stats == nil {
		c.stats = NewStats(time.Hour)
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Stats returns the latency tracker shared by all fetches.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Fetch downloads url and returns its body. The body is guaranteed to carry
// a PDF signature. Failures are reported as *FetchError naming url.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	var body []byte
	err := retry.Do(
		func() error {
			b, err := c.fetchOnce(ctx, url)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retries+1)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("retrying fetch", "url", url, "attempt", n+1, "error", err)
		}),
	)
	c.stats.Record(time.Since(start), err != nil)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{URL: url, Err: err}
		}
		return nil, err
	}
	c.log.Debug("fetched document", "url", url, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Reason: "invalid request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/pdf, application/octet-stream;q=0.9, */*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err, retryable: ctx.Err() == nil}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Reason: "read body", Err: err, retryable: ctx.Err() == nil}
	}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Reason:     describeBody(contentType, body),
			retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &FetchError{URL: url, Reason: fmt.Sprintf("document exceeds %d bytes", c.maxBytes)}
	}
	if !acceptableContentType(contentType) {
		return nil, &FetchError{URL: url, Reason: describeBody(contentType, body)}
	}
	if !HasPDFSignature(body) {
		reason := describeBody(contentType, body)
		if reason == "" || !looksLikeHTML(contentType, body) {
			reason = "response is not a PDF (missing %PDF- header)"
		}
		return nil, &FetchError{URL: url, Reason: reason}
	}
	return body, nil
}
