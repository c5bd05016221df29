package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"NewsScanner/internal/ports"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	maxBodyBytes       = 10 << 20
)

// DefaultUserAgents is the client identity pool rotated across attempts.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
}

// StatusError reports a delivered response with a non-2xx status. It is not retried.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// Options tunes the retry loop. Zero values fall back to defaults.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	UserAgents  []string
}

// HTTPFetcher issues GET requests with linear backoff between attempts.
type HTTPFetcher struct {
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	userAgents  []string
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// New builds a fetcher; a nil client gets a per-attempt timeout from opts.
func New(client *http.Client, opts Options, logger *slog.Logger) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = DefaultUserAgents
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPFetcher{
		client:      client,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		userAgents:  opts.UserAgents,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Fetch downloads url, retrying transport failures up to maxAttempts times.
// Attempt n waits n*baseDelay before attempt n+1.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("fetch: empty url")
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		body, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		lastErr = err
		f.warn("fetch attempt failed", "url", url, "attempt", attempt, "error", err)
		if attempt == f.maxAttempts {
			break
		}
		if err := f.sleep(ctx, time.Duration(attempt)*f.baseDelay); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", url, f.maxAttempts, lastErr)
}

func (f *HTTPFetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.pickUserAgent())
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (f *HTTPFetcher) pickUserAgent() string {
	return f.userAgents[rand.Intn(len(f.userAgents))]
}

func (f *HTTPFetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
