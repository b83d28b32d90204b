package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/retry"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 5 * 1024 * 1024
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// ErrNotOpen is returned when Fetch is called outside an Open/Close scope.
var ErrNotOpen = errors.New("fetcher session is not open")

// Options controls HTTP fetching behaviour.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Retry        retry.Policy
	// Transport overrides the round tripper built by Open (tests inject httptest transports).
	Transport http.RoundTripper
}

// HTTPFetcher downloads pages over one shared HTTP client per session.
type HTTPFetcher struct {
	opts   Options
	logger *slog.Logger

	mu     sync.RWMutex
	client *http.Client
}

var _ ports.FetchSession = (*HTTPFetcher)(nil)

// New builds a fetcher; the HTTP client is created lazily by Open.
func New(opts Options, logger *slog.Logger) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPFetcher{opts: opts, logger: logger}
}

// Open acquires the shared client. Calling Open twice keeps the first client.
func (f *HTTPFetcher) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil {
		return nil
	}

	transport := f.opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	}

	f.client = &http.Client{Timeout: f.opts.Timeout, Transport: transport}
	return nil
}

// Close releases pooled connections. It is safe to call on a closed fetcher.
func (f *HTTPFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		return nil
	}
	f.client.CloseIdleConnections()
	f.client = nil
	return nil
}

// Fetch returns the page body, retrying transport errors and non-200 statuses.
// On exhaustion the error wraps retry.ErrExhausted.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.RLock()
	client := f.client
	f.mu.RUnlock()
	if client == nil {
		return "", ErrNotOpen
	}

	var body string
	err := f.opts.Retry.Do(ctx, func(attempt int) error {
		text, err := f.get(ctx, client, url)
		if err != nil {
			f.logger.Error("fetch failed", "url", url, "attempt", attempt, "error", err)
			return err
		}
		body = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > f.opts.MaxBodyBytes {
		return "", fmt.Errorf("response body exceeds limit of %d bytes", f.opts.MaxBodyBytes)
	}
	return string(raw), nil
}
