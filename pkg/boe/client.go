package boe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
)

// StatusError reports a non-success HTTP status from the gazette.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// retryable reports whether the status is worth another attempt.
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client downloads gazette pages with per-host rate limiting, retries and an
// optional disk cache. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	cache      *DiskCache

	hostTimers map[string]time.Time
	timerMu    sync.Mutex
}

// NewClient creates a Client. A cache directory that cannot be created is an
// error.
func NewClient(config Config) (*Client, error) {
	config = config.withDefaults()

	client := &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		config:     config,
		hostTimers: make(map[string]time.Time),
	}

	if config.CacheDir != "" {
		cache, err := NewDiskCache(config.CacheDir, config.CacheTTL)
		if err != nil {
			return nil, err
		}
		client.cache = cache
	}
	return client, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// FetchLaw downloads the consolidated text of a law by its BOE identifier.
func (c *Client) FetchLaw(ctx context.Context, lawID string) (*Document, error) {
	if err := ValidateLawID(lawID); err != nil {
		return nil, err
	}

	doc, err := c.FetchURL(ctx, LawURL(c.config.BaseURL, lawID))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", lawID, err)
	}
	doc.LawID = lawID
	return doc, nil
}

// FetchURL downloads a page and decodes it to UTF-8.
func (c *Client) FetchURL(ctx context.Context, targetURL string) (*Document, error) {
	if targetURL == "" {
		return nil, fmt.Errorf("empty URL")
	}
	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", targetURL, err)
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(targetURL); ok {
			return &cached, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*c.config.RetryBackoff); err != nil {
				return nil, err
			}
		}
		if err := c.waitForHost(ctx, parsedURL.Host); err != nil {
			return nil, err
		}

		doc, err := c.fetchOnce(ctx, targetURL)
		if err == nil {
			if c.cache != nil {
				// A failed cache write does not fail the fetch.
				_ = c.cache.Set(targetURL, *doc)
			}
			return doc, nil
		}

		lastErr = err
		if !isRetryable(ctx, err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, targetURL string) (*Document, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", targetURL, err)
	}
	request.Header.Set("User-Agent", c.config.UserAgent)
	request.Header.Set("Accept", "text/html, application/xhtml+xml")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, response.Body, 4096)
		return nil, &StatusError{URL: targetURL, StatusCode: response.StatusCode}
	}

	rawBody, err := io.ReadAll(io.LimitReader(response.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %s: %w", targetURL, err)
	}
	if int64(len(rawBody)) > c.config.MaxBodyBytes {
		return nil, fmt.Errorf("body of %s exceeds %d bytes", targetURL, c.config.MaxBodyBytes)
	}

	contentType := response.Header.Get("Content-Type")
	body, err := decodeBody(rawBody, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body from %s: %w", targetURL, err)
	}

	return &Document{
		URL:         targetURL,
		HTML:        body,
		StatusCode:  response.StatusCode,
		ContentType: contentType,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// decodeBody converts the page to UTF-8 using the declared or sniffed charset.
// Older BOE pages are served as ISO-8859-1.
func decodeBody(raw []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.retryable()
	}
	// Transport failures.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// waitForHost enforces the per-host interval between requests.
func (c *Client) waitForHost(ctx context.Context, host string) error {
	c.timerMu.Lock()
	var wait time.Duration
	if last, ok := c.hostTimers[host]; ok {
		if elapsed := time.Since(last); elapsed < c.config.RateLimit {
			wait = c.config.RateLimit - elapsed
		}
	}
	// Reserve the slot before sleeping so concurrent callers queue up.
	c.hostTimers[host] = time.Now().Add(wait)
	c.timerMu.Unlock()

	return sleep(ctx, wait)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
