package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError is returned for any non-2xx response that was not retried
// away. Callers map StatusCode to their own errors.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

// StatusOf returns the status code carried by err, or 0.
func StatusOf(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	Retry5xx bool

	// RetryStatuses lists extra statuses worth another attempt.
	RetryStatuses map[int]bool

	// RetryRateLimited retries a 403 whose X-RateLimit-Remaining is 0,
	// GitHub's way of reporting an exhausted quota.
	RetryRateLimited bool
}

// DefaultRetryConfig is tuned for interactive calls to the GitHub API: an
// editor is waiting, so give up sooner than a batch job would.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Retry5xx:    true,
		RetryStatuses: map[int]bool{
			http.StatusTooManyRequests: true,
			http.StatusRequestTimeout:  true,
		},
		RetryRateLimited: true,
	}
}

// DoWithRetry runs the request built by buildReq until it succeeds, fails
// with a non-retryable status, or runs out of attempts. The body is always
// read in full so the connection can be reused.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg = def
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = def.RetryStatuses
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < cfg.MaxAttempts {
				lastErr = err
				if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
					return nil, nil, err
				}
				continue
			}
			return nil, nil, err
		}

		body, readErr := readAndClose(resp.Body)
		if readErr != nil {
			if isRetryableNetErr(readErr) && attempt < cfg.MaxAttempts {
				lastErr = readErr
				if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
					return nil, nil, err
				}
				continue
			}
			return resp, body, readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, body, nil
		}

		herr := &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
		if isRetryable(resp, cfg) && attempt < cfg.MaxAttempts {
			lastErr = herr
			if err := sleepBackoff(ctx, attempt, cfg, ParseRetryAfter(resp)); err != nil {
				return nil, nil, err
			}
			continue
		}
		return resp, body, herr
	}

	if lastErr != nil {
		return nil, nil, lastErr
	}
	return nil, nil, errors.New("httpx: request failed")
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

func isRetryable(resp *http.Response, cfg RetryConfig) bool {
	code := resp.StatusCode
	if cfg.RetryStatuses[code] {
		return true
	}
	if cfg.Retry5xx && code >= 500 && code <= 599 {
		return true
	}
	if cfg.RetryRateLimited && code == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	return false
}

func sleepBackoff(ctx context.Context, attempt int, cfg RetryConfig, retryAfter time.Duration) error {
	sleep := retryAfter
	if sleep <= 0 {
		sleep = cfg.BaseDelay * time.Duration(1<<(attempt-1))
		sleep += time.Duration(rand.Intn(250)) * time.Millisecond
	}
	if sleep > cfg.MaxDelay {
		sleep = cfg.MaxDelay
	}

	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

// ParseRetryAfter reads Retry-After (seconds or HTTP date), falling back to
// GitHub's X-RateLimit-Reset epoch. Missing or invalid headers yield 0.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if v := strings.TrimSpace(resp.Header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
		if t, err := http.ParseTime(v); err == nil {
			return nonNegative(time.Until(t))
		}
		return 0
	}
	if v := strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset")); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			return nonNegative(time.Until(time.Unix(epoch, 0)))
		}
	}
	return 0
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// DoJSON runs DoWithRetry and decodes a JSON body into out, if non-nil.
func DoJSON(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	out any,
	cfg RetryConfig,
) error {
	_, body, err := DoWithRetry(ctx, client, buildReq, cfg)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json parse error: %w body=%s", err, snippet(body, 300))
	}
	return nil
}

// Transport is a RoundTripper that retries through DoWithRetry. Requests
// other than GET and HEAD use WriteRetry. A status that survives the
// retries is returned as a response, not an error, so SDK clients can
// decode GitHub's error body themselves.
type Transport struct {
	Base       http.RoundTripper
	Retry      RetryConfig
	WriteRetry RetryConfig
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var payload []byte
	if req.Body != nil {
		b, err := readAndClose(req.Body)
		if err != nil {
			return nil, err
		}
		payload = b
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	client := &http.Client{
		Transport: base,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	build := func(ctx context.Context) (*http.Request, error) {
		r := req.Clone(ctx)
		if payload != nil {
			r.Body = io.NopCloser(bytes.NewReader(payload))
			r.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(payload)), nil
			}
			r.ContentLength = int64(len(payload))
		}
		return r, nil
	}

	cfg := t.Retry
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		cfg = t.WriteRetry
	}
	resp, body, err := DoWithRetry(req.Context(), client, build, cfg)
	if resp == nil || (err != nil && StatusOf(err) == 0) {
		if err == nil {
			err = errors.New("httpx: no response")
		}
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}
