// Package transport holds the HTTP plumbing shared by the Spotinst client,
// the report sender and the Pushgateway push.
package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// backoffBase is the first retry delay; it doubles on each attempt.
var backoffBase = time.Second

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 4096

// authTransport adds an Authorization: Bearer header to every request.
type authTransport struct {
	token string
	next  http.RoundTripper
}

// WithAuth wraps a RoundTripper with bearer-token authorization.
func WithAuth(token string, next http.RoundTripper) http.RoundTripper {
	return &authTransport{token: token, next: next}
}

func (a *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+a.token)
	return a.next.RoundTrip(req)
}

// headerTransport sets fixed headers on every request.
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

// WithHeaders wraps a RoundTripper so every request carries headers.
func WithHeaders(headers map[string]string, next http.RoundTripper) http.RoundTripper {
	return &headerTransport{headers: headers, next: next}
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return h.next.RoundTrip(req)
}

// loggingTransport logs request method/URL and response status.
type loggingTransport struct {
	logger *slog.Logger
	next   http.RoundTripper
}

// WithLogging wraps a RoundTripper with request/response logging.
func WithLogging(logger *slog.Logger, next http.RoundTripper) http.RoundTripper {
	return &loggingTransport{logger: logger, next: next}
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Error("HTTP request failed",
			"method", req.Method,
			"url", redactedURL(req),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return resp, err
	}

	l.logger.Info("HTTP request completed",
		"method", req.Method,
		"url", redactedURL(req),
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}

// redactedURL drops the query string, which may carry an account id.
func redactedURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

// retryTransport retries on 5xx and 429 errors with exponential backoff.
// It does NOT retry on 401/403 (auth failures). Requests with a body are
// only retried when GetBody can rewind it.
type retryTransport struct {
	maxRetries int
	next       http.RoundTripper
}

// WithRetry wraps a RoundTripper with retry logic for transient errors.
func WithRetry(maxRetries int, next http.RoundTripper) http.RoundTripper {
	return &retryTransport{maxRetries: maxRetries, next: next}
}

func (r *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			if req, err = rewind(req); err != nil {
				return nil, err
			}
		}

		resp, err = r.next.RoundTrip(req)
		last := attempt == r.maxRetries
		if err != nil {
			// Network error, retry unless the caller gave up.
			if !last && req.Context().Err() == nil {
				if waitErr := sleepWithBackoff(req.Context(), attempt); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, err
		}

		// Success or client error that shouldn't be retried.
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if last {
			return resp, nil
		}

		drainAndClose(resp.Body)
		delay := backoffDelay(attempt)
		if resp.StatusCode == http.StatusTooManyRequests {
			delay = retryAfterDelay(resp)
		}
		if err := wait(req.Context(), delay); err != nil {
			return nil, err
		}
	}

	return resp, err
}

// rewind returns a copy of req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("transport: cannot retry %s %s: body is not rewindable", req.Method, redactedURL(req))
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("transport: rewind request body: %w", err)
	}
	req = req.Clone(req.Context())
	req.Body = body
	return req, nil
}

// backoffDelay is backoffBase * 2^attempt.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * backoffBase
}

// sleepWithBackoff waits backoffDelay(attempt) or until ctx is done.
func sleepWithBackoff(ctx context.Context, attempt int) error {
	return wait(ctx, backoffDelay(attempt))
}

// wait blocks for d and returns ctx.Err() if ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// maxRetryAfter caps the wait a 429 response can ask for.
const maxRetryAfter = 30 * time.Second

// retryAfterDelay extracts the delay from a 429 response's Retry-After
// header (seconds), capped at maxRetryAfter.
func retryAfterDelay(resp *http.Response) time.Duration {
	const defaultDelay = 5 * time.Second

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return min(time.Duration(secs)*time.Second, maxRetryAfter)
		}
	}
	return defaultDelay
}

// drainAndClose reads remaining body bytes and closes, preventing connection leaks.
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	body.Close()
}

// StatusError is returned by CheckResponse for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("transport: authentication failed (HTTP %d)", e.StatusCode)
	case e.StatusCode == http.StatusTooManyRequests:
		return "transport: rate limited (HTTP 429)"
	case e.StatusCode >= 500:
		return fmt.Sprintf("transport: server error (HTTP %d)", e.StatusCode)
	default:
		return fmt.Sprintf("transport: unexpected status (HTTP %d)", e.StatusCode)
	}
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// CheckResponse returns nil for a 2xx response and leaves its body open.
// Any other status closes the body and returns a *StatusError carrying the
// start of it.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer drainAndClose(resp.Body)

	var body string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		body = strings.TrimSpace(string(b))
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: body}
}

// isNonRetryableError reports whether err is a status error that another
// attempt cannot fix.
func isNonRetryableError(err error) bool {
	var se *StatusError
	if stderrors.As(err, &se) {
		return !se.Retryable()
	}
	return false
}
