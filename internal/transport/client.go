package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
	"github.com/kubeadapt/spotinst-autoscaler/internal/observability"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// NewBaseTransport returns the http.Transport every client in the process
// builds on.
func NewBaseTransport() *http.Transport {
	// Use an explicit transport instead of http.DefaultTransport to avoid
	// sharing mutable state with other code in the process.
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// ReportClient posts EvaluationReports to REPORT_URL with streaming zstd
// compression. It never buffers the full JSON payload in memory.
type ReportClient struct {
	httpClient *http.Client
	config     *config.Config
	metrics    *observability.Metrics
}

// NewReportClient creates a ReportClient with middleware applied.
// Retry is handled at the Send level (not the RoundTripper) because
// the streaming io.Pipe body must be re-created on each attempt.
func NewReportClient(cfg *config.Config, metrics *observability.Metrics) *ReportClient {
	var rt http.RoundTripper = WithLogging(slog.Default(), NewBaseTransport())
	if cfg.ReportAPIKey != "" {
		rt = WithAuth(cfg.ReportAPIKey, rt)
	}

	return &ReportClient{
		httpClient: &http.Client{
			Timeout:   cfg.ReportRequestTimeout,
			Transport: rt,
		},
		config:  cfg,
		metrics: metrics,
	}
}

// Send streams report to the configured URL, retrying transient failures
// up to REPORT_MAX_RETRIES times.
func (c *ReportClient) Send(ctx context.Context, report *model.EvaluationReport) error {
	var lastErr error

	maxAttempts := c.config.ReportMaxRetries + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.TransportRetries.Inc()
			}
			if err := sleepWithBackoff(ctx, attempt-1); err != nil {
				lastErr = fmt.Errorf("transport: context canceled before attempt %d: %w", attempt+1, err)
				break
			}
		}

		// Check context before each attempt.
		if err := ctx.Err(); err != nil {
			lastErr = fmt.Errorf("transport: context canceled before attempt %d: %w", attempt+1, err)
			break
		}

		lastErr = c.doSend(ctx, report)
		if lastErr == nil || isNonRetryableError(lastErr) {
			break
		}
	}

	if c.metrics != nil {
		if lastErr != nil {
			c.metrics.ReportSendTotal.WithLabelValues("error").Inc()
		} else {
			c.metrics.ReportSendTotal.WithLabelValues("success").Inc()
		}
	}

	if lastErr != nil {
		return errors.New(errors.ErrTransport, "transport", "send evaluation report", lastErr)
	}
	return nil
}

// doSend performs a single HTTP POST with streaming compression.
// Each call creates a fresh io.Pipe so it can be called multiple times for retries.
func (c *ReportClient) doSend(ctx context.Context, report *model.EvaluationReport) error {
	pr, pw := io.Pipe()

	// Counts compressed bytes written to the pipe.
	compressed := newByteCounter(pw)

	zw, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = pw.Close()
		return fmt.Errorf("transport: failed to create zstd encoder: %w", err)
	}
	original := newByteCounter(zw)

	// Goroutine: encode JSON → zstd → pipe.
	go func() {
		start := time.Now()
		encodeErr := json.NewEncoder(original).Encode(report)
		// Close zstd first to flush, then close the pipe.
		closeErr := zw.Close()
		switch {
		case encodeErr != nil:
			pw.CloseWithError(fmt.Errorf("transport: JSON encode failed: %w", encodeErr))
		case closeErr != nil:
			pw.CloseWithError(fmt.Errorf("transport: zstd close failed: %w", closeErr))
		default:
			c.recordCompression(original.N(), compressed.N(), time.Since(start))
			_ = pw.Close()
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ReportURL, pr)
	if err != nil {
		_ = pr.Close()
		return fmt.Errorf("transport: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	req.Header.Set("X-Elastigroup-ID", report.ElastigroupID)
	req.Header.Set("X-Evaluation-ID", report.EvaluationID)
	req.Header.Set("X-Autoscaler-Version", c.config.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return fmt.Errorf("transport: HTTP request failed: %w", err)
	}
	if err := CheckResponse(resp); err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

func (c *ReportClient) recordCompression(original, compressed int64, elapsed time.Duration) {
	if c.metrics == nil || original == 0 {
		return
	}
	c.metrics.CompressionRatio.Set(float64(compressed) / float64(original))
	c.metrics.CompressionDuration.Observe(elapsed.Seconds())
}

// NewPushClient returns the HTTP client used for Pushgateway pushes. Push
// bodies are buffered, so retries can live in the RoundTripper.
func NewPushClient(cfg *config.Config) *http.Client {
	return &http.Client{
		Timeout: cfg.ReportRequestTimeout,
		Transport: WithRetry(cfg.ReportMaxRetries,
			WithLogging(slog.Default(), NewBaseTransport())),
	}
}
