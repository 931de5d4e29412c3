// Package spotinst sizes an AWS Elastigroup through the Spotinst REST API.
package spotinst

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
	"github.com/kubeadapt/spotinst-autoscaler/internal/observability"
	"github.com/kubeadapt/spotinst-autoscaler/internal/transport"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

const (
	component = "spotinst"

	// maxRetries applies to both calls; a capacity PUT is idempotent.
	maxRetries = 2
)

// Client talks to one Elastigroup.
type Client struct {
	httpClient *http.Client
	baseURL    string
	groupID    string
	account    string
	metrics    *observability.Metrics
}

// NewClient builds a Client for cfg.ElastigroupID. metrics may be nil.
func NewClient(cfg *config.Config, metrics *observability.Metrics) *Client {
	var rt http.RoundTripper = transport.NewBaseTransport()
	rt = transport.WithRetry(maxRetries, rt)
	rt = transport.WithLogging(slog.Default(), rt)
	rt = transport.WithHeaders(map[string]string{
		"Content-Type":  "application/json",
		"Cache-Control": "no-cache",
	}, rt)
	rt = transport.WithAuth(cfg.SpotinstToken, rt)

	return &Client{
		httpClient: &http.Client{Timeout: cfg.SpotinstRequestTimeout, Transport: rt},
		baseURL:    strings.TrimRight(cfg.SpotinstAPIURL, "/"),
		groupID:    cfg.ElastigroupID,
		account:    cfg.SpotinstAccount,
		metrics:    metrics,
	}
}

// InstanceCount returns the number of instances currently in the group.
func (c *Client) InstanceCount(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, "/instanceHealthiness", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body model.ElastigroupHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, errors.New(errors.ErrFleetAPI, component, "decode instance healthiness", err)
	}
	if body.Response.Count != nil {
		return *body.Response.Count, nil
	}
	return len(body.Response.Items), nil
}

// SetCapacity replaces the group's capacity block.
func (c *Client) SetCapacity(ctx context.Context, capacity model.Capacity) error {
	var req model.CapacityUpdateRequest
	req.Group.Capacity = capacity

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("spotinst: encode capacity: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, "", payload)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do sends one request and returns the response only for a 2xx status.
func (c *Client) do(ctx context.Context, method, suffix string, payload []byte) (*http.Response, error) {
	endpoint := c.baseURL + "/aws/ec2/group/" + url.PathEscape(c.groupID) + suffix
	if c.account != "" {
		endpoint += "?accountId=" + url.QueryEscape(c.account)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("spotinst: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count(method, "error")
		return nil, errors.New(errors.ErrTransport, component, method+" elastigroup "+c.groupID, err)
	}
	c.count(method, strconv.Itoa(resp.StatusCode))

	if err := transport.CheckResponse(resp); err != nil {
		return nil, errors.New(errors.ErrFleetAPI, component, rejection(method, err), err)
	}
	return resp, nil
}

func (c *Client) count(method, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.SpotinstRequestsTotal.WithLabelValues(method, status).Inc()
}

// rejection builds an error message from the API's error list when the body
// carries one.
func rejection(method string, err error) string {
	msg := "spotinst API rejected " + method
	var se *transport.StatusError
	if !stderrors.As(err, &se) || se.Body == "" {
		return msg
	}
	var body model.SpotinstErrorResponse
	if json.Unmarshal([]byte(se.Body), &body) != nil {
		return msg
	}
	parts := make([]string, 0, len(body.Response.Errors))
	for _, e := range body.Response.Errors {
		parts = append(parts, e.Code+": "+e.Message)
	}
	if len(parts) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}
