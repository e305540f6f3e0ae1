package oli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/hydrolabs/olicloud-go/internal/credentials"
	"github.com/hydrolabs/olicloud-go/internal/metrics"
)

const (
	// DefaultPollInterval is the pause between result-link polls and
	// between submission and the first poll.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultMaxPolls is the poll attempt budget per request.
	DefaultMaxPolls = 100
)

// Config holds client settings.
type Config struct {
	// HTTPTimeout bounds each individual HTTP call. Defaults to 5m; flash
	// waiting is governed by the poll budget, not this timeout.
	HTTPTimeout time.Duration

	// Interactive enables y/N prompts before destructive operations.
	Interactive bool

	// PollInterval and MaxPolls default unset fields of per-call options.
	PollInterval time.Duration
	MaxPolls     int
}

// Client wraps OLI Cloud API calls. All blocking operations take a context;
// the logger is an injected collaborator so concurrent runs and tests can
// isolate output.
type Client struct {
	creds       credentials.Manager
	httpClient  *http.Client
	logger      *slog.Logger
	collector   *metrics.Collector
	interactive bool

	pollInterval time.Duration
	maxPolls     int
}

// NewClient creates an OLI Cloud client. logger and collector may be nil.
func NewClient(creds credentials.Manager, cfg Config, logger *slog.Logger, collector *metrics.Collector) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}
	maxPolls := cfg.MaxPolls
	if maxPolls == 0 {
		maxPolls = DefaultMaxPolls
	}
	return &Client{
		creds:        creds,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
		collector:    collector,
		interactive:  cfg.Interactive,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// Call runs a single flash request end to end: dispatch, submit, then poll
// the result link until the job reaches a terminal state.
func (c *Client) Call(ctx context.Context, req FlashRequest) (map[string]any, error) {
	status, data, err := c.submitAndPoll(ctx, req, "", c.pollInterval, c.maxPolls)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("flash call complete", "method", req.FlashMethod, "status", status)
	return data, nil
}

// submitAndPoll is the shared request/poll cycle behind Call and
// ProcessRequestList. Successful cycles are recorded in the collector
// keyed by flash method.
func (c *Client) submitAndPoll(ctx context.Context, req FlashRequest, burstTag string, interval time.Duration, maxPolls int) (Status, map[string]any, error) {
	start := time.Now()
	if req.BurstTag != "" {
		burstTag = req.BurstTag
	}
	verb, url, headers, err := c.flashMode(req.FileID, req.FlashMethod, burstTag)
	if err != nil {
		return "", nil, err
	}

	var body io.Reader
	if req.InputParams != nil {
		encoded, err := json.Marshal(req.InputParams)
		if err != nil {
			return "", nil, fmt.Errorf("marshal input params: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	submitted, err := c.do(ctx, req.FlashMethod, verb, url, headers, body, []Status{StatusSuccess})
	if err != nil {
		return "", nil, err
	}

	link, err := resultLink(req.FlashMethod, submitted)
	if err != nil {
		return "", nil, err
	}

	// Give the job a head start before the first poll.
	if err := sleep(ctx, interval); err != nil {
		return "", nil, err
	}
	status, data, err := c.pollResultLink(ctx, link, headers, maxPolls, interval)
	if err != nil {
		return "", nil, err
	}
	if c.collector != nil {
		c.collector.RecordTiming(req.FlashMethod, time.Since(start))
	}
	return status, data, nil
}

// do issues one HTTP call and validates the response via checkStatus.
func (c *Client) do(ctx context.Context, op, verb, url string, headers map[string]string, body io.Reader, want []Status) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, verb, url, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", op, err)
	}
	defer resp.Body.Close()

	return checkStatus(op, resp, want)
}

// checkStatus decodes a response body and gates it on the operation's
// accepted status markers. A nil want set accepts any 200 body.
func checkStatus(op string, resp *http.Response, want []Status) (map[string]any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%s: %w: not a JSON object: %s", op, ErrUnexpectedResponse, string(raw))
	}
	if want == nil {
		return body, nil
	}

	status, ok := body["status"].(string)
	if !ok {
		return nil, fmt.Errorf("%s: %w: missing status marker: %s", op, ErrUnexpectedResponse, string(raw))
	}
	if !slices.Contains(want, Status(status)) {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return body, nil
}

// resultLink extracts data.resultsLink from an accepted submission response.
func resultLink(op string, body map[string]any) (string, error) {
	if data, ok := body["data"].(map[string]any); ok {
		if link, ok := data["resultsLink"].(string); ok && link != "" {
			return link, nil
		}
	}
	return "", fmt.Errorf("%s: %w: missing data.resultsLink", op, ErrUnexpectedResponse)
}

// sleep pauses for d or returns early with the context's error.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
