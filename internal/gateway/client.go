package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"shareit/internal/config"
	"shareit/internal/httpx"
	"shareit/internal/models"
	"shareit/internal/worker"

	"github.com/rs/zerolog"
)

// Response is a core server reply relayed verbatim to the caller.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client forwards validated calls to the core server. Reads are retried
// with backoff on transport errors and 502/503/504; writes are sent once.
type Client struct {
	baseURL string
	http    *http.Client
	retry   worker.RetryPolicy
	logger  *zerolog.Logger
}

func NewClient(cfg config.GatewayConfig, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		retry:   worker.PolicyFromConfig(cfg.Retry),
		logger:  logger,
	}
}

// Call is one request to the core server.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	UserID string
	Body   any
}

func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	var payload []byte
	if call.Body != nil {
		var err error
		payload, err = json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
	}

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	policy := c.retry
	if call.Method != http.MethodGet {
		policy.MaxRetries = 0
	}

	var resp *Response
	attempt := 0
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		r, err := c.send(ctx, call, target, payload)
		if err != nil {
			c.logger.Warn().Err(err).Str("method", call.Method).Str("path", call.Path).Int("attempt", attempt).Msg("core request failed")
			return err
		}
		resp = r
		if retryableStatus(r.Status) {
			return fmt.Errorf("core server answered %d", r.Status)
		}
		return nil
	})
	if resp != nil {
		// a retryable status that survived every attempt is still relayed
		return resp, nil
	}
	return nil, err
}

func (c *Client) send(ctx context.Context, call Call, target string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, &worker.Permanent{Err: fmt.Errorf("build request: %w", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.UserID != "" {
		req.Header.Set(models.UserIDHeader, call.UserID)
	}
	if id := httpx.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(models.RequestIDHeader, id)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
