// Package httpclient implements the outbound HTTP port (`post`/`get`, both
// fallible with Network errors) on top of a bounded-retry client rather
// than a bare net/http.Client, since NotifyMinion and the wallet delegation
// port both call an unreliable remote peer.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"

	"github.com/hashicorp/go-retryablehttp"
)

// Response is the port's fallible result type.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Client is the outbound HTTP port, shared by NotifyMinion, the push variant
// of EndInteraction, and pkg/walletclient.
type Client struct {
	retry   *retryablehttp.Client
	timeout time.Duration
}

// New builds a Client from cfg.HTTPClient, constructed once at startup and
// handed to every collaborator that needs it.
func New(cfg *model.Cfg, log *logger.Log) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.HTTPClient.RetryMax
	retry.Logger = nil
	retry.HTTPClient.Timeout = time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second

	return &Client{
		retry:   retry,
		timeout: time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
	}
}

// Post sends body to url with the given headers and a configurable per-call
// timeout (default 30s).
func (c *Client) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apierror.Newf(apierror.Consumer, "build request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

// Get issues a GET with the given headers and a per-call timeout.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apierror.Newf(apierror.Consumer, "build request: %s", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

func (c *Client) do(req *retryablehttp.Request) (*Response, error) {
	resp, err := c.retry.Do(req)
	if err != nil {
		return nil, apierror.Newf(apierror.Consumer, "outbound request failed: %s", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Newf(apierror.Consumer, "read response body: %s", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}
