// Package integration is a client for the kdspace HTTP API.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-sod/kdspace/internal/httputil"
)

var ErrNotFound = fmt.Errorf("point not found")

// StatusError is returned for any non-2xx response other than a search miss.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type prefixRoundTripper struct {
	base *url.URL
	rt   http.RoundTripper
}

func (p *prefixRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	u := r.URL
	if u.Scheme == "" {
		u.Scheme = p.base.Scheme
	}
	if u.Host == "" {
		u.Host = p.base.Host
	}

	return p.rt.RoundTrip(r)
}

// NewClient returns a client for the server at baseURL, authenticating as
// cfg describes.
func NewClient(baseURL string, cfg httputil.HTTPClientConfig) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must carry scheme and host", baseURL)
	}
	c, err := httputil.NewClientFromConfig(cfg, false)
	if err != nil {
		return nil, fmt.Errorf("httputil.NewClientFromConfig: %w", err)
	}
	c.Transport = &prefixRoundTripper{base: base, rt: c.Transport}
	return &Client{client: c}, nil
}

type Client struct {
	client *http.Client
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("unable marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("create new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error with sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && path == "/search" {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) Insert(ctx context.Context, r InsertRequest) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodPost, "/points", &r, &e)
	return e, err
}

// Search returns ErrNotFound when nothing matches.
func (c *Client) Search(ctx context.Context, l Lookup) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodPost, "/search", &l, &e)
	return e, err
}

func (c *Client) Remove(ctx context.Context, l Lookup) (bool, error) {
	var r RemoveResponse
	if err := c.do(ctx, http.MethodPost, "/remove", &l, &r); err != nil {
		return false, err
	}
	return r.Removed, nil
}

func (c *Client) Region(ctx context.Context, queries ...RegionQuery) ([][]Entry, error) {
	var r RegionResponse
	if err := c.do(ctx, http.MethodPost, "/region", &RegionRequest{Queries: queries}, &r); err != nil {
		return nil, err
	}
	return r.Results, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
