package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves the remote record list. Implemented by *Client and by
// test doubles.
type Fetcher interface {
	FetchItems(ctx context.Context) ([]Item, error)
}

// Publisher sends a single record to the remote source.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// Ensure Client implements both interfaces at compile time.
var (
	_ Fetcher   = (*Client)(nil)
	_ Publisher = (*Client)(nil)
)

// Item is one element of the remote list. Only the title is read; other
// fields are ignored whatever their type.
type Item struct {
	Title string `json:"title"`
}

// UnmarshalJSON leaves Title empty when the element has no string title, so
// one malformed element does not reject the whole list.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title any `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		// Non-object elements carry no title.
		*it = Item{}
		return nil
	}
	title, _ := raw.Title.(string)
	*it = Item{Title: title}
	return nil
}

// Record is the publish payload.
type Record struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Client talks to the remote quote endpoint over HTTP.
type Client struct {
	listURL    *url.URL
	publishURL *url.URL
	http       *http.Client
	userAgent  string
}

const (
	defaultUserAgent      = "quotebook/0.1"
	defaultRequestTimeout = 5 * time.Second
)

// Options configure a Client.
type Options struct {
	Endpoint   string        // GET target returning the item list
	PublishURL string        // POST target; empty disables Publish
	Timeout    time.Duration // zero uses the default
}

// NewClient builds a Client for the configured endpoints.
func NewClient(opts Options) (*Client, error) {
	listURL, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	var publishURL *url.URL
	if strings.TrimSpace(opts.PublishURL) != "" {
		publishURL, err = parseEndpoint(opts.PublishURL)
		if err != nil {
			return nil, fmt.Errorf("parse publish url: %w", err)
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		listURL:    listURL,
		publishURL: publishURL,
		http:       &http.Client{Timeout: timeout},
		userAgent:  defaultUserAgent,
	}, nil
}

// FetchItems retrieves the remote record list.
func (c *Client) FetchItems(ctx context.Context) ([]Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Item
	if err := c.do(ctx, http.MethodGet, c.listURL, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Publish posts rec to the publish endpoint.
func (c *Client) Publish(ctx context.Context, rec Record) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if c.publishURL == nil {
		return fmt.Errorf("publish url not configured")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.publishURL, bytes.NewReader(body), nil)
}

func (c *Client) do(ctx context.Context, method string, target *url.URL, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned status %d", method, target.Path, resp.StatusCode)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseEndpoint accepts full URLs or bare host[:port]/path values, defaulting
// the scheme to https. The query is kept; the fragment is dropped.
func parseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", raw)
	}
	u.Fragment = ""
	return u, nil
}
