// Package fetch wraps the outbound HTTP client used for reachability checks
// and sync fetches.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response carries the parts of an upstream reply the pipeline cares about:
// the status code, the content type, and the body as text.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client performs plain GET requests against source URLs.
type Client struct {
	http *resty.Client
}

// New creates a fetch client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", "ContentSyncer/1.0")
	return &Client{http: c}
}

// Get fetches url and returns its status, content type and body. A non-2xx
// status is not an error; callers decide how to treat it.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	return &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        string(resp.Body()),
	}, nil
}
