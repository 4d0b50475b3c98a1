package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the minimal HTTP surface used by the news client, the metadata
// scraper and the HTTP share sink.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error)
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*resty.Response, error)
}

type restyClient struct {
	r *resty.Client
}

// NewRestyClient returns a resty-backed Client. A zero timeout leaves the
// transport default in place.
func NewRestyClient(timeout time.Duration) Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	return &restyClient{r: r}
}

// Wrap adapts an existing resty client, mostly for tests.
func Wrap(r *resty.Client) Client {
	if r == nil {
		r = resty.New()
	}
	return &restyClient{r: r}
}

// Get performs a GET request with the given headers.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	return c.r.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
}

// Do performs an arbitrary request with an optional raw body.
func (c *restyClient) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*resty.Response, error) {
	req := c.r.R().
		SetContext(ctx).
		SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}
	return req.Execute(method, url)
}
