package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "bazaar-samachar/1.0 (+https://github.com/Adda-Baaj/bazaar-samachar)"

// Response is the subset of a resty response the callers rely on.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client performs HTTP requests on behalf of fetchers, translators and publishers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	GetWithQuery(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error)
	PostJSON(ctx context.Context, url string, body any, headers map[string]string) (Response, error)
	Do(ctx context.Context, method, url string, body any, headers map[string]string) (Response, error)
}

type restyClient struct {
	r *resty.Client
}

// NewRestyClient builds a Client backed by resty with the given request timeout.
// A zero timeout leaves requests bounded only by their context.
func NewRestyClient(timeout time.Duration) Client {
	r := resty.New().
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0)
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	return &restyClient{r: r}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.GetWithQuery(ctx, url, nil, headers)
}

func (c *restyClient) GetWithQuery(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error) {
	req := c.r.R().SetContext(ctx).SetHeaders(headers)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, wrap("GET", url, err)
	}
	return resp, nil
}

func (c *restyClient) PostJSON(ctx context.Context, url string, body any, headers map[string]string) (Response, error) {
	return c.Do(ctx, "POST", url, body, headers)
}

func (c *restyClient) Do(ctx context.Context, method, url string, body any, headers map[string]string) (Response, error) {
	req := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, wrap(method, url, err)
	}
	return resp, nil
}
