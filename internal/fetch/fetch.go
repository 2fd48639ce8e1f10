package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
)

// StatusError reports a non-2xx response from an upstream service.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.URL)
}

// Client wraps an HTTP client with a per-upstream circuit breaker.
// Requests are issued exactly once; there is deliberately no retry here.
type Client struct {
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// New creates a Client guarded by a circuit breaker named after the upstream.
func New(httpClient *http.Client, name string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{httpClient: httpClient, circuit: cb}
}

// Do executes the request through the circuit breaker. Non-2xx responses are
// returned as *StatusError with the body closed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.httpClient == nil {
		return nil, errNoHTTPClient
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req = req.WithContext(ctx)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// Get issues a GET for the given URL through the breaker.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Download fetches url and returns the raw response bytes. A non-2xx status
// surfaces as *StatusError and nothing is read.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
