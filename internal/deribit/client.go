package deribit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ErrMalformedPayload marks a response body that could not be decoded as the
// expected JSON-RPC envelope. Callers use errors.Is to distinguish it from
// transport failures, since a malformed payload is not worth retrying.
var ErrMalformedPayload = errors.New("deribit: malformed payload")

// StatusError reports a non-2xx response from the exchange.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deribit: unexpected status %d", e.StatusCode)
}

// IndexPriceResult is the payload of a get_index_price call.
type IndexPriceResult struct {
	IndexPrice             float64 `json:"index_price"`
	EstimatedDeliveryPrice float64 `json:"estimated_delivery_price"`
}

// IndexPriceResponse is Deribit's JSON-RPC envelope for public endpoints.
// UsIn is the server-side receive timestamp in microseconds since the Unix
// epoch; it doubles as the observation time of the quote.
type IndexPriceResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	Result  IndexPriceResult `json:"result"`
	UsIn    int64            `json:"usIn"`
	UsOut   int64            `json:"usOut,omitempty"`
	UsDiff  int64            `json:"usDiff,omitempty"`
	Testnet bool             `json:"testnet,omitempty"`
}

// HTTPDoer is the subset of http.Client the Deribit client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches index prices from Deribit's public REST API.
//
// It performs exactly one outbound call per GetIndexPrice invocation and
// implements no retries; retry policy belongs to whatever scheduler drives
// the polling cycle.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (used by tests and by callers
// that want custom transport settings).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// NewClient builds a Client for the given API base URL, e.g.
// "https://www.deribit.com/api/v2/public". The default transport uses
// pooled connections and the supplied overall request timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetIndexPrice fetches the current index price for one ticker
// (e.g. "btc_usd") via GET {base}/get_index_price?index_name={ticker}.
//
// Failure modes are distinct and inspectable:
//   - transport/timeout errors are returned wrapped;
//   - a non-2xx status yields a *StatusError;
//   - an undecodable body yields an error wrapping ErrMalformedPayload.
func (c *Client) GetIndexPrice(ctx context.Context, ticker string) (*IndexPriceResponse, error) {
	u := fmt.Sprintf("%s/get_index_price?index_name=%s", c.baseURL, url.QueryEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("deribit: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deribit: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var out IndexPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return &out, nil
}
