package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single remote round trip when no Doer is supplied.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a remote response body is read.
const maxResponseBytes = 64 * 1024

// ErrRateLimited is returned when the remote endpoint answers 429.
var ErrRateLimited = errors.New("remote validator rate limited")

// StatusError is returned for any other non-2xx answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote validator: HTTP %d", e.Code)
}

// Doer sends HTTP requests. *http.Client satisfies it; tests plug in fakes.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Request is the JSON body sent to the remote endpoint.
type Request struct {
	UserAnswer     string `json:"userAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	TargetWord     string `json:"targetWord,omitempty"`
	WordType       string `json:"wordType,omitempty"`
	Direction      string `json:"direction,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
}

// Response is the JSON body of a successful remote answer.
type Response struct {
	Accepted    bool   `json:"accepted"`
	Explanation string `json:"explanation,omitempty"`
}

// Client posts unresolved answers to a remote validation endpoint.
// It never retries.
type Client struct {
	url    string
	doer   Doer
	header http.Header
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) ClientOption {
	return func(c *Client) { c.doer = d }
}

// WithHeader adds a header to every request (e.g. X-User-ID, Authorization).
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.header.Add(key, value) }
}

// NewClient returns a Client for the endpoint at url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:    url,
		doer:   &http.Client{Timeout: DefaultTimeout},
		header: make(http.Header),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Validate performs one round trip. Errors are ErrRateLimited, *StatusError,
// or a wrapped transport/decoding error.
func (c *Client) Validate(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range c.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
