// Package assistant is the request/response boundary to the remote answer
// generation service.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable covers every failure mode of the remote call: network
// errors, timeouts, non-2xx statuses and undecodable bodies. Callers do not
// distinguish between them.
var ErrUnavailable = errors.New("assistant unavailable")

// Client performs one question/answer exchange with the assistant service.
type Client interface {
	// Ask submits text and returns the reply string. An empty reply is
	// valid; credential may be empty for anonymous queries.
	Ask(ctx context.Context, text, credential string) (string, error)
}

// HTTPClient talks to the assistant endpoint over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the assistant service rooted at baseURL.
// Timeout policy belongs to httpClient; pass nil for http.DefaultClient.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Response string `json:"response"`
}

// Ask implements Client against POST {base}/chat_with_gemini.
func (c *HTTPClient) Ask(ctx context.Context, text, credential string) (string, error) {
	payload, err := json.Marshal(askRequest{Message: text})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat_with_gemini", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	return body.Response, nil
}
