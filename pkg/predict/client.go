// Package predict implements the background LM-prediction pipeline: a
// bounded try-and-drop queue feeding a single worker that calls a local
// language-model HTTP service behind a circuit breaker, never blocking
// the suggestion engine's synchronous path.
package predict

import (
	"context"
	"fmt"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

const requestTimeout = 500 * time.Millisecond

// lmRequest is the wire body posted to the LM service, matching the
// Ollama-style /api/generate contract.
type lmRequest struct {
	Model   string    `json:"model"`
	Prompt  string    `json:"prompt"`
	Stream  bool      `json:"stream"`
	Options lmOptions `json:"options"`
}

type lmOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// lmResponse is the subset of the LM service's response this client
// consumes; structured output parsing beyond the response text is out
// of scope.
type lmResponse struct {
	Response string `json:"response"`
}

// Client calls the LM HTTP service with a hard per-request timeout,
// guarded by a circuit breaker that trips after 3 consecutive failures
// and stays open for 5 minutes before probing again.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*lmResponse]
	url     string
	model   string
}

// NewClient builds a Client targeting baseURL (e.g. http://localhost:11434)
// with the given model name.
func NewClient(baseURL, model string) *Client {
	http := resty.New().SetTimeout(requestTimeout)

	settings := gobreaker.Settings{
		Name:        "lm-client",
		MaxRequests: 1,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Client{
		http:    http,
		breaker: gobreaker.NewCircuitBreaker[*lmResponse](settings),
		url:     baseURL + "/api/generate",
		model:   model,
	}
}

// Predict posts prompt to the LM service and returns its raw text
// response. Returns an error (without tripping further) if the breaker
// is currently open.
func (c *Client) Predict(ctx context.Context, prompt string) (string, error) {
	result, err := c.breaker.Execute(func() (*lmResponse, error) {
		var out lmResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(lmRequest{
				Model:  c.model,
				Prompt: prompt,
				Stream: false,
				Options: lmOptions{
					NumPredict:  32,
					Temperature: 0.2,
					TopP:        0.9,
				},
			}).
			SetResult(&out).
			Post(c.url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("predict: lm service returned %s", resp.Status())
		}
		return &out, nil
	})
	if err != nil {
		return "", err
	}
	return result.Response, nil
}
