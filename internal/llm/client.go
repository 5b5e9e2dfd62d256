package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"

	defaultOllamaURL   = "http://localhost:11434"
	defaultLlamaCppURL = "http://localhost:8080"
	defaultRetryWait   = time.Second
)

// ResolveHost returns the server URL for a backend, falling back to the
// OLLAMA_HOST environment variable and then the backend default.
func ResolveHost(backend, host string) string {
	if host == "" && backend == BackendOllama {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		if backend == BackendOllama {
			host = defaultOllamaURL
		} else {
			host = defaultLlamaCppURL
		}
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	// Strip trailing /, /v1, /api so users can paste any endpoint URL.
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")
	host = strings.TrimSuffix(host, "/api")
	return host
}

// newRestClient builds the shared HTTP client. Requests answered with 429 or
// a 5xx status are retried with back-off.
func newRestClient(baseURL string, opts Options) *resty.Client {
	wait := opts.RetryWait
	if wait <= 0 {
		wait = defaultRetryWait
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(8 * wait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return false
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.APIKey != "" {
		c.SetAuthToken(opts.APIKey)
	}
	return c
}

// post sends a JSON body and returns the raw response body. Non-2xx statuses
// become a *GenerationError.
func post(ctx context.Context, c *resty.Client, path string, body any) ([]byte, error) {
	resp, err := c.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.IsError() {
		return nil, &GenerationError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	return resp.Body(), nil
}

// extractText returns the first generated-text field present in body.
func extractText(body []byte, paths ...string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("parsing response: invalid JSON")
	}
	for _, p := range paths {
		if v := gjson.GetBytes(body, p); v.Exists() {
			return v.String(), nil
		}
	}
	return "", ErrMalformedResponse
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func messagesFor(p Prompt) []chatMessage {
	msgs := make([]chatMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.System})
	}
	return append(msgs, chatMessage{Role: "user", Content: p.User})
}
